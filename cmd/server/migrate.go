package main

import (
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/artist-recommender/internal/logging"
	"github.com/actuallystonmai/artist-recommender/migrations"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or drop the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Create tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := connectDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := migrations.Up(cmd.Context(), pool); err != nil {
				return err
			}
			logging.Info().Msg("migrations applied successfully")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Drop all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := connectDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := migrations.Down(cmd.Context(), pool); err != nil {
				return err
			}
			logging.Info().Msg("migrations dropped successfully")
			return nil
		},
	})

	return cmd
}
