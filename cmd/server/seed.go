package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/artist-recommender/internal/logging"
	"github.com/actuallystonmai/artist-recommender/internal/repository"
	"github.com/actuallystonmai/artist-recommender/seeds"
)

func newSeedCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo artists, users and listening data",
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

			if force {
				return seeds.Setup(cmd.Context(), pool)
			}
			return checkSeed(cmd.Context(), pool)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Truncate and reseed even when users exist")

	return cmd
}

// checkSeed seeds only an empty database.
func checkSeed(ctx context.Context, pool *pgxpool.Pool) error {
	count, err := repository.New(pool).CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		logging.Info().Int("users", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}
