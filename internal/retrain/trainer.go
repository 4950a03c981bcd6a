// Package retrain runs the external model training process in the
// background after preference changes.
//
// Trigger never blocks and never reports back to its caller. A single
// worker runs at most one training process at a time; triggers that arrive
// while a run is in progress collapse into one follow-up run, so a burst of
// preference writes costs at most two trainings.
package retrain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/actuallystonmai/artist-recommender/internal/logging"
	"github.com/actuallystonmai/artist-recommender/internal/metrics"
	"github.com/actuallystonmai/artist-recommender/internal/process"
)

const stderrLogLimit = 2000

type Config struct {
	Executable string
	// ScriptPath is the only argument passed to Executable. Empty disables
	// retraining.
	ScriptPath string
	Timeout    time.Duration
}

type Option func(*Trainer)

func WithInvoker(inv process.Invoker) Option {
	return func(t *Trainer) {
		if inv != nil {
			t.invoker = inv
		}
	}
}

type Trainer struct {
	cfg     Config
	invoker process.Invoker
	pending chan struct{}
}

func New(cfg Config, opts ...Option) *Trainer {
	t := &Trainer{
		cfg:     cfg,
		invoker: process.NewExecInvoker(),
		pending: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Trainer) Enabled() bool {
	return t.cfg.ScriptPath != "" && t.cfg.Executable != ""
}

// Trigger asks for a training run and returns immediately.
func (t *Trainer) Trigger() {
	if !t.Enabled() {
		logging.Debug().Msg("retrain skipped: no trainer configured")
		return
	}
	select {
	case t.pending <- struct{}{}:
		logging.Debug().Msg("retrain queued")
	default:
		metrics.RetrainCoalesced.Inc()
		logging.Debug().Msg("retrain already pending")
	}
}

// Run processes queued triggers until ctx is cancelled. A run still in
// progress at that point is killed.
func (t *Trainer) Run(ctx context.Context) error {
	if !t.Enabled() {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.pending:
			t.runOnce(ctx)
		}
	}
}

func (t *Trainer) runOnce(ctx context.Context) {
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	log := logging.With().Str("job_id", uuid.NewString()).Str("script", t.cfg.ScriptPath).Logger()
	log.Info().Msg("retrain_started")

	start := time.Now()
	res, err := t.invoker.Run(ctx, t.cfg.Executable, []string{t.cfg.ScriptPath})
	elapsed := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeFailed
		if errors.Is(err, context.Canceled) {
			outcome = metrics.OutcomeCanceled
		}
		metrics.RetrainRuns.WithLabelValues(outcome).Inc()

		event := log.Error().Err(err).Dur("elapsed", elapsed)
		var execErr *process.ExecutionError
		if errors.As(err, &execErr) {
			event = event.Int("exit_code", execErr.ExitCode).Str("stderr", tail(execErr.Stderr, stderrLogLimit))
		}
		event.Msg("retrain_failed")
		return
	}

	metrics.RetrainRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info().Int("exit_code", res.ExitCode).Dur("elapsed", elapsed).Msg("retrain_finished")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
