// Package engine talks to the external recommendation process.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
	"github.com/actuallystonmai/artist-recommender/internal/logging"
	"github.com/actuallystonmai/artist-recommender/internal/metrics"
	"github.com/actuallystonmai/artist-recommender/internal/process"
)

// ErrEngineUnavailable is returned while the circuit breaker is open.
var ErrEngineUnavailable = errors.New("recommendation engine unavailable")

// errCallerGone marks failures caused by the caller's context ending
// (disconnect or request deadline) rather than by the engine.
var errCallerGone = errors.New("caller stopped waiting")

// EngineError wraps every failure of an engine call. The cause stays
// reachable through errors.As.
type EngineError struct {
	UserID int64
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("recommendation engine (user %d): %v", e.UserID, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func IsEngineError(err error) bool {
	var target *EngineError
	return errors.As(err, &target)
}

type Config struct {
	Executable string
	ScriptPath string
	// Timeout bounds one process run; 0 leaves it to the caller's context.
	Timeout          time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

type Option func(*Client)

// WithInvoker swaps the process runner, mainly for tests.
func WithInvoker(inv process.Invoker) Option {
	return func(c *Client) {
		if inv != nil {
			c.invoker = inv
		}
	}
}

type Client struct {
	cfg     Config
	invoker process.Invoker
	breaker *gobreaker.CircuitBreaker[[]domain.RawRecommendation]
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Executable == "" {
		return nil, errors.New("engine executable required")
	}
	if cfg.ScriptPath == "" {
		return nil, errors.New("engine script path required")
	}

	c := &Client{cfg: cfg, invoker: process.NewExecInvoker()}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.BreakerThreshold > 0 {
		c.breaker = newBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown)
	}
	return c, nil
}

func newBreaker(threshold int, cooldown time.Duration) *gobreaker.CircuitBreaker[[]domain.RawRecommendation] {
	return gobreaker.NewCircuitBreaker[[]domain.RawRecommendation](gobreaker.Settings{
		Name:        "recommendation-engine",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: func(err error) bool {
			// a caller hanging up says nothing about engine health
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, errCallerGone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("engine_breaker_state")
			if to == gobreaker.StateOpen {
				metrics.EngineBreakerState.Set(1)
			} else {
				metrics.EngineBreakerState.Set(0)
			}
		},
	})
}

// Args is the argv handed to the engine executable.
func (c *Client) Args(userID int64, count int) []string {
	return []string{c.cfg.ScriptPath, strconv.FormatInt(userID, 10), "-n", strconv.Itoa(count)}
}

// Recommend runs the engine once for userID and returns its ranking as
// emitted. Nothing is cached.
func (c *Client) Recommend(ctx context.Context, userID int64, count int) ([]domain.RawRecommendation, error) {
	run := func() ([]domain.RawRecommendation, error) {
		return c.run(ctx, userID, count)
	}

	var (
		recs []domain.RawRecommendation
		err  error
	)
	if c.breaker != nil {
		recs, err = c.breaker.Execute(run)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.EngineInvocations.WithLabelValues(metrics.OutcomeUnavailable).Inc()
			err = fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		}
	} else {
		recs, err = run()
	}
	if err != nil {
		return nil, &EngineError{UserID: userID, Err: err}
	}
	return recs, nil
}

func (c *Client) run(ctx context.Context, userID int64, count int) ([]domain.RawRecommendation, error) {
	parent := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	log := logging.Ctx(ctx).With().Int64("user_id", userID).Int("count", count).Logger()

	start := time.Now()
	res, err := c.invoker.Run(ctx, c.cfg.Executable, c.Args(userID, count))
	metrics.EngineDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if parent.Err() != nil {
			err = fmt.Errorf("%w: %w", errCallerGone, err)
		}
		var execErr *process.ExecutionError
		switch {
		case errors.Is(err, errCallerGone) || errors.Is(err, context.Canceled):
			metrics.EngineInvocations.WithLabelValues(metrics.OutcomeCanceled).Inc()
			log.Info().Err(err).Msg("engine_canceled")
		case process.IsLaunchError(err):
			metrics.EngineInvocations.WithLabelValues(metrics.OutcomeLaunchError).Inc()
			log.Error().Err(err).Str("executable", c.cfg.Executable).Msg("engine_launch_failed")
		case errors.As(err, &execErr):
			metrics.EngineInvocations.WithLabelValues(metrics.OutcomeExitError).Inc()
			log.Error().Int("exit_code", execErr.ExitCode).Str("stderr", execErr.Stderr).Msg("engine_exit_nonzero")
		default:
			metrics.EngineInvocations.WithLabelValues(metrics.OutcomeExitError).Inc()
			log.Error().Err(err).Msg("engine_failed")
		}
		return nil, err
	}
	if res.Stderr != "" {
		log.Debug().Str("stderr", res.Stderr).Msg("engine diagnostics")
	}

	recs, err := Extract(res.Stdout)
	if err != nil {
		metrics.EngineInvocations.WithLabelValues(metrics.OutcomeFormatError).Inc()
		var formatErr *OutputFormatError
		errors.As(err, &formatErr)
		log.Error().Str("reason", formatErr.Reason).Str("stdout_tail", formatErr.Excerpt).Msg("engine_output_format")
		return nil, err
	}

	if unusable := countUnusable(recs); unusable > 0 {
		log.Warn().Int("unusable", unusable).Int("returned", len(recs)).Msg("engine_unusable_entries")
	}

	metrics.EngineInvocations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info().Int("returned", len(recs)).Dur("elapsed", time.Since(start)).Msg("engine finished")
	return recs, nil
}

// countUnusable counts entries whose artist id cannot match any artist.
func countUnusable(recs []domain.RawRecommendation) int {
	n := 0
	for _, r := range recs {
		if r.ArtistID <= 0 {
			n++
		}
	}
	return n
}
