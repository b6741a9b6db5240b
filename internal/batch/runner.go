package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultMaxFailures is the number of consecutive failures that opens the
// breaker
const DefaultMaxFailures = 3

// Config configures a Runner
type Config struct {
	MaxFailures uint32
	// Cooldown is how long the breaker stays open before letting one
	// dataset through again
	Cooldown time.Duration
	// IsSuccessful classifies run errors for the breaker; errors it accepts
	// are still reported as failures in the summary
	IsSuccessful func(err error) bool
}

// Runner processes datasets one after another behind a circuit breaker
type Runner struct {
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewRunner creates a runner
func NewRunner(config Config, logger *slog.Logger) *Runner {
	if config.MaxFailures == 0 {
		config.MaxFailures = DefaultMaxFailures
	}
	if logger == nil {
		logger = slog.Default()
	}

	maxFailures := config.MaxFailures
	settings := gobreaker.Settings{
		Name:        "engine",
		MaxRequests: 1,
		Timeout:     config.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: config.IsSuccessful,
	}

	return &Runner{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Result is the outcome for one dataset
type Result struct {
	Path string
	Err  error
	// Skipped is set when the breaker was open and the dataset never ran
	Skipped bool
}

// Summary collects the results of a batch in input order
type Summary struct {
	Results []Result
}

// Succeeded counts datasets that completed without error
func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts datasets that ran and failed
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil && !r.Skipped {
			n++
		}
	}
	return n
}

// Skipped counts datasets that were not attempted
func (s Summary) Skipped() int {
	n := 0
	for _, r := range s.Results {
		if r.Skipped {
			n++
		}
	}
	return n
}

// Err returns the first error of the batch, or nil
func (s Summary) Err() error {
	for _, r := range s.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Run calls run for every path in order. Once the breaker opens, the
// remaining datasets are skipped until the cooldown has passed.
func (r *Runner) Run(ctx context.Context, paths []string, run func(ctx context.Context, path string) error) Summary {
	var summary Summary

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			summary.Results = append(summary.Results, Result{Path: path, Err: err, Skipped: true})
			continue
		}

		_, err := r.breaker.Execute(func() (interface{}, error) {
			return nil, run(ctx, path)
		})

		result := Result{Path: path, Err: err}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result.Skipped = true
			r.logger.Warn("skipping dataset, engine keeps failing", "dataset", path)
		} else if err != nil {
			r.logger.Error("dataset failed", "dataset", path, "error", err)
		} else {
			r.logger.Info("dataset done", "dataset", path)
		}
		summary.Results = append(summary.Results, result)
	}

	return summary
}
