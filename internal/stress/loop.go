// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"context"
	"time"

	"github.com/dapaulid/stressy/internal/ctxlog"
	"github.com/dapaulid/stressy/internal/logfile"
	"github.com/dapaulid/stressy/internal/progress"
)

// sleepTick is the granularity of the inter-run sleep countdown.
const sleepTick = time.Second

// Loop drives repeated rounds of the command until a stop condition is met:
// a failed round without the continue flag, the configured run limit, or
// cancellation.
type Loop struct {
	cfg      RunConfig
	runner   RoundRunner
	reporter progress.ProgressReporter
}

// Option customizes a Loop.
type Option func(*Loop)

// WithRoundRunner replaces the OS-process round runner, primarily for tests.
func WithRoundRunner(r RoundRunner) Option {
	return func(l *Loop) {
		l.runner = r
	}
}

// WithReporter sets the progress reporter the loop and its round runner
// publish events through.
func WithReporter(rep progress.ProgressReporter) Option {
	return func(l *Loop) {
		l.reporter = rep
	}
}

// NewLoop creates a Loop for cfg. Unless overridden by options, rounds are
// executed by the OS-process round runner and events are discarded.
func NewLoop(cfg RunConfig, opts ...Option) *Loop {
	l := &Loop{
		cfg:      cfg,
		reporter: progress.NewNullReporter(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.runner == nil {
		l.runner = NewRoundRunner(&l.cfg, l.reporter)
	}
	return l
}

// Run executes rounds until a stop condition is met and returns the final
// result. The status is decided exactly once, after the loop terminates:
// Cancelled when ctx was cancelled, otherwise Passed iff no round failed.
// The duration is recomputed from wall-clock time at exit rather than
// accumulated per round.
func (l *Loop) Run(ctx context.Context) Result {
	logger := ctxlog.Logger(ctx)

	if l.cfg.Output == OutputFile {
		// Remove promoted logs from earlier invocations so stale results
		// cannot be mistaken for this run's.
		if err := logfile.Sweep(ctx); err != nil {
			ctxlog.Warn(ctx, "failed to remove old log files", "error", err)
		}
	}

	start := time.Now()
	result := Result{StartedOn: start}
	cancelled := false

	var run int64
	for l.cfg.Runs == 0 || run < l.cfg.Runs {
		run++

		l.reporter.Report(progress.ProgressEvent{
			Type:      progress.EventRunStarted,
			Timestamp: time.Now(),
			Data: progress.EventData{
				Run:      run,
				RunLimit: l.cfg.Runs,
				Passed:   result.PassedRuns,
				Failed:   result.FailedRuns,
				Elapsed:  time.Since(start),
			},
		})

		outcome := l.runner.RunRound(ctx, run)
		if outcome.Cancelled || ctx.Err() != nil {
			cancelled = true
			break
		}

		success := outcome.Success()
		if success {
			result.PassedRuns++
		} else {
			result.FailedRuns++
		}

		l.reporter.Report(progress.ProgressEvent{
			Type:      progress.EventRunCompleted,
			Timestamp: time.Now(),
			Data: progress.EventData{
				Run:        run,
				RunLimit:   l.cfg.Runs,
				Passed:     result.PassedRuns,
				Failed:     result.FailedRuns,
				Elapsed:    time.Since(start),
				RunSuccess: success,
			},
		})

		if !success && !l.cfg.Continue {
			break
		}

		if !l.sleep(ctx) {
			cancelled = true
			break
		}
	}

	result.Duration = time.Since(start)

	switch {
	case cancelled:
		result.Status = StatusCancelled
	case result.FailedRuns == 0:
		result.Status = StatusPassed
	default:
		result.Status = StatusFailed
	}

	logger.Debug("stress test finished",
		"status", result.Status,
		"passed", result.PassedRuns,
		"failed", result.FailedRuns,
		"duration", result.Duration)

	return result
}

// sleep applies the configured inter-run pause as an interruptible countdown,
// publishing the remaining time once per tick. It returns false when the
// context was cancelled mid-sleep.
func (l *Loop) sleep(ctx context.Context) bool {
	remaining := l.cfg.Sleep
	if remaining <= 0 {
		return true
	}

	for remaining > 0 {
		l.reporter.Report(progress.ProgressEvent{
			Type:      progress.EventSleeping,
			Timestamp: time.Now(),
			Data: progress.EventData{
				Remaining: remaining,
			},
		})

		step := sleepTick
		if remaining < step {
			step = remaining
		}

		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		remaining -= step
	}

	l.reporter.Report(progress.ProgressEvent{
		Type:      progress.EventSleepCompleted,
		Timestamp: time.Now(),
	})

	return true
}
