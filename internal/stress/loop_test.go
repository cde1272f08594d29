// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dapaulid/stressy/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// recordingReporter collects every published event for later inspection.
type recordingReporter struct {
	mu     sync.Mutex
	events []progress.ProgressEvent
}

func (r *recordingReporter) Report(event progress.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingReporter) Close() {}

func (r *recordingReporter) byType(et progress.EventType) []progress.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progress.ProgressEvent
	for _, ev := range r.events {
		if ev.Type == et {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recordingReporter) types() []progress.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]progress.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakeRunner plays back a scripted sequence of round outcomes. Once the
// script is exhausted the last outcome repeats.
type fakeRunner struct {
	mu      sync.Mutex
	script  []RoundOutcome
	calls   int
	onRound func(run int64)
}

func (f *fakeRunner) RunRound(ctx context.Context, run int64) RoundOutcome {
	f.mu.Lock()
	i := f.calls
	f.calls++
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	outcome := f.script[i]
	hook := f.onRound
	f.mu.Unlock()

	if hook != nil {
		hook(run)
	}
	return outcome
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func passRound() RoundOutcome {
	return RoundOutcome{Processes: []ProcessOutcome{{ExitCode: 0, FinishedAt: time.Now()}}}
}

func failRound() RoundOutcome {
	return RoundOutcome{Processes: []ProcessOutcome{{ExitCode: 1, FinishedAt: time.Now()}}}
}

func cancelledRound() RoundOutcome {
	return RoundOutcome{Cancelled: true}
}

func TestLoopAllRunsPass(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{script: []RoundOutcome{passRound()}}
	loop := NewLoop(RunConfig{Command: "true", Runs: 5, Processes: 1}, WithRoundRunner(runner))

	result := loop.Run(context.Background())

	assert.Equal(t, StatusPassed, result.Status)
	assert.Equal(t, int64(5), result.PassedRuns)
	assert.Zero(t, result.FailedRuns)
	assert.Equal(t, 5, runner.callCount())
	assert.Equal(t, result.Runs(), result.PassedRuns+result.FailedRuns)
	assert.False(t, result.StartedOn.IsZero())
}

func TestLoopStopsOnFirstFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{script: []RoundOutcome{passRound(), passRound(), failRound()}}
	loop := NewLoop(RunConfig{Command: "true", Runs: 10, Processes: 1}, WithRoundRunner(runner))

	result := loop.Run(context.Background())

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, int64(2), result.PassedRuns)
	assert.Equal(t, int64(1), result.FailedRuns)
	assert.Equal(t, 3, runner.callCount(), "the loop must stop at the failed round")
}

func TestLoopContinuesAfterFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{script: []RoundOutcome{
		failRound(), passRound(), failRound(), passRound(), passRound(),
	}}
	loop := NewLoop(
		RunConfig{Command: "true", Runs: 5, Processes: 1, Continue: true},
		WithRoundRunner(runner),
	)

	result := loop.Run(context.Background())

	assert.Equal(t, StatusFailed, result.Status, "any failed run fails the test")
	assert.Equal(t, int64(3), result.PassedRuns)
	assert.Equal(t, int64(2), result.FailedRuns)
	assert.Equal(t, 5, runner.callCount())
}

func TestLoopUnlimitedRunsUntilFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{script: []RoundOutcome{
		passRound(), passRound(), passRound(), failRound(),
	}}
	loop := NewLoop(RunConfig{Command: "true", Processes: 1}, WithRoundRunner(runner))

	result := loop.Run(context.Background())

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, int64(3), result.PassedRuns)
	assert.Equal(t, int64(1), result.FailedRuns)
	assert.Equal(t, 4, runner.callCount())
}

func TestLoopCancelledDuringRound(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{script: []RoundOutcome{passRound(), cancelledRound()}}
	loop := NewLoop(RunConfig{Command: "true", Processes: 1}, WithRoundRunner(runner))

	result := loop.Run(context.Background())

	assert.Equal(t, StatusCancelled, result.Status)
	assert.Equal(t, int64(1), result.PassedRuns, "counts before the interruption must be preserved")
	assert.Zero(t, result.FailedRuns, "an interrupted round counts as neither passed nor failed")
}

func TestLoopCancelledMidSleep(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &fakeRunner{script: []RoundOutcome{failRound(), passRound()}}
	runner.onRound = func(run int64) {
		if run == 2 {
			// interrupt during the sleep that follows the second round
			time.AfterFunc(50*time.Millisecond, cancel)
		}
	}
	loop := NewLoop(
		RunConfig{Command: "true", Processes: 1, Continue: true, Sleep: 400 * time.Millisecond},
		WithRoundRunner(runner),
	)

	start := time.Now()
	result := loop.Run(ctx)

	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must interrupt the sleep")
	assert.Equal(t, StatusCancelled, result.Status)
	assert.Equal(t, int64(1), result.PassedRuns)
	assert.Equal(t, int64(1), result.FailedRuns)
}

func TestLoopFailureSkipsSleep(t *testing.T) {
	defer goleak.VerifyNone(t)

	rep := &recordingReporter{}
	runner := &fakeRunner{script: []RoundOutcome{failRound()}}
	loop := NewLoop(
		RunConfig{Command: "true", Processes: 1, Sleep: time.Hour},
		WithRoundRunner(runner), WithReporter(rep),
	)

	start := time.Now()
	result := loop.Run(context.Background())

	assert.Less(t, time.Since(start), 5*time.Second, "a breaking failure must not sleep first")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Empty(t, rep.byType(progress.EventSleeping))
}

func TestLoopEventSequence(t *testing.T) {
	defer goleak.VerifyNone(t)

	rep := &recordingReporter{}
	runner := &fakeRunner{script: []RoundOutcome{passRound()}}
	loop := NewLoop(
		RunConfig{Command: "true", Runs: 2, Processes: 1, Sleep: 10 * time.Millisecond},
		WithRoundRunner(runner), WithReporter(rep),
	)

	result := loop.Run(context.Background())
	require.Equal(t, StatusPassed, result.Status)

	// Each run is announced, completed and followed by the configured sleep,
	// including the one after the final run.
	assert.Equal(t, []progress.EventType{
		progress.EventRunStarted,
		progress.EventRunCompleted,
		progress.EventSleeping,
		progress.EventSleepCompleted,
		progress.EventRunStarted,
		progress.EventRunCompleted,
		progress.EventSleeping,
		progress.EventSleepCompleted,
	}, rep.types())

	started := rep.byType(progress.EventRunStarted)
	require.Len(t, started, 2)
	assert.Equal(t, int64(1), started[0].Data.Run)
	assert.Equal(t, int64(2), started[1].Data.Run)
	assert.Equal(t, int64(2), started[0].Data.RunLimit)
	assert.Zero(t, started[0].Data.Passed, "tallies in the announcement predate the round")

	completed := rep.byType(progress.EventRunCompleted)
	require.Len(t, completed, 2)
	assert.True(t, completed[0].Data.RunSuccess)
	assert.Equal(t, int64(1), completed[0].Data.Passed)
	assert.Equal(t, int64(2), completed[1].Data.Passed)
}

func TestLoopSleepCountdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	rep := &recordingReporter{}
	runner := &fakeRunner{script: []RoundOutcome{passRound()}}
	loop := NewLoop(
		RunConfig{Command: "true", Runs: 1, Processes: 1, Sleep: 1500 * time.Millisecond},
		WithRoundRunner(runner), WithReporter(rep),
	)

	result := loop.Run(context.Background())
	require.Equal(t, StatusPassed, result.Status)

	ticks := rep.byType(progress.EventSleeping)
	require.Len(t, ticks, 2, "a 1.5s sleep counts down in two ticks")
	assert.Equal(t, 1500*time.Millisecond, ticks[0].Data.Remaining)
	assert.Equal(t, 500*time.Millisecond, ticks[1].Data.Remaining)
}
