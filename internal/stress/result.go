// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"time"
)

// ProcessOutcome is the observed result of one child process in a round.
type ProcessOutcome struct {
	// Index is the 0-based process index within the round.
	Index int
	// ExitCode is the process exit code, or -1 when it did not run to
	// completion.
	ExitCode int
	// Killed is true when the process was forcibly terminated because the
	// round's timeout budget ran out.
	Killed bool
	// Err holds a launch or supervision error, nil for a clean wait.
	Err error
	// FinishedAt is when the process was observed to have finished.
	FinishedAt time.Time
}

// Success reports whether the process exited cleanly with code 0 within the
// timeout budget.
func (o ProcessOutcome) Success() bool {
	return o.Err == nil && !o.Killed && o.ExitCode == 0
}

// RoundOutcome is the result of one round, consumed immediately by the loop.
type RoundOutcome struct {
	// Processes holds one outcome per launched process, in launch order.
	Processes []ProcessOutcome
	// Cancelled is true when the round was abandoned because the context
	// was cancelled. A cancelled round counts as neither passed nor failed.
	Cancelled bool
}

// Success reports whether every process in the round succeeded.
func (r RoundOutcome) Success() bool {
	for _, p := range r.Processes {
		if !p.Success() {
			return false
		}
	}
	return true
}

// Result is the final outcome of a stress test.
type Result struct {
	// Status is decided once, after the loop terminates.
	Status Status
	// PassedRuns is the number of rounds where every process succeeded.
	PassedRuns int64
	// FailedRuns is the number of rounds where at least one process failed.
	FailedRuns int64
	// StartedOn is the wall-clock time the loop was entered.
	StartedOn time.Time
	// Duration is the wall-clock span from loop entry to loop exit.
	Duration time.Duration
}

// Runs returns the number of counted rounds.
func (r Result) Runs() int64 {
	return r.PassedRuns + r.FailedRuns
}
