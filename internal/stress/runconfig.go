// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"errors"
	"time"
)

var (
	// ErrNoCommand is returned when there is no command to run.
	ErrNoCommand = errors.New("no command specified")
	// ErrInvalidRuns is returned when the run limit is negative.
	ErrInvalidRuns = errors.New("number of runs must be at least 1")
	// ErrInvalidProcesses is returned when the process count is below 1.
	ErrInvalidProcesses = errors.New("number of processes must be at least 1")
)

// RunConfig is the validated, immutable configuration of one stress test.
// It is built once from command line flags and the defaults file, then passed
// by value to the loop and by read-only reference to the round supervisor.
type RunConfig struct {
	// Command is the shell command to execute.
	Command string
	// Runs is the number of repetitions. Zero means repeat until failure.
	Runs int64
	// Processes is the number of parallel processes per round.
	Processes int
	// Timeout is the shared per-round timeout budget. Zero means no timeout.
	Timeout time.Duration
	// Sleep is the pause between runs. Zero means no pause.
	Sleep time.Duration
	// Output selects where child process output is sent.
	Output OutputMode
	// Continue keeps the loop going after a failed run.
	Continue bool
}

// Validate checks the configuration invariants that cannot be expressed in
// the type system.
func (c *RunConfig) Validate() error {
	if c.Command == "" {
		return ErrNoCommand
	}
	if c.Runs < 0 {
		return ErrInvalidRuns
	}
	if c.Processes < 1 {
		return ErrInvalidProcesses
	}
	return nil
}
