// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dapaulid/stressy/internal/progress"
	"github.com/dapaulid/stressy/internal/stress"
)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
	mutex    sync.Mutex
}

// Reporter implements ProgressReporter and forwards events to the TUI.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewReporter creates a progress reporter feeding the given program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{
		program: program,
	}
}

// Report implements ProgressReporter.Report.
func (r *Reporter) Report(event progress.ProgressEvent) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.closed || r.program == nil {
		return
	}

	r.program.Send(ProgressEventMsg{Event: event})
}

// Close implements ProgressReporter.Close.
func (r *Reporter) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.closed = true
}

// NewRunner creates a new TUI runner for the given run configuration.
func NewRunner(cfg *stress.RunConfig) *Runner {
	model := NewModel(cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	reporter := NewReporter(program)

	return &Runner{
		model:    model,
		program:  program,
		reporter: reporter,
	}
}

// GetReporter returns the progress reporter for this TUI runner.
func (r *Runner) GetReporter() progress.ProgressReporter {
	return r.reporter
}

// Run executes the repetition loop under the TUI and blocks until both the
// loop and the interface have finished. Quitting the interface while the
// test is still going cancels the run.
func (r *Runner) Run(ctx context.Context, loop *stress.Loop) (stress.Result, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel to receive the result of the repetition loop
	resultChan := make(chan stress.Result, 1)

	go func() {
		defer close(resultChan)
		resultChan <- loop.Run(runCtx)
	}()

	// Start the TUI program in a goroutine
	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		result stress.Result
		tuiErr error
	)

	select {
	case result = <-resultChan:
		// The test finished, let the user read the outcome before leaving.
		r.program.Send(RunCompletedMsg{Result: result})
		tuiErr = <-tuiDone

		r.reporter.Close()

	case tuiErr = <-tuiDone:
		// The user left the interface while the test was still going.
		r.reporter.Close()
		cancel()

		result = <-resultChan

	case <-ctx.Done():
		// Cancelled from the outside, e.g. by a termination signal.
		r.reporter.Close()
		r.program.Quit()

		result = <-resultChan
		<-tuiDone
	}

	return result, tuiErr
}
