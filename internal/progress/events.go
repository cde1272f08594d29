// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// ProgressEvent represents a real-time update from the stress run.
// Events are emitted throughout a run's lifecycle to provide feedback
// for the console renderer, the TUI and other monitoring systems.
type ProgressEvent struct {
	Type      EventType // Event type indicating what happened
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventRunStarted indicates a new run (round) is about to execute.
	EventRunStarted EventType = iota
	// EventProcessStarted indicates one child process of a round has been launched.
	EventProcessStarted
	// EventProcessOutput indicates captured output of a failed process is available.
	EventProcessOutput
	// EventProcessExited indicates one child process has exited or was killed.
	EventProcessExited
	// EventRunCompleted indicates a run finished and the tallies were updated.
	EventRunCompleted
	// EventSleeping indicates the loop is waiting between runs.
	EventSleeping
	// EventSleepCompleted indicates the inter-run sleep finished.
	EventSleepCompleted
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventRunStarted:
		return "run started"
	case EventProcessStarted:
		return "process started"
	case EventProcessOutput:
		return "process output"
	case EventProcessExited:
		return "process exited"
	case EventRunCompleted:
		return "run completed"
	case EventSleeping:
		return "sleeping"
	case EventSleepCompleted:
		return "sleep completed"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventRunStarted / EventRunCompleted
	Run        int64         // 1-based run index
	RunLimit   int64         // configured run ceiling, 0 when unlimited
	Passed     int64         // passed runs so far
	Failed     int64         // failed runs so far
	Elapsed    time.Duration // wall-clock time since the loop started
	RunSuccess bool          // for EventRunCompleted, whether every process passed

	// For process events
	ProcessIndex int           // 0-based process index within the round
	Command      string        // the command being executed
	ExitCode     int           // for EventProcessExited
	Killed       bool          // true when the process was killed on timeout
	Timeout      time.Duration // configured round timeout, for kill diagnostics
	Output       string        // for EventProcessOutput, the captured combined output
	LastLine     string        // for EventProcessOutput, the last complete output line
	FinishedAt   time.Time     // for EventProcessExited

	// For EventSleeping
	Remaining time.Duration // sleep time left, updated once per second
}

// ProgressReporter is the interface for sending progress events.
// The repetition loop emits real-time updates through this during execution.
type ProgressReporter interface {
	// Report sends a progress event. Implementations should be non-blocking
	// and handle the case where the receiver might not be listening.
	Report(event ProgressEvent)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// ProgressListener receives progress events.
// TUI implementations and other monitoring systems implement this interface.
type ProgressListener interface {
	// OnEvent is called when a progress event is received.
	// Implementations should handle events quickly to avoid blocking
	// the reporting goroutine.
	OnEvent(event ProgressEvent)
}

// NullReporter is a no-op implementation of ProgressReporter.
// Used when progress reporting is not needed.
type NullReporter struct{}

// Report implements ProgressReporter.Report by doing nothing.
func (nr *NullReporter) Report(event ProgressEvent) {
	// No-op
}

// Close implements ProgressReporter.Close by doing nothing.
func (nr *NullReporter) Close() {
	// No-op
}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() ProgressReporter {
	return &NullReporter{}
}
