// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"github.com/dapaulid/stressy/internal/color"
)

// Status is the terminal state of a stress test. Its integer value doubles
// as the process exit code.
type Status int

const (
	// StatusPassed means every counted run succeeded.
	StatusPassed Status = iota
	// StatusFailed means at least one counted run failed.
	StatusFailed
	// StatusCancelled means the user interrupted the test.
	StatusCancelled
	// StatusError means the test could not be run at all.
	StatusError
)

// String implements the Stringer interface for Status. The names are also
// the persisted form in the results file.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "PASSED"
	case StatusFailed:
		return "FAILED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code associated with the status.
func (s Status) ExitCode() int {
	return int(s)
}

// Color returns the terminal colour associated with the status.
func (s Status) Color() color.Code {
	switch s {
	case StatusPassed:
		return color.FgGreen
	case StatusCancelled:
		return color.FgYellow
	default:
		return color.FgRed
	}
}
