// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"errors"
	"fmt"
)

// OutputMode controls where child process output is sent.
type OutputMode int

const (
	// OutputAll lets children inherit the terminal's stdout and stderr.
	OutputAll OutputMode = iota
	// OutputFail captures output in memory and dumps it only when the
	// process fails.
	OutputFail
	// OutputFile redirects output to per-process log files.
	OutputFile
	// OutputNone discards output entirely.
	OutputNone
)

// ErrInvalidOutputMode is returned when an output mode value is not one of
// all, fail, file or none.
var ErrInvalidOutputMode = errors.New("invalid output mode")

// OutputModeNames lists the accepted output mode values in declaration order.
var OutputModeNames = []string{"all", "fail", "file", "none"}

// ParseOutputMode converts a configuration value into an OutputMode,
// rejecting unknown values.
func ParseOutputMode(s string) (OutputMode, error) {
	switch s {
	case "all":
		return OutputAll, nil
	case "fail":
		return OutputFail, nil
	case "file":
		return OutputFile, nil
	case "none":
		return OutputNone, nil
	default:
		return OutputAll, fmt.Errorf("%w: %q", ErrInvalidOutputMode, s)
	}
}

// String implements the Stringer interface for OutputMode.
func (m OutputMode) String() string {
	if m < OutputAll || m > OutputNone {
		return "unknown"
	}
	return OutputModeNames[m]
}
