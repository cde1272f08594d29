// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/dapaulid/stressy/internal/ctxlog"
)

// osExit is a variable so tests can intercept the forced termination.
var osExit = os.Exit

// Watch monitors the signal channel and handles signals.
// The first signal cancels the context so the run can unwind, release its
// processes and log files, and still report a result. A second signal of any
// type skips that cleanup path and terminates the process with exitCode.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc, exitCode int) {
	cancelled := false
	for sig := range sigCh {
		if !cancelled {
			ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, cancelling run", "signal", sig.String())
			cancel()

			cancelled = true

			continue
		}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received second signal, forcefully terminating", "signal", sig.String())
		osExit(exitCode)

		return
	}
}
