// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the stressy command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dapaulid/stressy"
	"github.com/dapaulid/stressy/internal/ctxlog"
	"github.com/dapaulid/stressy/internal/signalbroker"
	"github.com/dapaulid/stressy/internal/stress"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.FromEnv())
	defer cancel()

	sigCh := signalbroker.New(ctx)

	// The first signal cancels the run so it can unwind and report, a second
	// one terminates immediately.
	go signalbroker.Watch(ctx, sigCh, cancel, stress.StatusCancelled.ExitCode())

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", stressy.Version, stressy.Commit)

	err := rootCmd.Run(ctx, os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(stress.StatusError.ExitCode())
	}
}
