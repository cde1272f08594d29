// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a real-time terminal user interface for watching a
// stress test as it runs. It shows the current run with live tallies of
// passed and failed runs, the state of every process in the round, and the
// last line of captured output from the most recent failure.
//
// The interface consumes the same progress events as the console renderer,
// so both front ends stay in step with the repetition loop.
package tui
