// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package capture collects child process output into a bounded in-memory
// buffer. Draining happens on a background goroutine while the process runs,
// so a child writing more than the OS pipe buffer can hold never stalls.
// The buffer also tracks the last complete output line for progress display.
package capture
