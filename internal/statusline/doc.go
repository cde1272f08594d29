// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package statusline renders transient single-line progress text by
// overwriting the current terminal line in place. A Printer tracks the
// visible width of the last line it wrote so that shorter follow-up text
// fully covers the old content. Width accounting is ANSI-aware, so colored
// status text pads correctly.
package statusline
