// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logfile owns the per-process log file convention used by the file
// output mode. While a process runs its output goes to a hidden temporary
// file; on completion the file is promoted to a visible "good" or "bad" name
// keyed by process index, keeping only the most recent log of each kind.
package logfile
