// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package term renders run progress on a plain terminal. It consumes the
// engine's progress events and owns the single overwriting status line, so
// transient progress text and ordinary output never collide.
package term
