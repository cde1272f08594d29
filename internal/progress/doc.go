// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress provides real-time progress reporting for stress runs.
// The repetition loop emits events as runs start and finish, processes exit
// and sleeps tick down; renderers subscribe to present them. Events carry
// plain data only so that any frontend can consume them.
package progress
