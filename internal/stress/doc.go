// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package stress contains the run-orchestration engine: the repetition loop
// that drives execution rounds until a stop condition is met, and the round
// supervisor that fans one round out across parallel child processes under a
// shared timeout budget.
//
// One goroutine drives the loop. Each round launches its processes together
// so they genuinely overlap, then waits on them sequentially in launch order;
// parallelism comes from the operating system scheduling the children, not
// from concurrent waiting logic here. Progress is published as events so the
// console renderer and the TUI can observe a run without the engine knowing
// how it is displayed.
package stress
