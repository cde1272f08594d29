// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/dapaulid/stressy/internal/logfile"
	"github.com/dapaulid/stressy/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("round tests drive /bin/sh")
	}
}

func TestRoundSuccess(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cfg := &RunConfig{Command: "true", Processes: 2, Output: OutputNone}
	outcome := NewRoundRunner(cfg, nil).RunRound(context.Background(), 1)

	assert.False(t, outcome.Cancelled)
	assert.True(t, outcome.Success(), "expected round to pass")
	require.Len(t, outcome.Processes, 2)

	for i, p := range outcome.Processes {
		assert.Equal(t, i, p.Index, "outcomes must be in launch order")
		assert.Equal(t, 0, p.ExitCode)
		assert.False(t, p.Killed)
		assert.True(t, p.Success())
	}
}

func TestRoundFailureExitCode(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cfg := &RunConfig{Command: "exit 7", Processes: 1, Output: OutputNone}
	outcome := NewRoundRunner(cfg, nil).RunRound(context.Background(), 1)

	assert.False(t, outcome.Success(), "expected round to fail")
	require.Len(t, outcome.Processes, 1)
	assert.Equal(t, 7, outcome.Processes[0].ExitCode)
	assert.False(t, outcome.Processes[0].Killed)
}

func TestRoundSuccessIsAndOfProcesses(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	// mkdir is atomic, so exactly one of the three processes wins.
	lock := filepath.Join(t.TempDir(), "lock")
	cfg := &RunConfig{Command: "mkdir " + lock, Processes: 3, Output: OutputNone}
	outcome := NewRoundRunner(cfg, nil).RunRound(context.Background(), 1)

	assert.False(t, outcome.Success(), "one failed process must fail the round")
	require.Len(t, outcome.Processes, 3)

	succeeded := 0
	for _, p := range outcome.Processes {
		if p.Success() {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one process should have created the directory")
}

func TestRoundTimeoutKillsProcess(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	cfg := &RunConfig{
		Command:   "sleep 30",
		Processes: 1,
		Timeout:   200 * time.Millisecond,
		Output:    OutputNone,
	}

	start := time.Now()
	outcome := NewRoundRunner(cfg, nil).RunRound(context.Background(), 1)

	assert.Less(t, time.Since(start), 5*time.Second, "kill must not wait for the command")
	assert.False(t, outcome.Success())
	require.Len(t, outcome.Processes, 1)
	assert.True(t, outcome.Processes[0].Killed, "expected the process to be killed")
	assert.Equal(t, -1, outcome.Processes[0].ExitCode)
}

func TestRoundTimeoutBudgetIsShared(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	// With a per-process budget five sleeps would take five timeouts; the
	// shared budget kills every later process as soon as the first one
	// exhausts it.
	cfg := &RunConfig{
		Command:   "sleep 30",
		Processes: 5,
		Timeout:   600 * time.Millisecond,
		Output:    OutputNone,
	}

	start := time.Now()
	outcome := NewRoundRunner(cfg, nil).RunRound(context.Background(), 1)

	assert.Less(t, time.Since(start), 2*time.Second, "budget must be shared across the round")
	require.Len(t, outcome.Processes, 5)
	for _, p := range outcome.Processes {
		assert.True(t, p.Killed, "process %d should have been killed", p.Index)
	}
}

func TestRoundCancelled(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(100*time.Millisecond, cancel)
	defer timer.Stop()
	defer cancel()

	cfg := &RunConfig{Command: "sleep 30", Processes: 2, Output: OutputNone}

	start := time.Now()
	outcome := NewRoundRunner(cfg, nil).RunRound(ctx, 1)

	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must unwind the wait")
	assert.True(t, outcome.Cancelled, "expected a cancelled round")
}

func TestRoundFileModePromotesLogs(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)
	t.Chdir(t.TempDir())

	cfg := &RunConfig{Command: "echo hello", Processes: 2, Output: OutputFile}
	outcome := NewRoundRunner(cfg, nil).RunRound(context.Background(), 1)

	assert.True(t, outcome.Success())

	for i := range 2 {
		data, err := os.ReadFile(logfile.PassedName(i))
		require.NoError(t, err, "expected a good log for process %d", i)
		content := string(data)
		assert.Contains(t, content, "echo hello", "log should start with the command echo")
		assert.Contains(t, content, "hello\n", "log should hold the process output")
		assert.Contains(t, content, "exited with code 0 on", "log should end with the exit line")
	}

	matches, err := filepath.Glob(".stress_*.log")
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary logs must be cleaned up")
}

func TestRoundFileModeFailedLog(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)
	t.Chdir(t.TempDir())

	cfg := &RunConfig{Command: "echo boom; exit 3", Processes: 1, Output: OutputFile}
	outcome := NewRoundRunner(cfg, nil).RunRound(context.Background(), 1)

	assert.False(t, outcome.Success())

	data, err := os.ReadFile(logfile.FailedName(0))
	require.NoError(t, err, "expected a bad log")
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "exited with code 3 on")

	_, err = os.Stat(logfile.PassedName(0))
	assert.True(t, os.IsNotExist(err), "a failed process must not leave a good log")
}

func TestRoundFailModeCapturesOutput(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	rep := &recordingReporter{}
	cfg := &RunConfig{Command: "echo boom; echo hiss >&2; exit 3", Processes: 1, Output: OutputFail}
	outcome := NewRoundRunner(cfg, rep).RunRound(context.Background(), 1)

	assert.False(t, outcome.Success())

	outputs := rep.byType(progress.EventProcessOutput)
	require.Len(t, outputs, 1, "expected one output dump")
	assert.Contains(t, outputs[0].Data.Output, "boom")
	assert.Contains(t, outputs[0].Data.Output, "hiss", "stderr must share the captured stream")
	assert.Equal(t, "hiss", outputs[0].Data.LastLine)

	exits := rep.byType(progress.EventProcessExited)
	require.Len(t, exits, 1)
	assert.Equal(t, 3, exits[0].Data.ExitCode)
}

func TestRoundFailModeNoDumpOnSuccess(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	rep := &recordingReporter{}
	cfg := &RunConfig{Command: "echo quiet", Processes: 1, Output: OutputFail}
	outcome := NewRoundRunner(cfg, rep).RunRound(context.Background(), 1)

	assert.True(t, outcome.Success())
	assert.Empty(t, rep.byType(progress.EventProcessOutput), "passing output must be discarded")
}

func TestRoundEmitsProcessEvents(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	rep := &recordingReporter{}
	cfg := &RunConfig{Command: "true", Processes: 2, Output: OutputNone}
	NewRoundRunner(cfg, rep).RunRound(context.Background(), 1)

	started := rep.byType(progress.EventProcessStarted)
	require.Len(t, started, 2)
	for i, ev := range started {
		assert.Equal(t, i, ev.Data.ProcessIndex)
		assert.Equal(t, "true", ev.Data.Command)
	}

	exited := rep.byType(progress.EventProcessExited)
	require.Len(t, exited, 2)
	for i, ev := range exited {
		assert.Equal(t, i, ev.Data.ProcessIndex, "exits must be observed in launch order")
		assert.False(t, ev.Data.FinishedAt.IsZero())
	}
}
