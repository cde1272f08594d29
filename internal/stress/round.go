// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dapaulid/stressy/internal/capture"
	"github.com/dapaulid/stressy/internal/ctxlog"
	"github.com/dapaulid/stressy/internal/logfile"
	"github.com/dapaulid/stressy/internal/progress"
	"github.com/dapaulid/stressy/internal/units"
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrNullDevice is returned when the null device could not be opened.
	ErrNullDevice = errors.New("failed to open null device")

	// errKilledOnTimeout marks a process killed because the round's shared
	// timeout budget ran out.
	errKilledOnTimeout = errors.New("killed on timeout")
)

// RoundRunner executes one round: all parallel processes of a single
// repetition of the command.
type RoundRunner interface {
	// RunRound runs round number run and reports the per-process outcomes.
	RunRound(ctx context.Context, run int64) RoundOutcome
}

// ExitMessage renders the one-line termination diagnostic for a process.
func ExitMessage(exitCode int, killed bool, timeout time.Duration, finishedAt time.Time) string {
	if killed {
		return fmt.Sprintf("killed due to timeout of %0.3f seconds", timeout.Seconds())
	}
	return fmt.Sprintf("exited with code %d on %s", exitCode, units.FormatDateTime(finishedAt))
}

// ProcessLine prefixes a per-process diagnostic with its 0-based index.
func ProcessLine(index int, msg string) string {
	return fmt.Sprintf("[process %d] %s", index, msg)
}

// childProcess tracks one launched process and the resources attached to it.
type childProcess struct {
	index     int
	ps        *os.Process
	launchErr error
	logFile   *os.File        // open per-process log, file mode only
	pipeR     *os.File        // read end of the output pipe, fail mode only
	capture   *capture.Buffer // combined output drain, fail mode only
	waited    bool
	promoted  bool
}

// roundRunner is the OS-process implementation of RoundRunner.
type roundRunner struct {
	cfg      *RunConfig
	reporter progress.ProgressReporter
}

// NewRoundRunner returns a RoundRunner that launches cfg.Processes children
// per round and publishes per-process events through reporter.
func NewRoundRunner(cfg *RunConfig, reporter progress.ProgressReporter) RoundRunner {
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}
	return &roundRunner{cfg: cfg, reporter: reporter}
}

// RunRound implements the RoundRunner interface. Every process is launched
// before any is waited on, then completions are observed in launch order
// under the shared timeout budget.
func (r *roundRunner) RunRound(ctx context.Context, run int64) RoundOutcome {
	logger := ctxlog.Logger(ctx).With("run", run)

	var devNull *os.File
	var devNullErr error
	if r.cfg.Output == OutputNone {
		devNull, devNullErr = os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if devNullErr != nil {
			devNullErr = errors.Join(ErrNullDevice, devNullErr)
		}
	}

	shell, argv := shellInvocation(ctx, r.cfg.Command)
	logger.Debug("round info", "shell", shell, "command", r.cfg.Command, "processes", r.cfg.Processes)

	procs := make([]*childProcess, 0, r.cfg.Processes)
	defer func() {
		r.cleanup(ctx, procs, devNull)
	}()

	roundStart := time.Now()

	// Launch every process before waiting on any, so the children genuinely
	// overlap in execution.
	for i := range r.cfg.Processes {
		if devNullErr != nil {
			procs = append(procs, &childProcess{index: i, launchErr: devNullErr})
			continue
		}
		procs = append(procs, r.launch(ctx, shell, argv, i, devNull))
	}

	outcome := RoundOutcome{Processes: make([]ProcessOutcome, 0, len(procs))}
	for _, p := range procs {
		if ctx.Err() != nil {
			outcome.Cancelled = true
			return outcome
		}
		po, cancelled := r.wait(ctx, p, roundStart)
		if cancelled {
			outcome.Cancelled = true
			return outcome
		}
		outcome.Processes = append(outcome.Processes, po)
	}
	return outcome
}

// launch starts one child process with its output wired up according to the
// configured output mode. Launch failures are recorded on the returned
// childProcess rather than aborting the round.
func (r *roundRunner) launch(ctx context.Context, shell string, argv []string, index int, devNull *os.File) *childProcess {
	logger := ctxlog.Logger(ctx)
	p := &childProcess{index: index}

	var files []*os.File
	var pipeW *os.File

	switch r.cfg.Output {
	case OutputAll:
		files = []*os.File{os.Stdin, os.Stdout, os.Stderr}
	case OutputFail:
		rOut, wOut, err := os.Pipe()
		if err != nil {
			p.launchErr = errors.Join(ErrFailedToCreatePipe, err)
			return p
		}
		p.pipeR = rOut
		p.capture = capture.Start(rOut)
		pipeW = wOut
		// stderr shares the pipe so the dump interleaves both streams.
		files = []*os.File{os.Stdin, wOut, wOut}
	case OutputFile:
		f, err := os.Create(logfile.TempName(index))
		if err != nil {
			p.launchErr = errors.Join(ErrCouldNotStartProcess, err)
			return p
		}
		p.logFile = f
		fmt.Fprintf(f, "%s\n", ProcessLine(index, r.cfg.Command)) //nolint:errcheck
		files = []*os.File{os.Stdin, f, f}
	case OutputNone:
		files = []*os.File{os.Stdin, devNull, devNull}
	}

	ps, err := os.StartProcess(shell, argv, &os.ProcAttr{
		Env:   os.Environ(),
		Files: files,
	})
	if pipeW != nil {
		// The child holds its own copy; closing ours lets the drain see EOF
		// as soon as the child exits.
		_ = pipeW.Close()
	}
	if err != nil {
		p.launchErr = errors.Join(ErrCouldNotStartProcess, err)
		logger.Error("failed to start process", "index", index, "error", err)
		return p
	}

	p.ps = ps
	logger.Debug("process started", "index", index, "pid", ps.Pid)

	r.reporter.Report(progress.ProgressEvent{
		Type:      progress.EventProcessStarted,
		Timestamp: time.Now(),
		Data: progress.EventData{
			ProcessIndex: index,
			Command:      r.cfg.Command,
		},
	})

	return p
}

// wait blocks until process p finishes, killing it when the round's shared
// timeout budget is spent. The second return value is true when the wait was
// abandoned because ctx was cancelled.
func (r *roundRunner) wait(ctx context.Context, p *childProcess, roundStart time.Time) (ProcessOutcome, bool) {
	logger := ctxlog.Logger(ctx)
	out := ProcessOutcome{Index: p.index, ExitCode: -1}

	if p.ps == nil {
		p.waited = true
		out.Err = p.launchErr
		out.FinishedAt = time.Now()
		r.finishProcess(ctx, p, &out)
		return out, false
	}

	// Remaining budget is measured from round start, so earlier slow
	// processes eat into the budget of later ones.
	var timerC <-chan time.Time
	if r.cfg.Timeout > 0 {
		remaining := r.cfg.Timeout - time.Since(roundStart)
		if remaining < 0 {
			remaining = 0
		}
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		timerC = timer.C
	}

	done := make(chan struct{})
	killReason := make(chan error, 1)

	// Watchdog for the timeout budget and context cancellation. The reason
	// is recorded before the kill so the waiter observes it deterministically.
	go func() {
		select {
		case <-timerC:
			killReason <- errKilledOnTimeout
			killPs(ctx, p.ps)
		case <-ctx.Done():
			killReason <- ctx.Err()
			killPs(ctx, p.ps)
		case <-done:
		}
	}()

	state, psErr := p.ps.Wait()
	close(done)
	p.waited = true
	out.FinishedAt = time.Now()

	select {
	case reason := <-killReason:
		if !errors.Is(reason, errKilledOnTimeout) {
			// Cancelled by the user: suppress any further output for this
			// round and let the loop finalize the result.
			return out, true
		}
		out.Killed = true
	default:
		if state != nil {
			out.ExitCode = state.ExitCode()
		}
		out.Err = psErr
	}

	logger.Debug("process finished",
		"index", p.index, "exitCode", out.ExitCode, "killed", out.Killed, "error", out.Err)

	r.finishProcess(ctx, p, &out)
	return out, false
}

// finishProcess publishes the post-wait events for one process and, in file
// mode, finalizes its log.
func (r *roundRunner) finishProcess(ctx context.Context, p *childProcess, out *ProcessOutcome) {
	success := out.Success()

	if r.cfg.Output == OutputFail && p.capture != nil && !success {
		if err := p.capture.Wait(); err != nil {
			ctxlog.Warn(ctx, "failed to read process output", "index", p.index, "error", err)
		}
		if p.capture.Truncated() {
			ctxlog.Warn(ctx, "process output exceeds max size",
				"index", p.index, "maxBytes", capture.MaxBufferSize)
		}
		r.reporter.Report(progress.ProgressEvent{
			Type:      progress.EventProcessOutput,
			Timestamp: time.Now(),
			Data: progress.EventData{
				ProcessIndex: p.index,
				Output:       p.capture.String(),
				LastLine:     p.capture.LastLine(0),
			},
		})
	}

	r.reporter.Report(progress.ProgressEvent{
		Type:      progress.EventProcessExited,
		Timestamp: time.Now(),
		Data: progress.EventData{
			ProcessIndex: p.index,
			Command:      r.cfg.Command,
			ExitCode:     out.ExitCode,
			Killed:       out.Killed,
			Timeout:      r.cfg.Timeout,
			FinishedAt:   out.FinishedAt,
		},
	})

	if r.cfg.Output == OutputFile && p.logFile != nil {
		msg := ExitMessage(out.ExitCode, out.Killed, r.cfg.Timeout, out.FinishedAt)
		fmt.Fprintf(p.logFile, "%s\n", ProcessLine(p.index, msg)) //nolint:errcheck
		_ = p.logFile.Close()
		p.logFile = nil
		if err := logfile.Promote(ctx, p.index, success); err != nil {
			ctxlog.Warn(ctx, "failed to finalize log file", "index", p.index, "error", err)
		} else {
			p.promoted = true
		}
	}
}

// cleanup releases whatever the round still holds: it kills and reaps
// processes that were never waited on, closes remaining handles and removes
// leftover temporary log files.
func (r *roundRunner) cleanup(ctx context.Context, procs []*childProcess, devNull *os.File) {
	for _, p := range procs {
		if p.ps != nil && !p.waited {
			killPs(ctx, p.ps)
			_, _ = p.ps.Wait()
		}
		if p.logFile != nil {
			_ = p.logFile.Close()
		}
		if p.pipeR != nil {
			_ = p.pipeR.Close()
			if p.capture != nil {
				_ = p.capture.Wait()
			}
		}
	}
	if devNull != nil {
		_ = devNull.Close()
	}
	if r.cfg.Output == OutputFile {
		if err := logfile.SweepTemp(ctx); err != nil {
			ctxlog.Warn(ctx, "failed to remove temporary log files", "error", err)
		}
	}
}

// killPs kills the process, tolerating one that has already finished.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Logger(ctx).Debug("process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Logger(ctx).Error("process kill error", "pid", ps.Pid, "error", err)
		return
	}

	ctxlog.Logger(ctx).Info("process killed", "pid", ps.Pid)
}
