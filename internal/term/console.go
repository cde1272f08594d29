// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package term

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/dapaulid/stressy/internal/color"
	"github.com/dapaulid/stressy/internal/progress"
	"github.com/dapaulid/stressy/internal/statusline"
	"github.com/dapaulid/stressy/internal/stress"
	"github.com/dapaulid/stressy/internal/units"
)

// bannerWidth is the width of the horizontal rule framing the run banner in
// all mode.
const bannerWidth = 80

var _ progress.ProgressReporter = (*ConsoleReporter)(nil)

// ConsoleReporter renders progress events as terminal output: a bordered
// banner per run in all mode, an overwritten status line otherwise, and
// per-process diagnostics for failures.
type ConsoleReporter struct {
	out  io.Writer
	line *statusline.Printer
	cfg  *stress.RunConfig
}

// NewConsoleReporter creates a console renderer for cfg writing to w.
func NewConsoleReporter(w io.Writer, cfg *stress.RunConfig) *ConsoleReporter {
	return &ConsoleReporter{
		out:  w,
		line: statusline.New(w),
		cfg:  cfg,
	}
}

// Report implements the ProgressReporter interface. It must only be called
// from the goroutine driving the loop; rendering is single-writer.
func (c *ConsoleReporter) Report(event progress.ProgressEvent) {
	d := event.Data
	switch event.Type {
	case progress.EventRunStarted:
		c.runStarted(d)
	case progress.EventProcessOutput:
		c.println(strings.TrimRightFunc(d.Output, unicode.IsSpace))
	case progress.EventProcessExited:
		c.processExited(d)
	case progress.EventSleeping:
		info := "sleeping for " + units.FormatDuration(d.Remaining)
		c.line.Printf("[ %s ]", color.Colorize(info, color.Bold, color.FgWhite))
	case progress.EventSleepCompleted:
		c.line.Print("")
	}
}

// Close implements the ProgressReporter interface.
func (c *ConsoleReporter) Close() {}

func (c *ConsoleReporter) runStarted(d progress.EventData) {
	info := fmt.Sprintf("run #%d", d.Run)
	if d.RunLimit > 0 {
		info += fmt.Sprintf(" of %d", d.RunLimit)
	}
	info += fmt.Sprintf(", %d failures since %s", d.Failed, units.FormatDuration(d.Elapsed))

	if c.cfg.Output == stress.OutputAll {
		hline := strings.Repeat("-", bannerWidth)
		padded := fmt.Sprintf("%-*s", bannerWidth-4, info)
		fmt.Fprintln(c.out, hline)
		fmt.Fprintf(c.out, "| %s |\n", color.Colorize(padded, color.Bold, color.FgWhite))
		fmt.Fprintln(c.out, hline)
		return
	}

	c.line.Printf("[ %s ]", color.Colorize(info, color.Bold, color.FgWhite))
}

// processExited prints the termination diagnostic for failed processes. In
// file mode the diagnostic went into the process log, in none mode output is
// suppressed entirely, and successful exits stay quiet everywhere.
func (c *ConsoleReporter) processExited(d progress.EventData) {
	if c.cfg.Output == stress.OutputFile || c.cfg.Output == stress.OutputNone {
		return
	}
	if d.ExitCode == 0 && !d.Killed {
		return
	}
	msg := stress.ExitMessage(d.ExitCode, d.Killed, d.Timeout, d.FinishedAt)
	c.println(stress.ProcessLine(d.ProcessIndex, msg))
}

// println finishes any in-progress status line before writing an ordinary
// line, so the two never collide.
func (c *ConsoleReporter) println(msg string) {
	c.line.Complete(false)
	fmt.Fprintln(c.out, msg)
}

// Finish settles the status line after the loop has terminated: all mode and
// a failure that just dumped output get a separating blank line, everything
// else clears the transient status text.
func (c *ConsoleReporter) Finish(status stress.Status) {
	if c.cfg.Output == stress.OutputAll ||
		(c.cfg.Output == stress.OutputFail && status == stress.StatusFailed) {
		fmt.Fprintln(c.out)
		return
	}
	c.line.Complete(true)
}

// Summary writes the one-line coloured test summary.
func (c *ConsoleReporter) Summary(result stress.Result) {
	summary := SummaryText(result, c.cfg.Processes)
	fmt.Fprintln(c.out, color.Colorize(summary, color.Bold, result.Status.Color()))
}

// SummaryText builds the closing summary line for a finished test.
func SummaryText(result stress.Result, processes int) string {
	var summary string
	switch result.Status {
	case stress.StatusPassed:
		summary = fmt.Sprintf("successfully completed all %d runs", result.PassedRuns)
	case stress.StatusFailed:
		if result.FailedRuns == 1 {
			summary = fmt.Sprintf("FAILED after %d successful runs", result.PassedRuns)
		} else {
			summary = fmt.Sprintf("FAILED with %d failed and %d successful runs",
				result.FailedRuns, result.PassedRuns)
		}
	case stress.StatusCancelled:
		summary = fmt.Sprintf("cancelled by user after %d failed and %d successful runs",
			result.FailedRuns, result.PassedRuns)
	default:
		summary = fmt.Sprintf("finished with unexpected status %s", result.Status)
	}

	if processes > 1 {
		summary += fmt.Sprintf(" on %d processes", processes)
	}
	summary += ", took " + units.FormatDuration(result.Duration)

	return summary
}
