// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dapaulid/stressy/internal/progress"
	"github.com/dapaulid/stressy/internal/stress"
	"github.com/dapaulid/stressy/internal/term"
	"github.com/dapaulid/stressy/internal/units"
)

const ellipsis = "…"

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.ProgressEvent
}

// RunCompletedMsg tells the model that the repetition loop has returned.
type RunCompletedMsg struct {
	Result stress.Result
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.stopwatch.Init(),
	)
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.mutex.Unlock()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case stopwatch.TickMsg, stopwatch.StartStopMsg:
		var cmd tea.Cmd
		m.stopwatch, cmd = m.stopwatch.Update(msg)

		return m, cmd

	case ProgressEventMsg:
		return m, m.processProgressEvent(msg.Event)

	case RunCompletedMsg:
		m.mutex.Lock()
		m.completed = true
		m.result = msg.Result
		m.mutex.Unlock()

		return m, m.stopwatch.Stop()
	}

	return m, nil
}

// handleKeyPress processes keyboard input. Leaving the interface while the
// test is still going cancels the run.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.mutex.Lock()
		m.quitting = true
		m.mutex.Unlock()

		return m, tea.Quit
	}

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.quitting {
		return "stopping...\n"
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("stressy"))
	b.WriteString("  ")
	b.WriteString(m.styles.Command.Render(m.cfg.Command))
	b.WriteString("\n\n")

	b.WriteString(m.renderRunLine())
	b.WriteString("\n")
	b.WriteString(m.renderTallies())
	b.WriteString("\n\n")

	for i := range m.procs {
		b.WriteString(m.renderProcess(i))
		b.WriteString("\n")
	}

	if m.lastOutput != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Output.Render(m.lastOutput))
		b.WriteString("\n")
	}

	if m.sleeping && !m.completed {
		b.WriteString("\n")
		b.WriteString(m.styles.Waiting.Render("sleeping for " + units.FormatDuration(m.sleepLeft)))
		b.WriteString("\n")
	}

	if m.completed {
		summary := term.SummaryText(m.result, m.cfg.Processes)

		b.WriteString("\n")
		b.WriteString(m.statusStyle(m.result.Status).Bold(true).Render(summary))
		b.WriteString("\n")
	}

	help := "press q to stop"
	if m.completed {
		help = "press q to quit"
	}

	b.WriteString(m.styles.Help.Render(help))
	b.WriteString("\n")

	return m.fitWidth(b.String())
}

// renderRunLine renders the headline with the current run number and the
// elapsed time.
func (m *Model) renderRunLine() string {
	if m.run == 0 {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Waiting.Render("starting..."))
	}

	info := fmt.Sprintf("run #%d", m.run)
	if m.cfg.Runs > 0 {
		info += fmt.Sprintf(" of %d", m.cfg.Runs)
	}

	if m.completed {
		return m.styles.Label.Render(info)
	}

	elapsed := m.styles.Waiting.Render("elapsed " + units.FormatDuration(m.stopwatch.Elapsed()))

	return fmt.Sprintf("%s %s  %s", m.spinner.View(), m.styles.Label.Render(info), elapsed)
}

// renderTallies renders the passed and failed run counters.
func (m *Model) renderTallies() string {
	passed := fmt.Sprintf("passed %d", m.passed)
	if m.passed > 0 {
		passed = m.styles.Passed.Render(passed)
	} else {
		passed = m.styles.Waiting.Render(passed)
	}

	failed := fmt.Sprintf("failed %d", m.failed)
	if m.failed > 0 {
		failed = m.styles.Failed.Render(failed)
	} else {
		failed = m.styles.Waiting.Render(failed)
	}

	return passed + "   " + failed
}

// renderProcess renders the status row for one process of the current round.
func (m *Model) renderProcess(index int) string {
	p := m.procs[index]
	label := m.styles.Command.Render(fmt.Sprintf("process %d", index))

	var icon, state string

	switch {
	case p.exited && p.killed:
		icon = "❌"
		state = m.styles.Failed.Render(
			fmt.Sprintf("killed due to timeout of %0.3f seconds", m.cfg.Timeout.Seconds()))
	case p.exited && p.exitCode != 0:
		icon = "❌"
		state = m.styles.Failed.Render(fmt.Sprintf("exited with code %d", p.exitCode))
	case p.exited:
		icon = "✅"
		state = m.styles.Passed.Render("exited with code 0")
	case p.started:
		icon = m.spinner.View()
		state = m.styles.Running.Render("running")
	default:
		icon = "⏳"
		state = m.styles.Waiting.Render("waiting")
	}

	return fmt.Sprintf("%s %s %s", icon, label, state)
}

// statusStyle maps a final status to its display style.
func (m *Model) statusStyle(status stress.Status) lipgloss.Style {
	switch status {
	case stress.StatusPassed:
		return m.styles.Passed
	case stress.StatusCancelled:
		return m.styles.Stopped
	default:
		return m.styles.Failed
	}
}

// fitWidth truncates every rendered line to the terminal width.
func (m *Model) fitWidth(view string) string {
	if m.width <= 0 {
		return view
	}

	lines := strings.Split(view, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, ellipsis)
	}

	return strings.Join(lines, "\n")
}
