// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dapaulid/stressy/internal/progress"
	"github.com/dapaulid/stressy/internal/stress"
)

// processState tracks what the interface knows about one child process of
// the current round.
type processState struct {
	started  bool
	exited   bool
	exitCode int
	killed   bool
}

// Model represents the TUI application state. All mutable fields are guarded
// by the mutex because progress events arrive from the goroutine driving the
// repetition loop.
type Model struct {
	cfg    *stress.RunConfig
	styles *Styles

	spinner   spinner.Model
	stopwatch stopwatch.Model

	width  int
	height int

	run        int64
	passed     int64
	failed     int64
	procs      []processState
	lastOutput string
	sleeping   bool
	sleepLeft  time.Duration

	completed bool
	result    stress.Result
	quitting  bool

	mutex sync.RWMutex
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Command lipgloss.Style
	Label   lipgloss.Style
	Waiting lipgloss.Style
	Running lipgloss.Style
	Passed  lipgloss.Style
	Failed  lipgloss.Style
	Stopped lipgloss.Style
	Output  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Command: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
		Waiting: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Passed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Stopped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// NewModel creates a new TUI model for the given run configuration.
func NewModel(cfg *stress.RunConfig) *Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("11"))),
	)

	return &Model{
		cfg:       cfg,
		styles:    NewStyles(),
		spinner:   sp,
		stopwatch: stopwatch.NewWithInterval(time.Second),
		procs:     make([]processState, cfg.Processes),
	}
}

// processProgressEvent folds an incoming progress event into the model state.
func (m *Model) processProgressEvent(event progress.ProgressEvent) tea.Cmd {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	d := event.Data

	switch event.Type {
	case progress.EventRunStarted:
		m.run = d.Run
		m.passed = d.Passed
		m.failed = d.Failed
		m.sleeping = false

		for i := range m.procs {
			m.procs[i] = processState{}
		}

	case progress.EventProcessStarted:
		if p := m.proc(d.ProcessIndex); p != nil {
			p.started = true
		}

	case progress.EventProcessOutput:
		if line := strings.TrimSpace(d.LastLine); line != "" {
			m.lastOutput = line
		}

	case progress.EventProcessExited:
		if p := m.proc(d.ProcessIndex); p != nil {
			p.exited = true
			p.exitCode = d.ExitCode
			p.killed = d.Killed
		}

	case progress.EventRunCompleted:
		m.passed = d.Passed
		m.failed = d.Failed

	case progress.EventSleeping:
		m.sleeping = true
		m.sleepLeft = d.Remaining

	case progress.EventSleepCompleted:
		m.sleeping = false
	}

	return nil
}

// proc returns the state slot for a process index, or nil when out of range.
func (m *Model) proc(index int) *processState {
	if index < 0 || index >= len(m.procs) {
		return nil
	}

	return &m.procs[index]
}
