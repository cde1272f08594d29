// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dapaulid/stressy/internal/units"
)

var (
	commandStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

var tableHeaders = []string{"started on", "duration", "proc", "pass", "fail", "result"}

// statusColumn is the index of the result column, whose cells are coloured by
// status name.
const statusColumn = 5

// Render formats the groups as one table per command, each under a command
// heading. It returns a placeholder message when there are no groups.
func Render(groups []Group) string {
	if len(groups) == 0 {
		return "no results available for this command\n"
	}
	var sb strings.Builder
	for i, g := range groups {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(commandStyle.Render(g.Command))
		sb.WriteString("\n")
		sb.WriteString(renderGroup(g))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderGroup(g Group) string {
	rows := make([][]string, 0, len(g.Entries))
	for _, e := range g.Entries {
		rows = append(rows, []string{
			units.FormatDateTime(e.StartedOn),
			e.Duration,
			strconv.Itoa(e.Processes),
			units.FormatCount(e.PassedRuns),
			units.FormatCount(e.FailedRuns),
			e.Status,
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			style := cellStyle
			if col > 0 && col < statusColumn {
				style = style.Align(lipgloss.Right)
			}
			if col == statusColumn && row >= 0 && row < len(g.Entries) {
				style = style.Inherit(statusStyle(g.Entries[row].Status))
			}
			return style
		})
	return t.Render()
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "PASSED":
		return passedStyle
	case "CANCELLED":
		return stoppedStyle
	default:
		return failedStyle
	}
}
