// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dapaulid/stressy/internal/ctxlog"
	"github.com/spf13/afero"
)

// FsFactory is a factory function that returns an afero.Fs instance.
// It is defined as a variable so that it can be overridden in tests.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

const (
	// fileName is the name of the results file inside the user data directory.
	fileName = "stressy.tsv"
	// fieldCount is the number of tab-separated fields in a results line.
	fieldCount = 7
	// legacyTimeFormat parses timestamps written without a zone offset.
	legacyTimeFormat = "2006-01-02T15:04:05.999999"
)

var (
	// ErrReadResults is returned when the results file cannot be read.
	ErrReadResults = errors.New("failed to read results file")
	// ErrWriteResults is returned when the results file cannot be written.
	ErrWriteResults = errors.New("failed to write results file")
)

// Entry is a single persisted stress run.
type Entry struct {
	// Command is the shell command that was stressed.
	Command string
	// StartedOn is the wall-clock time the run started.
	StartedOn time.Time
	// Duration is the total run duration, already formatted for display.
	Duration string
	// Processes is the number of parallel processes per round.
	Processes int
	// PassedRuns is the number of rounds where every process succeeded.
	PassedRuns int64
	// FailedRuns is the number of rounds where at least one process failed.
	FailedRuns int64
	// Status is the terminal status name, e.g. "PASSED" or "CANCELLED".
	Status string
}

// Group is the set of entries recorded for one command, oldest first.
type Group struct {
	Command string
	Entries []Entry
}

// ConfirmFunc is consulted before entries are removed. It receives the number
// of matching entries and the total number of entries and returns true to
// proceed with the removal.
type ConfirmFunc func(remove, total int) bool

// Store reads and writes the results file.
type Store struct {
	path string
}

// NewStore returns a store backed by the results file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the results file.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the platform default location of the results file:
// %APPDATA% on Windows, $XDG_DATA_HOME or ~/.local/share elsewhere.
func DefaultPath() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, fileName)
		}
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, fileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fileName
	}
	return filepath.Join(home, ".local", "share", fileName)
}

// Append adds one entry to the end of the results file, creating the file and
// its parent directory if needed.
func (s *Store) Append(ctx context.Context, e Entry) error {
	fs := FsFactory()
	if dir := filepath.Dir(s.path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteResults, err)
		}
	}
	f, err := fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteResults, err)
	}
	defer f.Close() //nolint:errcheck
	if _, err := f.WriteString(marshalEntry(e) + "\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteResults, err)
	}
	ctxlog.Debug(ctx, "appended result", "path", s.path, "command", e.Command, "status", e.Status)
	return nil
}

// List returns the entries whose command starts with prefix, grouped by
// command in first-seen order. An empty prefix matches every entry. Lines
// that cannot be parsed are skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]Group, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	var groups []Group
	index := make(map[string]int)
	for _, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			ctxlog.Debug(ctx, "skipping malformed results line", "path", s.path, "error", err)
			continue
		}
		i, ok := index[entry.Command]
		if !ok {
			i = len(groups)
			index[entry.Command] = i
			groups = append(groups, Group{Command: entry.Command})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}
	return groups, nil
}

// Clear removes the entries whose command starts with prefix and rewrites the
// results file with the remainder. An empty prefix matches every entry. When
// confirm is non-nil it is consulted before anything is removed; a false
// return leaves the file untouched. Clear reports how many entries matched
// and how many the file held in total.
func (s *Store) Clear(ctx context.Context, prefix string, confirm ConfirmFunc) (removed, total int, err error) {
	lines, err := s.readLines()
	if err != nil {
		return 0, 0, err
	}
	total = len(lines)
	remaining := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			removed++
			continue
		}
		remaining = append(remaining, line)
	}
	if removed == 0 {
		return 0, total, nil
	}
	if confirm != nil && !confirm(removed, total) {
		return 0, total, nil
	}
	var sb strings.Builder
	for _, line := range remaining {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if err := afero.WriteFile(FsFactory(), s.path, []byte(sb.String()), 0o644); err != nil {
		return 0, total, fmt.Errorf("%w: %w", ErrWriteResults, err)
	}
	ctxlog.Debug(ctx, "removed results", "path", s.path, "removed", removed, "total", total)
	return removed, total, nil
}

// readLines returns the non-empty lines of the results file. A missing file
// yields no lines and no error.
func (s *Store) readLines() ([]string, error) {
	data, err := afero.ReadFile(FsFactory(), s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrReadResults, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func marshalEntry(e Entry) string {
	return strings.Join([]string{
		e.Command,
		e.StartedOn.Format(time.RFC3339Nano),
		e.Duration,
		strconv.Itoa(e.Processes),
		strconv.FormatInt(e.PassedRuns, 10),
		strconv.FormatInt(e.FailedRuns, 10),
		e.Status,
	}, "\t")
}

func parseEntry(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != fieldCount {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}
	startedOn, err := parseTime(fields[1])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid start time %q: %w", fields[1], err)
	}
	processes, err := strconv.Atoi(fields[3])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid process count %q: %w", fields[3], err)
	}
	passed, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid passed count %q: %w", fields[4], err)
	}
	failed, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid failed count %q: %w", fields[5], err)
	}
	return Entry{
		Command:    fields[0],
		StartedOn:  startedOn,
		Duration:   fields[2],
		Processes:  processes,
		PassedRuns: passed,
		FailedRuns: failed,
		Status:     fields[6],
	}, nil
}

// parseTime accepts RFC 3339 timestamps as written by Append, falling back to
// the zone-less format older results files were recorded with.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(legacyTimeFormat, s, time.Local)
}
