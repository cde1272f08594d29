// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dapaulid/stressy/internal/ctxlog"
	"github.com/dapaulid/stressy/internal/stress"
	"github.com/dapaulid/stressy/internal/units"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// FsFactory is a factory function that returns an afero.Fs instance.
// It is defined as a variable so that it can be overridden in tests.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

const (
	// defaultsDir is the subdirectory of the user config dir holding the
	// defaults file.
	defaultsDir = "stressy"
	// defaultsFile is the name of the defaults file.
	defaultsFile = "stressy.yaml"
)

var (
	// ErrInvalidDefaults is returned when the defaults file cannot be parsed.
	ErrInvalidDefaults = errors.New("invalid defaults file")
	// ErrTUIOutputConflict is returned when the TUI is combined with streaming
	// child output to the terminal.
	ErrTUIOutputConflict = errors.New("the TUI cannot be combined with output mode \"all\"")
)

// Defaults mirrors the optional per-user defaults file. Every field is
// optional; the zero value applies no defaults. Count and duration fields
// are unit expressions, e.g. "10k" or "1min 30s".
type Defaults struct {
	Runs        string `yaml:"runs"`
	Processes   int    `yaml:"processes"`
	Timeout     string `yaml:"timeout"`
	Sleep       string `yaml:"sleep"`
	Output      string `yaml:"output"`
	Continue    *bool  `yaml:"continue"`
	HistoryFile string `yaml:"history_file"`
}

// DefaultsPath returns the platform location of the defaults file, e.g.
// ~/.config/stressy/stressy.yaml on Linux.
func DefaultsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, defaultsDir, defaultsFile), nil
}

// LoadDefaults reads the defaults file at path. A missing file yields zero
// Defaults, not an error.
func LoadDefaults(ctx context.Context, path string) (Defaults, error) {
	d := Defaults{}
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		if os.IsNotExist(err) {
			ctxlog.Debug(ctx, "no defaults file", "path", path)
			return d, nil
		}
		return d, fmt.Errorf("%w: %w", ErrInvalidDefaults, err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("%w: %w", ErrInvalidDefaults, err)
	}
	ctxlog.Debug(ctx, "loaded defaults", "path", path)
	return d, nil
}

// Flags carries the raw command line values, with Set markers distinguishing
// an explicit flag from its built-in default so file defaults only fill the
// gaps.
type Flags struct {
	Command []string

	Runs    string
	RunsSet bool

	Processes    int
	ProcessesSet bool

	Timeout    string
	TimeoutSet bool

	Sleep    string
	SleepSet bool

	Output    string
	OutputSet bool

	Continue    bool
	ContinueSet bool

	TUI bool
}

// Build merges flags over file defaults into a validated RunConfig.
// Precedence per field: explicit flag, then defaults file, then the built-in
// default.
func Build(ctx context.Context, d Defaults, f Flags) (stress.RunConfig, error) {
	cfg := stress.RunConfig{
		Command:   stress.JoinCommand(f.Command),
		Processes: 1,
		Output:    stress.OutputAll,
		Continue:  f.Continue,
	}

	runs := pick(f.RunsSet, f.Runs, d.Runs)
	if runs != "" {
		n, err := units.ParseCount(runs)
		if err != nil {
			return cfg, fmt.Errorf("invalid number of runs: %w", err)
		}
		cfg.Runs = n
	}

	if f.ProcessesSet {
		cfg.Processes = f.Processes
	} else if d.Processes > 0 {
		cfg.Processes = d.Processes
	}

	timeout := pick(f.TimeoutSet, f.Timeout, d.Timeout)
	if timeout != "" {
		t, err := units.ParseDuration(timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.Timeout = t
	}

	sleep := pick(f.SleepSet, f.Sleep, d.Sleep)
	if sleep != "" {
		s, err := units.ParseDuration(sleep)
		if err != nil {
			return cfg, fmt.Errorf("invalid sleep: %w", err)
		}
		cfg.Sleep = s
	}

	output := pick(f.OutputSet, f.Output, d.Output)
	switch {
	case output != "":
		mode, err := stress.ParseOutputMode(output)
		if err != nil {
			return cfg, err
		}
		cfg.Output = mode
	case f.TUI:
		// The TUI owns the terminal, so the implicit default moves from
		// streaming to capture-on-failure.
		cfg.Output = stress.OutputFail
	}

	if !f.ContinueSet && d.Continue != nil {
		cfg.Continue = *d.Continue
	}

	if f.TUI && cfg.Output == stress.OutputAll {
		return cfg, ErrTUIOutputConflict
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	ctxlog.Debug(ctx, "run configuration",
		"command", cfg.Command,
		"runs", cfg.Runs,
		"processes", cfg.Processes,
		"timeout", cfg.Timeout,
		"sleep", cfg.Sleep,
		"output", cfg.Output,
		"continue", cfg.Continue)

	return cfg, nil
}

// pick returns the flag value when it was set explicitly, the file default
// otherwise.
func pick(set bool, flag, file string) string {
	if set {
		return flag
	}
	return file
}
