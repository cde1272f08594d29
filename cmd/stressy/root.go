// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dapaulid/stressy/internal/config"
	"github.com/dapaulid/stressy/internal/ctxlog"
	"github.com/dapaulid/stressy/internal/history"
	"github.com/dapaulid/stressy/internal/stress"
	"github.com/dapaulid/stressy/internal/term"
	"github.com/dapaulid/stressy/internal/tui"
	"github.com/dapaulid/stressy/internal/units"
	"github.com/urfave/cli/v3"
)

const (
	runsFlag         = "runs"
	processesFlag    = "processes"
	timeoutFlag      = "timeout"
	sleepFlag        = "sleep"
	outputFlag       = "output"
	continueFlag     = "continue"
	tuiFlag          = "tui"
	resultsFlag      = "results"
	clearResultsFlag = "clear-results"
	yesFlag          = "yes"
	cliExitStr       = ""
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "stressy",
	Usage:     "repeatedly run a command until failure",
	UsageText: "stressy [options] [--] command...",
	Description: `Stressy repeatedly runs a shell command until it fails, a run limit is
reached or the test is cancelled. Each run can fan the command out to several
parallel processes sharing one timeout budget, capture or redirect the command
output, and record the outcome in a persistent result history.`,
	Copyright: "Copyright (c) dapaulid 2025. All rights reserved.",
	Authors: []any{
		"dapaulid",
	},
	EnableShellCompletion: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    runsFlag,
			Aliases: []string{"n"},
			Usage: "number of repetitions, accepts unit counts like \"10k\"; " +
				"repeat until failure if not specified",
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:    processesFlag,
			Aliases: []string{"p"},
			Usage:   "number of processes to run the command in parallel",
			Value:   1,
		},
		&cli.StringFlag{
			Name:     timeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "timeout for the command to complete, units syntax (\"30s\", \"2min\")",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     sleepFlag,
			Aliases:  []string{"s"},
			Usage:    "duration to wait before the next run, units syntax",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:        outputFlag,
			Aliases:     []string{"o"},
			Usage:       "destination for command output: all, fail, file or none",
			DefaultText: "all",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:     continueFlag,
			Aliases:  []string{"c"},
			Usage:    "continue testing after the first failure",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     tuiFlag,
			Usage:    "show an interactive progress UI while the test runs",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:    resultsFlag,
			Aliases: []string{"r"},
			Usage:   "print previous results for the given command, then exit",
		},
		&cli.BoolFlag{
			Name:  clearResultsFlag,
			Usage: "clear previous results for the given command, then exit",
		},
		&cli.BoolFlag{
			Name:    yesFlag,
			Aliases: []string{"y"},
			Usage:   "assume yes, skip the confirmation prompt",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("starting")

	defaultsPath, err := config.DefaultsPath()
	if err != nil {
		logger.Debug("no user config dir", "error", err)
	}

	var defaults config.Defaults

	if defaultsPath != "" {
		defaults, err = config.LoadDefaults(ctx, defaultsPath)
		if err != nil {
			return err
		}
	}

	store := history.NewStore(historyPath(defaults))

	// The history queries short-circuit without ever running the command.
	if cmd.Bool(resultsFlag) {
		return printResults(ctx, cmd, store)
	}

	if cmd.Bool(clearResultsFlag) {
		return clearResults(ctx, cmd, store)
	}

	flags := gatherFlags(cmd)

	if len(flags.Command) == 0 {
		cli.ShowAppHelp(cmd) //nolint:errcheck

		return cli.Exit(cliExitStr, stress.StatusError.ExitCode())
	}

	cfg, err := config.Build(ctx, defaults, flags)
	if err != nil {
		return err
	}

	result, err := runTest(ctx, cmd, cfg, cmd.Bool(tuiFlag))
	if err != nil {
		return err
	}

	// Record the outcome after the summary, never on configuration errors.
	if err := store.Append(ctx, historyEntry(cfg, result)); err != nil {
		logger.Warn("failed to record result", "error", err)
	}

	if result.Status != stress.StatusPassed {
		return cli.Exit(cliExitStr, result.Status.ExitCode())
	}

	return nil
}

// runTest executes the repetition loop with the console renderer, or under
// the TUI when requested.
func runTest(
	ctx context.Context, cmd *cli.Command, cfg stress.RunConfig, useTUI bool,
) (stress.Result, error) {
	if !useTUI {
		reporter := term.NewConsoleReporter(cmd.Writer, &cfg)
		loop := stress.NewLoop(cfg, stress.WithReporter(reporter))

		result := loop.Run(ctx)

		reporter.Finish(result.Status)
		reporter.Summary(result)

		return result, nil
	}

	// While the TUI owns the screen, log records collect in a buffer that is
	// flushed once the alternate screen has been restored.
	tuiLogger, logBuf := ctxlog.NewBuffered()
	tuiCtx := ctxlog.New(ctx, tuiLogger)

	runner := tui.NewRunner(&cfg)
	loop := stress.NewLoop(cfg, stress.WithReporter(runner.GetReporter()))

	result, err := runner.Run(tuiCtx, loop)

	logBuf.WriteTo(cmd.ErrWriter) //nolint:errcheck

	if err != nil {
		return result, fmt.Errorf("failed to run the TUI: %w", err)
	}

	// Repeat the summary on the regular screen so it survives the TUI.
	term.NewConsoleReporter(cmd.Writer, &cfg).Summary(result)

	return result, nil
}

// gatherFlags collects the raw command line values for the config builder.
// The Set markers let file defaults fill in only the flags the user did not
// give explicitly.
func gatherFlags(cmd *cli.Command) config.Flags {
	return config.Flags{
		Command:      cmd.Args().Slice(),
		Runs:         cmd.String(runsFlag),
		RunsSet:      cmd.IsSet(runsFlag),
		Processes:    cmd.Int(processesFlag),
		ProcessesSet: cmd.IsSet(processesFlag),
		Timeout:      cmd.String(timeoutFlag),
		TimeoutSet:   cmd.IsSet(timeoutFlag),
		Sleep:        cmd.String(sleepFlag),
		SleepSet:     cmd.IsSet(sleepFlag),
		Output:       cmd.String(outputFlag),
		OutputSet:    cmd.IsSet(outputFlag),
		Continue:     cmd.Bool(continueFlag),
		ContinueSet:  cmd.IsSet(continueFlag),
		TUI:          cmd.Bool(tuiFlag),
	}
}

// historyPath returns the results file location, honouring an override from
// the defaults file.
func historyPath(d config.Defaults) string {
	if d.HistoryFile != "" {
		return d.HistoryFile
	}

	return history.DefaultPath()
}

// historyEntry converts a finished test into its history record.
func historyEntry(cfg stress.RunConfig, result stress.Result) history.Entry {
	return history.Entry{
		Command:    cfg.Command,
		StartedOn:  result.StartedOn,
		Duration:   units.FormatDuration(result.Duration),
		Processes:  cfg.Processes,
		PassedRuns: result.PassedRuns,
		FailedRuns: result.FailedRuns,
		Status:     result.Status.String(),
	}
}
