// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dapaulid/stressy/internal/history"
	"github.com/dapaulid/stressy/internal/stress"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// printResults lists the recorded results whose command starts with the
// given command tokens. Without tokens every result is listed.
func printResults(ctx context.Context, cmd *cli.Command, store *history.Store) error {
	prefix := stress.JoinCommand(cmd.Args().Slice())

	groups, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.Writer, history.Render(groups))

	return nil
}

// clearResults removes the recorded results whose command starts with the
// given command tokens, asking for confirmation first.
func clearResults(ctx context.Context, cmd *cli.Command, store *history.Store) error {
	prefix := stress.JoinCommand(cmd.Args().Slice())

	asked := false
	confirm := func(remove, total int) bool {
		if cmd.Bool(yesFlag) {
			return true
		}

		asked = true

		return promptYesNo(fmt.Sprintf("remove %d of %d results? [y/N] ", remove, total))
	}

	removed, total, err := store.Clear(ctx, prefix, confirm)
	if err != nil {
		return err
	}

	if removed == 0 {
		if asked {
			fmt.Fprintln(cmd.Writer, "aborted, no results removed")
		} else {
			fmt.Fprintln(cmd.Writer, "no results to remove for this command")
		}

		return nil
	}

	fmt.Fprintf(cmd.Writer, "removed %d of %d results\n", removed, total)

	return nil
}

// promptYesNo asks for confirmation on the terminal. A non-interactive stdin
// counts as consent, same as --yes.
func promptYesNo(prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}

	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	input, err := line.Prompt(prompt)
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
