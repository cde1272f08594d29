// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dapaulid/stressy/internal/ctxlog"
)

const (
	goosWindows          = "windows"    // String constant for Windows OS from the runtime package.
	commandSwitchWindows = "/C"         // Command switch for Windows cmd.exe
	commandSwitchUnix    = "-c"         // Command switch for Unix-like shells
	winSystem32          = "System32"   // System32 is the directory where cmd.exe is located on Windows.
	cmdExe               = "cmd.exe"    // Name of the command interpreter executable on Windows.
	binSh                = "/bin/sh"    // Default shell for Unix-like systems.
	winSystemRootEnv     = "SystemRoot" // Environment variable for Windows system root directory.
)

// shellInvocation returns the interpreter path and full argv for running
// command through the system shell.
func shellInvocation(ctx context.Context, command string) (path string, argv []string) {
	shell := defaultShell(ctx)
	commandSwitch := commandSwitchUnix
	if runtime.GOOS == goosWindows {
		commandSwitch = commandSwitchWindows
	}
	return shell, []string{shell, commandSwitch, command}
}

func defaultShell(ctx context.Context) string {
	if runtime.GOOS == goosWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		ctxlog.Debug(ctx, "Using SHELL environment variable", "shell", shell)
		return shell
	}

	return binSh
}

// JoinCommand joins the positional command tokens into a single shell command
// string, quoting tokens that contain whitespace.
func JoinCommand(tokens []string) string {
	quoted := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if strings.ContainsAny(t, " \t") {
			t = `"` + t + `"`
		}
		quoted = append(quoted, t)
	}
	return strings.Join(quoted, " ")
}
