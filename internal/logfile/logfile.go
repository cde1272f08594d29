// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package logfile

import (
	"context"
	"errors"
	"fmt"

	"github.com/dapaulid/stressy/internal/ctxlog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// ErrGlob is returned when a log file pattern could not be expanded.
var ErrGlob = errors.New("failed to expand log file pattern")

const (
	tempFormat   = ".stress_p%d.log"
	passedFormat = "stress_p%d_good.log"
	failedFormat = "stress_p%d_bad.log"

	// promotedGlob matches promoted logs of earlier runs, tempGlob matches
	// leftover temporary files.
	promotedGlob = "stress_*.log"
	tempGlob     = ".stress_*.log"
)

// TempName returns the temporary log file name for a process index.
func TempName(index int) string {
	return fmt.Sprintf(tempFormat, index)
}

// PassedName returns the promoted log file name for a passed process.
func PassedName(index int) string {
	return fmt.Sprintf(passedFormat, index)
}

// FailedName returns the promoted log file name for a failed process.
func FailedName(index int) string {
	return fmt.Sprintf(failedFormat, index)
}

// Promote renames the temporary log of a process to its good or bad name,
// replacing any log file a previous run left behind.
func Promote(ctx context.Context, index int, success bool) error {
	fs := FsFactory()

	dst := FailedName(index)
	if success {
		dst = PassedName(index)
	}

	src := TempName(index)

	// Not every backing filesystem renames over an existing file.
	_ = fs.Remove(dst)

	if err := fs.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to promote log file %s: %w", src, err)
	}

	ctxlog.Debug(ctx, "promoted log file", "from", src, "to", dst)

	return nil
}

// Sweep removes promoted log files left behind by earlier runs.
func Sweep(ctx context.Context) error {
	return removeGlob(ctx, promotedGlob)
}

// SweepTemp removes any temporary log files, including those of rounds that
// were cancelled before their processes could be promoted.
func SweepTemp(ctx context.Context) error {
	return removeGlob(ctx, tempGlob)
}

func removeGlob(ctx context.Context, pattern string) error {
	fs := FsFactory()

	matches, err := afero.Glob(fs, pattern)
	if err != nil {
		return errors.Join(ErrGlob, err)
	}

	var errs *multierror.Error

	for _, match := range matches {
		ctxlog.Debug(ctx, "removing log file", "path", match)

		if err := fs.Remove(match); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return errs.ErrorOrNil()
}
