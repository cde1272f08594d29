// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stress

import (
	"testing"

	"github.com/dapaulid/stressy/internal/color"
	"github.com/stretchr/testify/assert"
)

func TestStatusNames(t *testing.T) {
	assert.Equal(t, "PASSED", StatusPassed.String())
	assert.Equal(t, "FAILED", StatusFailed.String())
	assert.Equal(t, "CANCELLED", StatusCancelled.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "UNKNOWN", Status(42).String())
}

func TestStatusExitCodes(t *testing.T) {
	assert.Equal(t, 0, StatusPassed.ExitCode())
	assert.Equal(t, 1, StatusFailed.ExitCode())
	assert.Equal(t, 2, StatusCancelled.ExitCode())
	assert.Equal(t, 3, StatusError.ExitCode())
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, color.FgGreen, StatusPassed.Color())
	assert.Equal(t, color.FgRed, StatusFailed.Color())
	assert.Equal(t, color.FgYellow, StatusCancelled.Color())
	assert.Equal(t, color.FgRed, StatusError.Color())
}
