// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package statusline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintAddsHeadroomAndCarriageReturn(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(buf)

	p.Print("run #1")

	assert.Equal(t, "  run #1\r", buf.String())
	assert.Equal(t, 8, p.Width())
}

func TestPrintPadsShorterMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(buf)

	p.Print("a longer status line")
	buf.Reset()

	p.Print("short")

	// "  short" is 7 visible cells, the previous line was 22, so 15 spaces
	// of padding must cover the leftovers.
	assert.Equal(t, "  short"+"               "+"\r", buf.String())
	assert.Equal(t, 7, p.Width())
}

func TestPrintIgnoresANSIWidth(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(buf)

	p.Print("\033[1;37mrun #1\033[0m")

	assert.Equal(t, 8, p.Width(), "escape sequences must not count toward the tracked width")
}

func TestCompleteEmitsNewline(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(buf)

	p.Print("busy")
	buf.Reset()

	p.Complete(false)

	assert.Equal(t, "\n", buf.String())
	assert.Equal(t, 0, p.Width())
}

func TestCompleteClearBlanksTheLine(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(buf)

	p.Print("busy")
	buf.Reset()

	p.Complete(true)

	assert.Equal(t, "      \n", buf.String(), "expected 6 spaces covering the previous line")
}

func TestCompleteWithoutStatusLineIsSilent(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(buf)

	p.Complete(false)
	p.Complete(true)

	assert.Empty(t, buf.String())
}

func TestPrintfFormats(t *testing.T) {
	buf := &bytes.Buffer{}
	p := New(buf)

	p.Printf("run #%d, %d failures", 3, 1)

	assert.Equal(t, "  run #3, 1 failures\r", buf.String())
}
