// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package statusline

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// cursorHeadroom keeps the cursor clear of the first status character.
const cursorHeadroom = "  "

// Printer owns one terminal line and overwrites it in place. It is not safe
// for concurrent use; a single renderer must own it.
type Printer struct {
	w     io.Writer
	width int
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print replaces the current status line with msg. The message is padded
// with spaces to at least the width of the previously written line and
// terminated with a carriage return instead of a newline, leaving the
// cursor at the start of the line for the next update.
func (p *Printer) Print(msg string) {
	msg = cursorHeadroom + msg
	width := ansi.StringWidth(msg)

	padding := ""
	if p.width > width {
		padding = strings.Repeat(" ", p.width-width)
	}

	fmt.Fprint(p.w, msg+padding+"\r")

	p.width = width
}

// Printf formats according to format and replaces the current status line
// with the result.
func (p *Printer) Printf(format string, a ...any) {
	p.Print(fmt.Sprintf(format, a...))
}

// Complete finishes the current status line, if any. With clear set the line
// is blanked before the newline, otherwise its last content remains visible.
// Ordinary line output must be preceded by Complete(false) so it does not
// collide with an in-progress status line.
func (p *Printer) Complete(clear bool) {
	if p.width > 0 {
		if clear {
			fmt.Fprintln(p.w, strings.Repeat(" ", p.width))
		} else {
			fmt.Fprintln(p.w)
		}
	}

	p.width = 0
}

// Width returns the visible width of the last status line written, zero when
// no status line is active.
func (p *Printer) Width() int {
	return p.width
}
