// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package capture

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

const (
	// MaxBufferSize is the upper bound on captured output per process.
	MaxBufferSize = 8 * 1024 * 1024 // 8MB
	// maxLineLength bounds the partial-line tracking so a child emitting a
	// single endless line cannot grow memory through the line tracker.
	maxLineLength = 4096
)

// Buffer drains an io.Reader on a background goroutine into a bounded
// in-memory buffer while tracking the last complete line read.
// It is safe for concurrent use.
type Buffer struct {
	mu             sync.RWMutex
	full           bytes.Buffer
	lastLine       string
	partialBuilder strings.Builder
	truncated      bool
	err            error
	done           chan struct{}
}

// Start begins draining r into a new Buffer. The returned Buffer's Wait
// method blocks until r reaches EOF, which for a process pipe happens once
// the child has exited and the write end is closed.
func Start(r io.Reader) *Buffer {
	b := &Buffer{
		done: make(chan struct{}),
	}

	go b.drain(r)

	return b
}

func (b *Buffer) drain(r io.Reader) {
	defer close(b.done)

	buf := make([]byte, 32*1024)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.consume(buf[:n])
		}

		if err != nil {
			if err != io.EOF {
				b.mu.Lock()
				b.err = err
				b.mu.Unlock()
			}

			return
		}
	}
}

// consume appends new data to the buffer, discarding anything beyond
// MaxBufferSize, and updates last-line tracking.
func (b *Buffer) consume(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := MaxBufferSize - b.full.Len(); room > 0 {
		if len(data) > room {
			b.full.Write(data[:room])
			b.truncated = true
		} else {
			b.full.Write(data)
		}
	} else {
		b.truncated = true
	}

	b.processNewData(string(data))
}

// processNewData updates the last line based on new data.
// Must be called with the write lock held.
func (b *Buffer) processNewData(data string) {
	if b.partialBuilder.Len() < maxLineLength {
		b.partialBuilder.WriteString(data)
	}

	combined := b.partialBuilder.String()

	lines := strings.Split(combined, "\n")
	if len(lines) == 1 {
		// No newline yet, keep accumulating the partial line.
		return
	}

	b.lastLine = lines[len(lines)-2]
	b.partialBuilder.Reset()
	b.partialBuilder.WriteString(lines[len(lines)-1])
}

// Wait blocks until the drain goroutine has consumed the reader to EOF and
// returns any read error other than EOF.
func (b *Buffer) Wait() error {
	<-b.done

	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.err
}

// Bytes returns a copy-free view of the captured data. Only safe to use
// after Wait has returned.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.full.Bytes()
}

// String returns the captured data as a string.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.full.String()
}

// Truncated reports whether output beyond MaxBufferSize was discarded.
func (b *Buffer) Truncated() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.truncated
}

// LastLine returns the last complete line that was read, empty if no
// complete line has been read yet. If maxLength > 0 the result is truncated
// to that length with a trailing ellipsis.
func (b *Buffer) LastLine(maxLength int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := b.lastLine
	if maxLength > 3 && len(result) > maxLength {
		result = result[:maxLength-3] + "..."
	}

	return result
}
