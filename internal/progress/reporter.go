// Copyright (c) dapaulid 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// ChannelReporter implements ProgressReporter on top of a buffered channel,
// decoupling the goroutine running the stress loop from whoever renders the
// events. Sends never block: when the buffer is full the event is dropped.
type ChannelReporter struct {
	ch     chan ProgressEvent
	ctx    context.Context
	cancel context.CancelFunc
	mutex  sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

// NewChannelReporter creates a reporter whose channel buffers up to bufferSize
// events. A larger buffer tolerates slower listeners before events are lost.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan ProgressEvent, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements ProgressReporter.Report. Events reported after Close, or
// while the buffer is full, are dropped.
func (cr *ChannelReporter) Report(event ProgressEvent) {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	default:
		// Buffer full, drop the event.
	}
}

// Close implements ProgressReporter.Close. It stops any listeners, closes the
// channel and waits for the listener goroutines to drain. Close is safe to
// call more than once.
func (cr *ChannelReporter) Close() {
	cr.once.Do(func() {
		// Taking the write lock ensures no Report is mid-send when the
		// channel closes.
		cr.mutex.Lock()
		cr.closed = true
		cr.mutex.Unlock()

		cr.cancel()
		close(cr.ch)
		cr.wg.Wait()
	})
}

// Listen forwards events to the listener from a goroutine of its own until
// the reporter is closed or its context is cancelled.
func (cr *ChannelReporter) Listen(listener ProgressListener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}
				listener.OnEvent(event)
			case <-cr.ctx.Done():
				return
			}
		}
	}()
}

// Events exposes the event channel for callers that consume events directly
// instead of through a listener.
func (cr *ChannelReporter) Events() <-chan ProgressEvent {
	return cr.ch
}
