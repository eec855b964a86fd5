// Package coretest provides an in-memory core.SignalConnection for tests.
package coretest

import (
	"sync"
	"testing"

	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
)

// Conn records every accepted frame. Full simulates a saturated buffer.
type Conn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	Full   bool
}

func NewConn() *Conn { return &Conn{} }

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectionClosed
	}
	if c.Full {
		return domain.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) SetFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Full = full
}

// Envelopes decodes every recorded frame.
func (c *Conn) Envelopes(t testing.TB, codec core.Codec) []core.Envelope {
	t.Helper()
	c.mu.Lock()
	frames := append([]core.Frame(nil), c.frames...)
	c.mu.Unlock()
	out := make([]core.Envelope, 0, len(frames))
	for _, f := range frames {
		env, err := core.Decode(codec, f)
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		out = append(out, env)
	}
	return out
}

// Events returns the event names received so far.
func (c *Conn) Events(t testing.TB, codec core.Codec) []string {
	t.Helper()
	envs := c.Envelopes(t, codec)
	out := make([]string, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.Event)
	}
	return out
}

// Named returns the envelopes carrying event.
func (c *Conn) Named(t testing.TB, codec core.Codec, event string) []core.Envelope {
	t.Helper()
	var out []core.Envelope
	for _, e := range c.Envelopes(t, codec) {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}
