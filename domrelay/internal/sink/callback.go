package sink

import (
	"context"

	"github.com/hazyhaar/inspector/domrelay/frontend"
)

// MessageFunc is called for each message (in-process, zero serialisation).
type MessageFunc func(ctx context.Context, msg frontend.Message) error

// Callback delivers messages as Go function calls, for embedders that host
// the debugging client in the same binary.
type Callback struct {
	fn MessageFunc
}

// NewCallback creates a Callback sink. fn may be nil.
func NewCallback(fn MessageFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Send(ctx context.Context, msg frontend.Message) error {
	if c.fn == nil {
		return nil
	}
	return c.fn(ctx, msg)
}

func (c *Callback) Close() error { return nil }
