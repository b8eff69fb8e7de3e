// Package sink defines delivery backends for DOM-domain protocol messages.
package sink

import (
	"context"

	"github.com/hazyhaar/inspector/domrelay/frontend"
)

// Sink delivers protocol messages to one destination (stdout, webhook,
// websocket, in-process callback).
type Sink interface {
	Send(ctx context.Context, msg frontend.Message) error
	Close() error
}
