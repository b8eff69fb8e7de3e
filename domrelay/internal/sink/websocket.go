package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hazyhaar/inspector/domrelay/frontend"
)

// WebSocket pushes each message as a JSON text frame to a debugger frontend
// listening at a ws:// or wss:// URL. The connection is dialled on first
// use and redialled on the next Send after a write failure.
type WebSocket struct {
	url          string
	header       http.Header
	dialer       *websocket.Dialer
	writeTimeout time.Duration
	logger       *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// WebSocketOption configures a WebSocket sink.
type WebSocketOption func(*WebSocket)

// WithWebSocketHeader sets extra handshake headers (e.g. Authorization).
func WithWebSocketHeader(h http.Header) WebSocketOption {
	return func(w *WebSocket) { w.header = h }
}

// WithWebSocketWriteTimeout bounds each frame write. Default: 5s.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return func(w *WebSocket) { w.writeTimeout = d }
}

// WithWebSocketLogger sets a custom logger.
func WithWebSocketLogger(l *slog.Logger) WebSocketOption {
	return func(w *WebSocket) { w.logger = l }
}

// NewWebSocket creates a WebSocket sink targeting url.
func NewWebSocket(url string, opts ...WebSocketOption) *WebSocket {
	w := &WebSocket{
		url:          url,
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		writeTimeout: 5 * time.Second,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *WebSocket) Send(ctx context.Context, msg frontend.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		conn, _, err := w.dialer.DialContext(ctx, w.url, w.header)
		if err != nil {
			return fmt.Errorf("websocket: dial %s: %w", w.url, err)
		}
		w.conn = conn
		w.logger.Info("websocket: connected", "url", w.url)
	}

	w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	if err := w.conn.WriteJSON(msg); err != nil {
		w.conn.Close()
		w.conn = nil
		return fmt.Errorf("websocket: write: %w", err)
	}
	return nil
}

func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	err := w.conn.Close()
	w.conn = nil
	return err
}
