package domrelay

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/inspector/domrelay/internal/sink"
)

// Sink is the output interface for protocol messages.
type Sink = sink.Sink

// MessageFunc is called for each message by a callback sink.
type MessageFunc = sink.MessageFunc

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, retries int, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookRetries(retries), sink.WithWebhookLogger(logger))
}

// NewWebSocketSink creates a sink pushing messages to a debugger frontend.
// header is sent with the handshake; a zero writeTimeout keeps the default.
func NewWebSocketSink(url string, header http.Header, writeTimeout time.Duration, logger *slog.Logger) Sink {
	opts := []sink.WebSocketOption{sink.WithWebSocketLogger(logger)}
	if len(header) > 0 {
		opts = append(opts, sink.WithWebSocketHeader(header))
	}
	if writeTimeout > 0 {
		opts = append(opts, sink.WithWebSocketWriteTimeout(writeTimeout))
	}
	return sink.NewWebSocket(url, opts...)
}

// NewCallbackSink creates an in-process callback sink.
func NewCallbackSink(fn MessageFunc) Sink {
	return sink.NewCallback(fn)
}

// SinksFromConfig builds the sinks listed in cfg.
func SinksFromConfig(cfg *Config, logger *slog.Logger) ([]Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var sinks []Sink
	for i, sc := range cfg.Sinks {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink(nil))
		case "webhook":
			retries := 3
			if sc.Retries != nil {
				retries = *sc.Retries
			}
			sinks = append(sinks, NewWebhookSink(sc.URL, retries, logger))
		case "websocket":
			var header http.Header
			if len(sc.Headers) > 0 {
				header = make(http.Header, len(sc.Headers))
				for k, v := range sc.Headers {
					header.Set(k, v)
				}
			}
			sinks = append(sinks, NewWebSocketSink(sc.URL, header, sc.WriteTimeout, logger))
		default:
			return nil, fmt.Errorf("domrelay: sinks[%d]: unknown type %q", i, sc.Type)
		}
	}
	return sinks, nil
}
