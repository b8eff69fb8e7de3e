// Package domrelay relays DOM mutation callbacks raised inside a script
// runtime to a remote debugging frontend as DOM-domain protocol messages.
//
// The runtime binding calls the dispatcher's callbacks; a debugging session
// attaches with Attach and detaches with Detach. While no session is
// attached every callback is a no-op.
//
//	r, err := domrelay.New(cfg, logger, domrelay.NewStdoutSink(nil))
//	r.Attach()
//	err := r.Call(ctx, dispatch.EventChildNodeRemoved, script.Args{script.Number(1), script.Number(7)})
package domrelay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hazyhaar/inspector/domrelay/dispatch"
	"github.com/hazyhaar/inspector/domrelay/domnode"
	"github.com/hazyhaar/inspector/domrelay/frontend"
	"github.com/hazyhaar/inspector/domrelay/internal/config"
	"github.com/hazyhaar/inspector/domrelay/internal/httpapi"
	"github.com/hazyhaar/inspector/domrelay/internal/sink"
	"github.com/hazyhaar/inspector/domrelay/script"
)

// Relay wires the agent registry, the message sinks and the dispatcher.
// Create one per script runtime.
type Relay struct {
	cfg      *config.Config
	registry frontend.Registry
	router   *sink.Router
	emitter  *frontend.Emitter
	disp     *dispatch.Dispatcher
	logger   *slog.Logger
}

// New creates a Relay from configuration. A nil cfg uses the defaults.
// cfg is copied; the caller's value is left untouched.
func New(cfg *config.Config, logger *slog.Logger, sinks ...sink.Sink) (*Relay, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg = cfg.Clone()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("domrelay: %w", err)
	}

	session := cfg.Relay.Session
	if session == "" {
		session = uuid.Must(uuid.NewV7()).String()
	}

	r := &Relay{
		cfg:    cfg,
		router: sink.NewRouter(logger, sinks...),
		logger: logger,
	}
	r.emitter = frontend.NewEmitter(r.router, frontend.WithSession(session))
	r.disp = dispatch.New(r.registry.Active,
		dispatch.WithLogger(logger),
		dispatch.WithBackendIDMode(domnode.BackendIDMode(cfg.Relay.BackendID)),
		dispatch.WithStrictIDs(cfg.Relay.StrictIDs),
	)
	return r, nil
}

// Attach starts a debugging session: from now on callbacks are relayed to
// the configured sinks.
func (r *Relay) Attach() {
	if prev := r.registry.Attach(r.emitter); prev == nil {
		r.logger.Info("domrelay: session attached")
	}
}

// AttachFrontend starts a session delivering to a caller-provided frontend
// instead of the sinks.
func (r *Relay) AttachFrontend(fe frontend.Frontend) {
	r.registry.Attach(fe)
	r.logger.Info("domrelay: custom frontend attached")
}

// Detach ends the current session. Callbacks become no-ops.
func (r *Relay) Detach() {
	if prev := r.registry.Detach(); prev != nil {
		r.logger.Info("domrelay: session detached")
	}
}

// Attached reports whether a session is active.
func (r *Relay) Attached() bool {
	_, ok := r.registry.Active()
	return ok
}

// Dispatcher exposes the callbacks for runtime bindings.
func (r *Relay) Dispatcher() *dispatch.Dispatcher { return r.disp }

// Call dispatches a callback by event name.
func (r *Relay) Call(ctx context.Context, ev dispatch.Event, args script.Args) error {
	return r.disp.Call(ctx, ev, args)
}

// Handler returns the HTTP ingestion handler.
func (r *Relay) Handler() http.Handler {
	return httpapi.New(r, httpapi.Options{
		Logger:       r.logger,
		MaxBodyBytes: r.cfg.HTTP.MaxBodyBytes,
	})
}

// Close detaches the session and closes all sinks.
func (r *Relay) Close() error {
	r.Detach()
	return r.router.Close()
}
