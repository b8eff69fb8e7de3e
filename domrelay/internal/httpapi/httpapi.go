// Package httpapi exposes the DOM callbacks over HTTP for script hosts that
// run out of process. The request body is the JSON argument array:
//
//	POST /dom/childNodeRemoved   [12, 40]
//
// 204 on success. An exception is returned as {"error": "<message>"} with
// 400 for invalid arguments, 404 for an unknown event and 500 otherwise.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/inspector/domrelay/dispatch"
	"github.com/hazyhaar/inspector/domrelay/script"
)

// Caller dispatches one callback by event name.
type Caller interface {
	Call(ctx context.Context, ev dispatch.Event, args script.Args) error
}

// Options for the handler.
type Options struct {
	Logger       *slog.Logger
	MaxBodyBytes int64
}

// New returns the HTTP handler.
func New(c Caller, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 4 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/dom/{event}", func(w http.ResponseWriter, r *http.Request) {
		ev := dispatch.Event(chi.URLParam(r, "event"))

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, err)
				return
			}
			writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
			return
		}
		args, err := script.DecodeArgs(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		if err := c.Call(r.Context(), ev, args); err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				opts.Logger.Error("httpapi: callback failed",
					"event", ev, "request_id", middleware.GetReqID(r.Context()), "error", err)
			}
			writeError(w, status, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrInvalidArguments):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrUnknownEvent):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
