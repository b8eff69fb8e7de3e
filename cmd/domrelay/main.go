// Command domrelay relays DOM mutation callbacks from an out-of-process
// script host to debugging frontends.
//
// Usage:
//
//	domrelay -config domrelay.yaml -http :9230   # HTTP ingestion, sinks from config
//	domrelay -stdin < callbacks.jsonl             # one {"event":..,"args":[..]} per line
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/inspector/domrelay"
	"github.com/hazyhaar/inspector/domrelay/dispatch"
	"github.com/hazyhaar/inspector/domrelay/script"
)

func main() {
	configPath := flag.String("config", "", "path to domrelay.yaml config file")
	httpAddr := flag.String("http", "", "serve HTTP ingestion on this address (overrides config)")
	fromStdin := flag.Bool("stdin", false, "read JSON-lines callbacks from stdin")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *httpAddr, *fromStdin); err != nil {
		logger.Error("domrelay: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, httpAddr string, fromStdin bool) error {
	cfg := &domrelay.Config{}
	if configPath != "" {
		loaded, err := domrelay.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyDefaults()

	sinks, err := domrelay.SinksFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		sinks = append(sinks, domrelay.NewStdoutSink(nil))
	}

	r, err := domrelay.New(cfg, logger, sinks...)
	if err != nil {
		return err
	}
	defer r.Close()
	r.Attach()

	if fromStdin {
		return runStdin(ctx, logger, r, os.Stdin)
	}

	addr := cfg.HTTP.Addr
	if httpAddr != "" {
		addr = httpAddr
	}
	return runHTTP(ctx, logger, r, addr, cfg.HTTP.ReadTimeout)
}

// line is one callback read from stdin.
type line struct {
	Event dispatch.Event  `json:"event"`
	Args  json.RawMessage `json:"args"`
}

func runStdin(ctx context.Context, logger *slog.Logger, r *domrelay.Relay, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	n := 0
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		n++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}

		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			logger.Warn("domrelay: skip malformed line", "line", n, "error", err)
			continue
		}
		args := script.Args{}
		if len(l.Args) > 0 {
			var err error
			if args, err = script.DecodeArgs(l.Args); err != nil {
				logger.Warn("domrelay: skip malformed args", "line", n, "error", err)
				continue
			}
		}

		if err := r.Call(ctx, l.Event, args); err != nil {
			logger.Warn("domrelay: callback raised", "line", n, "event", l.Event, "error", err)
		}
	}
	return sc.Err()
}

func runHTTP(ctx context.Context, logger *slog.Logger, r *domrelay.Relay, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     r.Handler(),
		ReadTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("domrelay: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
