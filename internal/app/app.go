// Package app wires configuration, logging, telemetry, the simulation, and
// the network surface into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"gatewatch/server/internal/config"
	"gatewatch/server/internal/level"
	servernet "gatewatch/server/internal/net"
	"gatewatch/server/internal/sim"
	"gatewatch/server/internal/telemetry"
	"gatewatch/server/logging"
	loggingSinks "gatewatch/server/logging/sinks"
)

// Run starts the server and blocks until ctx is cancelled or the listener
// fails.
func Run(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg.Log)

	router, err := newEventRouter(cfg.Log)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close logging router")
		}
	}()

	metrics, err := telemetry.New()
	if err != nil {
		return fmt.Errorf("construct telemetry: %w", err)
	}

	lvl := level.Default()
	if cfg.LevelPath != "" {
		lvl, err = level.Load(cfg.LevelPath)
		if err != nil {
			return fmt.Errorf("load level: %w", err)
		}
	}
	logger.Info().Str("level", lvl.Name).Int("waypoints", len(lvl.Path)).Msg("level loaded")

	world := sim.NewWorld(lvl, nil, router, metrics)
	hub := servernet.NewHub(world, servernet.HubConfig{
		TickRate:         cfg.TickRate,
		HeartbeatTimeout: cfg.HeartbeatTimeout(),
		CommandCapacity:  cfg.CommandCapacity,
		Logger:           logger,
	}, router, metrics)

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{Logger: logger})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Int("tickRate", cfg.TickRate).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !cfg.Color, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
}

// newEventRouter builds the domain-event pipeline from the configured sink
// list. The router doubles as the simulation's logging.Publisher.
func newEventRouter(cfg config.LogConfig) (*logging.Router, error) {
	routerCfg := logging.DefaultConfig()
	routerCfg.EnabledSinks = cfg.Sinks
	routerCfg.Console.UseColor = cfg.Color
	routerCfg.JSON.FilePath = cfg.JSONPath

	var sinks []logging.NamedSink
	for _, name := range cfg.Sinks {
		switch name {
		case "console":
			sinks = append(sinks, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewConsoleSink(os.Stdout, routerCfg.Console),
			})
		case "json":
			out := os.Stdout
			if routerCfg.JSON.FilePath != "" {
				f, err := os.OpenFile(routerCfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return nil, fmt.Errorf("open json log %s: %w", routerCfg.JSON.FilePath, err)
				}
				out = f
			}
			sinks = append(sinks, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewJSON(out, routerCfg.JSON.FlushInterval),
			})
		case "memory":
			sinks = append(sinks, logging.NamedSink{
				Name: name,
				Sink: loggingSinks.NewMemorySink(routerCfg.Memory.Capacity),
			})
		default:
			return nil, fmt.Errorf("unknown log sink %q", name)
		}
	}

	return logging.NewRouter(nil, routerCfg, sinks)
}
