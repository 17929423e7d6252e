package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmaloff/tilelookup/internal/config"
	"github.com/dmaloff/tilelookup/internal/debugsrv"
	"github.com/dmaloff/tilelookup/internal/entity"
	"github.com/dmaloff/tilelookup/internal/lookup"
	"github.com/dmaloff/tilelookup/internal/sim"
	"github.com/dmaloff/tilelookup/internal/tiles"
)

const ConfigPath = "config/lookupd.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("LOOKUPD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("lookupd starting",
		"log_level", cfg.LogLevel,
		"chunk_size", cfg.ChunkSize,
		"debug_enabled", cfg.Debug.Enabled)

	grids := tiles.NewManager()
	entities := entity.NewRegistry()
	engine := lookup.New(entities, entities, grids, cfg.ChunkSize)
	loop := sim.NewLoop(engine, cfg.EventQueue)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Debug.Enabled {
		debug := debugsrv.New(loop, grids)
		engine.OnUpdate(debug.Publish)
		g.Go(func() error {
			return debug.Run(ctx, cfg.Debug.Addr())
		})
	}

	g.Go(func() error {
		return loop.Run(ctx)
	})

	if cfg.Demo.Enabled {
		g.Go(func() error {
			return runDemo(ctx, loop, grids, entities, cfg.Demo)
		})
	}

	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
