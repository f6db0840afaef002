package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/daemon"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if c.LogLevel != "" {
		level = c.LogLevel
	}
	setupLogging(level, c.globals != nil && c.globals.Verbose)

	port := cfg.Daemon.Port
	if c.Port != 0 {
		port = c.Port
	}

	store, db, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker, err := newTracker(ctx, cfg, store, aggregate.WithNotifier(daemon.LogNotifier{}))
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Daemon.Host, port)
	slog.Info("starting mindful daemon", "version", c.version, "addr", addr)

	srv := daemon.New(tracker, addr, int64(cfg.Daemon.MaxRequestSize))
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	slog.Info("daemon stopped")
	return nil
}

// setupLogging installs the default slog handler at the configured level.
func setupLogging(level string, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose || strings.EqualFold(level, "debug") {
		logLevel = slog.LevelDebug
	} else if strings.EqualFold(level, "warn") {
		logLevel = slog.LevelWarn
	} else if strings.EqualFold(level, "error") {
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}
