package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rootpkg "tools.zach/dev/vlccord"
	"tools.zach/dev/vlccord/internal/atomicfile"
	"tools.zach/dev/vlccord/internal/config"
	"tools.zach/dev/vlccord/internal/discord"
	"tools.zach/dev/vlccord/internal/logger"
	"tools.zach/dev/vlccord/internal/paths"
	"tools.zach/dev/vlccord/internal/presence"
	"tools.zach/dev/vlccord/internal/update"
)

// maxConnectAttempts bounds each round of Discord connection attempts.
const maxConnectAttempts = 10

// ///////////////////////////////////////////////
// Startup
// ///////////////////////////////////////////////

// runDaemon owns the process: it takes the single-instance lock, sets up
// logging, connects to Discord and drives the presence engine until a
// shutdown signal arrives.
func runDaemon(ctx context.Context, dir paths.DataDir) error {
	if err := os.MkdirAll(dir.Root, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if alive, pid := runningInstance(dir); alive {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	if err := writeDefaultConfig(dir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := config.Load(dir.Root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOpts := logger.Options{
		Path:      dir.Log(),
		Level:     logger.ParseLevel(cfg.Log.Level),
		MaxSizeMB: cfg.Log.MaxSizeMB,
	}
	if cfg.Log.Console {
		logOpts.Console = os.Stderr
	}
	log, logCloser, err := logger.NewLogger(logOpts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	ver := resolveVersion()
	slog.Info("vlccord starting", "version", ver, "data_dir", dir.Root, "status_url", cfg.StatusURL())

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("update check panic", "error", r)
			}
		}()
		update.Check(ctx, ver)
	}()

	token := pidToken()
	pidFile, err := writePID(dir, token)
	if err != nil {
		logger.Fail(log, "failed to write PID file", "error", err)
		return err
	}
	defer removePID(dir, token, pidFile)

	client := discord.NewClient(cfg.Discord.AppID)
	if err := connectWithRetry(ctx, client, cfg.ReconnectInterval()); err != nil {
		logger.Fail(log, "failed to connect to Discord", "error", err)
		return err
	}
	defer client.Close()
	slog.Info("connected to Discord")

	watcher, err := config.NewWatcher(dir.Config())
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
	} else {
		defer watcher.Close()
		if watcher.Polling() {
			slog.Info("using polling mode for config changes")
		}
	}

	var art presence.Resolver
	if cfg.Display.ShowCoverArt {
		art = newArtworkResolver(cfg)
	}
	engine := presence.NewEngine(newStatusClient(cfg), client, art, presence.OptionsFromConfig(cfg))

	err = run(ctx, client, engine, watcher, cfg)
	slog.Info("vlccord stopped", "error", err)
	return err
}

// writeDefaultConfig writes the documented default config on first run.
// An existing legacy config is left for the migration to import.
func writeDefaultConfig(dir paths.DataDir) error {
	for _, p := range []string{dir.Config(), dir.LegacyConfig()} {
		if _, err := os.Stat(p); err == nil {
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", p, err)
		}
	}
	if err := atomicfile.Write(dir.Config(), rootpkg.DefaultConfigTOML, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Discord Connection
// ///////////////////////////////////////////////

// connector is the part of [discord.Client] the reconnect logic needs.
type connector interface {
	Connect() error
	Connected() bool
}

// sleep waits for d or until ctx ends.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// connectWithRetry tries to connect up to [maxConnectAttempts] times,
// waiting interval between failures.
func connectWithRetry(ctx context.Context, c connector, interval time.Duration) error {
	var err error
	for i := range maxConnectAttempts {
		if err = c.Connect(); err == nil {
			return nil
		}
		slog.Warn("Discord connect attempt failed", "attempt", i+1, "error", err)
		if i < maxConnectAttempts-1 {
			if serr := sleep(ctx, interval); serr != nil {
				return serr
			}
		}
	}
	return fmt.Errorf("failed to connect after %d attempts: %w", maxConnectAttempts, err)
}

// ensureConnected reconnects a dropped client and invalidates the engine so
// the next tick republishes.
func ensureConnected(ctx context.Context, c connector, engine *presence.Engine, interval time.Duration) error {
	if c.Connected() {
		return nil
	}
	slog.Warn("Discord disconnected, attempting reconnect")
	if err := connectWithRetry(ctx, c, interval); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	slog.Info("reconnected to Discord")
	engine.Invalidate()
	return nil
}

// ///////////////////////////////////////////////
// Event Loop
// ///////////////////////////////////////////////

// run ticks the engine on the poll interval until ctx ends. Ticks run on
// this goroutine, so a slow tick delays the next one and the ticker drops
// the ticks it missed.
func run(ctx context.Context, c connector, engine *presence.Engine, watcher *config.Watcher, cfg *config.Config) error {
	var changes <-chan struct{}
	if watcher != nil {
		changes = watcher.Events()
	}

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	engine.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("received shutdown signal")
			return nil

		case <-changes:
			slog.Info("config file changed; restart vlccord to apply it")

		case <-ticker.C:
			if err := ensureConnected(ctx, c, engine, cfg.ReconnectInterval()); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			engine.Tick(ctx)
		}
	}
}
