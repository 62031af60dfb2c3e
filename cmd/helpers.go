package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ziadkadry99/sitefix/internal/config"
	"github.com/ziadkadry99/sitefix/internal/db"
	"github.com/ziadkadry99/sitefix/internal/journal"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `sitefix init` to create a config file", err)
	}
	if rootDir != "" {
		c.Root = rootDir
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return c, nil
}

// newLogger builds a zap logger writing to stderr.
func newLogger(lc config.LogConfig, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.DisableStacktrace = true
	zc.Encoding = "console"
	if lc.Format != "" {
		zc.Encoding = lc.Format
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if zc.Encoding == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableCaller = true
	}

	level := zapcore.InfoLevel
	if lc.Level != "" {
		parsed, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	if debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// inRoot resolves a config-relative path against the mirror root.
func inRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Root, p)
}

// openJournal opens the run journal, or returns nil when it is disabled or
// cannot be opened. Journal problems never fail a command.
func openJournal() *journal.Store {
	if !cfg.Journal.Enabled || dryRun {
		return nil
	}
	database, err := db.Open(inRoot(cfg.Journal.Path))
	if err != nil {
		logger.Warn("run journal unavailable", zap.Error(err))
		return nil
	}
	return journal.NewStore(database)
}

// recordRun writes a run to the journal when one is configured.
func recordRun(ctx context.Context, run journal.Run) {
	store := openJournal()
	if store == nil {
		return
	}
	defer store.Close()

	id, err := store.Record(ctx, run)
	if err != nil {
		logger.Warn("recording run failed", zap.Error(err))
		return
	}
	logger.Debug("run recorded", zap.String("id", id), zap.String("command", run.Command))
}
