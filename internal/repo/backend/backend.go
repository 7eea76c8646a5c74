// Package backend opens the settings store selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/hamed0406/urlcheck/internal/config"
	"github.com/hamed0406/urlcheck/internal/repo"
	"github.com/hamed0406/urlcheck/internal/repo/file"
	"github.com/hamed0406/urlcheck/internal/repo/memory"
	"github.com/hamed0406/urlcheck/internal/repo/postgres"
	"github.com/hamed0406/urlcheck/internal/repo/sqlite"
)

// Open returns the store and a closer that releases it. The closer is never nil.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.SettingsStore, io.Closer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("settings_store", zap.String("backend", cfg.SettingsBackend), zap.String("path", cfg.SettingsPath))
	switch cfg.SettingsBackend {
	case config.BackendMemory:
		return memory.New(), noClose, nil
	case config.BackendFile:
		s, err := file.New(cfg.SettingsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("file store: %w", err)
		}
		return s, noClose, nil
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.SettingsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		return s, s, nil
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("postgres store: DATABASE_URL is empty")
		}
		s, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown SETTINGS_BACKEND %q", cfg.SettingsBackend)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noClose = closerFunc(func() error { return nil })
