package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/terminalart/internal/cache"
	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/ledger/rpc"
	"github.com/starford/terminalart/internal/mirror"
	"github.com/starford/terminalart/internal/storage"
)

// backend is the ledger the application reads from. db and spool are set
// only for the mirror backend.
type backend struct {
	reader ledger.Reader
	db     *mirror.DB
	spool  storage.Provider
	close  func()
}

func openBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Ledger.Backend {
	case BackendRPC:
		r, err := rpc.Dial(ctx, cfg.RPC.URL, cfg.RPC.Contract, cfg.RPC.Timeout)
		if err != nil {
			return nil, fmt.Errorf("init rpc ledger: %w", err)
		}
		logger.Info("ledger: rpc", slog.String("url", cfg.RPC.URL), slog.String("contract", cfg.RPC.Contract))
		return &backend{reader: r, close: r.Close}, nil

	default:
		db, spool, err := openMirror(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger: mirror", slog.String("sqlite_path", cfg.Mirror.Path), slog.String("spool", cfg.Mirror.Spool))
		return &backend{reader: db, db: db, spool: spool, close: func() { _ = db.Close() }}, nil
	}
}

func openMirror(cfg *Config) (*mirror.DB, storage.Provider, error) {
	if err := os.MkdirAll(cfg.Mirror.Spool, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create spool dir: %w", err)
	}
	spool, err := storage.NewFS(cfg.Mirror.Spool)
	if err != nil {
		return nil, nil, fmt.Errorf("init spool: %w", err)
	}
	db, err := mirror.Open(cfg.Mirror.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init mirror: %w", err)
	}
	return db, spool, nil
}

func openCache(cfg *Config, logger *slog.Logger) (cache.Store, error) {
	if !cfg.Cache.Enabled() {
		return cache.Noop{}, nil
	}
	store, err := cache.NewRedis(cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	logger.Info("render cache: redis", slog.Duration("ttl", cfg.Cache.TTL))
	return store, nil
}
