package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/park285/rooky/internal/config"
	"github.com/park285/rooky/internal/obslog"
)

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendSQLite, "":
		s, err = OpenSQLite(ctx, cfg.SQLitePath)
	case config.BackendRedis:
		s, err = OpenRedis(ctx, cfg.RedisURL)
	case config.BackendPostgres:
		s, err = OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	obslog.L().Info("store_open", zap.String("backend", cfg.Backend))
	return s, nil
}
