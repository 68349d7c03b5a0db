package repository

import (
	"context"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

// NewPool opens a traced connection pool and verifies it can reach the
// server.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.MaxIdleTime
	config.MaxConns = int32(cfg.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := otelpgx.RecordStats(db); err != nil {
		db.Close()
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err = db.Ping(pingCtx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
