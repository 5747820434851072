package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// PoolConfig tunes the connection pool. Zero values keep the pgx defaults.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string, pool PoolConfig) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if pool.MaxConns > 0 {
		poolCfg.MaxConns = pool.MaxConns
	}
	if pool.MinConns > 0 {
		poolCfg.MinConns = pool.MinConns
	}
	if pool.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = pool.MaxConnLifetime
	}
	if pool.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = pool.MaxConnIdleTime
	}

	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(log.Fields{
		"database":  poolCfg.ConnConfig.Database,
		"max_conns": poolCfg.MaxConns,
		"min_conns": poolCfg.MinConns,
	}).Info("Database connection pool established")

	return &DB{Pool: p}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
