// Package repository persists analysis-report traces in PostgreSQL. The
// whole layer is optional: the service runs without a database, it just
// keeps no history.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by pgxpool.Pool and pgx.Tx, so the
// report queries run the same against the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores and reads report history records.
type Repository struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewRepository connects a pool to the given database and verifies it is
// reachable before handing the repository out.
func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Repository{pool: pool, db: pool}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	if r != nil && r.pool != nil {
		r.pool.Close()
	}
}

// Health reports whether the database is reachable.
func (r *Repository) Health(ctx context.Context) error {
	if err := r.checkDB(); err != nil {
		return err
	}
	return r.pool.Ping(ctx)
}

// checkDB guards against use of a nil or closed repository.
func (r *Repository) checkDB() error {
	if r == nil || r.db == nil {
		return fmt.Errorf("database not configured")
	}
	return nil
}
