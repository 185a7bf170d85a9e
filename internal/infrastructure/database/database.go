package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/taskmaster/dayplanner/internal/infrastructure/config"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// ErrNotMigrated is returned by Ping when the device_documents table is
// missing. Run `migrate up` first.
var ErrNotMigrated = errors.New("device_documents table missing")

// DB is the postgres pool behind the device document store.
type DB struct {
	DB     *sqlx.DB
	logger *logger.Logger
}

// New opens the pool, applies the configured limits and waits for the
// server to answer.
func New(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	log = log.WithComponent("database")

	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		log.Warnw("Document store unreachable", "host", cfg.Host, "database", cfg.Name, "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infow("Document store pool ready",
		"host", cfg.Host,
		"database", cfg.Name,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime.String(),
	)

	return &DB{DB: db, logger: log}, nil
}

// Close logs the final pool counters and closes every connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	stats := db.DB.Stats()
	db.logger.Infow("Closing document store pool",
		"open_connections", stats.OpenConnections,
		"in_use", stats.InUse,
		"wait_count", stats.WaitCount,
		"wait_duration", stats.WaitDuration.String(),
	)
	return db.DB.Close()
}

// Ping checks that the server answers and that the device_documents table
// exists.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var present bool
	if err := db.DB.GetContext(ctx, &present, `SELECT to_regclass('device_documents') IS NOT NULL`); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if !present {
		return ErrNotMigrated
	}
	return nil
}

// InTx runs fn in a read-committed transaction. Row locks taken by fn
// serialize concurrent writers of the same document.
func (db *DB) InTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			db.logger.Errorw("Document transaction rollback failed", "error", rollbackErr)
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
