package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/database"
)

// PostgresDocumentRepository keeps documents in the device_documents table.
type PostgresDocumentRepository struct {
	db *database.DB
}

// NewPostgresDocumentRepository creates a new postgres-backed repository
func NewPostgresDocumentRepository(db *database.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db}
}

func (r *PostgresDocumentRepository) Get(ctx context.Context, kind entities.EntityKind, deviceID string) ([]byte, error) {
	query := `
		SELECT body
		FROM device_documents
		WHERE device_id = $1 AND kind = $2`

	var body string
	err := r.db.DB.GetContext(ctx, &body, query, deviceID, string(kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s document: %w", kind, err)
	}

	return []byte(body), nil
}

func (r *PostgresDocumentRepository) Update(ctx context.Context, kind entities.EntityKind, deviceID string, fn func(current []byte) ([]byte, error)) error {
	selectQuery := `
		SELECT body
		FROM device_documents
		WHERE device_id = $1 AND kind = $2
		FOR UPDATE`

	upsertQuery := `
		INSERT INTO device_documents (device_id, kind, body, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (device_id, kind)
		DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`

	return r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var current []byte
		var body string
		err := tx.GetContext(ctx, &body, selectQuery, deviceID, string(kind))
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("lock %s document: %w", kind, err)
		default:
			current = []byte(body)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, upsertQuery, deviceID, string(kind), string(next)); err != nil {
			return fmt.Errorf("save %s document: %w", kind, err)
		}
		return nil
	})
}

func (r *PostgresDocumentRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
