package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/dtroode/inkdesk/internal/model"
)

var _ model.Tier = (*CredentialRepository)(nil)

// CredentialRepository is a persistent tier stored in the credentials table.
type CredentialRepository struct {
	db        *Connection
	namespace string
}

func NewCredentialRepository(db *Connection, namespace string) *CredentialRepository {
	return &CredentialRepository{db: db, namespace: namespace}
}

func (r *CredentialRepository) Name() string {
	return "postgres:" + r.namespace
}

func (r *CredentialRepository) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM credentials WHERE namespace = $1 AND key = $2`

	var value string
	err := r.db.QueryRowContext(ctx, query, r.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get credential %s: %w", key, err)
	}
	return value, true, nil
}

// SetAll upserts the values in one transaction. Keys are written in sorted
// order.
func (r *CredentialRepository) SetAll(ctx context.Context, values map[string]string) error {
	const query = `
        INSERT INTO credentials (namespace, key, value, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, query, r.namespace, k, values[k]); err != nil {
				return fmt.Errorf("failed to set credential %s: %w", k, err)
			}
		}
		return nil
	})
}

func (r *CredentialRepository) Delete(ctx context.Context, keys ...string) error {
	const query = `DELETE FROM credentials WHERE namespace = $1 AND key = $2`

	if len(keys) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, query, r.namespace, k); err != nil {
				return fmt.Errorf("failed to delete credential %s: %w", k, err)
			}
		}
		return nil
	})
}

func (r *CredentialRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
