package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stackslab/ide/internal/repository"
)

// CredentialRepository implements repository.CredentialRepository for PostgreSQL.
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Get(ctx context.Context, tenantID, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE tenant_id = $1 AND key = $2`,
		tenantID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credential: %w", err)
	}
	return value, nil
}

func (r *CredentialRepository) Set(ctx context.Context, tenantID, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO credentials (tenant_id, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (tenant_id, key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		tenantID, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Delete(ctx context.Context, tenantID, key string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE tenant_id = $1 AND key = $2`, tenantID, key,
	); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
