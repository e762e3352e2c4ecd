package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stackslab/ide/internal/repository"
)

// CredentialRepository implements repository.CredentialRepository for SQLite
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new CredentialRepository
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get returns a stored credential
func (r *CredentialRepository) Get(ctx context.Context, tenantID, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE tenant_id = ? AND key = ?`,
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

// Set stores or replaces a credential
func (r *CredentialRepository) Set(ctx context.Context, tenantID, key, value string) error {
	query := `
		INSERT INTO credentials (tenant_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tenant_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, tenantID, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}
	return nil
}

// Delete removes a credential. Deleting a missing credential is not an error.
func (r *CredentialRepository) Delete(ctx context.Context, tenantID, key string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE tenant_id = ? AND key = ?`,
		tenantID, key,
	); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
