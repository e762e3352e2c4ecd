package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stackslab/ide/internal/repository"
)

// APIKeyRepository implements repository.APIKeyRepository for SQLite
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create registers a hashed API key
func (r *APIKeyRepository) Create(ctx context.Context, key *repository.APIKey) error {
	if key == nil || key.ID == "" || key.KeyHash == "" || key.TenantID == "" {
		return repository.ErrInvalidInput
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, key_hash, tenant_id, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		key.ID, key.KeyHash, key.TenantID, key.Name, key.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("api key %s: %w", key.ID, repository.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByHash resolves a key hash and stamps its last use
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*repository.APIKey, error) {
	var key repository.APIKey
	var name sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, key_hash, tenant_id, name, created_at FROM api_keys WHERE key_hash = ?`,
		keyHash,
	).Scan(&key.ID, &key.KeyHash, &key.TenantID, &name, &key.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	key.Name = name.String

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE id = ?`, time.Now().UTC(), key.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to stamp api key: %w", err)
	}
	return &key, nil
}

// Delete removes an API key
func (r *APIKeyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
