package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stackslab/ide/internal/repository"
)

// APIKeyRepository implements repository.APIKeyRepository for PostgreSQL.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository.
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *repository.APIKey) error {
	if key == nil || key.ID == "" || key.KeyHash == "" || key.TenantID == "" {
		return repository.ErrInvalidInput
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, key_hash, tenant_id, name, created_at) VALUES ($1, $2, $3, $4, $5)`,
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

func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*repository.APIKey, error) {
	var key repository.APIKey
	err := r.db.QueryRowContext(ctx, `
UPDATE api_keys SET last_used = NOW() WHERE key_hash = $1
RETURNING id, key_hash, tenant_id, name, created_at`,
		keyHash,
	).Scan(&key.ID, &key.KeyHash, &key.TenantID, &key.Name, &key.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

func (r *APIKeyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
