package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stackslab/ide/internal/repository"
)

// StateRepository implements repository.StateRepository for PostgreSQL.
type StateRepository struct {
	db *DB
}

// NewStateRepository creates a new StateRepository.
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// Load returns the stored document for tenant and key.
func (r *StateRepository) Load(ctx context.Context, tenantID, key string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM workspace_state WHERE tenant_id = $1 AND key = $2`,
		tenantID, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return data, nil
}

// Save replaces the stored document for tenant and key.
func (r *StateRepository) Save(ctx context.Context, tenantID, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO workspace_state (tenant_id, key, data, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (tenant_id, key)
DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		tenantID, key, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
