package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stackslab/ide/internal/repository"
)

// StateRepository implements repository.StateRepository for SQLite
type StateRepository struct {
	db *DB
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// Load returns the stored document for tenant and key
func (r *StateRepository) Load(ctx context.Context, tenantID, key string) ([]byte, error) {
	query := `SELECT data FROM workspace_state WHERE tenant_id = ? AND key = ?`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, tenantID, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return data, nil
}

// Save replaces the stored document for tenant and key
func (r *StateRepository) Save(ctx context.Context, tenantID, key string, data []byte) error {
	query := `
		INSERT INTO workspace_state (tenant_id, key, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tenant_id, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, tenantID, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
