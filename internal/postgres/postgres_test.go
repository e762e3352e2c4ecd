package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/repository"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to IDE_TEST_POSTGRES_DSN or skips.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("IDE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("IDE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	db, err := New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE workspace_state, credentials, api_keys`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_RequiresDSN(t *testing.T) {
	_, err := New(context.Background(), "  ")
	require.Error(t, err)
}

func TestStateRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewStateRepository(db)
	ctx := context.Background()

	_, err := repo.Load(ctx, "tenant1", workspace.StateKey)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Save(ctx, "tenant1", workspace.StateKey, []byte(`{"projects":[]}`)))
	require.NoError(t, repo.Save(ctx, "tenant1", workspace.StateKey, []byte(`{"projects":[{"id":"p"}]}`)))
	data, err := repo.Load(ctx, "tenant1", workspace.StateKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"projects":[{"id":"p"}]}`, string(data))
}

func TestCredentialRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "tenant1", workspace.CredentialKey, "sk-1"))
	v, err := repo.Get(ctx, "tenant1", workspace.CredentialKey)
	require.NoError(t, err)
	require.Equal(t, "sk-1", v)
	require.NoError(t, repo.Delete(ctx, "tenant1", workspace.CredentialKey))
	_, err = repo.Get(ctx, "tenant1", workspace.CredentialKey)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAPIKeyRepository_Resolve(t *testing.T) {
	db := newTestDB(t)
	repo := NewAPIKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &repository.APIKey{ID: "k1", TenantID: "tenant1", KeyHash: "h1"}))
	got, err := repo.GetByHash(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, "tenant1", got.TenantID)
	require.ErrorIs(t, repo.Create(ctx, &repository.APIKey{ID: "k2", TenantID: "t", KeyHash: "h1"}), repository.ErrDuplicate)
}
