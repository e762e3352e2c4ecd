package sqlite

import (
	"context"
	"testing"

	"github.com/stackslab/ide/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository_CreateAndResolve(t *testing.T) {
	repo := NewAPIKeyRepository(NewTestDB(t))
	ctx := context.Background()

	key := &repository.APIKey{ID: "k1", TenantID: "tenant1", KeyHash: "abc", Name: "laptop"}
	require.NoError(t, repo.Create(ctx, key))
	require.False(t, key.CreatedAt.IsZero())

	got, err := repo.GetByHash(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "tenant1", got.TenantID)
	require.Equal(t, "laptop", got.Name)

	_, err = repo.GetByHash(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAPIKeyRepository_DuplicateHash(t *testing.T) {
	repo := NewAPIKeyRepository(NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &repository.APIKey{ID: "k1", TenantID: "t", KeyHash: "same"}))
	err := repo.Create(ctx, &repository.APIKey{ID: "k2", TenantID: "t", KeyHash: "same"})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestAPIKeyRepository_Delete(t *testing.T) {
	repo := NewAPIKeyRepository(NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &repository.APIKey{ID: "k1", TenantID: "t", KeyHash: "h"}))
	require.NoError(t, repo.Delete(ctx, "k1"))
	require.ErrorIs(t, repo.Delete(ctx, "k1"), repository.ErrNotFound)
	require.ErrorIs(t, repo.Create(ctx, &repository.APIKey{}), repository.ErrInvalidInput)
}
