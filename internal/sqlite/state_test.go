package sqlite

import (
	"context"
	"testing"

	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestStateRepository_LoadMissing(t *testing.T) {
	repo := NewStateRepository(NewTestDB(t))

	_, err := repo.Load(context.Background(), "tenant1", workspace.StateKey)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStateRepository_SaveOverwrites(t *testing.T) {
	repo := NewStateRepository(NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "tenant1", workspace.StateKey, []byte(`{"projects":[]}`)))
	require.NoError(t, repo.Save(ctx, "tenant1", workspace.StateKey, []byte(`{"projects":[{"id":"p"}]}`)))
	require.NoError(t, repo.Save(ctx, "tenant2", workspace.StateKey, []byte(`{"projects":[]}`)))

	data, err := repo.Load(ctx, "tenant1", workspace.StateKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"projects":[{"id":"p"}]}`, string(data))

	data, err = repo.Load(ctx, "tenant2", workspace.StateKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"projects":[]}`, string(data))
}

func TestStateRepository_BacksStore(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	deps := workspace.Deps{
		Repo:  NewStateRepository(db),
		Pause: workspace.SleepPause(0),
	}

	s, err := workspace.Open(ctx, "tenant1", deps, nil)
	require.NoError(t, err)
	proj, err := s.CreateProject(ctx, "Demo", "")
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, "a.clar", "(define-public (f) (ok 1))")
	require.NoError(t, err)

	reopened, err := workspace.Open(ctx, "tenant1", deps, nil)
	require.NoError(t, err)
	got, ok := reopened.Project(proj.ID)
	require.True(t, ok)
	require.Len(t, got.Files, 1)
	require.Equal(t, workspace.LanguageClarity, got.Files[0].Language)
}
