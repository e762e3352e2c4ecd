package workspace_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stackslab/ide/internal/domain/compiler"
	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/repository"
	"github.com/stretchr/testify/require"
)

const tenantID = "tenant1"

type memRepo struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newMemRepo() *memRepo {
	return &memRepo{data: make(map[string][]byte)}
}

func (r *memRepo) Load(_ context.Context, tenantID, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.data[tenantID+"/"+key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), d...), nil
}

func (r *memRepo) Save(_ context.Context, tenantID, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[tenantID+"/"+key] = append([]byte(nil), data...)
	r.saves++
	return nil
}

func noPause(context.Context, time.Duration) error { return nil }

func openStore(t *testing.T, deps workspace.Deps) *workspace.Store {
	t.Helper()
	if deps.Repo == nil {
		deps.Repo = newMemRepo()
	}
	if deps.Pause == nil {
		deps.Pause = noPause
	}
	if deps.Compiler == nil {
		deps.Compiler = compiler.NewHeuristic(rand.NewPCG(11, 17))
	}
	s, err := workspace.Open(context.Background(), tenantID, deps, nil)
	require.NoError(t, err)
	return s
}

// openEmptyProject returns a store whose active project is a fresh "Demo".
func openEmptyProject(t *testing.T, deps workspace.Deps) (*workspace.Store, *workspace.Project) {
	t.Helper()
	s := openStore(t, deps)
	proj, err := s.CreateProject(context.Background(), "Demo", "")
	require.NoError(t, err)
	return s, proj
}

func messages(entries []workspace.TerminalEntry) []string {
	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i].Message)
	}
	return out
}

func countType(entries []workspace.TerminalEntry, typ workspace.OutputType) int {
	n := 0
	for _, e := range entries {
		if e.Type == typ {
			n++
		}
	}
	return n
}
