package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stackslab/ide/internal/domain/compiler"
	"github.com/stackslab/ide/internal/repository"
)

// Deps are the collaborators of a Store. Repo is required; everything else
// has a working default or disables the feature that needs it.
type Deps struct {
	Repo        StateRepository
	Credentials CredentialStore
	Analyzer    Analyzer
	Compiler    compiler.Strategy
	Reports     ReportSink

	// DefaultAPIKey is used when neither the caller nor the credential
	// store supplies one.
	DefaultAPIKey string

	Clock func() time.Time
	Pause func(ctx context.Context, d time.Duration) error
	NewID func() string
}

// Store is the IDE state store of one tenant. All mutations go through
// Reduce and are persisted before listeners are notified.
type Store struct {
	tenantID string
	deps     Deps
	logger   *slog.Logger

	mu    sync.Mutex
	state State

	seq atomic.Uint64

	lmu          sync.RWMutex
	listeners    map[int]Listener
	nextListener int
}

// Open loads the tenant's persisted state, seeding the default project
// when nothing usable is stored.
func Open(ctx context.Context, tenantID string, deps Deps, logger *slog.Logger) (*Store, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("%w: state repository is required", ErrInvalidInput)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Pause == nil {
		deps.Pause = SleepPause(1)
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Compiler == nil {
		deps.Compiler = compiler.NewHeuristic(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	data, err := deps.Repo.Load(ctx, tenantID, StateKey)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	s := &Store{
		tenantID:  tenantID,
		deps:      deps,
		logger:    logger.With("tenant", tenantID),
		listeners: make(map[int]Listener),
	}
	var ok bool
	s.state, ok = Decode(data)
	if !ok {
		s.logger.Debug("seeding default workspace")
		s.state = DefaultState(deps.Clock())
		if err := s.persist(ctx, s.state); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// TenantID returns the owner of the store.
func (s *Store) TenantID() string {
	return s.tenantID
}

// transition applies the actions returned by plan against the current
// state under the store lock, then persists and notifies. plan returning
// no actions leaves everything untouched.
func (s *Store) transition(ctx context.Context, plan func(State) ([]Action, error)) (State, error) {
	s.mu.Lock()
	actions, err := plan(s.state)
	if err != nil || len(actions) == 0 {
		st := s.state
		s.mu.Unlock()
		return st, err
	}
	next := s.state
	for _, a := range actions {
		next = Reduce(next, a)
	}
	s.state = next
	perr := s.persist(ctx, next)
	s.mu.Unlock()

	for _, a := range actions {
		s.publish(a)
	}
	return next, perr
}

func (s *Store) dispatch(ctx context.Context, actions ...Action) error {
	_, err := s.transition(ctx, func(State) ([]Action, error) { return actions, nil })
	return err
}

func (s *Store) persist(ctx context.Context, st State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	if err := s.deps.Repo.Save(ctx, s.tenantID, StateKey, data); err != nil {
		s.logger.Warn("failed to persist state", "error", err)
		return fmt.Errorf("persisting state: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Project returns a project by id.
func (s *Store) Project(id string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.findProject(id)
	if !ok {
		return Project{}, false
	}
	p.Files = append([]File(nil), p.Files...)
	return p, true
}

// File returns a file by id from any project.
func (s *Store) File(id string) (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.findFile(id)
}

// ActiveFile returns the active tab's file.
func (s *Store) ActiveFile() (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActiveFile == "" {
		return File{}, false
	}
	return s.state.findFile(s.state.ActiveFile)
}

// FindFileByName returns the first file in the active project with name.
func (s *Store) FindFileByName(name string) (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.findProject(s.state.ActiveProject)
	if !ok {
		return File{}, false
	}
	for _, f := range p.Files {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

// ListProjects returns project summaries in creation order.
func (s *Store) ListProjects() []ProjectSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ProjectSummary, 0, len(s.state.Projects))
	for _, p := range s.state.Projects {
		out = append(out, ProjectSummary{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			FileCount:    len(p.Files),
			Active:       p.ID == s.state.ActiveProject,
			CreatedAt:    p.CreatedAt,
			LastModified: p.LastModified,
		})
	}
	return out
}

// CompilationResults returns the compile history, newest first.
func (s *Store) CompilationResults() []CompilationResult {
	return s.Snapshot().CompilationResults
}

// CreateProject creates a project, activates it and closes all tabs.
func (s *Store) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	now := s.deps.Clock()
	proj := Project{
		ID:           s.deps.NewID(),
		Name:         name,
		Description:  description,
		Files:        []File{},
		CreatedAt:    now,
		LastModified: now,
	}
	if err := s.dispatch(ctx, CreateProject{Project: proj}); err != nil {
		return nil, err
	}
	if err := s.AddTerminalOutput(ctx, OutputInfo, "Created new project: "+name); err != nil {
		return nil, err
	}
	return &proj, nil
}

// DeleteProject removes a project. Unknown ids are ignored.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if _, ok := st.findProject(id); !ok {
			return nil, nil
		}
		return []Action{DeleteProject{ID: id}}, nil
	})
	return err
}

// SetActiveProject switches project. Tabs are not preserved across switches.
func (s *Store) SetActiveProject(ctx context.Context, id string) error {
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if _, ok := st.findProject(id); !ok {
			return nil, nil
		}
		return []Action{SetActiveProject{ID: id}}, nil
	})
	return err
}

// CreateFile adds a file to the active project. It returns nil without error
// when no project is active. The file is not opened.
func (s *Store) CreateFile(ctx context.Context, name, content string) (*File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	file := File{
		ID:           s.deps.NewID(),
		Name:         name,
		Content:      content,
		Language:     LanguageFor(name),
		Path:         PathFor(name),
		LastModified: s.deps.Clock(),
	}
	created := false
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if _, ok := st.findProject(st.ActiveProject); !ok {
			return nil, nil
		}
		created = true
		return []Action{CreateFile{File: file}}, nil
	})
	if err != nil || !created {
		return nil, err
	}

	if !isGeneratedReport(name) {
		if err := s.AddTerminalOutput(ctx, OutputInfo, "Created file: "+name); err != nil {
			return nil, err
		}
	}
	return &file, nil
}

// DeleteFile removes a file from its project and from the open tabs.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if _, ok := st.findFile(id); !ok && !contains(st.OpenFiles, id) {
			return nil, nil
		}
		return []Action{DeleteFile{ID: id}}, nil
	})
	return err
}

// OpenFile opens a tab for the file and activates it.
func (s *Store) OpenFile(ctx context.Context, id string) error {
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if _, ok := st.findFile(id); !ok {
			return nil, nil
		}
		return []Action{OpenFile{ID: id}}, nil
	})
	return err
}

// CloseFile closes a tab. Closing the active tab activates the most
// recently opened remaining one.
func (s *Store) CloseFile(ctx context.Context, id string) error {
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if !contains(st.OpenFiles, id) {
			return nil, nil
		}
		return []Action{CloseFile{ID: id}}, nil
	})
	return err
}

// SetActiveFile changes the active tab. Membership in the open set is the
// caller's concern.
func (s *Store) SetActiveFile(ctx context.Context, id string) error {
	return s.dispatch(ctx, SetActiveFile{ID: id})
}

// UpdateFileContent replaces file content and marks the file modified.
func (s *Store) UpdateFileContent(ctx context.Context, id, content string) error {
	at := s.deps.Clock()
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if _, ok := st.findFile(id); !ok {
			return nil, nil
		}
		return []Action{UpdateFileContent{ID: id, Content: content, At: at}}, nil
	})
	return err
}

// SaveFile clears the modified flag and logs the save.
func (s *Store) SaveFile(ctx context.Context, id string) error {
	var name string
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		f, ok := st.findFile(id)
		if !ok {
			return nil, nil
		}
		name = f.Name
		return []Action{SaveFile{ID: id}}, nil
	})
	if err != nil || name == "" {
		return err
	}
	return s.AddTerminalOutput(ctx, OutputSuccess, "Saved: "+name)
}

// begin atomically sets a busy flag, failing with busyErr when it is
// already set.
func (s *Store) begin(ctx context.Context, busy func(State) bool, action Action, busyErr error) error {
	_, err := s.transition(ctx, func(st State) ([]Action, error) {
		if busy(st) {
			return nil, busyErr
		}
		return []Action{action}, nil
	})
	if errors.Is(err, busyErr) {
		return err
	}
	if err != nil {
		s.logger.Warn("busy flag persisted with error", "error", err)
	}
	return nil
}

// end clears a busy flag. It runs even when ctx is already canceled.
func (s *Store) end(ctx context.Context, action Action) {
	if err := s.dispatch(context.WithoutCancel(ctx), action); err != nil {
		s.logger.Warn("failed to clear busy flag", "error", err)
	}
}

// SleepPause returns a pause function that sleeps for d scaled by factor.
// A factor of zero disables pauses.
func SleepPause(factor float64) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		d = time.Duration(float64(d) * factor)
		if d <= 0 {
			return ctx.Err()
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}
