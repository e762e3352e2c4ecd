package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stackslab/ide/internal/domain/workspace"
)

// StoreProvider returns the workspace store of a tenant.
type StoreProvider interface {
	Get(ctx context.Context, tenantID string) (*workspace.Store, error)
}

// Handler implements every workspace operation once; both the JSON-RPC
// endpoint and the MCP tools call into it.
type Handler struct {
	stores StoreProvider
	logger *slog.Logger
}

// NewHandler creates a new MCP handler.
func NewHandler(stores StoreProvider, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{stores: stores, logger: logger}
}

// Methods lists the method names accepted by Handle.
var Methods = []string{
	"create_project", "delete_project", "set_active_project", "list_projects", "get_state",
	"create_file", "delete_file", "open_file", "close_file", "set_active_file",
	"update_file_content", "save_file", "get_file",
	"compile_contract", "debug_with_ai", "quick_analyze_with_ai",
	"get_terminal", "add_terminal_output", "clear_terminal", "get_compilation_results",
	"set_api_key", "clear_api_key", "get_api_key_status",
}

// Handle dispatches a JSON-RPC method to the workspace store.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	start := time.Now()
	result, err := h.dispatch(ctx, tenantID, method, params)
	h.logger.Debug("rpc call", "method", method, "tenant_id", tenantID, "session_id", sessionID,
		"duration_ms", time.Since(start).Milliseconds(), "error", err)
	return result, err
}

func (h *Handler) dispatch(ctx context.Context, tenantID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_project":
		return call(ctx, tenantID, params, h.CreateProject)
	case "delete_project":
		return call(ctx, tenantID, params, h.DeleteProject)
	case "set_active_project":
		return call(ctx, tenantID, params, h.SetActiveProject)
	case "list_projects":
		return call(ctx, tenantID, params, h.ListProjects)
	case "get_state":
		return call(ctx, tenantID, params, h.GetState)
	case "create_file":
		return call(ctx, tenantID, params, h.CreateFile)
	case "delete_file":
		return call(ctx, tenantID, params, h.DeleteFile)
	case "open_file":
		return call(ctx, tenantID, params, h.OpenFile)
	case "close_file":
		return call(ctx, tenantID, params, h.CloseFile)
	case "set_active_file":
		return call(ctx, tenantID, params, h.SetActiveFile)
	case "update_file_content":
		return call(ctx, tenantID, params, h.UpdateFileContent)
	case "save_file":
		return call(ctx, tenantID, params, h.SaveFile)
	case "get_file":
		return call(ctx, tenantID, params, h.GetFile)
	case "compile_contract":
		return call(ctx, tenantID, params, h.CompileContract)
	case "debug_with_ai":
		return call(ctx, tenantID, params, h.DebugWithAI)
	case "quick_analyze_with_ai":
		return call(ctx, tenantID, params, h.QuickAnalyzeWithAI)
	case "get_terminal":
		return call(ctx, tenantID, params, h.GetTerminal)
	case "add_terminal_output":
		return call(ctx, tenantID, params, h.AddTerminalOutput)
	case "clear_terminal":
		return call(ctx, tenantID, params, h.ClearTerminal)
	case "get_compilation_results":
		return call(ctx, tenantID, params, h.GetCompilationResults)
	case "set_api_key":
		return call(ctx, tenantID, params, h.SetAPIKey)
	case "clear_api_key":
		return call(ctx, tenantID, params, h.ClearAPIKey)
	case "get_api_key_status":
		return call(ctx, tenantID, params, h.GetAPIKeyStatus)
	default:
		return nil, mapError(fmt.Errorf("%w: %s", ErrUnknownMethod, method))
	}
}

func call[In, Out any](ctx context.Context, tenantID string, params json.RawMessage,
	fn func(context.Context, string, In) (Out, error)) (any, error) {
	var in In
	if err := decodeParams(params, &in); err != nil {
		return nil, invalidParams(err)
	}
	out, err := fn(ctx, tenantID, in)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return json.Unmarshal(params, out)
}

func (h *Handler) store(ctx context.Context, tenantID string) (*workspace.Store, error) {
	s, err := h.stores.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	return s, nil
}

func (h *Handler) CreateProject(ctx context.Context, tenantID string, p CreateProjectParams) (ProjectResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return ProjectResponse{}, err
	}
	proj, err := s.CreateProject(ctx, p.Name, p.Description)
	if err != nil {
		return ProjectResponse{}, err
	}
	return ProjectResponse{
		ID:           proj.ID,
		Name:         proj.Name,
		Description:  proj.Description,
		Active:       true,
		CreatedAt:    formatTime(proj.CreatedAt),
		LastModified: formatTime(proj.LastModified),
	}, nil
}

func (h *Handler) DeleteProject(ctx context.Context, tenantID string, p ProjectIDParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.DeleteProject(ctx, p.ProjectID) })
}

func (h *Handler) SetActiveProject(ctx context.Context, tenantID string, p ProjectIDParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.SetActiveProject(ctx, p.ProjectID) })
}

func (h *Handler) ListProjects(ctx context.Context, tenantID string, _ EmptyParams) (ProjectListResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return ProjectListResponse{}, err
	}
	return ProjectListResponse{Projects: projectList(s)}, nil
}

func (h *Handler) GetState(ctx context.Context, tenantID string, _ EmptyParams) (StateResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return StateResponse{}, err
	}
	st := s.Snapshot()
	resp := StateResponse{
		ActiveProject: st.ActiveProject,
		ActiveFile:    st.ActiveFile,
		OpenFiles:     st.OpenFiles,
		Files:         []FileResponse{},
		Projects:      projectList(s),
		IsCompiling:   st.IsCompiling,
		IsDebugging:   st.IsDebugging,
	}
	if resp.OpenFiles == nil {
		resp.OpenFiles = []string{}
	}
	if proj, ok := s.Project(st.ActiveProject); ok {
		for _, f := range proj.Files {
			resp.Files = append(resp.Files, fileResponse(f, false))
		}
	}
	return resp, nil
}

func (h *Handler) CreateFile(ctx context.Context, tenantID string, p CreateFileParams) (FileResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return FileResponse{}, err
	}
	f, err := s.CreateFile(ctx, p.Name, p.Content)
	if err != nil {
		return FileResponse{}, err
	}
	if f == nil {
		return FileResponse{}, errNoActiveProject
	}
	return fileResponse(*f, true), nil
}

func (h *Handler) GetFile(ctx context.Context, tenantID string, p FileIDParams) (FileResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return FileResponse{}, err
	}
	f, ok := s.File(p.FileID)
	if !ok {
		return FileResponse{}, &APIError{Code: "FILE_NOT_FOUND", Message: "file not found", RecoveryHint: "Call get_state to list files"}
	}
	return fileResponse(f, true), nil
}

func (h *Handler) DeleteFile(ctx context.Context, tenantID string, p FileIDParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.DeleteFile(ctx, p.FileID) })
}

func (h *Handler) OpenFile(ctx context.Context, tenantID string, p FileIDParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.OpenFile(ctx, p.FileID) })
}

func (h *Handler) CloseFile(ctx context.Context, tenantID string, p FileIDParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.CloseFile(ctx, p.FileID) })
}

func (h *Handler) SetActiveFile(ctx context.Context, tenantID string, p FileIDParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.SetActiveFile(ctx, p.FileID) })
}

func (h *Handler) UpdateFileContent(ctx context.Context, tenantID string, p UpdateFileContentParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.UpdateFileContent(ctx, p.FileID, p.Content) })
}

func (h *Handler) SaveFile(ctx context.Context, tenantID string, p FileIDParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.SaveFile(ctx, p.FileID) })
}

func (h *Handler) CompileContract(ctx context.Context, tenantID string, p FileIDParams) (CompileResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return CompileResponse{}, err
	}
	res, err := s.CompileContract(ctx, p.FileID)
	if err != nil || res == nil {
		return CompileResponse{}, err
	}
	out := compilationResponse(*res)
	return CompileResponse{Ran: true, Result: &out}, nil
}

func (h *Handler) DebugWithAI(ctx context.Context, tenantID string, p AnalyzeParams) (AnalysisResponse, error) {
	return h.analyze(ctx, tenantID, p, (*workspace.Store).DebugWithAI)
}

func (h *Handler) QuickAnalyzeWithAI(ctx context.Context, tenantID string, p AnalyzeParams) (AnalysisResponse, error) {
	return h.analyze(ctx, tenantID, p, (*workspace.Store).QuickAnalyzeWithAI)
}

func (h *Handler) analyze(ctx context.Context, tenantID string, p AnalyzeParams,
	run func(*workspace.Store, context.Context, string, string) (*workspace.AnalysisReport, error)) (AnalysisResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return AnalysisResponse{}, err
	}
	rep, err := run(s, ctx, p.FileID, p.APIKey)
	if err != nil || rep == nil {
		return AnalysisResponse{}, err
	}
	return AnalysisResponse{
		Ran:      true,
		FileID:   rep.FileID,
		FileName: rep.FileName,
		Model:    rep.Model,
		Label:    rep.Label,
		Text:     rep.Text,
	}, nil
}

func (h *Handler) GetTerminal(ctx context.Context, tenantID string, p GetTerminalParams) (TerminalResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return TerminalResponse{}, err
	}
	entries := s.Terminal()
	if p.Limit > 0 && len(entries) > p.Limit {
		entries = entries[:p.Limit]
	}
	resp := TerminalResponse{Entries: make([]TerminalEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, terminalResponse(e))
	}
	return resp, nil
}

func (h *Handler) AddTerminalOutput(ctx context.Context, tenantID string, p AddTerminalOutputParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error {
		return s.AddTerminalOutput(ctx, workspace.OutputType(p.Type), p.Message)
	})
}

func (h *Handler) ClearTerminal(ctx context.Context, tenantID string, _ EmptyParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.ClearTerminal(ctx) })
}

func (h *Handler) GetCompilationResults(ctx context.Context, tenantID string, _ EmptyParams) (CompilationResultsResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return CompilationResultsResponse{}, err
	}
	results := s.CompilationResults()
	resp := CompilationResultsResponse{Results: make([]CompilationResultResponse, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, compilationResponse(r))
	}
	return resp, nil
}

func (h *Handler) SetAPIKey(ctx context.Context, tenantID string, p SetAPIKeyParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.SetCredential(ctx, p.APIKey) })
}

func (h *Handler) ClearAPIKey(ctx context.Context, tenantID string, _ EmptyParams) (OKResponse, error) {
	return h.mutate(ctx, tenantID, func(s *workspace.Store) error { return s.ClearCredential(ctx) })
}

func (h *Handler) GetAPIKeyStatus(ctx context.Context, tenantID string, _ EmptyParams) (APIKeyStatusResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return APIKeyStatusResponse{}, err
	}
	return APIKeyStatusResponse{Configured: s.HasCredential(ctx)}, nil
}

func (h *Handler) mutate(ctx context.Context, tenantID string, fn func(*workspace.Store) error) (OKResponse, error) {
	s, err := h.store(ctx, tenantID)
	if err != nil {
		return OKResponse{}, err
	}
	if err := fn(s); err != nil {
		return OKResponse{}, err
	}
	return OKResponse{OK: true}, nil
}

func projectList(s *workspace.Store) []ProjectResponse {
	projects := s.ListProjects()
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectResponse(p))
	}
	return out
}
