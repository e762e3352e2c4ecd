package mcp

import (
	"time"

	"github.com/stackslab/ide/internal/domain/workspace"
)

type CreateProjectParams struct {
	Name        string `json:"name" jsonschema:"Project display name"`
	Description string `json:"description,omitempty" jsonschema:"Short project description"`
}

type ProjectIDParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type CreateFileParams struct {
	Name    string `json:"name" jsonschema:"File name including extension, e.g. token.clar"`
	Content string `json:"content,omitempty" jsonschema:"Initial file content"`
}

type FileIDParams struct {
	FileID string `json:"file_id" jsonschema:"File ID"`
}

type UpdateFileContentParams struct {
	FileID  string `json:"file_id" jsonschema:"File ID"`
	Content string `json:"content" jsonschema:"New buffer content"`
}

type AnalyzeParams struct {
	FileID string `json:"file_id" jsonschema:"File ID of the contract to analyze"`
	APIKey string `json:"api_key,omitempty" jsonschema:"OpenRouter API key; omit to use the stored key"`
}

type GetTerminalParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of entries, newest first"`
}

type AddTerminalOutputParams struct {
	Type    string `json:"type" jsonschema:"One of info, warning, error, success"`
	Message string `json:"message" jsonschema:"Line text"`
}

type SetAPIKeyParams struct {
	APIKey string `json:"api_key" jsonschema:"OpenRouter API key"`
}

type EmptyParams struct{}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ProjectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	FileCount    int    `json:"file_count"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"created_at"`
	LastModified string `json:"last_modified"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type FileResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Language     string `json:"language"`
	Path         string `json:"path"`
	Content      string `json:"content,omitempty"`
	IsModified   bool   `json:"is_modified"`
	LastModified string `json:"last_modified"`
}

type StateResponse struct {
	ActiveProject string            `json:"active_project,omitempty"`
	ActiveFile    string            `json:"active_file,omitempty"`
	OpenFiles     []string          `json:"open_files"`
	Files         []FileResponse    `json:"files"`
	Projects      []ProjectResponse `json:"projects"`
	IsCompiling   bool              `json:"is_compiling"`
	IsDebugging   bool              `json:"is_debugging"`
}

type CompilationResultResponse struct {
	FileID    string   `json:"file_id,omitempty"`
	Success   bool     `json:"success"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
	Output    string   `json:"output,omitempty"`
	Timestamp string   `json:"timestamp"`
}

type CompileResponse struct {
	Ran    bool                       `json:"ran"`
	Result *CompilationResultResponse `json:"result,omitempty"`
}

type CompilationResultsResponse struct {
	Results []CompilationResultResponse `json:"results"`
}

type AnalysisResponse struct {
	Ran      bool   `json:"ran"`
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Model    string `json:"model,omitempty"`
	Label    string `json:"label,omitempty"`
	Text     string `json:"text,omitempty"`
}

type TerminalEntryResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type TerminalResponse struct {
	Entries []TerminalEntryResponse `json:"entries"`
}

type APIKeyStatusResponse struct {
	Configured bool `json:"configured"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func projectResponse(p workspace.ProjectSummary) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		FileCount:    p.FileCount,
		Active:       p.Active,
		CreatedAt:    formatTime(p.CreatedAt),
		LastModified: formatTime(p.LastModified),
	}
}

func fileResponse(f workspace.File, withContent bool) FileResponse {
	resp := FileResponse{
		ID:           f.ID,
		Name:         f.Name,
		Language:     string(f.Language),
		Path:         f.Path,
		IsModified:   f.IsModified,
		LastModified: formatTime(f.LastModified),
	}
	if withContent {
		resp.Content = f.Content
	}
	return resp
}

func compilationResponse(r workspace.CompilationResult) CompilationResultResponse {
	return CompilationResultResponse{
		FileID:    r.FileID,
		Success:   r.Success,
		Errors:    r.Errors,
		Warnings:  r.Warnings,
		Output:    r.Output,
		Timestamp: formatTime(r.Timestamp),
	}
}

func terminalResponse(e workspace.TerminalEntry) TerminalEntryResponse {
	return TerminalEntryResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Message:   e.Message,
		Timestamp: formatTime(e.Timestamp),
	}
}
