package mcp

import (
	"errors"
	"fmt"

	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/repository"
)

// ErrUnknownMethod is returned by Handle for unsupported methods.
var ErrUnknownMethod = errors.New("unknown method")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`

	// Err is the sentinel the code was derived from.
	Err error `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

func invalidParams(err error) *APIError {
	return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check parameter names and types"}
}

var errNoActiveProject = &APIError{Code: "NO_ACTIVE_PROJECT", Message: "no active project", RecoveryHint: "Call set_active_project or create_project first"}

// MapError maps workspace errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var out *APIError
	switch {
	case errors.Is(err, ErrUnknownMethod):
		out = &APIError{Code: "METHOD_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, workspace.ErrInvalidInput):
		out = &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required fields"}
	case errors.Is(err, workspace.ErrEmptyContent):
		out = &APIError{Code: "EMPTY_CONTENT", Message: "file content is empty", RecoveryHint: "Add code with update_file_content first"}
	case errors.Is(err, workspace.ErrCredentialRequired):
		out = &APIError{Code: "CREDENTIAL_REQUIRED", Message: "OpenRouter API key required", RecoveryHint: "Call set_api_key or pass api_key"}
	case errors.Is(err, workspace.ErrCompileInProgress):
		out = &APIError{Code: "COMPILE_IN_PROGRESS", Message: "compilation already in progress", RecoveryHint: "Retry when the current compilation finishes"}
	case errors.Is(err, workspace.ErrAnalysisInProgress):
		out = &APIError{Code: "ANALYSIS_IN_PROGRESS", Message: "analysis already in progress", RecoveryHint: "Retry when the current analysis finishes"}
	case errors.Is(err, workspace.ErrAnalyzerUnavailable):
		out = &APIError{Code: "ANALYZER_UNAVAILABLE", Message: "analysis client not configured"}
	case errors.Is(err, workspace.ErrInvalidCredential):
		out = &APIError{Code: "INVALID_API_KEY", Message: err.Error(), RecoveryHint: "Check the key at openrouter.ai/keys"}
	case errors.Is(err, workspace.ErrInsufficientCredits):
		out = &APIError{Code: "INSUFFICIENT_CREDITS", Message: err.Error(), RecoveryHint: "Add credits at openrouter.ai/credits"}
	case errors.Is(err, workspace.ErrRateLimited):
		out = &APIError{Code: "RATE_LIMITED", Message: err.Error(), RecoveryHint: "Wait and retry"}
	case errors.Is(err, repository.ErrDuplicate):
		out = &APIError{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, repository.ErrNotFound):
		out = &APIError{Code: "NOT_FOUND", Message: "not found"}
	default:
		return nil
	}
	out.Err = err
	return out
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
