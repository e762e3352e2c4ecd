package workspace

import "errors"

var (
	// ErrInvalidInput indicates invalid workspace input.
	ErrInvalidInput = errors.New("invalid workspace input")
	// ErrEmptyContent indicates a compile or analysis request on an empty file.
	ErrEmptyContent = errors.New("file content is empty")
	// ErrCredentialRequired indicates no analysis credential is available.
	ErrCredentialRequired = errors.New("analysis credential required")
	// ErrCompileInProgress rejects a second compilation while one is running.
	ErrCompileInProgress = errors.New("compilation already in progress")
	// ErrAnalysisInProgress rejects a second analysis while one is running.
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	// ErrAnalyzerUnavailable indicates the store has no analysis client.
	ErrAnalyzerUnavailable = errors.New("analysis client not configured")
)

// Analysis provider error categories. Analyzer implementations wrap these.
var (
	ErrInvalidCredential   = errors.New("invalid API key")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrInsufficientCredits = errors.New("insufficient credits")
)
