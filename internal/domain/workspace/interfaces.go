package workspace

import "context"

// StateRepository persists serialized workspace state per tenant and key.
type StateRepository interface {
	Load(ctx context.Context, tenantID, key string) ([]byte, error)
	Save(ctx context.Context, tenantID, key string, data []byte) error
}

// CredentialStore keeps the analysis API key per tenant.
type CredentialStore interface {
	Get(ctx context.Context, tenantID, key string) (string, error)
	Set(ctx context.Context, tenantID, key, value string) error
	Delete(ctx context.Context, tenantID, key string) error
}

// AnalysisRequest is the input of one AI analysis call.
type AnalysisRequest struct {
	APIKey   string
	FileName string
	Code     string
	// Fallback selects the lower-cost model tier.
	Fallback bool
}

// Analysis is a completed AI analysis.
type Analysis struct {
	Text  string
	Model string
	Label string
}

// Analyzer runs AI analysis of contract code.
type Analyzer interface {
	Debug(ctx context.Context, req AnalysisRequest) (Analysis, error)
	QuickAnalysis(ctx context.Context, req AnalysisRequest) (Analysis, error)
}

// ReportSink archives generated reports outside the workspace.
type ReportSink interface {
	Archive(ctx context.Context, tenantID, name, content string) error
}
