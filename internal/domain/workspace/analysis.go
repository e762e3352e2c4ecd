package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const reportRule = "=================================================="

// ResolveCredential picks the analysis key: the explicit argument, then the
// stored credential, then the configured default.
func (s *Store) ResolveCredential(ctx context.Context, explicit string) string {
	if k := strings.TrimSpace(explicit); k != "" {
		return k
	}
	if s.deps.Credentials != nil {
		k, err := s.deps.Credentials.Get(ctx, s.tenantID, CredentialKey)
		if err == nil && strings.TrimSpace(k) != "" {
			return strings.TrimSpace(k)
		}
	}
	return strings.TrimSpace(s.deps.DefaultAPIKey)
}

// SetCredential stores the tenant's analysis API key.
func (s *Store) SetCredential(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" || s.deps.Credentials == nil {
		return ErrInvalidInput
	}
	if err := s.deps.Credentials.Set(ctx, s.tenantID, CredentialKey, key); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}
	return nil
}

// ClearCredential removes the tenant's stored API key.
func (s *Store) ClearCredential(ctx context.Context) error {
	if s.deps.Credentials == nil {
		return nil
	}
	if err := s.deps.Credentials.Delete(ctx, s.tenantID, CredentialKey); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// HasCredential reports whether an analysis key is available without an
// explicit argument.
func (s *Store) HasCredential(ctx context.Context) bool {
	return s.ResolveCredential(ctx, "") != ""
}

// AnalysisReport describes the report file produced by an analysis run.
type AnalysisReport struct {
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name"`
	Model    string `json:"model"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

// DebugWithAI sends a file to the analyzer for a full audit, streams the
// answer into the terminal and opens a Markdown report. When the provider
// reports insufficient credits it retries once on the fallback tier.
func (s *Store) DebugWithAI(ctx context.Context, fileID, apiKey string) (*AnalysisReport, error) {
	file, ok := s.File(fileID)
	if !ok {
		return nil, nil
	}
	if strings.TrimSpace(file.Content) == "" {
		if err := s.AddTerminalOutput(ctx, OutputError, "Cannot debug empty file"); err != nil {
			return nil, err
		}
		return nil, ErrEmptyContent
	}
	key := s.ResolveCredential(ctx, apiKey)
	if key == "" {
		if err := s.AddTerminalOutput(ctx, OutputError, "OpenRouter API key required for AI debugging"); err != nil {
			return nil, err
		}
		return nil, ErrCredentialRequired
	}
	if s.deps.Analyzer == nil {
		return nil, ErrAnalyzerUnavailable
	}

	if err := s.begin(ctx, func(st State) bool { return st.IsDebugging }, SetDebugging{Value: true}, ErrAnalysisInProgress); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	defer s.end(ctx, SetDebugging{Value: false})

	n := &narrator{store: s, ctx: ctx}
	n.say(OutputInfo, fmt.Sprintf("Starting AI debugging for %s...", file.Name), 200*time.Millisecond)
	n.say(OutputInfo, "Analyzing contract with Claude Sonnet...", 200*time.Millisecond)
	n.say(OutputInfo, fmt.Sprintf("Contract size: %d characters", len(file.Content)), 200*time.Millisecond)
	n.say(OutputInfo, "Sending to OpenRouter.ai...", 0)
	if n.err != nil {
		return nil, n.err
	}

	req := AnalysisRequest{APIKey: key, FileName: file.Name, Code: file.Content}
	analysis, err := s.deps.Analyzer.Debug(ctx, req)
	if errors.Is(err, ErrInsufficientCredits) {
		n.say(OutputWarning, "Insufficient credits for Claude Sonnet, trying Claude Haiku...", 500*time.Millisecond)
		req.Fallback = true
		analysis, err = s.deps.Analyzer.Debug(ctx, req)
	}
	if err != nil {
		s.logger.Warn("ai debugging failed", "file", file.Name, "error", err)
		fail := &narrator{store: s, ctx: ctx}
		fail.say(OutputError, "AI debugging failed: "+err.Error(), 0)
		for _, h := range remediationHints(err) {
			fail.say(h.typ, h.msg, 0)
		}
		return nil, err
	}

	n.say(OutputSuccess, fmt.Sprintf("AI debugging completed with %s!", analysis.Label), 100*time.Millisecond)
	n.say(OutputInfo, fmt.Sprintf("AI Debugging Report for %s:", file.Name), 100*time.Millisecond)
	n.say(OutputInfo, reportRule, 0)
	lines := analysisLines(analysis.Text)
	for i, line := range lines {
		var pause time.Duration
		if i < len(lines)-1 {
			pause = 50 * time.Millisecond
		}
		n.say(ClassifyLine(line), line, pause)
	}
	n.say(OutputInfo, reportRule, 0)
	n.say(OutputSuccess, "AI debugging analysis complete!", 0)
	n.say(OutputInfo, "Review the suggestions above to improve your contract", 200*time.Millisecond)
	n.say(OutputInfo, "Creating AI debug report file...", 0)
	if n.err != nil {
		return nil, n.err
	}

	now := s.deps.Clock()
	name := fmt.Sprintf("ai_debug_%s_%d.md", reportBase(file.Name), now.UnixMilli())
	content := DebugReport(file, analysis.Label, analysis.Text, now)
	return s.publishReport(ctx, name, content, "AI debug report opened: ", analysis)
}

// QuickAnalyzeWithAI runs a short, low-cost analysis without fallback.
func (s *Store) QuickAnalyzeWithAI(ctx context.Context, fileID, apiKey string) (*AnalysisReport, error) {
	file, ok := s.File(fileID)
	if !ok {
		return nil, nil
	}
	if strings.TrimSpace(file.Content) == "" {
		if err := s.AddTerminalOutput(ctx, OutputError, "Cannot analyze empty file"); err != nil {
			return nil, err
		}
		return nil, ErrEmptyContent
	}
	key := s.ResolveCredential(ctx, apiKey)
	if key == "" {
		if err := s.AddTerminalOutput(ctx, OutputError, "OpenRouter API key required for AI analysis"); err != nil {
			return nil, err
		}
		return nil, ErrCredentialRequired
	}
	if s.deps.Analyzer == nil {
		return nil, ErrAnalyzerUnavailable
	}

	if err := s.begin(ctx, func(st State) bool { return st.IsDebugging }, SetDebugging{Value: true}, ErrAnalysisInProgress); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	defer s.end(ctx, SetDebugging{Value: false})

	n := &narrator{store: s, ctx: ctx}
	n.say(OutputInfo, fmt.Sprintf("Quick AI analysis for %s...", file.Name), 200*time.Millisecond)
	if n.err != nil {
		return nil, n.err
	}

	analysis, err := s.deps.Analyzer.QuickAnalysis(ctx, AnalysisRequest{APIKey: key, FileName: file.Name, Code: file.Content})
	if err != nil {
		s.logger.Warn("quick analysis failed", "file", file.Name, "error", err)
		fail := &narrator{store: s, ctx: ctx}
		fail.say(OutputError, "Quick analysis failed: "+err.Error(), 0)
		for _, h := range remediationHints(err) {
			if h.fallbackOnly {
				continue
			}
			fail.say(h.typ, h.msg, 0)
		}
		return nil, err
	}

	n.say(OutputSuccess, "Quick analysis completed!", 100*time.Millisecond)
	n.say(OutputInfo, fmt.Sprintf("Quick Analysis for %s:", file.Name), 0)
	for _, line := range analysisLines(analysis.Text) {
		n.say(OutputInfo, line, 100*time.Millisecond)
	}
	if n.err == nil {
		n.err = s.deps.Pause(ctx, 200*time.Millisecond)
	}
	n.say(OutputInfo, "Creating quick analysis report...", 0)
	if n.err != nil {
		return nil, n.err
	}

	now := s.deps.Clock()
	name := fmt.Sprintf("quick_analysis_%s_%d.md", reportBase(file.Name), now.UnixMilli())
	content := QuickReport(file, analysis.Label, analysis.Text, now)
	return s.publishReport(ctx, name, content, "Quick analysis report opened: ", analysis)
}

// publishReport creates the report in the active project, opens it and
// archives a copy when a sink is configured.
func (s *Store) publishReport(ctx context.Context, name, content, openedPrefix string, analysis Analysis) (*AnalysisReport, error) {
	report := &AnalysisReport{FileName: name, Model: analysis.Model, Label: analysis.Label, Text: analysis.Text}

	f, err := s.CreateFile(ctx, name, content)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Pause(ctx, 300*time.Millisecond); err != nil {
		return nil, err
	}
	if f != nil {
		report.FileID = f.ID
		if err := s.OpenFile(ctx, f.ID); err != nil {
			return nil, err
		}
		if err := s.AddTerminalOutput(ctx, OutputSuccess, openedPrefix+name); err != nil {
			return nil, err
		}
	}

	if s.deps.Reports != nil {
		if err := s.deps.Reports.Archive(ctx, s.tenantID, name, content); err != nil {
			s.logger.Warn("failed to archive report", "name", name, "error", err)
		}
	}
	return report, nil
}

type hint struct {
	typ OutputType
	msg string
	// fallbackOnly hints only make sense on the full debug path.
	fallbackOnly bool
}

func remediationHints(err error) []hint {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return []hint{
			{typ: OutputInfo, msg: "Please check your OpenRouter API key"},
			{typ: OutputInfo, msg: "Get your API key from: https://openrouter.ai/keys"},
		}
	case errors.Is(err, ErrInsufficientCredits):
		return []hint{
			{typ: OutputWarning, msg: "Insufficient credits for AI debugging"},
			{typ: OutputInfo, msg: "Add credits at: https://openrouter.ai/settings/credits"},
			{typ: OutputInfo, msg: "Claude Haiku is more affordable than Claude Sonnet", fallbackOnly: true},
		}
	case errors.Is(err, ErrRateLimited):
		return []hint{{typ: OutputWarning, msg: "Rate limit exceeded - please wait and try again"}}
	default:
		return []hint{{typ: OutputInfo, msg: "Please try again or check your internet connection"}}
	}
}

// ClassifyLine tags an analysis line by keyword.
func ClassifyLine(line string) OutputType {
	l := strings.ToLower(line)
	switch {
	case strings.Contains(l, "error"), strings.Contains(l, "vulnerability"), strings.Contains(l, "critical"):
		return OutputError
	case strings.Contains(l, "warning"), strings.Contains(l, "caution"), strings.Contains(l, "consider"):
		return OutputWarning
	case strings.Contains(l, "good"), strings.Contains(l, "correct"), strings.Contains(l, "secure"):
		return OutputSuccess
	default:
		return OutputInfo
	}
}

func analysisLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func reportBase(name string) string {
	return strings.Replace(name, ".clar", "", 1)
}
