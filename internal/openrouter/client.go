// Package openrouter is a thin client for the OpenRouter chat completions
// API, used for AI review of contract code.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stackslab/ide/internal/domain/workspace"
)

const (
	DefaultBaseURL       = "https://openrouter.ai/api/v1/chat/completions"
	DefaultPrimaryModel  = "anthropic/claude-3.5-sonnet"
	DefaultFallbackModel = "anthropic/claude-3-haiku"
	DefaultQuickModel    = "anthropic/claude-3-haiku"
	DefaultTitle         = "StacksLab IDE"

	primaryMaxTokens  = 2000
	fallbackMaxTokens = 1500
	quickMaxTokens    = 500
)

// Options configure a Client. Zero values select the defaults.
type Options struct {
	BaseURL       string
	PrimaryModel  string
	FallbackModel string
	QuickModel    string
	Referer       string
	Title         string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Client calls the OpenRouter completion endpoint.
type Client struct {
	http   *http.Client
	opts   Options
	logger *slog.Logger
}

// New creates a client.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PrimaryModel == "" {
		opts.PrimaryModel = DefaultPrimaryModel
	}
	if opts.FallbackModel == "" {
		opts.FallbackModel = DefaultFallbackModel
	}
	if opts.QuickModel == "" {
		opts.QuickModel = DefaultQuickModel
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{http: hc, opts: opts, logger: logger}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string    `json:"model"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Debug runs the full audit prompt on the primary model, or on the
// fallback model when req.Fallback is set.
func (c *Client) Debug(ctx context.Context, req workspace.AnalysisRequest) (workspace.Analysis, error) {
	model, tokens := c.opts.PrimaryModel, primaryMaxTokens
	if req.Fallback {
		model, tokens = c.opts.FallbackModel, fallbackMaxTokens
	}
	text, err := c.complete(ctx, req.APIKey, model, tokens, []message{
		{Role: "system", Content: debugSystemPrompt},
		{Role: "user", Content: debugUserPrompt(req.FileName, req.Code)},
	})
	if err != nil {
		return workspace.Analysis{}, err
	}
	return workspace.Analysis{Text: text, Model: model, Label: ModelLabel(model)}, nil
}

// QuickAnalysis runs the short bullet-point prompt on the quick model.
func (c *Client) QuickAnalysis(ctx context.Context, req workspace.AnalysisRequest) (workspace.Analysis, error) {
	model := c.opts.QuickModel
	text, err := c.complete(ctx, req.APIKey, model, quickMaxTokens, []message{
		{Role: "system", Content: quickSystemPrompt},
		{Role: "user", Content: quickUserPrompt(req.Code)},
	})
	if err != nil {
		return workspace.Analysis{}, err
	}
	return workspace.Analysis{Text: text, Model: model, Label: ModelLabel(model)}, nil
}

func (c *Client) complete(ctx context.Context, apiKey, model string, maxTokens int, msgs []message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: 0.1,
		MaxTokens:   maxTokens,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.opts.Referer != "" {
		req.Header.Set("HTTP-Referer", c.opts.Referer)
	}
	req.Header.Set("X-Title", c.opts.Title)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openrouter: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("openrouter response", "model", model, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var er errorResponse
		msg := ""
		if json.Unmarshal(raw, &er) == nil {
			msg = er.Error.Message
		}
		if strings.TrimSpace(msg) == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &ProviderError{Status: resp.StatusCode, Message: msg}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}

// ModelLabel returns the display name of a model id.
func ModelLabel(model string) string {
	switch {
	case strings.Contains(model, "sonnet"):
		return "Claude Sonnet"
	case strings.Contains(model, "haiku"):
		return "Claude Haiku"
	case strings.Contains(model, "opus"):
		return "Claude Opus"
	}
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}
