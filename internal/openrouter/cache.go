package openrouter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stackslab/ide/internal/domain/workspace"
)

// CachedAnalyzer memoizes analyses of identical code so repeated requests
// do not spend provider credits. Entries are scoped to the API key that paid
// for them, so a different or revoked key always reaches the provider.
// Errors are never cached.
type CachedAnalyzer struct {
	next   workspace.Analyzer
	cache  *lru.Cache[string, workspace.Analysis]
	logger *slog.Logger
}

// NewCachedAnalyzer wraps next with an LRU of the given size.
func NewCachedAnalyzer(next workspace.Analyzer, size int, logger *slog.Logger) (*CachedAnalyzer, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, workspace.Analysis](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedAnalyzer{next: next, cache: cache, logger: logger}, nil
}

func (c *CachedAnalyzer) Debug(ctx context.Context, req workspace.AnalysisRequest) (workspace.Analysis, error) {
	return c.lookup(ctx, "debug", req, c.next.Debug)
}

func (c *CachedAnalyzer) QuickAnalysis(ctx context.Context, req workspace.AnalysisRequest) (workspace.Analysis, error) {
	return c.lookup(ctx, "quick", req, c.next.QuickAnalysis)
}

// Len returns the number of cached analyses.
func (c *CachedAnalyzer) Len() int {
	return c.cache.Len()
}

func (c *CachedAnalyzer) lookup(ctx context.Context, kind string, req workspace.AnalysisRequest,
	call func(context.Context, workspace.AnalysisRequest) (workspace.Analysis, error)) (workspace.Analysis, error) {
	key := cacheKey(kind, req)
	if a, ok := c.cache.Get(key); ok {
		c.logger.Debug("analysis cache hit", "kind", kind, "file", req.FileName)
		return a, nil
	}
	a, err := call(ctx, req)
	if err != nil {
		return workspace.Analysis{}, err
	}
	c.cache.Add(key, a)
	return a, nil
}

func cacheKey(kind string, req workspace.AnalysisRequest) string {
	h := sha256.New()
	tier := "primary"
	if req.Fallback {
		tier = "fallback"
	}
	for _, part := range []string{req.APIKey, kind, tier, req.FileName, req.Code} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
