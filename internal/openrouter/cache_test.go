package openrouter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/openrouter"
	"github.com/stackslab/ide/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedAnalyzer_HitsOnIdenticalCode(t *testing.T) {
	next := new(mocks.Analyzer)
	req := workspace.AnalysisRequest{APIKey: "k", FileName: "a.clar", Code: "(ok 1)"}
	next.On("Debug", mock.Anything, req).Return(workspace.Analysis{Text: "fine", Model: "m"}, nil).Once()

	c, err := openrouter.NewCachedAnalyzer(next, 4, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		a, err := c.Debug(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "fine", a.Text)
	}
	require.Equal(t, 1, c.Len())
	next.AssertExpectations(t)
}

func TestCachedAnalyzer_KeysByKindAndTier(t *testing.T) {
	next := new(mocks.Analyzer)
	req := workspace.AnalysisRequest{APIKey: "k", FileName: "a.clar", Code: "(ok 1)"}
	fb := req
	fb.Fallback = true
	next.On("Debug", mock.Anything, req).Return(workspace.Analysis{Text: "primary"}, nil).Once()
	next.On("Debug", mock.Anything, fb).Return(workspace.Analysis{Text: "fallback"}, nil).Once()
	next.On("QuickAnalysis", mock.Anything, req).Return(workspace.Analysis{Text: "quick"}, nil).Once()

	c, err := openrouter.NewCachedAnalyzer(next, 0, nil)
	require.NoError(t, err)

	a, _ := c.Debug(context.Background(), req)
	require.Equal(t, "primary", a.Text)
	a, _ = c.Debug(context.Background(), fb)
	require.Equal(t, "fallback", a.Text)
	a, _ = c.QuickAnalysis(context.Background(), req)
	require.Equal(t, "quick", a.Text)
	require.Equal(t, 3, c.Len())
	next.AssertExpectations(t)
}

func TestCachedAnalyzer_ErrorsNotCached(t *testing.T) {
	next := new(mocks.Analyzer)
	req := workspace.AnalysisRequest{APIKey: "k", Code: "x"}
	next.On("QuickAnalysis", mock.Anything, req).Return(workspace.Analysis{}, errors.New("boom")).Twice()

	c, err := openrouter.NewCachedAnalyzer(next, 2, nil)
	require.NoError(t, err)

	_, err = c.QuickAnalysis(context.Background(), req)
	require.Error(t, err)
	_, err = c.QuickAnalysis(context.Background(), req)
	require.Error(t, err)
	require.Zero(t, c.Len())
	next.AssertExpectations(t)
}

func TestCachedAnalyzer_ScopedToAPIKey(t *testing.T) {
	next := new(mocks.Analyzer)
	good := workspace.AnalysisRequest{APIKey: "good", FileName: "a.clar", Code: "(ok 1)"}
	bogus := good
	bogus.APIKey = "bogus"
	next.On("Debug", mock.Anything, good).Return(workspace.Analysis{Text: "fine"}, nil).Once()
	next.On("Debug", mock.Anything, bogus).Return(workspace.Analysis{}, workspace.ErrInvalidCredential).Once()

	c, err := openrouter.NewCachedAnalyzer(next, 4, nil)
	require.NoError(t, err)

	a, err := c.Debug(context.Background(), good)
	require.NoError(t, err)
	require.Equal(t, "fine", a.Text)

	_, err = c.Debug(context.Background(), bogus)
	require.ErrorIs(t, err, workspace.ErrInvalidCredential)
	require.Equal(t, 1, c.Len())
	next.AssertExpectations(t)
}
