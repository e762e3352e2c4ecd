package compiler_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stackslab/ide/internal/domain/compiler"
	"github.com/stretchr/testify/require"
)

func TestExtract_Probability(t *testing.T) {
	f := compiler.Extract("(define-public (f) (ok 1))")
	require.Equal(t, 3, f.OpenParens)
	require.Equal(t, 3, f.CloseParens)
	require.True(t, f.BalancedParens())
	require.True(t, f.HasFunctions())
	require.True(t, f.OkResponse)
	require.False(t, f.ErrorHandling)
	require.InDelta(t, 0.8, f.SuccessProbability(), 1e-9)
}

func TestExtract_ProbabilityCapped(t *testing.T) {
	src := `;; token
(define-fungible-token t)
(define-constant err-x (err u1))
(define-public (f) (begin (asserts! true err-x) (ok 1)))`
	require.InDelta(t, 1.0, compiler.Extract(src).SuccessProbability(), 1e-9)
}

func TestHeuristic_UnbalancedAlwaysFails(t *testing.T) {
	h := compiler.NewHeuristic(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		out, err := h.Compile(context.Background(), compiler.Source{Name: "x.clar", Content: "((("})
		require.NoError(t, err)
		require.False(t, out.Success)
		require.Contains(t, out.Errors, "Syntax error: Unmatched parentheses (3 open, 0 close)")
		require.Contains(t, out.Errors, "No function definitions found - contract appears incomplete")
	}
}

func TestHeuristic_EmptyFails(t *testing.T) {
	h := compiler.NewHeuristic(rand.NewPCG(1, 2))
	out, err := h.Compile(context.Background(), compiler.Source{Content: "  "})
	require.NoError(t, err)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "Contract file is empty")
	require.Contains(t, out.Errors, "No Clarity expressions found - check syntax")
}

func TestHeuristic_MostlySucceeds(t *testing.T) {
	h := compiler.NewHeuristic(rand.NewPCG(42, 7))
	successes := 0
	const runs = 1000
	for i := 0; i < runs; i++ {
		out, err := h.Compile(context.Background(), compiler.Source{Content: "(define-public (f) (ok 1))"})
		require.NoError(t, err)
		if out.Success {
			successes++
			require.Empty(t, out.Errors)
			require.GreaterOrEqual(t, out.BytecodeSize, 500)
			require.Less(t, out.BytecodeSize, 1500)
			require.GreaterOrEqual(t, out.GasEstimate, out.BytecodeSize*6/5)
			require.Len(t, out.Stages, 5)
		}
	}
	require.Greater(t, successes, 700)
	require.Less(t, successes, 900)
}

func TestHeuristic_Warnings(t *testing.T) {
	h := compiler.NewHeuristic(rand.NewPCG(3, 3))
	var out compiler.Outcome
	for i := 0; i < 50 && !out.Success; i++ {
		var err error
		out, err = h.Compile(context.Background(), compiler.Source{Content: "(define-public (f) (ok 1))"})
		require.NoError(t, err)
	}
	require.True(t, out.Success)
	require.Equal(t, []string{
		"Consider adding comments to improve code readability",
		"Contract seems quite small - ensure all functionality is implemented",
		"Consider adding error handling with (err ...) responses",
		"Consider using asserts! for input validation",
		"Consider defining error constants for better error handling",
	}, out.Warnings)
}

func TestHeuristic_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := compiler.NewHeuristic(nil).Compile(ctx, compiler.Source{Content: "(a)"})
	require.ErrorIs(t, err, context.Canceled)
}
