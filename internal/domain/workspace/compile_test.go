package workspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stackslab/ide/internal/domain/compiler"
	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stretchr/testify/require"
)

type blockingCompiler struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCompiler) Compile(ctx context.Context, _ compiler.Source) (compiler.Outcome, error) {
	close(b.started)
	<-b.release
	return compiler.Outcome{Success: true, BytecodeSize: 600, GasEstimate: 720}, nil
}

func TestCompile_DemoScenarioMostlySucceeds(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmptyProject(t, workspace.Deps{})
	f, err := s.CreateFile(ctx, "a.clar", "(define-public (f) (ok 1))")
	require.NoError(t, err)

	const runs = 200
	successes := 0
	for i := 0; i < runs; i++ {
		res, err := s.CompileContract(ctx, f.ID)
		require.NoError(t, err)
		require.NotNil(t, res)
		if res.Success {
			successes++
			require.Empty(t, res.Errors)
			require.Contains(t, res.Output, `Contract "a.clar" compiled successfully`)
		}
		require.LessOrEqual(t, len(s.CompilationResults()), workspace.MaxCompilationResults)
	}
	require.Greater(t, successes, runs*6/10)
	require.False(t, s.Snapshot().IsCompiling)
}

func TestCompile_UnbalancedNeverSucceeds(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmptyProject(t, workspace.Deps{})
	f, err := s.CreateFile(ctx, "broken.clar", "(((")
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		res, err := s.CompileContract(ctx, f.ID)
		require.NoError(t, err)
		require.False(t, res.Success)
		require.Contains(t, res.Errors, "Syntax error: Unmatched parentheses (3 open, 0 close)")
		require.Contains(t, res.Errors, "No function definitions found - contract appears incomplete")
		require.Empty(t, res.Output)
	}

	msgs := messages(s.Terminal())
	require.Contains(t, msgs, "broken.clar compilation failed")
	require.Contains(t, msgs, "  1. Syntax error: Unmatched parentheses (3 open, 0 close)")
}

func TestCompile_SuccessNarration(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmptyProject(t, workspace.Deps{Compiler: staticCompiler{compiler.Outcome{
		Success:      true,
		Warnings:     []string{"Consider using asserts! for input validation"},
		Stages:       []compiler.Stage{{Message: "Syntax check passed"}},
		BytecodeSize: 800,
		GasEstimate:  1000,
	}}})
	f, err := s.CreateFile(ctx, "ok.clar", "(define-public (f) (ok 1))")
	require.NoError(t, err)
	require.NoError(t, s.ClearTerminal(ctx))

	res, err := s.CompileContract(ctx, f.ID)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, f.ID, res.FileID)
	require.Equal(t, "Contract \"ok.clar\" compiled successfully\nGenerated bytecode: 800 bytes", res.Output)

	require.Equal(t, []string{
		"Compiling ok.clar...",
		"File path: /ok.clar",
		"File size: 26 characters",
		"Syntax check passed",
		"ok.clar compiled successfully!",
		"Compilation Summary:",
		"  Bytecode size: 800 bytes",
		"  Estimated gas: 1000 units",
		"  Warnings: 1",
		"  Errors: 0",
		"Warnings:",
		"  1. Consider using asserts! for input validation",
		"Contract ready for deployment!",
	}, messages(s.Terminal()))
	require.Equal(t, 1, countType(s.Terminal(), workspace.OutputWarning))
}

func TestCompile_EmptyFileRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmptyProject(t, workspace.Deps{})
	f, err := s.CreateFile(ctx, "empty.clar", "   ")
	require.NoError(t, err)

	res, err := s.CompileContract(ctx, f.ID)
	require.ErrorIs(t, err, workspace.ErrEmptyContent)
	require.Nil(t, res)
	require.Empty(t, s.CompilationResults())
	require.Equal(t, workspace.OutputError, s.Terminal()[0].Type)
}

func TestCompile_MissingFileIsNoOp(t *testing.T) {
	s := openStore(t, workspace.Deps{})
	before := len(s.Terminal())
	res, err := s.CompileContract(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, res)
	require.Len(t, s.Terminal(), before)
}

func TestCompile_SingleFlight(t *testing.T) {
	ctx := context.Background()
	bc := &blockingCompiler{started: make(chan struct{}), release: make(chan struct{})}
	s := openStore(t, workspace.Deps{Compiler: bc})

	done := make(chan error, 1)
	go func() {
		_, err := s.CompileContract(ctx, workspace.TokenContractID)
		done <- err
	}()
	<-bc.started
	require.True(t, s.Snapshot().IsCompiling)

	_, err := s.CompileContract(ctx, workspace.NFTContractID)
	require.ErrorIs(t, err, workspace.ErrCompileInProgress)

	close(bc.release)
	require.NoError(t, <-done)
	require.False(t, s.Snapshot().IsCompiling)
	require.Len(t, s.CompilationResults(), 1)
}

type staticCompiler struct {
	out compiler.Outcome
}

func (c staticCompiler) Compile(context.Context, compiler.Source) (compiler.Outcome, error) {
	return c.out, nil
}

func TestCompile_CallerCancelDoesNotAbort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pause := func(pctx context.Context, _ time.Duration) error {
		cancel()
		return pctx.Err()
	}
	s := openStore(t, workspace.Deps{
		Pause:    pause,
		Compiler: staticCompiler{out: compiler.Outcome{Success: true, BytecodeSize: 700, GasEstimate: 840}},
	})

	res, err := s.CompileContract(ctx, workspace.TokenContractID)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.ErrorIs(t, ctx.Err(), context.Canceled)
	require.Len(t, s.CompilationResults(), 1)
	require.False(t, s.Snapshot().IsCompiling)
	require.Contains(t, messages(s.Terminal()), "Contract ready for deployment!")
}
