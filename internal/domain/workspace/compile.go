package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stackslab/ide/internal/domain/compiler"
)

// CompileContract runs the configured compiler strategy on a file, narrates
// the pipeline in the terminal and records the result. A missing file is a
// no-op returning nil.
func (s *Store) CompileContract(ctx context.Context, fileID string) (*CompilationResult, error) {
	file, ok := s.File(fileID)
	if !ok {
		return nil, nil
	}
	if strings.TrimSpace(file.Content) == "" {
		if err := s.AddTerminalOutput(ctx, OutputError, "Cannot compile empty file"); err != nil {
			return nil, err
		}
		return nil, ErrEmptyContent
	}

	if err := s.begin(ctx, func(st State) bool { return st.IsCompiling }, SetCompiling{Value: true}, ErrCompileInProgress); err != nil {
		return nil, err
	}
	// Once started, a compile runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	defer s.end(ctx, SetCompiling{Value: false})

	n := &narrator{store: s, ctx: ctx}
	n.say(OutputInfo, fmt.Sprintf("Compiling %s...", file.Name), 100*time.Millisecond)
	n.say(OutputInfo, "File path: "+file.Path, 100*time.Millisecond)
	n.say(OutputInfo, fmt.Sprintf("File size: %d characters", len(file.Content)), 800*time.Millisecond)
	if n.err != nil {
		return nil, n.err
	}

	outcome, err := s.deps.Compiler.Compile(ctx, compiler.Source{
		Name:    file.Name,
		Path:    file.Path,
		Content: file.Content,
	})
	if err != nil {
		n.say(OutputError, "Compilation failed: "+err.Error(), 0)
		return nil, fmt.Errorf("compiling %s: %w", file.Name, err)
	}
	s.logger.Debug("compiled", "file", file.Name, "success", outcome.Success, "probability", outcome.Probability)

	for _, st := range outcome.Stages {
		n.say(OutputInfo, st.Message, st.Pause)
	}
	if n.err != nil {
		return nil, n.err
	}

	result := CompilationResult{
		FileID:    file.ID,
		Success:   outcome.Success,
		Errors:    nonNil(outcome.Errors),
		Warnings:  nonNil(outcome.Warnings),
		Timestamp: s.deps.Clock(),
	}
	if outcome.Success {
		result.Output = fmt.Sprintf("Contract %q compiled successfully\nGenerated bytecode: %d bytes", file.Name, outcome.BytecodeSize)
	}
	if err := s.dispatch(ctx, RecordCompilation{Result: result}); err != nil {
		return nil, err
	}

	if outcome.Success {
		n.say(OutputSuccess, file.Name+" compiled successfully!", 0)
		n.say(OutputInfo, "Compilation Summary:", 0)
		n.say(OutputInfo, fmt.Sprintf("  Bytecode size: %d bytes", outcome.BytecodeSize), 0)
		n.say(OutputInfo, fmt.Sprintf("  Estimated gas: %d units", outcome.GasEstimate), 0)
		n.say(OutputInfo, fmt.Sprintf("  Warnings: %d", len(result.Warnings)), 0)
		n.say(OutputInfo, "  Errors: 0", 0)
		n.list(OutputWarning, "Warnings:", result.Warnings)
		n.say(OutputSuccess, "Contract ready for deployment!", 0)
	} else {
		n.say(OutputError, file.Name+" compilation failed", 0)
		n.say(OutputInfo, "Compilation Summary:", 0)
		n.say(OutputInfo, fmt.Sprintf("  Errors: %d", len(result.Errors)), 0)
		n.say(OutputInfo, fmt.Sprintf("  Warnings: %d", len(result.Warnings)), 0)
		n.list(OutputError, "Errors:", result.Errors)
		n.list(OutputWarning, "Warnings:", result.Warnings)
	}
	if n.err != nil {
		return &result, n.err
	}
	return &result, nil
}

// narrator appends terminal lines with pauses and keeps the first error.
type narrator struct {
	store *Store
	ctx   context.Context
	err   error
}

func (n *narrator) say(typ OutputType, msg string, pause time.Duration) {
	if n.err != nil {
		return
	}
	if err := n.store.AddTerminalOutput(n.ctx, typ, msg); err != nil {
		n.err = err
		return
	}
	if pause > 0 {
		n.err = n.store.deps.Pause(n.ctx, pause)
	}
}

func (n *narrator) list(typ OutputType, header string, items []string) {
	if len(items) == 0 {
		return
	}
	n.say(OutputInfo, header, 0)
	for i, item := range items {
		n.say(typ, fmt.Sprintf("  %d. %s", i+1, item), 0)
	}
}

func nonNil(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
