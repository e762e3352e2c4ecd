// Package compiler simulates a contract build step. The Heuristic strategy
// scores text features and draws a random outcome; it is a stand-in for a
// real toolchain and can be replaced through the Strategy interface.
package compiler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the input of a compile run.
type Source struct {
	Name    string
	Path    string
	Content string
}

// Stage is one narrated pipeline phase, followed by a pause.
type Stage struct {
	Message string
	Pause   time.Duration
}

// Outcome is the result of a compile run.
type Outcome struct {
	Success      bool
	Errors       []string
	Warnings     []string
	Stages       []Stage
	BytecodeSize int
	GasEstimate  int
	Probability  float64
}

// Strategy compiles a source into an outcome.
type Strategy interface {
	Compile(ctx context.Context, src Source) (Outcome, error)
}

const (
	minBytecode    = 500
	bytecodeSpread = 1000
	gasJitter      = 200
	smallContract  = 100
)

// Heuristic is the randomized text-pattern compiler.
type Heuristic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristic creates a heuristic compiler. A nil source uses the global
// random generator.
func NewHeuristic(src rand.Source) *Heuristic {
	h := &Heuristic{}
	if src != nil {
		h.rng = rand.New(src)
	}
	return h
}

// Compile scores the source and draws the outcome.
func (h *Heuristic) Compile(ctx context.Context, src Source) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	f := Extract(src.Content)
	out := Outcome{Probability: f.SuccessProbability()}
	out.Success = f.Structural() && h.float64() < out.Probability

	if !out.Success {
		out.Errors = failureErrors(f)
		return out, nil
	}

	out.Stages = []Stage{
		{Message: "Syntax check passed", Pause: 100 * time.Millisecond},
		{Message: "Type checking...", Pause: 400 * time.Millisecond},
		{Message: "Type check passed", Pause: 100 * time.Millisecond},
		{Message: "Optimizing contract...", Pause: 300 * time.Millisecond},
		{Message: "Optimization complete", Pause: 100 * time.Millisecond},
	}
	out.Warnings = advisoryWarnings(f)
	out.BytecodeSize = minBytecode + h.intN(bytecodeSpread)
	out.GasEstimate = out.BytecodeSize*6/5 + h.intN(gasJitter)
	return out, nil
}

func failureErrors(f Features) []string {
	var errs []string
	if !f.BalancedParens() {
		errs = append(errs, fmt.Sprintf("Syntax error: Unmatched parentheses (%d open, %d close)", f.OpenParens, f.CloseParens))
	}
	if !f.HasFunctions() {
		errs = append(errs, "No function definitions found - contract appears incomplete")
	}
	if f.Empty {
		errs = append(errs, "Contract file is empty")
	}
	if f.OpenParens == 0 {
		errs = append(errs, "No Clarity expressions found - check syntax")
	}
	if len(errs) == 0 {
		errs = append(errs, "Type check failed - contract rejected by analysis")
	}
	return errs
}

func advisoryWarnings(f Features) []string {
	var warnings []string
	if !f.Comments {
		warnings = append(warnings, "Consider adding comments to improve code readability")
	}
	if f.Length < smallContract {
		warnings = append(warnings, "Contract seems quite small - ensure all functionality is implemented")
	}
	if !f.ErrorHandling {
		warnings = append(warnings, "Consider adding error handling with (err ...) responses")
	}
	if !f.Asserts {
		warnings = append(warnings, "Consider using asserts! for input validation")
	}
	if f.DefinePublic && !f.DefineConstant {
		warnings = append(warnings, "Consider defining error constants for better error handling")
	}
	return warnings
}

func (h *Heuristic) float64() float64 {
	if h.rng == nil {
		return rand.Float64()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64()
}

func (h *Heuristic) intN(n int) int {
	if h.rng == nil {
		return rand.IntN(n)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.IntN(n)
}
