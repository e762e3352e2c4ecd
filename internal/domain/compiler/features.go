package compiler

import (
	"math"
	"strings"
)

// Features are the text indicators the heuristic compiler scores.
type Features struct {
	OpenParens  int
	CloseParens int

	DefinePublic   bool
	DefinePrivate  bool
	DefineReadOnly bool
	DefineConstant bool
	DefineDataVar  bool
	DefineMap      bool
	FungibleToken  bool
	NonFungible    bool

	Comments      bool
	Asserts       bool
	ErrorHandling bool
	OkResponse    bool

	Length int
	Empty  bool
}

// Extract scans raw contract text. It never parses Clarity.
func Extract(content string) Features {
	return Features{
		OpenParens:     strings.Count(content, "("),
		CloseParens:    strings.Count(content, ")"),
		DefinePublic:   strings.Contains(content, "define-public"),
		DefinePrivate:  strings.Contains(content, "define-private"),
		DefineReadOnly: strings.Contains(content, "define-read-only"),
		DefineConstant: strings.Contains(content, "define-constant"),
		DefineDataVar:  strings.Contains(content, "define-data-var"),
		DefineMap:      strings.Contains(content, "define-map"),
		FungibleToken:  strings.Contains(content, "define-fungible-token"),
		NonFungible:    strings.Contains(content, "define-non-fungible-token"),
		Comments:       strings.Contains(content, ";;"),
		Asserts:        strings.Contains(content, "asserts!"),
		ErrorHandling:  strings.Contains(content, "err ") || strings.Contains(content, "(err "),
		OkResponse:     strings.Contains(content, "(ok "),
		Length:         len(content),
		Empty:          strings.TrimSpace(content) == "",
	}
}

// BalancedParens reports equal, non-zero paren counts.
func (f Features) BalancedParens() bool {
	return f.OpenParens == f.CloseParens && f.OpenParens > 0
}

// HasFunctions reports any public, private or read-only definition.
func (f Features) HasFunctions() bool {
	return f.DefinePublic || f.DefinePrivate || f.DefineReadOnly
}

// HasDefinitions reports any constant, data var or map definition.
func (f Features) HasDefinitions() bool {
	return f.DefineConstant || f.DefineDataVar || f.DefineMap
}

// HasTokens reports any fungible or non-fungible token definition.
func (f Features) HasTokens() bool {
	return f.FungibleToken || f.NonFungible
}

// Structural reports whether the text passes the hard checks no real
// compiler would waive: non-empty, at least one expression, balanced parens.
func (f Features) Structural() bool {
	return !f.Empty && f.OpenParens > 0 && f.BalancedParens()
}

// SuccessProbability is the weighted indicator sum, floor 0.3, capped at 1.
func (f Features) SuccessProbability() float64 {
	p := 0.3
	if f.BalancedParens() {
		p += 0.3
	}
	if f.HasFunctions() {
		p += 0.2
	}
	if f.HasDefinitions() {
		p += 0.1
	}
	if f.HasTokens() {
		p += 0.1
	}
	if f.Comments {
		p += 0.05
	}
	if f.Asserts {
		p += 0.05
	}
	if f.ErrorHandling && f.OkResponse {
		p += 0.1
	}
	return math.Min(p, 1.0)
}
