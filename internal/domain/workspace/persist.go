package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Storage keys of the persisted state document and the analysis credential.
const (
	StateKey      = "stackslab-ide-state"
	CredentialKey = "openrouter-api-key"
)

// Encode serializes state for storage. The compile flag is never persisted.
func Encode(s State) ([]byte, error) {
	s.IsCompiling = false
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return data, nil
}

// Decode parses a stored state document. It reports false when the
// document is absent, malformed or has no projects field; callers fall
// back to DefaultState in that case.
func Decode(data []byte) (State, bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return State{}, false
	}

	var shape struct {
		Projects json.RawMessage `json:"projects"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return State{}, false
	}
	if len(shape.Projects) == 0 || bytes.Equal(shape.Projects, []byte("null")) {
		return State{}, false
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, false
	}
	return normalize(s), true
}

// LoadOrDefault decodes data or seeds a default workspace.
func LoadOrDefault(data []byte, now time.Time) State {
	s, ok := Decode(data)
	if !ok {
		return DefaultState(now)
	}
	return s
}

func normalize(s State) State {
	s.IsCompiling = false
	s.IsDebugging = false
	if s.OpenFiles == nil {
		s.OpenFiles = []string{}
	}
	if s.CompilationResults == nil {
		s.CompilationResults = []CompilationResult{}
	}
	if s.TerminalOutput == nil {
		s.TerminalOutput = []TerminalEntry{}
	}
	for i := range s.Projects {
		if s.Projects[i].Files == nil {
			s.Projects[i].Files = []File{}
		}
	}
	if len(s.TerminalOutput) > MaxTerminalEntries {
		s.TerminalOutput = s.TerminalOutput[:MaxTerminalEntries]
	}
	if len(s.CompilationResults) > MaxCompilationResults {
		s.CompilationResults = s.CompilationResults[:MaxCompilationResults]
	}
	return s
}
