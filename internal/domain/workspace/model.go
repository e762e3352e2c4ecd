package workspace

import "time"

// Language is the editor language inferred from a file name.
type Language string

const (
	LanguageClarity    Language = "clarity"
	LanguageMarkdown   Language = "markdown"
	LanguageTypeScript Language = "typescript"
	LanguageJSON       Language = "json"
	LanguageText       Language = "text"
)

// OutputType is the severity tag of a terminal entry.
type OutputType string

const (
	OutputInfo    OutputType = "info"
	OutputWarning OutputType = "warning"
	OutputError   OutputType = "error"
	OutputSuccess OutputType = "success"
)

// Valid reports whether t is one of the known output types.
func (t OutputType) Valid() bool {
	switch t {
	case OutputInfo, OutputWarning, OutputError, OutputSuccess:
		return true
	}
	return false
}

// File is a named text buffer owned by exactly one project.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Content      string    `json:"content"`
	Language     Language  `json:"language"`
	Path         string    `json:"path"`
	IsModified   bool      `json:"isModified"`
	LastModified time.Time `json:"lastModified"`
}

// Project is a named container of files, the unit of workspace switching.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Files        []File    `json:"files"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// CompilationResult is the outcome of one compile run.
type CompilationResult struct {
	FileID    string    `json:"fileId,omitempty"`
	Success   bool      `json:"success"`
	Errors    []string  `json:"errors"`
	Warnings  []string  `json:"warnings"`
	Output    string    `json:"output,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TerminalEntry is one line of the terminal buffer.
type TerminalEntry struct {
	ID        string     `json:"id"`
	Type      OutputType `json:"type"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}

// State is the whole persisted workspace tree.
type State struct {
	Projects           []Project           `json:"projects"`
	ActiveProject      string              `json:"activeProject,omitempty"`
	OpenFiles          []string            `json:"openFiles"`
	ActiveFile         string              `json:"activeFile,omitempty"`
	CompilationResults []CompilationResult `json:"compilationResults"`
	TerminalOutput     []TerminalEntry     `json:"terminalOutput"`
	IsCompiling        bool                `json:"isCompiling"`
	IsDebugging        bool                `json:"isDebugging"`
}

// ProjectSummary is a lightweight representation for listing.
type ProjectSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	FileCount    int       `json:"file_count"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

const (
	// MaxTerminalEntries bounds the terminal buffer.
	MaxTerminalEntries = 100
	// MaxCompilationResults bounds the compilation history.
	MaxCompilationResults = 10
)

func (s State) clone() State {
	out := s
	if s.Projects != nil {
		out.Projects = make([]Project, len(s.Projects))
		for i, p := range s.Projects {
			out.Projects[i] = p
			if p.Files != nil {
				out.Projects[i].Files = append([]File(nil), p.Files...)
			}
		}
	}
	if s.OpenFiles != nil {
		out.OpenFiles = append([]string(nil), s.OpenFiles...)
	}
	if s.CompilationResults != nil {
		out.CompilationResults = make([]CompilationResult, len(s.CompilationResults))
		for i, r := range s.CompilationResults {
			r.Errors = append([]string(nil), r.Errors...)
			r.Warnings = append([]string(nil), r.Warnings...)
			out.CompilationResults[i] = r
		}
	}
	if s.TerminalOutput != nil {
		out.TerminalOutput = append([]TerminalEntry(nil), s.TerminalOutput...)
	}
	return out
}

func (s State) findFile(id string) (File, bool) {
	for _, p := range s.Projects {
		for _, f := range p.Files {
			if f.ID == id {
				return f, true
			}
		}
	}
	return File{}, false
}

func (s State) findProject(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}
