package workspace

import "time"

// Action is a state transition applied by Reduce.
type Action interface {
	isAction()
}

// CreateProject appends a project, activates it and closes every tab.
type CreateProject struct{ Project Project }

// DeleteProject removes a project. The active project is unset if it matched.
type DeleteProject struct{ ID string }

// SetActiveProject switches project and closes every tab.
type SetActiveProject struct{ ID string }

// CreateFile appends a file to the active project.
type CreateFile struct{ File File }

// DeleteFile removes a file from whichever project owns it.
type DeleteFile struct{ ID string }

// OpenFile adds a tab if missing and activates it.
type OpenFile struct{ ID string }

// CloseFile removes a tab.
type CloseFile struct{ ID string }

// SetActiveFile changes the active tab without touching the open set.
type SetActiveFile struct{ ID string }

// UpdateFileContent overwrites file content and marks it modified.
type UpdateFileContent struct {
	ID      string
	Content string
	At      time.Time
}

// SaveFile clears the modified flag.
type SaveFile struct{ ID string }

// AppendTerminal prepends a terminal entry.
type AppendTerminal struct{ Entry TerminalEntry }

// ClearTerminal empties the terminal buffer.
type ClearTerminal struct{}

// SetCompiling toggles the compile flag.
type SetCompiling struct{ Value bool }

// SetDebugging toggles the analysis flag.
type SetDebugging struct{ Value bool }

// RecordCompilation prepends a compilation result.
type RecordCompilation struct{ Result CompilationResult }

func (CreateProject) isAction()     {}
func (DeleteProject) isAction()     {}
func (SetActiveProject) isAction()  {}
func (CreateFile) isAction()        {}
func (DeleteFile) isAction()        {}
func (OpenFile) isAction()          {}
func (CloseFile) isAction()         {}
func (SetActiveFile) isAction()     {}
func (UpdateFileContent) isAction() {}
func (SaveFile) isAction()          {}
func (AppendTerminal) isAction()    {}
func (ClearTerminal) isAction()     {}
func (SetCompiling) isAction()      {}
func (SetDebugging) isAction()      {}
func (RecordCompilation) isAction() {}

// Reduce returns the state that results from applying a to s. The input
// state is never modified. Actions that reference unknown ids leave the
// state unchanged.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch a := a.(type) {
	case CreateProject:
		p := a.Project
		p.Files = append([]File(nil), p.Files...)
		next.Projects = append(next.Projects, p)
		next.ActiveProject = p.ID
		next.OpenFiles = []string{}
		next.ActiveFile = ""

	case DeleteProject:
		kept := next.Projects[:0]
		for _, p := range next.Projects {
			if p.ID != a.ID {
				kept = append(kept, p)
			}
		}
		next.Projects = kept
		if next.ActiveProject == a.ID {
			next.ActiveProject = ""
		}

	case SetActiveProject:
		next.ActiveProject = a.ID
		next.OpenFiles = []string{}
		next.ActiveFile = ""

	case CreateFile:
		if next.ActiveProject == "" {
			return s
		}
		for i := range next.Projects {
			if next.Projects[i].ID == next.ActiveProject {
				next.Projects[i].Files = append(next.Projects[i].Files, a.File)
				next.Projects[i].LastModified = a.File.LastModified
			}
		}

	case DeleteFile:
		for i := range next.Projects {
			files := next.Projects[i].Files[:0]
			for _, f := range next.Projects[i].Files {
				if f.ID != a.ID {
					files = append(files, f)
				}
			}
			next.Projects[i].Files = files
		}
		next.OpenFiles = without(next.OpenFiles, a.ID)
		if next.ActiveFile == a.ID {
			next.ActiveFile = ""
		}

	case OpenFile:
		if !contains(next.OpenFiles, a.ID) {
			next.OpenFiles = append(next.OpenFiles, a.ID)
		}
		next.ActiveFile = a.ID

	case CloseFile:
		next.OpenFiles = without(next.OpenFiles, a.ID)
		if next.ActiveFile == a.ID {
			next.ActiveFile = ""
			if n := len(next.OpenFiles); n > 0 {
				next.ActiveFile = next.OpenFiles[n-1]
			}
		}

	case SetActiveFile:
		next.ActiveFile = a.ID

	case UpdateFileContent:
		next.updateFile(a.ID, func(f *File) {
			f.Content = a.Content
			f.IsModified = true
			f.LastModified = a.At
		})

	case SaveFile:
		next.updateFile(a.ID, func(f *File) {
			f.IsModified = false
		})

	case AppendTerminal:
		next.TerminalOutput = append([]TerminalEntry{a.Entry}, next.TerminalOutput...)
		if len(next.TerminalOutput) > MaxTerminalEntries {
			next.TerminalOutput = next.TerminalOutput[:MaxTerminalEntries]
		}

	case ClearTerminal:
		next.TerminalOutput = []TerminalEntry{}

	case SetCompiling:
		next.IsCompiling = a.Value

	case SetDebugging:
		next.IsDebugging = a.Value

	case RecordCompilation:
		next.CompilationResults = append([]CompilationResult{a.Result}, next.CompilationResults...)
		if len(next.CompilationResults) > MaxCompilationResults {
			next.CompilationResults = next.CompilationResults[:MaxCompilationResults]
		}

	default:
		return s
	}

	return next
}

func (s *State) updateFile(id string, fn func(*File)) {
	for i := range s.Projects {
		for j := range s.Projects[i].Files {
			if s.Projects[i].Files[j].ID == id {
				fn(&s.Projects[i].Files[j])
			}
		}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
