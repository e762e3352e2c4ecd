package workspace

import (
	"embed"
	"time"
)

//go:embed seed/*.clar
var seedFS embed.FS

// Fixed ids of the first-run project and its files.
const (
	DefaultProjectID = "default-project"
	TokenContractID  = "token-contract"
	NFTContractID    = "nft-contract"
	TestContractID   = "test-contract"
)

var seedFiles = []struct {
	id   string
	name string
}{
	{TokenContractID, "stackslab-token.clar"},
	{NFTContractID, "stackslab-nft.clar"},
	{TestContractID, "test.clar"},
}

// DefaultState returns the first-run workspace: one project with three
// sample contracts, the token contract open and active.
func DefaultState(now time.Time) State {
	files := make([]File, 0, len(seedFiles))
	for _, sf := range seedFiles {
		content, err := seedFS.ReadFile("seed/" + sf.name)
		if err != nil {
			panic("workspace: missing embedded seed " + sf.name)
		}
		files = append(files, File{
			ID:           sf.id,
			Name:         sf.name,
			Content:      string(content),
			Language:     LanguageFor(sf.name),
			Path:         PathFor(sf.name),
			LastModified: now,
		})
	}

	return State{
		Projects: []Project{{
			ID:           DefaultProjectID,
			Name:         "My First Contract",
			Description:  "A simple token contract to get started",
			Files:        files,
			CreatedAt:    now,
			LastModified: now,
		}},
		ActiveProject:      DefaultProjectID,
		OpenFiles:          []string{TokenContractID},
		ActiveFile:         TokenContractID,
		CompilationResults: []CompilationResult{},
		TerminalOutput:     []TerminalEntry{},
	}
}
