package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `StacksLab IDE is a workspace for Clarity smart contracts: Projects contain Files, files open in tabs, and a terminal collects compiler and analysis output.

Typical loop:
1) Orient: call get_state (active project, files without content, open tabs).
2) Read or write code: get_file, create_file, update_file_content, save_file.
3) Compile: compile_contract(file_id). The result is also streamed to the terminal; read it with get_terminal.
4) Review: quick_analyze_with_ai for a short review, debug_with_ai for a full audit. Both need an OpenRouter key (set_api_key, or pass api_key) and open a Markdown report file in the project.

Notes:
- Only one compilation and one analysis run at a time per workspace; a second call fails with COMPILE_IN_PROGRESS or ANALYSIS_IN_PROGRESS.
- Compilation is simulated. It checks structure and scores the contract; it does not type-check Clarity.
- Creating or switching projects closes all open tabs.

Docs:
- ide://docs/index
- ide://docs/compiler
- ide://docs/ai-analysis
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "ide://docs/index",
		Name:        "docs_index",
		Title:       "StacksLab IDE docs index",
		Description: "What the workspace holds and which tools change it.",
		Content: `# StacksLab IDE

## Workspace model

- **Project**: named container of files. Exactly one project is active.
- **File**: text buffer with a name, derived language and path ` + "`/<name>`" + `. ` + "`is_modified`" + ` is set by edits and cleared by ` + "`save_file`" + `.
- **Tabs**: ` + "`open_files`" + ` lists open file ids in order; ` + "`active_file`" + ` is the focused one. Closing the focused tab focuses the last remaining tab.
- **Terminal**: the newest 100 lines, each tagged info, warning, error or success.
- **Compilation history**: the newest 10 results.

The workspace is saved after every change. A new workspace starts with the "My First Contract" project holding a token, an NFT and a test contract.

## Tools by area

- Projects: ` + "`create_project`" + `, ` + "`list_projects`" + `, ` + "`set_active_project`" + `, ` + "`delete_project`" + `
- Files: ` + "`create_file`" + `, ` + "`get_file`" + `, ` + "`update_file_content`" + `, ` + "`save_file`" + `, ` + "`open_file`" + `, ` + "`close_file`" + `, ` + "`set_active_file`" + `, ` + "`delete_file`" + `
- Build: ` + "`compile_contract`" + `, ` + "`get_compilation_results`" + `
- Review: ` + "`quick_analyze_with_ai`" + `, ` + "`debug_with_ai`" + `
- Terminal: ` + "`get_terminal`" + `, ` + "`add_terminal_output`" + `, ` + "`clear_terminal`" + `
- Credentials: ` + "`set_api_key`" + `, ` + "`clear_api_key`" + `, ` + "`get_api_key_status`" + `
`,
	},
	{
		URI:         "ide://docs/compiler",
		Name:        "docs_compiler",
		Title:       "Simulated compiler",
		Description: "How compile_contract decides success and which messages it reports.",
		Content: `# Simulated compiler

` + "`compile_contract`" + ` never parses Clarity. It scans the text for indicators and draws a result.

## Hard failures

A file always fails when it is empty, has no parentheses, or has unbalanced parentheses.

## Success probability

Starts at 0.3 and adds:

| Indicator | Weight |
|---|---|
| balanced parentheses | 0.3 |
| define-public / define-private / define-read-only | 0.2 |
| define-constant / define-data-var / define-map | 0.1 |
| define-fungible-token / define-non-fungible-token | 0.1 |
| ;; comments | 0.05 |
| asserts! | 0.05 |
| err and ok responses | 0.1 |

The total is capped at 1.0.

## Reported errors

Failures list every rule that applies, for example ` + "`Syntax error: Unmatched parentheses (3 open, 0 close)`" + ` and ` + "`No function definitions found - contract appears incomplete`" + `.

## Warnings

Successful builds may warn about missing comments, very small contracts, missing error handling, missing asserts! and public functions without error constants.
`,
	},
	{
		URI:         "ide://docs/ai-analysis",
		Name:        "docs_ai_analysis",
		Title:       "AI analysis",
		Description: "Credentials, models, reports and failure handling of the AI tools.",
		Content: `# AI analysis

Both tools send the file to OpenRouter.

- ` + "`debug_with_ai`" + `: full audit on Claude Sonnet. When the account lacks credits it retries once on Claude Haiku.
- ` + "`quick_analyze_with_ai`" + `: 3 to 5 bullet points on Claude Haiku.

## Credentials

The key comes from the ` + "`api_key`" + ` argument, then the stored key (` + "`set_api_key`" + `), then the server default. Without a key the call fails with CREDENTIAL_REQUIRED and nothing is sent.

## Reports

Results stream into the terminal line by line; lines mentioning critical or error problems are tagged error, warnings and risks are tagged warning. A Markdown report ` + "`ai_debug_<name>_<ms>.md`" + ` or ` + "`quick_analysis_<name>_<ms>.md`" + ` is created in the active project and opened.

## Failures

INVALID_API_KEY, INSUFFICIENT_CREDITS and RATE_LIMITED are reported with a hint in the terminal.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
