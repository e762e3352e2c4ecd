package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *sdkmcp.Server, h *Handler) {
	// Projects
	addTool(server, h, "create_project", "Create a project, make it active and close all open tabs", h.CreateProject)
	addTool(server, h, "delete_project", "Delete a project and all its files", h.DeleteProject)
	addTool(server, h, "set_active_project", "Switch the active project; open tabs are closed", h.SetActiveProject)
	addTool(server, h, "list_projects", "List all projects with file counts", h.ListProjects)
	addTool(server, h, "get_state", "Get the workspace overview: active project, its files (without content), open tabs and busy flags", h.GetState)

	// Files
	addTool(server, h, "create_file", "Create a file in the active project and open it in a new tab", h.CreateFile)
	addTool(server, h, "get_file", "Get a file including its content", h.GetFile)
	addTool(server, h, "delete_file", "Delete a file and close its tab", h.DeleteFile)
	addTool(server, h, "open_file", "Open a file in a tab and make it active", h.OpenFile)
	addTool(server, h, "close_file", "Close a file's tab", h.CloseFile)
	addTool(server, h, "set_active_file", "Focus an open tab", h.SetActiveFile)
	addTool(server, h, "update_file_content", "Replace a file's buffer; the file is marked modified", h.UpdateFileContent)
	addTool(server, h, "save_file", "Mark a file as saved", h.SaveFile)

	// Compile and analysis
	addTool(server, h, "compile_contract", "Run the simulated Clarity compiler on a file; progress is written to the terminal", h.CompileContract)
	addTool(server, h, "debug_with_ai", "Run a full AI audit of a contract and open a Markdown report", h.DebugWithAI)
	addTool(server, h, "quick_analyze_with_ai", "Run a short AI review of a contract and open a Markdown report", h.QuickAnalyzeWithAI)
	addTool(server, h, "get_compilation_results", "List recent compilation results, newest first", h.GetCompilationResults)

	// Terminal
	addTool(server, h, "get_terminal", "Read the terminal buffer, newest first", h.GetTerminal)
	addTool(server, h, "add_terminal_output", "Append a line to the terminal", h.AddTerminalOutput)
	addTool(server, h, "clear_terminal", "Clear the terminal buffer", h.ClearTerminal)

	// Credentials
	addTool(server, h, "set_api_key", "Store the OpenRouter API key used for AI analysis", h.SetAPIKey)
	addTool(server, h, "clear_api_key", "Remove the stored OpenRouter API key", h.ClearAPIKey)
	addTool(server, h, "get_api_key_status", "Report whether an OpenRouter API key is available", h.GetAPIKeyStatus)
}

func addTool[In, Out any](server *sdkmcp.Server, h *Handler, name, description string, fn func(context.Context, string, In) (Out, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
			tenantID := getTenantID(ctx)
			out, err := fn(ctx, tenantID, in)
			h.logger.Debug("tool call", "tool", name, "tenant_id", tenantID, "session_id", getSessionID(ctx), "error", err)
			if err != nil {
				var zero Out
				return nil, zero, mapError(err)
			}
			return nil, out, nil
		})
}
