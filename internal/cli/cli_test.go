package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	t *testing.T
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("IDE_CONFIG_PATH", "")
	t.Setenv("IDE_DB_DRIVER", "sqlite")
	t.Setenv("IDE_DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("IDE_OPENROUTER_API_KEY", "")
	return &cliEnv{t: t}
}

// run executes one CLI invocation; every call reopens the database.
func (c *cliEnv) run(args ...string) (string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), append([]string{"--no-pause"}, args...), &out, &errOut)
	return out.String(), err
}

func (c *cliEnv) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "ide %s", strings.Join(args, " "))
	return out
}

func TestCLI_Projects(t *testing.T) {
	c := newCLIEnv(t)

	out := c.mustRun("project", "list")
	require.Contains(t, out, "My First Contract")
	require.Contains(t, out, workspace.DefaultProjectID)

	out = c.mustRun("project", "create", "Vault", "-d", "time locks")
	require.Contains(t, out, "Created project Vault")

	out = c.mustRun("project", "list")
	require.Contains(t, out, "Vault")
	require.Contains(t, out, "time locks")

	c.mustRun("project", "use", "My First Contract")
	out = c.mustRun("file", "ls")
	require.Contains(t, out, "stackslab-token.clar")

	out = c.mustRun("project", "delete", "Vault")
	require.Contains(t, out, "Deleted project Vault")

	_, err := c.run("project", "use", "Vault")
	require.ErrorIs(t, err, errNotFound)
}

func TestCLI_FileLifecycle(t *testing.T) {
	c := newCLIEnv(t)

	out := c.mustRun("file", "create", "counter.clar", "--content", ";; empty")
	require.Contains(t, out, "Created counter.clar (clarity")

	src := filepath.Join(t.TempDir(), "counter.clar")
	code := "(define-data-var n uint u0)\n(define-public (inc) (ok (var-set n (+ (var-get n) u1))))\n"
	require.NoError(t, os.WriteFile(src, []byte(code), 0o644))

	c.mustRun("file", "open", "counter.clar")
	c.mustRun("file", "edit", "counter.clar", "--from", src)

	out = c.mustRun("file", "ls")
	require.Contains(t, out, "counter.clar")
	require.Contains(t, out, "active")

	require.Equal(t, code, c.mustRun("file", "cat", "counter.clar"))

	c.mustRun("file", "save", "counter.clar")
	c.mustRun("file", "close", "counter.clar")
	c.mustRun("file", "delete", "counter.clar")

	_, err := c.run("file", "cat", "counter.clar")
	require.ErrorIs(t, err, errNotFound)

	_, err = c.run("file", "edit", "test.clar")
	require.Error(t, err)
}

func TestCLI_FileCreateWithoutProject(t *testing.T) {
	c := newCLIEnv(t)
	c.mustRun("project", "delete", workspace.DefaultProjectID)

	_, err := c.run("file", "create", "orphan.clar")
	require.ErrorIs(t, err, errNoActiveProject)
}

func TestCLI_CompileFailureStreamsErrors(t *testing.T) {
	c := newCLIEnv(t)
	c.mustRun("file", "create", "broken.clar", "--content", "(((")

	out, err := c.run("compile", "broken.clar")
	require.EqualError(t, err, "compilation failed with 2 error(s)")
	require.Contains(t, out, "Compiling broken.clar...")
	require.Contains(t, out, "Syntax error: Unmatched parentheses (3 open, 0 close)")

	out = c.mustRun("terminal", "-n", "3")
	require.Equal(t, 3, strings.Count(out, "\n"))

	c.mustRun("terminal", "--clear")
	require.Empty(t, c.mustRun("terminal"))
}

func TestCLI_KeysAndTokens(t *testing.T) {
	c := newCLIEnv(t)

	require.Contains(t, c.mustRun("key", "status"), "not configured")
	c.mustRun("key", "set", "sk-or-test")
	require.Contains(t, c.mustRun("key", "status"), "API key: configured")
	c.mustRun("key", "clear")
	require.Contains(t, c.mustRun("key", "status"), "not configured")

	out := c.mustRun("--tenant", "team-a", "token", "issue", "--name", "laptop")
	require.Contains(t, out, "Token: ide_")
	require.Contains(t, out, "(tenant team-a)")
}

func TestCLI_DebugRequiresKey(t *testing.T) {
	c := newCLIEnv(t)

	out, err := c.run("debug", "stackslab-token.clar")
	require.ErrorIs(t, err, workspace.ErrCredentialRequired)
	require.Contains(t, out, "OpenRouter API key required for AI debugging")
}

func TestCLI_QuickAnalysisRendersReport(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "anthropic/claude-3-haiku",
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Contract looks fine. Consider reentrancy guards."}},
			},
		})
	}))
	defer srv.Close()

	c := newCLIEnv(t)
	t.Setenv("IDE_ANALYSIS_BASE_URL", srv.URL)

	out := c.mustRun("debug", "stackslab-token.clar", "--quick", "--api-key", "sk-or-flag")
	require.Equal(t, "Bearer sk-or-flag", gotAuth)
	require.Contains(t, out, "reentrancy")

	out = c.mustRun("terminal")
	require.Contains(t, out, "Quick analysis report opened: quick_analysis_stackslab-token_")

	out = c.mustRun("file", "ls")
	require.Contains(t, out, "quick_analysis_stackslab-token_")
}

func TestCLI_ReportFetchNeedsArchive(t *testing.T) {
	c := newCLIEnv(t)
	_, err := c.run("report", "fetch", "ai_debug_x.md")
	require.ErrorIs(t, err, errNoArchive)
}

func TestCLI_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), []string{"version"}, &out, &out))
	require.Equal(t, "ide version dev\n", out.String())
}
