// Package testserver starts the full HTTP stack on an in-memory SQLite
// database for functional tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/mcp"
	"github.com/stackslab/ide/internal/realtime"
	"github.com/stackslab/ide/internal/sqlite"
	"github.com/stackslab/ide/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Registry *workspace.Registry
	Keys     *transport.KeyResolver
	Token    string
	TenantID string
}

// New starts a server with auth enabled and one API key for tenantID.
func New(t *testing.T, tenantID string) *TestServer {
	return NewWithAnalyzer(t, tenantID, nil)
}

// NewWithAnalyzer is New with an AI analyzer wired in.
func NewWithAnalyzer(t *testing.T, tenantID string, analyzer workspace.Analyzer) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	registry := workspace.NewRegistry(workspace.Deps{
		Repo:        sqlite.NewStateRepository(db),
		Credentials: sqlite.NewCredentialRepository(db),
		Analyzer:    analyzer,
		Pause:       func(context.Context, time.Duration) error { return nil },
	}, nil)

	hub := realtime.NewHub(nil, nil)
	registry.OnOpen(hub.Attach)

	keys := transport.NewKeyResolver(sqlite.NewAPIKeyRepository(db))
	mcpServer := mcp.NewServer(mcp.Config{
		Stores:        registry,
		Resolver:      keys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)

	router := transport.NewServer(transport.Options{
		RPC:    mcp.NewHandler(registry, nil),
		Auth:   transport.AuthMiddleware(keys),
		MCP:    mcpHandler,
		Stores: registry,
		Stream: hub,
	})
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Registry: registry,
		Keys:     keys,
		TenantID: tenantID,
	}
	ts.Token = ts.AddAPIKey(t, tenantID)

	t.Cleanup(func() {
		server.Close()
		hub.Close()
		_ = db.Close()
	})
	return ts
}

// AddAPIKey issues a bearer token for tenantID.
func (ts *TestServer) AddAPIKey(t *testing.T, tenantID string) string {
	t.Helper()
	token, _, err := ts.Keys.Issue(context.Background(), tenantID, "test")
	require.NoError(t, err)
	return token
}
