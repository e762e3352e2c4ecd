package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/mcp"
	"github.com/stackslab/ide/internal/realtime"
	"github.com/stackslab/ide/internal/repository"
	"github.com/stackslab/ide/internal/transport"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memRepo) Load(_ context.Context, tenantID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[tenantID+"/"+key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (m *memRepo) Save(_ context.Context, tenantID, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tenantID+"/"+key] = data
	return nil
}

func TestRouter_RPCDrivesWebsocketStream(t *testing.T) {
	reg := workspace.NewRegistry(workspace.Deps{
		Repo:  &memRepo{data: map[string][]byte{}},
		Pause: func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	}, nil)
	hub := realtime.NewHub(nil, nil)
	reg.OnOpen(hub.Attach)

	router := transport.NewServer(transport.Options{
		RPC:    mcp.NewHandler(reg, nil),
		Auth:   transport.DefaultTenantMiddleware("local"),
		Stores: reg,
		Stream: hub,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var snap realtime.Message
	require.NoError(t, conn.ReadJSON(&snap))
	require.Equal(t, realtime.TypeSnapshot, snap.Type)

	resp, err := http.Post(server.URL+"/rpc", "application/json", strings.NewReader(
		`{"jsonrpc":"2.0","method":"add_terminal_output","params":{"type":"warning","message":"heads up"},"id":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ev realtime.Message
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, string(workspace.EventTerminal), ev.Type)
	require.Equal(t, "heads up", ev.Entry.Message)
	require.Equal(t, workspace.OutputWarning, ev.Entry.Type)
}
