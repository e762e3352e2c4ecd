package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	err    error
}

func (h *testHandler) Handle(_ context.Context, tenantID, sessionID, method string, _ json.RawMessage) (any, error) {
	h.method = method
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"tenant": tenantID, "session": sessionID}, nil
}

type codeErr struct{ code string }

func (e codeErr) Error() string             { return e.code }
func (e codeErr) CodeValue() string         { return e.code }
func (e codeErr) MessageValue() string      { return "msg " + e.code }
func (e codeErr) DetailsValue() any         { return nil }
func (e codeErr) RecoveryHintValue() string { return "hint" }

func postRPC(t *testing.T, url, body string, headers map[string]string) (*http.Response, Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	var out Response
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	resolver := &testResolver{tokenToTenant: map[string]string{"token": "tenant1"}}
	server := httptest.NewServer(NewServer(Options{RPC: handler, Auth: AuthMiddleware(resolver)}))
	t.Cleanup(server.Close)

	resp, out := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"list_projects","id":1}`, map[string]string{
		"Authorization":  "Bearer token",
		"Mcp-Session-Id": "sess1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "list_projects", handler.method)
	require.Nil(t, out.Error)
	require.Equal(t, map[string]any{"tenant": "tenant1", "session": "sess1"}, out.Result)

	resp, _ = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"list_projects","id":1}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(Options{RPC: handler, Auth: DefaultTenantMiddleware("local")}))
	t.Cleanup(server.Close)

	_, out := postRPC(t, server.URL, `{not json`, nil)
	require.Equal(t, ErrParseCode, out.Error.Code)

	_, out = postRPC(t, server.URL, `{"jsonrpc":"1.0","method":"x","id":7}`, nil)
	require.Equal(t, ErrInvalidReq, out.Error.Code)

	handler.err = codeErr{code: "METHOD_NOT_FOUND"}
	_, out = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"nope","id":2}`, nil)
	require.Equal(t, ErrMethodNotFound, out.Error.Code)

	handler.err = codeErr{code: "COMPILE_IN_PROGRESS"}
	_, out = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"compile_contract","id":3}`, nil)
	require.Equal(t, ErrApplication, out.Error.Code)
	require.Equal(t, "msg COMPILE_IN_PROGRESS", out.Error.Message)
	data := out.Error.Data.(map[string]any)
	require.Equal(t, "COMPILE_IN_PROGRESS", data["code"])
	require.Equal(t, "hint", data["recovery_hint"])
}

func TestHTTPServer_Health(t *testing.T) {
	resolver := &testResolver{tokenToTenant: map[string]string{}}
	server := httptest.NewServer(NewServer(Options{RPC: &testHandler{}, Auth: AuthMiddleware(resolver)}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_MCPMount(t *testing.T) {
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	server := httptest.NewServer(NewServer(Options{RPC: &testHandler{}, MCP: mcpHandler}))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/mcp", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
}
