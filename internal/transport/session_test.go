package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware(t *testing.T) {
	var seen string
	h := SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set(SessionHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc", seen)
	require.Equal(t, "abc", rec.Header().Get(SessionHeader))

	req = httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set("Mcp-Session-Id", "mcp-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "mcp-1", seen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	require.Equal(t, seen, rec.Header().Get(SessionHeader))
}
