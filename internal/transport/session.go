package transport

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionHeader names the header that carries the RPC session id. It is
// echoed on every response so clients can reuse a server-minted id.
const SessionHeader = "X-Session-Id"

type sessionKey struct{}

// SessionIDFromContext returns the client session ID from context, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionKey{}).(string)
	return sessionID, ok
}

// SessionMiddleware tags each request with a session id for log
// correlation. MCP clients send Mcp-Session-Id; anyone else gets a fresh id.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			id = r.Header.Get("Mcp-Session-Id")
		}
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}
