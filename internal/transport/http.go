package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stackslab/ide/internal/domain/workspace"
)

const maxRequestBytes = 4 << 20

// RPCHandler handles JSON-RPC method dispatch.
type RPCHandler interface {
	Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error)
}

// StoreProvider returns the workspace store of a tenant.
type StoreProvider interface {
	Get(ctx context.Context, tenantID string) (*workspace.Store, error)
}

// Streamer serves a websocket event stream for a store.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, s *workspace.Store)
}

// Options configure the HTTP router. Auth guards /rpc and /ws; the MCP
// handler authenticates on its own.
type Options struct {
	RPC    RPCHandler
	Auth   func(http.Handler) http.Handler
	MCP    http.Handler
	Stores StoreProvider
	Stream Streamer
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	opts   Options
	logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		r.Use(SessionMiddleware)
		r.Post("/rpc", srv.handleRPC)
		if opts.Stream != nil && opts.Stores != nil {
			r.Get("/ws", srv.handleWS)
		}
	})

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		if errors.Is(err, errParse) {
			WriteError(w, nil, ErrParseCode, "parse error", nil)
			return
		}
		WriteError(w, req.ID, ErrInvalidReq, "invalid request", nil)
		return
	}

	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}
	sessionID, _ := SessionIDFromContext(r.Context())

	result, err := s.opts.RPC.Handle(r.Context(), tenantID, sessionID, req.Method, req.Params)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		WriteHandlerError(w, req.ID, err)
		return
	}
	WriteResult(w, req.ID, result)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}
	store, err := s.opts.Stores.Get(r.Context(), tenantID)
	if err != nil {
		s.logger.Error("failed to open workspace", "tenant_id", tenantID, "error", err)
		http.Error(w, "workspace unavailable", http.StatusInternalServerError)
		return
	}
	s.opts.Stream.Serve(w, r, store)
}
