package mcp

import (
	"context"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const (
	tenantIDKey contextKey = iota
	sessionIDKey
)

func getTenantID(ctx context.Context) string {
	v, _ := ctx.Value(tenantIDKey).(string)
	return v
}

func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// TenantResolver resolves a tenant ID from a bearer token.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

func unauthorized(msg string) *APIError {
	return &APIError{
		Code:         "UNAUTHORIZED",
		Message:      msg,
		RecoveryHint: "Send Authorization: Bearer <token>; issue one with 'ide token issue'",
	}
}

// Handshake traffic carries no tenant data.
func isProtocolMethod(method string) bool {
	return method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/")
}

func requestHeader(req sdkmcp.Request) http.Header {
	if extra := req.GetExtra(); extra != nil {
		return extra.Header
	}
	return nil
}

// authMiddleware binds every tool call to the tenant owning the bearer
// token of the HTTP request that carried it.
func authMiddleware(resolver TenantResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if isProtocolMethod(method) {
				return next(ctx, method, req)
			}
			h := requestHeader(req)
			if h == nil {
				return nil, unauthorized("request carries no HTTP headers")
			}
			scheme, token, _ := strings.Cut(h.Get("Authorization"), " ")
			token = strings.TrimSpace(token)
			if !strings.EqualFold(scheme, "Bearer") || token == "" {
				return nil, unauthorized("missing bearer token")
			}
			tenantID, err := resolver.ResolveTenant(ctx, token)
			if err != nil || tenantID == "" {
				return nil, unauthorized("invalid bearer token")
			}
			return next(context.WithValue(ctx, tenantIDKey, tenantID), method, req)
		}
	}
}

// noAuthMiddleware pins all traffic to one tenant, as for stdio.
func noAuthMiddleware(tenantID string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(context.WithValue(ctx, tenantIDKey, tenantID), method, req)
		}
	}
}

// sessionMiddleware tags the context with the HTTP session header or the
// SDK's own session id, for log correlation only.
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			id := ""
			if h := requestHeader(req); h != nil {
				id = h.Get("Mcp-Session-Id")
			}
			if id == "" {
				id = safeSessionID(req)
			}
			if id != "" {
				ctx = context.WithValue(ctx, sessionIDKey, id)
			}
			return next(ctx, method, req)
		}
	}
}
