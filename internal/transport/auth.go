package transport

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stackslab/ide/internal/repository"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type tenantKey struct{}

// TenantResolver resolves a tenant ID from a bearer token.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

// TenantFromContext returns the tenant ID from context, if present.
func TenantFromContext(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantKey{}).(string)
	return tenantID, ok
}

// WithTenant returns a context carrying tenantID.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver TenantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			tenantID, err := resolver.ResolveTenant(r.Context(), token)
			if err != nil || tenantID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenantID)))
		})
	}
}

// DefaultTenantMiddleware assigns every request to one tenant when auth is
// disabled.
func DefaultTenantMiddleware(tenantID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenantID)))
		})
	}
}

// Browsers cannot set headers on websocket upgrades, so the token may also
// come from the access_token query parameter.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

// KeyResolver resolves bearer tokens against hashed API keys.
type KeyResolver struct {
	keys repository.APIKeyRepository
}

// NewKeyResolver creates a resolver over an API key repository.
func NewKeyResolver(keys repository.APIKeyRepository) *KeyResolver {
	return &KeyResolver{keys: keys}
}

func (r *KeyResolver) ResolveTenant(ctx context.Context, token string) (string, error) {
	key, err := r.keys.GetByHash(ctx, HashToken(token))
	if err != nil || key.TenantID == "" {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return key.TenantID, nil
}

// Issue creates a new bearer token for tenantID and returns it with the
// stored key record. The plain token is not persisted.
func (r *KeyResolver) Issue(ctx context.Context, tenantID, name string) (string, *repository.APIKey, error) {
	if strings.TrimSpace(tenantID) == "" {
		return "", nil, repository.ErrInvalidInput
	}
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	token := "ide_" + hex.EncodeToString(buf)
	key := &repository.APIKey{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		KeyHash:   HashToken(token),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.keys.Create(ctx, key); err != nil {
		return "", nil, fmt.Errorf("storing api key: %w", err)
	}
	return token, key, nil
}

// Revoke deletes an API key by id.
func (r *KeyResolver) Revoke(ctx context.Context, id string) error {
	return r.keys.Delete(ctx, id)
}

// HashToken returns the hex SHA-256 of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
