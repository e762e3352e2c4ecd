package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stackslab/ide/internal/repository"
	"github.com/stackslab/ide/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testResolver struct {
	tokenToTenant map[string]string
	err           error
}

func (r *testResolver) ResolveTenant(_ context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	tenant, ok := r.tokenToTenant[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return tenant, nil
}

func tenantEcho(t *testing.T, want string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := TenantFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, want, tenantID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &testResolver{tokenToTenant: map[string]string{"token": "tenant1"}}
	handler := AuthMiddleware(resolver)(tenantEcho(t, "tenant1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws?access_token=token", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	handler := AuthMiddleware(&testResolver{err: errors.New("invalid")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDefaultTenantMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	DefaultTenantMiddleware("local")(tenantEcho(t, "local")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestKeyResolver(t *testing.T) {
	ctx := context.Background()
	keys := new(mocks.APIKeyRepository)
	resolver := NewKeyResolver(keys)

	var stored *repository.APIKey
	keys.On("Create", mock.Anything, mock.AnythingOfType("*repository.APIKey")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*repository.APIKey) }).
		Return(nil).Once()

	token, key, err := resolver.Issue(ctx, "tenant1", "laptop")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Same(t, stored, key)
	require.Equal(t, HashToken(token), key.KeyHash)
	require.NotContains(t, key.KeyHash, token)

	keys.On("GetByHash", mock.Anything, HashToken(token)).Return(key, nil).Once()
	keys.On("GetByHash", mock.Anything, HashToken("other")).Return(nil, repository.ErrNotFound).Once()

	tenant, err := resolver.ResolveTenant(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "tenant1", tenant)

	_, err = resolver.ResolveTenant(ctx, "other")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = resolver.Issue(ctx, " ", "x")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
	keys.AssertExpectations(t)
}
