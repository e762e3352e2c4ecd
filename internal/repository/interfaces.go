package repository

import (
	"context"
	"time"
)

// StateRepository stores one serialized state document per tenant and key.
type StateRepository interface {
	Load(ctx context.Context, tenantID, key string) ([]byte, error)
	Save(ctx context.Context, tenantID, key string, data []byte) error
}

// CredentialRepository stores plain-text credentials per tenant and key.
type CredentialRepository interface {
	Get(ctx context.Context, tenantID, key string) (string, error)
	Set(ctx context.Context, tenantID, key, value string) error
	Delete(ctx context.Context, tenantID, key string) error
}

// APIKey is a hashed bearer token mapped to a tenant.
type APIKey struct {
	ID        string
	TenantID  string
	KeyHash   string
	Name      string
	CreatedAt time.Time
}

// APIKeyRepository resolves and registers transport API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
	Delete(ctx context.Context, id string) error
}
