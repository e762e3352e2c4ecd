package mocks

import (
	"context"

	"github.com/stackslab/ide/internal/domain/workspace"
	"github.com/stackslab/ide/internal/repository"
	"github.com/stretchr/testify/mock"
)

// StateRepository is a mock for repository.StateRepository.
type StateRepository struct {
	mock.Mock
}

func (m *StateRepository) Load(ctx context.Context, tenantID, key string) ([]byte, error) {
	args := m.Called(ctx, tenantID, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StateRepository) Save(ctx context.Context, tenantID, key string, data []byte) error {
	args := m.Called(ctx, tenantID, key, data)
	return args.Error(0)
}

// CredentialRepository is a mock for repository.CredentialRepository.
type CredentialRepository struct {
	mock.Mock
}

func (m *CredentialRepository) Get(ctx context.Context, tenantID, key string) (string, error) {
	args := m.Called(ctx, tenantID, key)
	return args.String(0), args.Error(1)
}

func (m *CredentialRepository) Set(ctx context.Context, tenantID, key, value string) error {
	args := m.Called(ctx, tenantID, key, value)
	return args.Error(0)
}

func (m *CredentialRepository) Delete(ctx context.Context, tenantID, key string) error {
	args := m.Called(ctx, tenantID, key)
	return args.Error(0)
}

// APIKeyRepository is a mock for repository.APIKeyRepository.
type APIKeyRepository struct {
	mock.Mock
}

func (m *APIKeyRepository) Create(ctx context.Context, key *repository.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*repository.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if key, ok := args.Get(0).(*repository.APIKey); ok {
		return key, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Analyzer is a mock for workspace.Analyzer.
type Analyzer struct {
	mock.Mock
}

func (m *Analyzer) Debug(ctx context.Context, req workspace.AnalysisRequest) (workspace.Analysis, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(workspace.Analysis), args.Error(1)
}

func (m *Analyzer) QuickAnalysis(ctx context.Context, req workspace.AnalysisRequest) (workspace.Analysis, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(workspace.Analysis), args.Error(1)
}

// ReportSink is a mock for workspace.ReportSink.
type ReportSink struct {
	mock.Mock
}

func (m *ReportSink) Archive(ctx context.Context, tenantID, name, content string) error {
	args := m.Called(ctx, tenantID, name, content)
	return args.Error(0)
}
