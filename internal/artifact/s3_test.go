package artifact_test

import (
	"testing"

	"github.com/stackslab/ide/internal/artifact"
	"github.com/stretchr/testify/require"
)

func TestNewS3Store_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  artifact.Config
	}{
		{"no endpoint", artifact.Config{AccessKey: "a", SecretKey: "b", Bucket: "c"}},
		{"no keys", artifact.Config{Endpoint: "localhost:9000", Bucket: "c"}},
		{"no bucket", artifact.Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := artifact.NewS3Store(tt.cfg)
			require.ErrorIs(t, err, artifact.ErrInvalidConfig)
		})
	}

	s, err := artifact.NewS3Store(artifact.Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "reports"})
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestConfigEnabled(t *testing.T) {
	require.False(t, artifact.Config{}.Enabled())
	require.True(t, artifact.Config{Endpoint: "s3.local"}.Enabled())
}

func TestObjectKey(t *testing.T) {
	key, err := artifact.ObjectKey("reports", "tenant-1", "ai_debug_token_1.md")
	require.NoError(t, err)
	require.Equal(t, "reports/tenant-1/ai_debug_token_1.md", key)

	key, err = artifact.ObjectKey("", "t", "a.md")
	require.NoError(t, err)
	require.Equal(t, "t/a.md", key)

	_, err = artifact.ObjectKey("", "", "a.md")
	require.ErrorIs(t, err, artifact.ErrInvalidConfig)
	_, err = artifact.ObjectKey("", "t", "../x")
	require.ErrorIs(t, err, artifact.ErrInvalidConfig)
}
