package storetypes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// TestConfig_WithDefaults tests that zero values are filled in.
func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Bucket: "media"}.WithDefaults()

	assert.Equal(t, 50, cfg.MaxBatchSize)
	assert.Equal(t, 5, cfg.UploadConcurrency)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, ProviderAWS, cfg.Provider)
	assert.Equal(t, "media", cfg.Bucket)
}

// TestConfig_WithDefaults_KeepsValues tests that explicit settings survive.
func TestConfig_WithDefaults_KeepsValues(t *testing.T) {
	cfg := Config{MaxBatchSize: 2, UploadConcurrency: 1, Region: "eu-west-1", Provider: ProviderMinio}.WithDefaults()

	assert.Equal(t, 2, cfg.MaxBatchSize)
	assert.Equal(t, 1, cfg.UploadConcurrency)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, ProviderMinio, cfg.Provider)
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantErr     bool
		errContains string
	}{
		{
			name: "defaults are valid",
			cfg:  Config{}.WithDefaults(),
		},
		{
			name: "static credentials",
			cfg:  Config{AccessKeyID: "id", SecretKey: "secret"}.WithDefaults(),
		},
		{
			name:        "negative batch size",
			cfg:         Config{MaxBatchSize: -1}.WithDefaults(),
			wantErr:     true,
			errContains: "max batch size",
		},
		{
			name:        "negative concurrency",
			cfg:         Config{UploadConcurrency: -3}.WithDefaults(),
			wantErr:     true,
			errContains: "upload concurrency",
		},
		{
			name:        "unknown provider",
			cfg:         Config{Provider: "gcs"}.WithDefaults(),
			wantErr:     true,
			errContains: "unknown provider",
		},
		{
			name:        "half credentials",
			cfg:         Config{AccessKeyID: "id"}.WithDefaults(),
			wantErr:     true,
			errContains: "set together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
			assert.Equal(t, errors.KindInvalidConfig, errors.KindOf(err))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

// TestAccessPolicy_Valid tests policy validation.
func TestAccessPolicy_Valid(t *testing.T) {
	assert.True(t, DefaultAccessPolicy.Valid())
	assert.True(t, PolicyPrivate.Valid())
	assert.False(t, AccessPolicy("aws-exec-read").Valid())
	assert.False(t, AccessPolicy("").Valid())
}

// TestBatchOutcome_Failed tests failure filtering.
func TestBatchOutcome_Failed(t *testing.T) {
	outcome := BatchOutcome{
		{Key: "a", URL: "u"},
		{Key: "b", Err: errors.ErrInvalidInput},
	}

	failed := outcome.Failed()
	assert.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Key)
	assert.True(t, outcome[0].OK())
}
