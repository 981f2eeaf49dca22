package objectstore

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// newTestClient builds a client over a fresh fake transport.
func newTestClient(t *testing.T, cfg storetypes.Config, opts ...Option) (*Client, *testutil.FakeTransport) {
	t.Helper()
	fake := testutil.NewFakeTransport()
	client, err := NewWithTransport(fake, cfg, opts...)
	require.NoError(t, err)
	return client, fake
}

// TestNew tests client construction.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storetypes.Config
		opts    []Option
		wantErr bool
		check   func(*testing.T, *Client)
	}{
		{
			name: "defaults applied",
			cfg:  storetypes.Config{Bucket: "media"},
			opts: []Option{WithTransport(testutil.NewFakeTransport())},
			check: func(t *testing.T, c *Client) {
				cfg := c.Config()
				assert.Equal(t, storetypes.DefaultMaxBatchSize, cfg.MaxBatchSize)
				assert.Equal(t, storetypes.DefaultUploadConcurrency, cfg.UploadConcurrency)
				assert.Equal(t, storetypes.DefaultRegion, cfg.Region)
			},
		},
		{
			name: "aws transport from static credentials",
			cfg: storetypes.Config{
				AccessKeyID: "test",
				SecretKey:   "test",
				Region:      "eu-west-1",
				Endpoint:    "http://localhost:4566",
			},
			check: func(t *testing.T, c *Client) {
				assert.NotNil(t, c.transport)
			},
		},
		{
			name: "minio transport",
			cfg: storetypes.Config{
				AccessKeyID:  "minio",
				SecretKey:    "minio123",
				Provider:     storetypes.ProviderMinio,
				Endpoint:     "http://localhost:9000",
				UsePathStyle: true,
			},
			check: func(t *testing.T, c *Client) {
				assert.NotNil(t, c.transport)
			},
		},
		{
			name:    "invalid config",
			cfg:     storetypes.Config{UploadConcurrency: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(context.Background(), tt.cfg, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.check(t, client)
		})
	}
}

// TestNewWithTransport_Nil tests that a transport is required.
func TestNewWithTransport_Nil(t *testing.T) {
	_, err := NewWithTransport(nil, storetypes.Config{})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

// TestClient_ConfigIsCopied tests that callers cannot change a client's configuration.
func TestClient_ConfigIsCopied(t *testing.T) {
	cfg := storetypes.Config{Bucket: "media", Region: "eu-west-1"}
	client, _ := newTestClient(t, cfg)

	cfg.Region = "us-west-2"
	got := client.Config()
	got.Region = "ap-south-1"

	assert.Equal(t, "eu-west-1", client.Config().Region)
	assert.Equal(t, "https://s3.eu-west-1.amazonaws.com/media/k", client.URL("media", "k"))
}

// TestWithMetrics tests that clients can share a registry.
func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, _ = newTestClient(t, storetypes.Config{}, WithMetrics(reg))

	assert.NotPanics(t, func() {
		_, _ = newTestClient(t, storetypes.Config{}, WithMetrics(reg))
	})
}
