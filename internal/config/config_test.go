package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objectstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoad tests loading from a file, the environment and the defaults.
func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr error
		check   func(*testing.T, *Config)
	}{
		{
			name: "file values",
			file: `
store:
  bucket: media
  region: eu-west-1
  max_batch_size: 10
  upload_concurrency: 2
  provider: minio
  endpoint: http://localhost:9000
  use_path_style: true
server:
  addr: ":9090"
  allowed_origins: ["https://example.com"]
  read_timeout: 5s
log:
  level: debug
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "media", c.Store.Bucket)
				assert.Equal(t, "eu-west-1", c.Store.Region)
				assert.Equal(t, 10, c.Store.MaxBatchSize)
				assert.Equal(t, 2, c.Store.UploadConcurrency)
				assert.Equal(t, storetypes.ProviderMinio, c.Store.Provider)
				assert.True(t, c.Store.UsePathStyle)
				assert.Equal(t, ":9090", c.Server.Addr)
				assert.Equal(t, []string{"https://example.com"}, c.Server.AllowedOrigins)
				assert.Equal(t, 5*time.Second, c.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, c.Server.ShutdownTimeout)
				assert.Equal(t, "debug", c.Log.Level)
			},
		},
		{
			name: "defaults",
			file: "store:\n  bucket: media\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, storetypes.DefaultMaxBatchSize, c.Store.MaxBatchSize)
				assert.Equal(t, storetypes.DefaultUploadConcurrency, c.Store.UploadConcurrency)
				assert.Equal(t, storetypes.DefaultRegion, c.Store.Region)
				assert.Equal(t, storetypes.ProviderAWS, c.Store.Provider)
				assert.Equal(t, ":8080", c.Server.Addr)
				assert.Equal(t, "info", c.Log.Level)
			},
		},
		{
			name: "environment overrides file",
			file: "store:\n  bucket: media\n  region: eu-west-1\n",
			env: map[string]string{
				"OBJECTSTORE_STORE_REGION":         "ap-south-1",
				"OBJECTSTORE_STORE_MAX_BATCH_SIZE": "7",
				"OBJECTSTORE_SERVER_ADDR":          ":7070",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "media", c.Store.Bucket)
				assert.Equal(t, "ap-south-1", c.Store.Region)
				assert.Equal(t, 7, c.Store.MaxBatchSize)
				assert.Equal(t, ":7070", c.Server.Addr)
			},
		},
		{
			name:    "invalid store section",
			file:    "store:\n  upload_concurrency: -1\n",
			wantErr: errors.ErrInvalidConfig,
		},
		{
			name:    "invalid server section",
			file:    "server:\n  max_upload_bytes: -5\n",
			wantErr: ErrInvalidServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(writeConfig(t, tt.file))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

// TestLoad_MissingFile tests that only an explicit path must exist.
func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("OBJECTSTORE_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, storetypes.DefaultRegion, cfg.Store.Region)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// TestLoad_DotEnv tests that a .env file in the working directory is applied.
func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("OBJECTSTORE_STORE_BUCKET", "")
	require.NoError(t, os.Unsetenv("OBJECTSTORE_STORE_BUCKET"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OBJECTSTORE_STORE_BUCKET=from-dotenv\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Store.Bucket)
}

// TestResolvePath tests config path resolution.
func TestResolvePath(t *testing.T) {
	t.Setenv("OBJECTSTORE_CONFIG", "")
	assert.Equal(t, DefaultPath, ResolvePath(""))
	assert.Equal(t, "custom.yaml", ResolvePath("custom.yaml"))

	t.Setenv("OBJECTSTORE_CONFIG", "/etc/objectstore.yaml")
	assert.Equal(t, "/etc/objectstore.yaml", ResolvePath(""))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
