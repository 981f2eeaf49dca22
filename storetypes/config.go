package storetypes

import (
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// Provider selects the wire client used to reach the storage service.
type Provider string

const (
	// ProviderAWS talks to S3 (or an S3-compatible endpoint) through aws-sdk-go-v2.
	ProviderAWS Provider = "aws"

	// ProviderMinio talks to an S3-compatible endpoint through minio-go.
	ProviderMinio Provider = "minio"
)

// Configuration defaults.
const (
	DefaultMaxBatchSize      = 50
	DefaultUploadConcurrency = 5
	DefaultRegion            = "us-east-1"
)

// Config holds the client settings. A Client copies it at construction and
// never changes it afterwards.
type Config struct {
	// AccessKeyID and SecretKey are static credentials. When empty the
	// credentials come from CredentialsSecret or the default AWS chain.
	AccessKeyID string `mapstructure:"access_key_id"`
	SecretKey   string `mapstructure:"secret_key"`

	// Bucket is the bucket used by the fixed-bucket handle.
	Bucket string `mapstructure:"bucket"`

	// MaxBatchSize is the largest batch AddBatch accepts.
	MaxBatchSize int `mapstructure:"max_batch_size"`

	// UploadConcurrency bounds the uploads a batch keeps in flight.
	UploadConcurrency int `mapstructure:"upload_concurrency"`

	// Region is the region system name used for requests and object URLs.
	Region string `mapstructure:"region"`

	// Endpoint overrides the service endpoint (LocalStack, MinIO).
	Endpoint string `mapstructure:"endpoint"`

	// Provider selects the wire client.
	Provider Provider `mapstructure:"provider"`

	// UsePathStyle forces path-style bucket addressing.
	UsePathStyle bool `mapstructure:"use_path_style"`

	// CredentialsSecret names a Secrets Manager secret holding
	// {"accessKeyId": "...", "secretKey": "..."}.
	CredentialsSecret string `mapstructure:"credentials_secret"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = DefaultUploadConcurrency
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Provider == "" {
		c.Provider = ProviderAWS
	}
	return c
}

// Validate checks that c is usable. Call it on the result of WithDefaults.
func (c Config) Validate() error {
	switch {
	case c.MaxBatchSize <= 0:
		return invalid(fmt.Sprintf("max batch size must be positive, got %d", c.MaxBatchSize))
	case c.UploadConcurrency <= 0:
		return invalid(fmt.Sprintf("upload concurrency must be positive, got %d", c.UploadConcurrency))
	case c.Region == "":
		return invalid("region is required")
	case c.Provider != ProviderAWS && c.Provider != ProviderMinio:
		return invalid(fmt.Sprintf("unknown provider %q", c.Provider))
	case (c.AccessKeyID == "") != (c.SecretKey == ""):
		return invalid("access key id and secret key must be set together")
	}
	return nil
}

func invalid(msg string) error {
	return errors.NewError(errors.OpNew, errors.ErrInvalidConfig).
		WithKind(errors.KindInvalidConfig).
		WithMessage(msg)
}
