package objectstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/transport/awss3"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/transport/miniogw"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/transport"
)

// Client uploads, downloads and deletes objects through a transport.
// It is safe for concurrent use. Its configuration is fixed at construction.
type Client struct {
	transport transport.Transport
	cfg       storetypes.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New creates a Client for cfg. Zero-valued settings take their defaults.
//
// Unless WithTransport is given, the transport is built from cfg: static
// credentials when AccessKeyID is set, otherwise the keys stored in the
// CredentialsSecret secret, otherwise the default AWS credential chain.
//
// Example:
//
//	client, err := objectstore.New(ctx, storetypes.Config{
//	    Bucket: "media",
//	    Region: "eu-west-1",
//	}, objectstore.WithLogger(slog.Default()))
func New(ctx context.Context, cfg storetypes.Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := defaultOptions()
	applyOptions(options, opts)

	t := options.transport
	if t == nil {
		var err error
		t, err = newTransport(ctx, cfg, options)
		if err != nil {
			return nil, errors.NewError(errors.OpNew, err).WithKind(errors.KindInvalidConfig)
		}
	}

	return newClient(t, cfg, options), nil
}

// NewWithTransport creates a Client that issues every request through t.
func NewWithTransport(t transport.Transport, cfg storetypes.Config, opts ...Option) (*Client, error) {
	if t == nil {
		return nil, errors.NewError(errors.OpNew, errors.ErrInvalidConfig).
			WithKind(errors.KindInvalidConfig).
			WithMessage("transport cannot be nil")
	}
	return New(context.Background(), cfg, append(opts, WithTransport(t))...)
}

func newClient(t transport.Transport, cfg storetypes.Config, options *clientOptions) *Client {
	return &Client{
		transport: t,
		cfg:       cfg,
		logger:    options.logger,
		metrics:   metrics.New(options.registerer),
	}
}

// Config returns a copy of the client configuration.
func (c *Client) Config() storetypes.Config {
	return c.cfg
}

func newTransport(ctx context.Context, cfg storetypes.Config, options *clientOptions) (transport.Transport, error) {
	accessKeyID, secretKey := cfg.AccessKeyID, cfg.SecretKey
	if accessKeyID == "" && cfg.CredentialsSecret != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		creds, err := credentials.NewResolverFromConfig(awsCfg, options.logger).Resolve(ctx, cfg.CredentialsSecret)
		if err != nil {
			return nil, err
		}
		accessKeyID, secretKey = creds.AccessKeyID, creds.SecretKey
	}

	switch cfg.Provider {
	case storetypes.ProviderMinio:
		return miniogw.New(miniogw.Options{
			Endpoint:     cfg.Endpoint,
			Region:       cfg.Region,
			AccessKeyID:  accessKeyID,
			SecretKey:    secretKey,
			UsePathStyle: cfg.UsePathStyle,
		})
	default:
		return awss3.New(ctx, awss3.Options{
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			UsePathStyle: cfg.UsePathStyle,
			AccessKeyID:  accessKeyID,
			SecretKey:    secretKey,
			HTTPClient:   options.httpClient,
		})
	}
}
