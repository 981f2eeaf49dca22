package objectstore

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/transport"
)

// clientOptions holds construction-time settings that are not part of Config.
type clientOptions struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	transport  transport.Transport
	httpClient *http.Client
}

// Option is a functional option for configuring the Client.
type Option func(*clientOptions)

// WithLogger configures the client with a structured logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithMetrics registers the client's Prometheus collectors with reg.
// Several clients may share one registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(opts *clientOptions) {
		opts.registerer = reg
	}
}

// WithTransport makes New use t instead of building a transport from the configuration.
func WithTransport(t transport.Transport) Option {
	return func(opts *clientOptions) {
		opts.transport = t
	}
}

// WithHTTPClient sets the HTTP client used by the aws transport.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

func defaultOptions() *clientOptions {
	return &clientOptions{}
}

func applyOptions(opts *clientOptions, options []Option) {
	for _, option := range options {
		option(opts)
	}
}

// WithAccessPolicy sets the canned ACL applied to uploaded objects.
// The default is public-read.
func WithAccessPolicy(policy storetypes.AccessPolicy) storetypes.UploadOption {
	return func(cfg *storetypes.UploadConfig) {
		cfg.AccessPolicy = policy
	}
}

// WithContentType sets the content type of uploaded objects, skipping detection.
func WithContentType(contentType string) storetypes.UploadOption {
	return func(cfg *storetypes.UploadConfig) {
		cfg.ContentType = contentType
	}
}

// WithMetadata attaches user metadata to uploaded objects.
func WithMetadata(metadata map[string]string) storetypes.UploadOption {
	return func(cfg *storetypes.UploadConfig) {
		cfg.Metadata = metadata
	}
}

func uploadConfig(opts []storetypes.UploadOption) storetypes.UploadConfig {
	cfg := storetypes.UploadConfig{AccessPolicy: storetypes.DefaultAccessPolicy}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccessPolicy == "" {
		cfg.AccessPolicy = storetypes.DefaultAccessPolicy
	}
	return cfg
}
