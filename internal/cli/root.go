// Package cli implements the objectstore command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/config"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/logging"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/server"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// StoreFactory builds the store a command runs against.
type StoreFactory func(
	ctx context.Context,
	cfg storetypes.Config,
	logger *slog.Logger,
	reg prometheus.Registerer,
) (server.Store, error)

// NewStore is the default StoreFactory.
func NewStore(ctx context.Context, cfg storetypes.Config, logger *slog.Logger, reg prometheus.Registerer) (server.Store, error) {
	client, err := objectstore.New(ctx, cfg, objectstore.WithLogger(logger), objectstore.WithMetrics(reg))
	if err != nil {
		return nil, err
	}
	return client, nil
}

var errNoBucket = errors.New("no bucket configured: set --bucket or store.bucket")

type app struct {
	configPath string
	bucket     string
	logLevel   string

	newStore StoreFactory
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	store    server.Store
}

// NewRootCommand returns the objectstore command tree. A nil factory means NewStore.
func NewRootCommand(factory StoreFactory) *cobra.Command {
	if factory == nil {
		factory = NewStore
	}
	a := &app{newStore: factory}

	root := &cobra.Command{
		Use:           "objectstore",
		Short:         "Upload, download and delete objects in S3-compatible storage",
		Long:          "objectstore moves objects in and out of S3 or an S3-compatible service, one at a time or in bounded-concurrency batches, and can expose the same operations over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default $OBJECTSTORE_CONFIG or objectstore.yaml)")
	flags.StringVar(&a.bucket, "bucket", "", "Bucket to operate on (overrides store.bucket)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log.level)")

	root.AddCommand(
		a.putCommand(),
		a.putBatchCommand(),
		a.getCommand(),
		a.rmCommand(),
		a.urlCommand(),
		a.serveCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.bucket != "" {
		cfg.Store.Bucket = a.bucket
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := a.newStore(ctx, cfg.Store, logging.Slog(logger), reg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	a.cfg, a.logger, a.registry, a.store = cfg, logger, reg, store
	return nil
}

// bucketName returns the configured bucket or an error naming the flag.
func (a *app) bucketName() (string, error) {
	if a.cfg.Store.Bucket == "" {
		return "", errNoBucket
	}
	return a.cfg.Store.Bucket, nil
}
