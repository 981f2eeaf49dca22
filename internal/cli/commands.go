package cli

import (
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/server"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

func (a *app) putCommand() *cobra.Command {
	var acl string

	cmd := &cobra.Command{
		Use:   "put <key> <file>",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := a.bucketName()
			if err != nil {
				return err
			}

			f, err := openFile(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			url, err := a.store.Add(cmd.Context(), bucket, args[0], f, aclOptions(acl)...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().StringVar(&acl, "acl", "", "Canned ACL (default public-read)")
	return cmd
}

func (a *app) putBatchCommand() *cobra.Command {
	var (
		prefix string
		acl    string
	)

	cmd := &cobra.Command{
		Use:   "put-batch <dir>",
		Short: "Upload every regular file in a directory",
		Long:  "Upload every regular file directly inside <dir>, keyed by file name under --prefix. Uploads run concurrently up to store.upload_concurrency and results print as they complete.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := a.bucketName()
			if err != nil {
				return err
			}

			fs, err := dirFS(args[0])
			if err != nil {
				return err
			}
			entries, err := fs.ReadDir(".")
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

			var items []storetypes.UploadItem
			var closers []io.Closer
			defer func() {
				for _, c := range closers {
					_ = c.Close()
				}
			}()
			for _, entry := range entries {
				if !entry.Mode().IsRegular() {
					continue
				}
				f, err := fs.Open(entry.Name())
				if err != nil {
					return fmt.Errorf("opening %s: %w", entry.Name(), err)
				}
				closers = append(closers, f)
				items = append(items, storetypes.UploadItem{Key: path.Join(prefix, entry.Name()), Body: f})
			}

			outcome := a.store.AddBatch(cmd.Context(), bucket, items, aclOptions(acl)...)
			if len(outcome) == 1 && errors.KindOf(outcome[0].Err) == errors.KindBatchLimit {
				return outcome[0].Err
			}

			for _, o := range outcome {
				if o.OK() {
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %s %s\n", o.Key, o.URL)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "fail %s %v\n", o.Key, o.Err)
			}
			if failed := len(outcome.Failed()); failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(outcome))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix for uploaded files")
	cmd.Flags().StringVar(&acl, "acl", "", "Canned ACL (default public-read)")
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Download an object to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := a.bucketName()
			if err != nil {
				return err
			}

			body, err := a.store.Get(cmd.Context(), bucket, args[0])
			if err != nil {
				return err
			}
			defer body.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := createFile(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if _, err := io.Copy(w, body); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func (a *app) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>...",
		Short: "Delete one or more objects",
		Long:  "Delete one or more objects. Several keys are removed in a single request, which fails unless every key is confirmed deleted.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := a.bucketName()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return a.store.Delete(cmd.Context(), bucket, args[0])
			}
			return a.store.DeleteMany(cmd.Context(), bucket, args)
		},
	}
}

func (a *app) urlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url <key>",
		Short: "Print the public URL of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := a.bucketName()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.store.URL(bucket, args[0]))
			return nil
		},
	}
}

func (a *app) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the object store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(a.store, server.Options{
				AllowedOrigins:  a.cfg.Server.AllowedOrigins,
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				WriteTimeout:    a.cfg.Server.WriteTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
				MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
				Gatherer:        a.registry,
			}, a.logger)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func aclOptions(acl string) []storetypes.UploadOption {
	if acl == "" {
		return nil
	}
	return []storetypes.UploadOption{objectstore.WithAccessPolicy(storetypes.AccessPolicy(acl))}
}
