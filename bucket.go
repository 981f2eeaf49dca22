package objectstore

import (
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Bucket is a Client bound to one bucket.
type Bucket struct {
	client *Client
	name   string
}

// Bucket returns a handle whose operations target the named bucket.
func (c *Client) Bucket(name string) *Bucket {
	return &Bucket{client: c, name: name}
}

// DefaultBucket returns a handle for the bucket named in the configuration.
func (c *Client) DefaultBucket() *Bucket {
	return c.Bucket(c.cfg.Bucket)
}

// Name returns the bucket name.
func (b *Bucket) Name() string {
	return b.name
}

// Add uploads body under key. See Client.Add.
func (b *Bucket) Add(ctx context.Context, key string, body io.Reader, opts ...storetypes.UploadOption) (string, error) {
	return b.client.Add(ctx, b.name, key, body, opts...)
}

// AddBatch uploads items. See Client.AddBatch.
func (b *Bucket) AddBatch(
	ctx context.Context,
	items []storetypes.UploadItem,
	opts ...storetypes.UploadOption,
) storetypes.BatchOutcome {
	return b.client.AddBatch(ctx, b.name, items, opts...)
}

// Get opens the object stored under key. See Client.Get.
func (b *Bucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.client.Get(ctx, b.name, key)
}

// GetObject opens the object stored under key with its metadata. See Client.GetObject.
func (b *Bucket) GetObject(ctx context.Context, key string) (*storetypes.Object, error) {
	return b.client.GetObject(ctx, b.name, key)
}

// Delete removes the object stored under key. See Client.Delete.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	return b.client.Delete(ctx, b.name, key)
}

// DeleteMany removes keys in a single request. See Client.DeleteMany.
func (b *Bucket) DeleteMany(ctx context.Context, keys []string) error {
	return b.client.DeleteMany(ctx, b.name, keys)
}

// URL returns the public URL of the object stored under key.
func (b *Bucket) URL(key string) string {
	return b.client.URL(b.name, key)
}
