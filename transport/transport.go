// Package transport defines the wire-level contract the object store client
// is built on. Implementations live under internal/transport; tests use the
// instrumented fake in internal/testutil.
package transport

import (
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Transport issues single requests against an object storage service.
// Implementations must be safe for concurrent use. A returned error means the
// call itself failed; a completed call reports its outcome through StatusCode.
type Transport interface {
	// PutObject stores one object.
	PutObject(ctx context.Context, in *PutInput) (*PutOutput, error)

	// GetObject opens one object for reading.
	GetObject(ctx context.Context, in *GetInput) (*GetOutput, error)

	// DeleteObject removes one object.
	DeleteObject(ctx context.Context, in *DeleteInput) (*DeleteOutput, error)

	// DeleteObjects removes several objects in a single request.
	DeleteObjects(ctx context.Context, in *DeleteObjectsInput) (*DeleteObjectsOutput, error)
}

// PutInput describes an upload.
type PutInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	ACL         storetypes.AccessPolicy
	Metadata    map[string]string
}

// PutOutput reports a completed upload.
type PutOutput struct {
	StatusCode    int
	ContentLength int64
	ETag          string
}

// GetInput describes a download.
type GetInput struct {
	Bucket string
	Key    string
}

// GetOutput carries a live object body. The receiver must close Body.
type GetOutput struct {
	StatusCode    int
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
}

// DeleteInput describes a single delete.
type DeleteInput struct {
	Bucket string
	Key    string
}

// DeleteOutput reports a completed single delete.
type DeleteOutput struct {
	StatusCode int
}

// DeleteObjectsInput describes a batch delete.
type DeleteObjectsInput struct {
	Bucket string
	Keys   []string
}

// DeleteObjectsOutput reports a completed batch delete.
type DeleteObjectsOutput struct {
	StatusCode int

	// Deleted lists the keys the service confirmed as deleted.
	Deleted []string

	// Errors lists per-key failures reported by the service.
	Errors []DeleteError
}

// DeleteError is a per-key failure inside a batch delete.
type DeleteError struct {
	Key     string
	Code    string
	Message string
}

// MaxDeleteKeys is the largest key list a single batch delete may carry.
const MaxDeleteKeys = 1000
