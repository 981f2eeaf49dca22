// Package miniogw implements transport.Transport on top of minio-go, for
// S3-compatible services reached through the MinIO client.
package miniogw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	storeerrors "github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/transport"
)

const defaultEndpoint = "https://s3.amazonaws.com"

// Options configures the MinIO transport.
type Options struct {
	// Endpoint is a URL ("http://localhost:9000") or a bare host:port,
	// which is reached over TLS.
	Endpoint     string
	Region       string
	AccessKeyID  string
	SecretKey    string
	UsePathStyle bool
}

// api is the subset of *minio.Client the transport uses.
type api interface {
	PutObject(
		ctx context.Context,
		bucketName, objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	RemoveObjects(
		ctx context.Context,
		bucketName string,
		objectsCh <-chan minio.ObjectInfo,
		opts minio.RemoveObjectsOptions,
	) <-chan minio.RemoveObjectError
}

var _ api = (*minio.Client)(nil)

// Transport issues object requests through a MinIO client.
type Transport struct {
	client api
}

// New creates a MinIO client for opts.
func New(opts Options) (*Transport, error) {
	host, secure, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	lookup := minio.BucketLookupAuto
	if opts.UsePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        miniocreds.NewStaticV4(opts.AccessKeyID, opts.SecretKey, ""),
		Secure:       secure,
		Region:       opts.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Transport{client: client}, nil
}

// PutObject implements transport.Transport.
func (t *Transport) PutObject(ctx context.Context, in *transport.PutInput) (*transport.PutOutput, error) {
	size := objectSize(in.Body)

	opts := minio.PutObjectOptions{
		ContentType:  in.ContentType,
		UserMetadata: in.Metadata,
	}
	if in.ACL != "" {
		opts.UserMetadata = withACL(in.Metadata, string(in.ACL))
	}

	info, err := t.client.PutObject(ctx, in.Bucket, in.Key, in.Body, size, opts)
	if err != nil {
		return nil, convertError(err)
	}
	return &transport.PutOutput{
		StatusCode:    http.StatusOK,
		ContentLength: info.Size,
		ETag:          info.ETag,
	}, nil
}

// objectSize reports the bytes left in r after its current offset, or -1
// when r cannot seek and minio-go has to stream it.
func objectSize(r io.Reader) int64 {
	s, ok := r.(io.Seeker)
	if !ok {
		return -1
	}
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return -1
	}
	return end - pos
}

// GetObject implements transport.Transport. The object is stat'ed before
// returning so a missing key fails here rather than on first read.
func (t *Transport) GetObject(ctx context.Context, in *transport.GetInput) (*transport.GetOutput, error) {
	obj, err := t.client.GetObject(ctx, in.Bucket, in.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, convertError(err)
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, convertError(err)
	}
	return &transport.GetOutput{
		StatusCode:    http.StatusOK,
		Body:          obj,
		ContentLength: info.Size,
		ContentType:   info.ContentType,
	}, nil
}

// DeleteObject implements transport.Transport.
func (t *Transport) DeleteObject(ctx context.Context, in *transport.DeleteInput) (*transport.DeleteOutput, error) {
	if err := t.client.RemoveObject(ctx, in.Bucket, in.Key, minio.RemoveObjectOptions{}); err != nil {
		return nil, convertError(err)
	}
	return &transport.DeleteOutput{StatusCode: http.StatusNoContent}, nil
}

// DeleteObjects implements transport.Transport. MinIO reports only failures,
// so every requested key without an error is reported as deleted.
func (t *Transport) DeleteObjects(
	ctx context.Context,
	in *transport.DeleteObjectsInput,
) (*transport.DeleteObjectsOutput, error) {
	objectsCh := make(chan minio.ObjectInfo, len(in.Keys))
	for _, key := range in.Keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	failed := make(map[string]bool)
	out := &transport.DeleteObjectsOutput{StatusCode: http.StatusOK}
	for rerr := range t.client.RemoveObjects(ctx, in.Bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err == nil {
			continue
		}
		failed[rerr.ObjectName] = true
		out.Errors = append(out.Errors, transport.DeleteError{
			Key:     rerr.ObjectName,
			Code:    minio.ToErrorResponse(rerr.Err).Code,
			Message: rerr.Err.Error(),
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, key := range in.Keys {
		if !failed[key] {
			out.Deleted = append(out.Deleted, key)
		}
	}
	return out, nil
}

func withACL(metadata map[string]string, acl string) map[string]string {
	out := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	out["x-amz-acl"] = acl
	return out
}

func convertError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %w", storeerrors.ErrObjectNotFound, err)
	}
	return err
}

func parseEndpoint(endpoint string) (host string, secure bool, err error) {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, errors.New("endpoint has no host")
	}
	return u.Host, u.Scheme == "https", nil
}

var _ transport.Transport = (*Transport)(nil)
