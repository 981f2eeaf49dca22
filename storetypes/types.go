// Package storetypes provides shared type definitions for the object store module.
package storetypes

import (
	"io"
)

// AccessPolicy represents the canned access control list applied to an uploaded object.
type AccessPolicy string

// Predefined access policies
const (
	// PolicyPublicRead grants public read access (default)
	PolicyPublicRead AccessPolicy = "public-read"

	// PolicyPrivate grants owner-only access
	PolicyPrivate AccessPolicy = "private"

	// PolicyPublicReadWrite grants public read and write access
	PolicyPublicReadWrite AccessPolicy = "public-read-write"

	// PolicyAuthenticatedRead grants authenticated users read access
	PolicyAuthenticatedRead AccessPolicy = "authenticated-read"

	// PolicyBucketOwnerRead grants the bucket owner read access
	PolicyBucketOwnerRead AccessPolicy = "bucket-owner-read"

	// PolicyBucketOwnerFullControl grants the bucket owner full control
	PolicyBucketOwnerFullControl AccessPolicy = "bucket-owner-full-control"
)

// DefaultAccessPolicy is applied when an upload does not name one.
const DefaultAccessPolicy = PolicyPublicRead

// Valid reports whether p is one of the predefined policies.
func (p AccessPolicy) Valid() bool {
	switch p {
	case PolicyPublicRead, PolicyPrivate, PolicyPublicReadWrite,
		PolicyAuthenticatedRead, PolicyBucketOwnerRead, PolicyBucketOwnerFullControl:
		return true
	}
	return false
}

// UploadItem is one object of a batch upload.
// The body is owned by the caller; the client reads it but never closes it.
type UploadItem struct {
	Key  string
	Body io.Reader
}

// UploadOutcome is the result of uploading one batch item.
// Err is nil on success, in which case URL holds the object URL.
type UploadOutcome struct {
	Key string
	URL string
	Err error
}

// OK reports whether the upload succeeded.
func (o UploadOutcome) OK() bool {
	return o.Err == nil
}

// BatchOutcome holds one UploadOutcome per batch item, in completion order.
type BatchOutcome []UploadOutcome

// Failed returns the outcomes that carry an error.
func (b BatchOutcome) Failed() []UploadOutcome {
	var failed []UploadOutcome
	for _, o := range b {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Object is a downloaded object. The caller owns Body and must close it.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// UploadConfig holds per-call upload settings.
type UploadConfig struct {
	AccessPolicy AccessPolicy
	ContentType  string
	Metadata     map[string]string
}

// UploadOption configures a single upload.
type UploadOption func(*UploadConfig)
