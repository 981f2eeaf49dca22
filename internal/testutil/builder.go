package testutil

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithPutObject configures the PutObject behavior.
func (b *MockBuilder) WithPutObject(
	fn func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error),
) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithGetObject configures the GetObject behavior.
func (b *MockBuilder) WithGetObject(
	fn func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error),
) *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithDeleteObject configures the DeleteObject behavior.
func (b *MockBuilder) WithDeleteObject(
	fn func(context.Context, *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error),
) *MockBuilder {
	b.client.DeleteObjectFunc = func(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithDeleteObjects configures the DeleteObjects behavior.
func (b *MockBuilder) WithDeleteObjects(
	fn func(context.Context, *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error),
) *MockBuilder {
	b.client.DeleteObjectsFunc = func(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithSuccessfulUpload configures the mock to always return successful uploads.
func (b *MockBuilder) WithSuccessfulUpload() *MockBuilder {
	return b.WithPutObject(func(_ context.Context, params *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		if params.Body != nil {
			_, _ = io.Copy(io.Discard, params.Body)
		}
		return &s3.PutObjectOutput{ETag: aws.String(`"test-etag"`)}, nil
	})
}

// WithObjectNotFound configures the mock to return object not found errors.
func (b *MockBuilder) WithObjectNotFound() *MockBuilder {
	return b.WithGetObject(func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	})
}

// WithPartialDelete configures DeleteObjects to fail the given keys and
// confirm every other requested key.
func (b *MockBuilder) WithPartialDelete(failed ...string) *MockBuilder {
	skip := make(map[string]bool, len(failed))
	for _, k := range failed {
		skip[k] = true
	}
	return b.WithDeleteObjects(func(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
		out := &s3.DeleteObjectsOutput{}
		for _, obj := range params.Delete.Objects {
			key := aws.ToString(obj.Key)
			if skip[key] {
				out.Errors = append(out.Errors, types.Error{
					Key:     obj.Key,
					Code:    aws.String("AccessDenied"),
					Message: aws.String("Access Denied"),
				})
				continue
			}
			out.Deleted = append(out.Deleted, types.DeletedObject{Key: obj.Key})
		}
		return out, nil
	})
}
