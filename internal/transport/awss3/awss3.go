// Package awss3 implements transport.Transport on top of aws-sdk-go-v2.
package awss3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	storeerrors "github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/transport"
)

// Options configures the AWS transport.
type Options struct {
	Region       string
	Endpoint     string
	UsePathStyle bool

	// AccessKeyID and SecretKey select static credentials. When empty the
	// default AWS credential chain is used.
	AccessKeyID string
	SecretKey   string

	HTTPClient *http.Client
}

// Transport issues object requests through an S3 API client.
type Transport struct {
	api s3api.S3API
}

// New loads an AWS configuration for opts and builds an S3 client from it.
func New(ctx context.Context, opts Options) (*Transport, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretKey, ""),
		))
	}
	if opts.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(opts.HTTPClient))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing S3 API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(api s3api.S3API) *Transport {
	return &Transport{api: api}
}

// PutObject implements transport.Transport.
func (t *Transport) PutObject(ctx context.Context, in *transport.PutInput) (*transport.PutOutput, error) {
	body, size, err := seekableBody(in.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(in.Bucket),
		Key:           aws.String(in.Key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ACL:           types.ObjectCannedACL(in.ACL),
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}
	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
	}

	output, err := t.api.PutObject(ctx, input)
	if err != nil {
		return nil, convertError(err)
	}

	return &transport.PutOutput{
		StatusCode:    statusCode(output.ResultMetadata, http.StatusOK),
		ContentLength: size,
		ETag:          aws.ToString(output.ETag),
	}, nil
}

// GetObject implements transport.Transport.
func (t *Transport) GetObject(ctx context.Context, in *transport.GetInput) (*transport.GetOutput, error) {
	output, err := t.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(in.Key),
	})
	if err != nil {
		return nil, convertError(err)
	}

	body := output.Body
	if body == nil {
		body = http.NoBody
	}
	return &transport.GetOutput{
		StatusCode:    statusCode(output.ResultMetadata, http.StatusOK),
		Body:          body,
		ContentLength: aws.ToInt64(output.ContentLength),
		ContentType:   aws.ToString(output.ContentType),
	}, nil
}

// DeleteObject implements transport.Transport.
func (t *Transport) DeleteObject(ctx context.Context, in *transport.DeleteInput) (*transport.DeleteOutput, error) {
	output, err := t.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(in.Key),
	})
	if err != nil {
		return nil, convertError(err)
	}
	return &transport.DeleteOutput{
		StatusCode: statusCode(output.ResultMetadata, http.StatusNoContent),
	}, nil
}

// DeleteObjects implements transport.Transport.
func (t *Transport) DeleteObjects(
	ctx context.Context,
	in *transport.DeleteObjectsInput,
) (*transport.DeleteObjectsOutput, error) {
	objects := make([]types.ObjectIdentifier, 0, len(in.Keys))
	for _, key := range in.Keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	output, err := t.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(in.Bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false),
		},
	})
	if err != nil {
		return nil, convertError(err)
	}

	result := &transport.DeleteObjectsOutput{
		StatusCode: statusCode(output.ResultMetadata, http.StatusOK),
		Deleted:    make([]string, 0, len(output.Deleted)),
	}
	for _, d := range output.Deleted {
		result.Deleted = append(result.Deleted, aws.ToString(d.Key))
	}
	for _, e := range output.Errors {
		result.Errors = append(result.Errors, transport.DeleteError{
			Key:     aws.ToString(e.Key),
			Code:    aws.ToString(e.Code),
			Message: aws.ToString(e.Message),
		})
	}
	return result, nil
}

// statusCode reads the HTTP status from the raw response recorded in the
// operation metadata. The SDK only returns a nil error for 2xx responses, so
// fallback is used when no raw response was recorded (mocked clients).
func statusCode(md middleware.Metadata, fallback int) int {
	if resp, ok := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response); ok && resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return fallback
}

// convertError marks missing-object errors with ErrObjectNotFound and
// passes everything else through unchanged.
func convertError(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %w", storeerrors.ErrObjectNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %w", storeerrors.ErrObjectNotFound, err)
		}
	}
	return err
}

// seekableBody returns a body the SDK can sign and retry, with its length.
// Seekable readers are used in place; anything else is buffered.
func seekableBody(r io.Reader) (io.ReadSeeker, int64, error) {
	if r == nil {
		return bytes.NewReader(nil), 0, nil
	}
	if rs, ok := r.(io.ReadSeeker); ok {
		if n, err := remaining(rs); err == nil {
			return rs, n, nil
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// remaining reports the bytes left after the current offset of s, leaving the
// offset where it was. It fails on readers that cannot seek, such as pipes.
func remaining(s io.Seeker) (int64, error) {
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return 0, err
	}
	return end - pos, nil
}

var _ transport.Transport = (*Transport)(nil)
