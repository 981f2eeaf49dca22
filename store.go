package objectstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/transport"
)

// urlTemplate is the public object URL shape: region, bucket, key.
const urlTemplate = "https://s3.%s.amazonaws.com/%s/%s"

// Add uploads body to bucket under key and returns the object URL.
// The body is read but not closed; its lifetime stays with the caller.
//
// Objects are stored public-read unless WithAccessPolicy says otherwise. The
// content type comes from WithContentType, else the key's extension, else the
// leading bytes of the body.
//
// Errors:
//   - KindInvalidInput: bucket or key is malformed, body is nil, unknown policy
//   - KindTransport: the transport call failed (cause wrapped, key attached)
//   - KindStatus: the service answered with a status other than 200
//
// Example:
//
//	url, err := client.Add(ctx, "media", "folder/pic.jpg", file)
//	if err != nil {
//	    return fmt.Errorf("upload failed: %w", err)
//	}
//	// url == "https://s3.eu-west-1.amazonaws.com/media/folder/pic.jpg"
func (c *Client) Add(
	ctx context.Context,
	bucket, key string,
	body io.Reader,
	opts ...storetypes.UploadOption,
) (string, error) {
	start := time.Now()
	url, err := c.add(ctx, bucket, key, body, uploadConfig(opts))
	c.metrics.Observe(errors.OpAdd, start, err)
	return url, err
}

func (c *Client) add(
	ctx context.Context,
	bucket, key string,
	body io.Reader,
	cfg storetypes.UploadConfig,
) (string, error) {
	if err := c.validateObject(errors.OpAdd, bucket, key); err != nil {
		return "", err
	}
	if body == nil {
		return "", errors.NewObjectError(errors.OpAdd, bucket, key, errors.ErrInvalidInput).
			WithKind(errors.KindInvalidInput).
			WithMessage("body cannot be nil")
	}
	if err := validation.ValidateAccessPolicy(cfg.AccessPolicy); err != nil {
		return "", wrapInvalid(errors.OpAdd, bucket, key, err)
	}

	contentType := cfg.ContentType
	if contentType == "" {
		var err error
		contentType, body, err = detectContentType(key, body)
		if err != nil {
			return "", errors.NewTransportError(errors.OpAdd, bucket, key, err).
				WithMessage("read body")
		}
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "uploading object",
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key)
	}

	if err := ctx.Err(); err != nil {
		return "", c.transportFailure(ctx, errors.OpAdd, bucket, key, err)
	}

	output, err := c.transport.PutObject(ctx, &transport.PutInput{
		Bucket:      bucket,
		Key:         key,
		Body:        body,
		ContentType: contentType,
		ACL:         cfg.AccessPolicy,
		Metadata:    cfg.Metadata,
	})
	if err == nil && output == nil {
		err = errors.ErrNoResponse
	}
	if err != nil {
		return "", c.transportFailure(ctx, errors.OpAdd, bucket, key, err)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "object upload completed",
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key,
			"content_length", output.ContentLength,
			"status_code", output.StatusCode)
	}

	if output.StatusCode != http.StatusOK {
		return "", c.statusFailure(ctx, errors.OpAdd, bucket, key, output.StatusCode)
	}

	return c.URL(bucket, key), nil
}

// Get opens the object stored in bucket under key.
// On success the caller owns the returned body and must close it.
//
// A missing object is a failure like any other transport failure; it can be
// recognized with errors.Is(err, errors.ErrObjectNotFound).
//
// Example:
//
//	body, err := client.Get(ctx, "media", "folder/pic.jpg")
//	if err != nil {
//	    return err
//	}
//	defer body.Close()
func (c *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return obj.Body, nil
}

// GetObject is Get with the stored content type and length. An empty
// ContentType means the service did not report one.
func (c *Client) GetObject(ctx context.Context, bucket, key string) (*storetypes.Object, error) {
	start := time.Now()
	obj, err := c.get(ctx, bucket, key)
	c.metrics.Observe(errors.OpGet, start, err)
	return obj, err
}

func (c *Client) get(ctx context.Context, bucket, key string) (*storetypes.Object, error) {
	if err := c.validateObject(errors.OpGet, bucket, key); err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "retrieving object",
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key)
	}

	output, err := c.transport.GetObject(ctx, &transport.GetInput{Bucket: bucket, Key: key})
	if err == nil && output == nil {
		err = errors.ErrNoResponse
	}
	if err != nil {
		return nil, c.transportFailure(ctx, errors.OpGet, bucket, key, err)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "object retrieved",
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key,
			"content_length", output.ContentLength,
			"status_code", output.StatusCode)
	}

	obj := &storetypes.Object{
		Body:          output.Body,
		ContentType:   output.ContentType,
		ContentLength: output.ContentLength,
	}
	if obj.Body == nil {
		obj.Body = http.NoBody
	}
	return obj, nil
}

// Delete removes the object stored in bucket under key.
// It succeeds when the service answers 200 or 204.
//
// Example:
//
//	if err := client.Delete(ctx, "media", "old-file.txt"); err != nil {
//	    return fmt.Errorf("failed to delete object: %w", err)
//	}
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	start := time.Now()
	err := c.delete(ctx, bucket, key)
	c.metrics.Observe(errors.OpDelete, start, err)
	return err
}

func (c *Client) delete(ctx context.Context, bucket, key string) error {
	if err := c.validateObject(errors.OpDelete, bucket, key); err != nil {
		return err
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "deleting object",
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key)
	}

	output, err := c.transport.DeleteObject(ctx, &transport.DeleteInput{Bucket: bucket, Key: key})
	if err == nil && output == nil {
		err = errors.ErrNoResponse
	}
	if err != nil {
		return c.transportFailure(ctx, errors.OpDelete, bucket, key, err)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "object delete completed",
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key,
			"status_code", output.StatusCode)
	}

	if !deleteSucceeded(output.StatusCode) {
		return c.statusFailure(ctx, errors.OpDelete, bucket, key, output.StatusCode)
	}
	return nil
}

// DeleteMany removes keys from bucket in a single request.
//
// The result is all-or-nothing: it succeeds only when the service answers
// 200 or 204 and confirms every requested key. Otherwise the error lists
// exactly the requested keys the service did not confirm, in request order,
// and carries them in Error.Keys.
//
// Errors:
//   - KindInvalidInput: bucket is malformed, keys is empty or holds more than 1000 keys
//   - KindTransport: the request failed (cause wrapped, keys attached)
//   - KindPartialDelete: some keys were not confirmed deleted
//   - KindStatus: a non-success status with every key confirmed
func (c *Client) DeleteMany(ctx context.Context, bucket string, keys []string) error {
	start := time.Now()
	err := c.deleteMany(ctx, bucket, keys)
	c.metrics.Observe(errors.OpDeleteMany, start, err)
	return err
}

func (c *Client) deleteMany(ctx context.Context, bucket string, keys []string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return wrapInvalid(errors.OpDeleteMany, bucket, "", err)
	}
	if err := validation.ValidateKeys(keys, transport.MaxDeleteKeys); err != nil {
		return wrapInvalid(errors.OpDeleteMany, bucket, "", err)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "deleting objects",
			"bucket", bucket,
			"region", c.cfg.Region,
			"keys", keys)
	}

	output, err := c.transport.DeleteObjects(ctx, &transport.DeleteObjectsInput{
		Bucket: bucket,
		Keys:   append([]string(nil), keys...),
	})
	if err == nil && output == nil {
		err = errors.ErrNoResponse
	}
	if err != nil {
		failure := errors.NewTransportError(errors.OpDeleteMany, bucket, "", err).WithKeys(keys)
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "batch delete failed",
				"bucket", bucket,
				"keys", keys,
				"error", err)
		}
		return failure
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "batch delete completed",
			"bucket", bucket,
			"region", c.cfg.Region,
			"requested", len(keys),
			"deleted", len(output.Deleted),
			"status_code", output.StatusCode)
		for _, e := range output.Errors {
			c.logger.ErrorContext(ctx, "object not deleted",
				"bucket", bucket,
				"key", e.Key,
				"code", e.Code,
				"message", e.Message)
		}
	}

	missing := missingKeys(keys, output.Deleted)
	switch {
	case len(missing) > 0:
		return errors.NewPartialDeleteError(bucket, missing, output.StatusCode)
	case !deleteSucceeded(output.StatusCode):
		return errors.NewStatusError(errors.OpDeleteMany, bucket, "", output.StatusCode).WithKeys(keys)
	}
	return nil
}

// URL returns the public URL of the object stored in bucket under key.
// It is pure: no I/O, no validation, no failure.
func (c *Client) URL(bucket, key string) string {
	return fmt.Sprintf(urlTemplate, c.cfg.Region, bucket, key)
}

func (c *Client) validateObject(op, bucket, key string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return wrapInvalid(op, bucket, key, err)
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return wrapInvalid(op, bucket, key, err)
	}
	return nil
}

func (c *Client) transportFailure(ctx context.Context, op, bucket, key string, err error) error {
	if c.logger != nil {
		c.logger.ErrorContext(ctx, "object request failed",
			"op", op,
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key,
			"error", err)
	}
	return errors.NewTransportError(op, bucket, key, err)
}

func (c *Client) statusFailure(ctx context.Context, op, bucket, key string, code int) error {
	if c.logger != nil {
		c.logger.ErrorContext(ctx, "object request returned unexpected status",
			"op", op,
			"bucket", bucket,
			"region", c.cfg.Region,
			"key", key,
			"status_code", code)
	}
	return errors.NewStatusError(op, bucket, key, code)
}

// wrapInvalid re-homes a validation error under the caller's operation,
// keeping its cause and replacing its operation.
func wrapInvalid(op, bucket, key string, err error) error {
	var verr *errors.Error
	if stderrors.As(err, &verr) {
		if key == "" {
			key = verr.Key
		}
		err = verr.Err
	}
	return errors.NewObjectError(op, bucket, key, err).WithKind(errors.KindInvalidInput)
}

func deleteSucceeded(code int) bool {
	return code == http.StatusOK || code == http.StatusNoContent
}

// missingKeys returns the requested keys absent from deleted, in request order.
func missingKeys(requested, deleted []string) []string {
	confirmed := make(map[string]struct{}, len(deleted))
	for _, k := range deleted {
		confirmed[k] = struct{}{}
	}
	var missing []string
	for _, k := range requested {
		if _, ok := confirmed[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
