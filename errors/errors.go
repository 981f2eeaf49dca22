package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a failed object store operation.
// It carries the operation, the failure kind, the object (or objects) involved
// and the underlying cause. Errors are built fresh for every failure; a cause
// returned by a transport is wrapped, never modified.
type Error struct {
	// Op is the operation that failed (e.g., "add", "delete")
	Op string

	// Kind classifies the failure
	Kind Kind

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Keys lists the object keys involved in a multi-object failure
	Keys []string

	// StatusCode is the status code reported by the storage service, or zero
	StatusCode int

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("objectstore.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("objectstore.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("objectstore.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("objectstore.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithKeys records the keys involved in a multi-object failure.
func (e *Error) WithKeys(keys []string) *Error {
	e.Keys = append([]string(nil), keys...)
	return e
}

// WithKind sets the failure kind.
func (e *Error) WithKind(kind Kind) *Error {
	e.Kind = kind
	return e
}

// WithStatus records the status code reported by the storage service.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindUnknown,
		Err:  err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Kind:   KindUnknown,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Kind:   KindUnknown,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// NewTransportError annotates a transport failure with the object it concerned.
func NewTransportError(op, bucket, key string, err error) *Error {
	e := NewObjectError(op, bucket, key, err).WithKind(KindTransport)
	var sc interface{ HTTPStatusCode() int }
	if errors.As(err, &sc) {
		e.StatusCode = sc.HTTPStatusCode()
	}
	return e
}

// NewStatusError reports a completed call that returned an unexpected status.
// The message names the key and the status code.
func NewStatusError(op, bucket, key string, code int) *Error {
	err := fmt.Errorf("%w %d", ErrUnexpectedStatus, code)
	if text := http.StatusText(code); text != "" {
		err = fmt.Errorf("%w %d (%s)", ErrUnexpectedStatus, code, text)
	}
	return NewObjectError(op, bucket, key, err).WithKind(KindStatus).WithStatus(code)
}

// NewPartialDeleteError reports the keys a batch delete did not confirm.
func NewPartialDeleteError(bucket string, missing []string, code int) *Error {
	err := fmt.Errorf("%w: %s", ErrObjectsNotDeleted, strings.Join(missing, ", "))
	return NewBucketError(OpDeleteMany, bucket, err).
		WithKind(KindPartialDelete).
		WithKeys(missing).
		WithStatus(code)
}

// NewBatchLimitError reports a batch rejected for exceeding limit.
func NewBatchLimitError(bucket string, size, limit int) *Error {
	err := fmt.Errorf("%w: %d items exceeds the limit of %d", ErrBatchTooLarge, size, limit)
	return NewBucketError(OpAddBatch, bucket, err).WithKind(KindBatchLimit)
}

// Sentinel errors for common object store failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrUnexpectedStatus indicates the storage service answered with a non-success status
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrBatchTooLarge indicates a batch upload exceeded the configured maximum size
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrObjectsNotDeleted indicates a batch delete did not confirm every key
	ErrObjectsNotDeleted = errors.New("objects not deleted")

	// ErrNoResponse indicates a transport returned neither a response nor an error
	ErrNoResponse = errors.New("no response from transport")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("invalid object key")

	// ErrInvalidConfig indicates that the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")
)

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey)
}

// IsBatchTooLarge checks if an error reports a rejected oversized batch.
func IsBatchTooLarge(err error) bool {
	return errors.Is(err, ErrBatchTooLarge)
}
