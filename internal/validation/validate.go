// Package validation checks bucket names, object keys and key lists before
// any request is issued, so malformed input fails fast without a network call.
package validation

import (
	"fmt"
	"net"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// MaxKeyLength is the longest object key S3 accepts, in bytes.
const MaxKeyLength = 1024

// ValidateBucketName validates that a bucket name is DNS-compliant according to S3 rules.
func ValidateBucketName(bucket string) error {
	switch {
	case bucket == "":
		return bucketError(bucket, "bucket name cannot be empty")
	case len(bucket) < 3 || len(bucket) > 63:
		return bucketError(bucket, "bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return bucketError(bucket, "bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	first, last := bucket[0], bucket[len(bucket)-1]
	if !isAlnum(first) || !isAlnum(last) {
		return bucketError(bucket, "bucket name must start and end with a letter or number")
	}
	if strings.Contains(bucket, "..") {
		return bucketError(bucket, "bucket name cannot contain two adjacent periods")
	}
	if net.ParseIP(bucket) != nil {
		return bucketError(bucket, "bucket name cannot be formatted as an IP address")
	}

	return nil
}

// ValidateObjectKey validates that an object key is acceptable to S3.
// Keys may contain "/" segments; they are storage keys, not filesystem paths.
func ValidateObjectKey(key string) error {
	switch {
	case key == "":
		return keyError(key, "object key cannot be empty")
	case len(key) > MaxKeyLength:
		return keyError(key, fmt.Sprintf("object key cannot exceed %d bytes", MaxKeyLength))
	case hasControlCharacters(key):
		return keyError(key, "object key cannot contain control characters")
	}
	return nil
}

// ValidateKeys validates a batch delete key list against limit.
func ValidateKeys(keys []string, limit int) error {
	if len(keys) == 0 {
		return errors.NewError("validateKeys", errors.ErrInvalidInput).
			WithKind(errors.KindInvalidInput).
			WithMessage("key list cannot be empty")
	}
	if len(keys) > limit {
		return errors.NewError("validateKeys", errors.ErrInvalidInput).
			WithKind(errors.KindInvalidInput).
			WithMessage(fmt.Sprintf("cannot delete more than %d objects in one request, got %d", limit, len(keys)))
	}
	for _, key := range keys {
		if err := ValidateObjectKey(key); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAccessPolicy validates an access policy. The empty policy is accepted
// and means the default.
func ValidateAccessPolicy(policy storetypes.AccessPolicy) error {
	if policy == "" || policy.Valid() {
		return nil
	}
	return errors.NewError("validateAccessPolicy", errors.ErrInvalidInput).
		WithKind(errors.KindInvalidInput).
		WithMessage(fmt.Sprintf("unknown access policy %q", policy))
}

func bucketError(bucket, msg string) error {
	return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
		WithKind(errors.KindInvalidInput).
		WithBucket(bucket).
		WithMessage(msg)
}

func keyError(key, msg string) error {
	return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
		WithKind(errors.KindInvalidInput).
		WithKey(key).
		WithMessage(msg)
}

func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z')
}

func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
