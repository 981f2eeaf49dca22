// Package errors provides the structured error type returned by every
// object store operation, together with the failure kinds and sentinel
// errors callers can match with errors.Is.
package errors

// Kind classifies an object store failure.
// Kinds are string-based for debuggability and natural JSON serialization.
type Kind string

const (
	// KindTransport indicates the underlying storage call returned an error.
	KindTransport Kind = "TRANSPORT_FAILURE"

	// KindStatus indicates the call completed with a non-success status code.
	KindStatus Kind = "STATUS_FAILURE"

	// KindBatchLimit indicates a batch held more items than the configured limit.
	KindBatchLimit Kind = "BATCH_LIMIT_EXCEEDED"

	// KindPartialDelete indicates a batch delete left some keys unconfirmed.
	KindPartialDelete Kind = "PARTIAL_DELETE_FAILURE"

	// KindInvalidInput indicates the request was rejected before any call was made.
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindInvalidConfig indicates the client configuration is unusable.
	KindInvalidConfig Kind = "INVALID_CONFIGURATION"

	// KindUnknown is reported for errors that did not originate in this module.
	KindUnknown Kind = "UNKNOWN"
)

// Operation names recorded in Error.Op.
const (
	OpAdd        = "add"
	OpAddBatch   = "addBatch"
	OpGet        = "get"
	OpDelete     = "delete"
	OpDeleteMany = "deleteMany"
	OpNew        = "new"
)
