package domain

import (
	"github.com/keeplegacy/docvault/internal/errors"
)

// Document operation error definitions. Each wraps a standard sentinel from
// internal/errors so callers classify failures without string inspection.
var (
	// ErrUnknownClassification indicates an unrecognized classification value.
	ErrUnknownClassification = errors.Wrap(errors.ErrInvalidInput, "unknown classification")

	// ErrUnknownAccessLevel indicates an unrecognized access level value.
	ErrUnknownAccessLevel = errors.Wrap(errors.ErrInvalidInput, "unknown access level")

	// ErrContentTypeNotAllowed indicates an upload content type outside the allow-list.
	ErrContentTypeNotAllowed = errors.Wrap(errors.ErrInvalidInput, "content type not allowed")

	// ErrDocumentTooLarge indicates an upload exceeding the maximum size.
	ErrDocumentTooLarge = errors.Wrap(errors.ErrInvalidInput, "document too large")

	// ErrEmptyDocument indicates an upload with no content.
	ErrEmptyDocument = errors.Wrap(errors.ErrInvalidInput, "empty document")

	// ErrIntegrityViolation indicates decrypted content whose SHA-256 does
	// not match the record's checksum. Critical severity: either corruption
	// or tampering. Always audited, never retried.
	ErrIntegrityViolation = errors.Wrap(errors.ErrIntegrity, "checksum mismatch")

	// ErrStorageWriteFailed indicates the object store rejected or failed a write.
	ErrStorageWriteFailed = errors.Wrap(errors.ErrUnavailable, "storage write failed")

	// ErrAuditWriteFailed indicates the audit trail could not record an
	// otherwise-successful operation. The operation is failed as a whole:
	// a mutation that happened but is unaudited violates the compliance
	// invariant.
	ErrAuditWriteFailed = errors.Wrap(errors.ErrUnavailable, "audit write failed")
)
