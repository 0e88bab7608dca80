package domain

import (
	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

var (
	ErrUnknownEventType = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown audit event type")
	ErrUnknownSeverity  = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown audit severity")
	ErrMissingActor     = apperrors.Wrap(apperrors.ErrInvalidInput, "audit entry actor is required")
	ErrMissingSourceIP  = apperrors.Wrap(apperrors.ErrInvalidInput, "audit entry source ip is required")
	ErrChainBroken      = apperrors.Wrap(apperrors.ErrIntegrity, "audit signature chain broken")
	ErrEntryTampered    = apperrors.Wrap(apperrors.ErrIntegrity, "audit entry signature mismatch")
)
