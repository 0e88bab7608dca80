// Package access implements the access policy for document operations.
//
// The policy is a pure function of (principal, document, operation): no
// storage, no cryptography, no side effects. It is evaluated on every
// document store call regardless of any upstream authorization.
package access

import (
	"github.com/google/uuid"

	documentsDomain "github.com/keeplegacy/docvault/internal/documents/domain"
)

// Role is a principal's platform role, supplied by the out-of-scope
// authentication layer.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the identity context on every call. The vault trusts the
// upstream layer to have authenticated it, but runs its own policy check.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// Operation is a requested document operation.
type Operation string

const (
	OperationRead    Operation = "read"
	OperationWrite   Operation = "write"
	OperationDelete  Operation = "delete"
	OperationArchive Operation = "archive"
)

// Decision is the outcome of a policy evaluation. A denied decision always
// carries a reason suitable for audit details; the reason never reaches the
// caller beyond the Forbidden taxonomy code.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the affirmative decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny is a negative decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Controller evaluates document access policy.
type Controller struct{}

// NewController creates a Controller.
func NewController() *Controller {
	return &Controller{}
}

// Check evaluates the policy rules in order; the first match wins.
//
//  1. Admins may do anything.
//  2. Owners may do anything to their own documents.
//  3. Anyone may read a public document.
//  4. Everything else is denied.
//
// The function is total: every (role, ownership, access level, operation)
// combination produces exactly one decision.
func (c *Controller) Check(
	principal Principal,
	document *documentsDomain.DocumentRecord,
	operation Operation,
) Decision {
	if principal.Role == RoleAdmin {
		return Allow()
	}

	if document.OwnerID == principal.ID {
		return Allow()
	}

	if operation == OperationRead && document.AccessLevel == documentsDomain.AccessLevelPublic {
		return Allow()
	}

	return Deny("insufficient permissions")
}
