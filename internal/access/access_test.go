package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	documentsDomain "github.com/keeplegacy/docvault/internal/documents/domain"
)

func TestController_Check_Totality(t *testing.T) {
	controller := NewController()
	ownerID := uuid.Must(uuid.NewV7())
	strangerID := uuid.Must(uuid.NewV7())

	roles := []Role{RoleUser, RoleAdmin}
	ownerships := []bool{true, false}
	levels := []documentsDomain.AccessLevel{
		documentsDomain.AccessLevelPublic,
		documentsDomain.AccessLevelRead,
		documentsDomain.AccessLevelWrite,
		documentsDomain.AccessLevelManage,
		documentsDomain.AccessLevelAdmin,
	}
	operations := []Operation{OperationRead, OperationWrite, OperationDelete, OperationArchive}

	// Every combination must produce exactly one decision, no panics.
	for _, role := range roles {
		for _, isOwner := range ownerships {
			for _, level := range levels {
				for _, op := range operations {
					principalID := strangerID
					if isOwner {
						principalID = ownerID
					}
					principal := Principal{ID: principalID, Role: role}
					doc := &documentsDomain.DocumentRecord{
						OwnerID:     ownerID,
						AccessLevel: level,
					}

					decision := controller.Check(principal, doc, op)

					switch {
					case role == RoleAdmin:
						assert.True(t, decision.Allowed,
							"admin denied: owner=%v level=%s op=%s", isOwner, level, op)
					case isOwner:
						assert.True(t, decision.Allowed,
							"owner denied: level=%s op=%s", level, op)
					case op == OperationRead && level == documentsDomain.AccessLevelPublic:
						assert.True(t, decision.Allowed,
							"public read denied: level=%s", level)
					default:
						assert.False(t, decision.Allowed,
							"stranger allowed: level=%s op=%s", level, op)
						assert.Equal(t, "insufficient permissions", decision.Reason)
					}
				}
			}
		}
	}
}

func TestController_Check_RuleOrder(t *testing.T) {
	controller := NewController()
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("admin wins even on private documents they do not own", func(t *testing.T) {
		admin := Principal{ID: uuid.Must(uuid.NewV7()), Role: RoleAdmin}
		doc := &documentsDomain.DocumentRecord{
			OwnerID:     ownerID,
			AccessLevel: documentsDomain.AccessLevelRead,
		}
		assert.True(t, controller.Check(admin, doc, OperationDelete).Allowed)
	})

	t.Run("owner may write a public document", func(t *testing.T) {
		owner := Principal{ID: ownerID, Role: RoleUser}
		doc := &documentsDomain.DocumentRecord{
			OwnerID:     ownerID,
			AccessLevel: documentsDomain.AccessLevelPublic,
		}
		assert.True(t, controller.Check(owner, doc, OperationWrite).Allowed)
	})

	t.Run("stranger may not write a public document", func(t *testing.T) {
		stranger := Principal{ID: uuid.Must(uuid.NewV7()), Role: RoleUser}
		doc := &documentsDomain.DocumentRecord{
			OwnerID:     ownerID,
			AccessLevel: documentsDomain.AccessLevelPublic,
		}
		decision := controller.Check(stranger, doc, OperationWrite)
		assert.False(t, decision.Allowed)
	})
}
