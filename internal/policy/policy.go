// Package policy decides who may read, write or review land records and
// mutations. It performs no I/O; callers resolve resources first so that a
// missing record is reported as not found before any access decision.
package policy

import (
	"github.com/google/uuid"

	"landrecords/internal/errors"
	"landrecords/internal/model"
)

// Caller is an authenticated identity.
type Caller struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Action names an operation on a resource.
type Action string

const (
	ActionReadLand       Action = "read_land"
	ActionWriteLand      Action = "write_land"
	ActionReadDocuments  Action = "read_documents"
	ActionUploadDocument Action = "upload_document"
	ActionCreateMutation Action = "create_mutation"
	ActionReviewMutation Action = "review_mutation"
	ActionReadMutation   Action = "read_mutation"
)

// Resource is what an action targets. Owners are the users with a
// legitimate non-admin claim on it.
type Resource struct {
	Kind   string
	Owners []uuid.UUID
}

// LandResource describes a parcel; only its current owner has a claim.
func LandResource(land *model.LandRecord) Resource {
	return Resource{Kind: "land_record", Owners: []uuid.UUID{land.OwnerID}}
}

// MutationResource describes a transfer; both parties have a read claim.
func MutationResource(m *model.Mutation) Resource {
	return Resource{Kind: "mutation", Owners: []uuid.UUID{m.PreviousOwnerID, m.NewOwnerID}}
}

// CanAccess is the single allow/deny decision.
func CanAccess(caller Caller, res Resource, action Action) bool {
	if caller.IsAdmin {
		return true
	}
	switch action {
	case ActionReviewMutation:
		return false
	case ActionReadLand, ActionWriteLand, ActionReadDocuments, ActionUploadDocument,
		ActionCreateMutation, ActionReadMutation:
		return res.ownedBy(caller.UserID)
	default:
		return false
	}
}

// Authorize wraps CanAccess with the matching Forbidden error.
func Authorize(caller Caller, res Resource, action Action) error {
	if CanAccess(caller, res, action) {
		return nil
	}
	if action == ActionReviewMutation {
		return errors.ErrAdminRequired
	}
	return errors.ErrForbidden
}

// RequireAdmin guards operations that need no resource lookup to decide.
func RequireAdmin(caller Caller) error {
	return Authorize(caller, Resource{}, ActionReviewMutation)
}

// LandListScope returns the owner filter for listing parcels, or nil when
// the caller may see everything.
func LandListScope(caller Caller) *uuid.UUID {
	return scope(caller)
}

// MutationListScope returns the party filter for listing mutations, or nil
// when the caller may see everything. A non-nil scope matches the previous
// owner OR the new owner.
func MutationListScope(caller Caller) *uuid.UUID {
	return scope(caller)
}

func scope(caller Caller) *uuid.UUID {
	if caller.IsAdmin {
		return nil
	}
	id := caller.UserID
	return &id
}

func (r Resource) ownedBy(userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	for _, o := range r.Owners {
		if o == userID {
			return true
		}
	}
	return false
}
