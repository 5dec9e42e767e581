package shared

import (
	"github.com/google/uuid"
)

// Actor identifies who is performing an operation. Exactly one of UserID
// and SessionID is set: authenticated shoppers carry a user id, guests a
// session id issued by the storefront client.
type Actor struct {
	TenantID  uuid.UUID
	UserID    *uuid.UUID
	SessionID *string
}

func NewUserActor(tenantID, userID uuid.UUID) Actor {
	return Actor{TenantID: tenantID, UserID: &userID}
}

func NewGuestActor(tenantID uuid.UUID, sessionID string) Actor {
	return Actor{TenantID: tenantID, SessionID: &sessionID}
}

func (a Actor) IsGuest() bool {
	return a.UserID == nil
}

// OwnerKey is a stable string identifying the actor's cart owner, used in
// lock keys and idempotency scoping.
func (a Actor) OwnerKey() string {
	if a.UserID != nil {
		return "user:" + a.UserID.String()
	}
	if a.SessionID != nil {
		return "session:" + *a.SessionID
	}
	return "anonymous"
}
