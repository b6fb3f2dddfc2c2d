package invite

import (
	"time"

	"github.com/google/uuid"
)

// Invite represents a redeemable group invite code. Codes are globally
// unique so redemption can locate the owning group from the code alone.
type Invite struct {
	ID          int64      `json:"-"`
	PublicID    uuid.UUID  `json:"public_id"`
	GroupID     int64      `json:"group_id"`
	IssuerID    int64      `json:"issuer_id"`
	Code        string     `json:"code"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	CurrentUses int        `json:"current_uses"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired reports whether the invite's expiry has passed. An unset expiry
// never expires.
func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// Exhausted reports whether usage has reached the ceiling. An unset
// ceiling means unlimited uses.
func (i *Invite) Exhausted() bool {
	return i.MaxUses != nil && i.CurrentUses >= *i.MaxUses
}
