package invite

import "time"

// CreateInviteRequest represents the request to create an invite code
type CreateInviteRequest struct {
	GroupID   int64      `json:"group_id" validate:"required"`
	MaxUses   *int       `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RedeemRequest represents the request to redeem an invite code
type RedeemRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// InviteResponse represents the response for an invite
type InviteResponse struct {
	PublicID    string  `json:"public_id"`
	GroupID     int64   `json:"group_id"`
	IssuerID    int64   `json:"issuer_id"`
	Code        string  `json:"code"`
	MaxUses     *int    `json:"max_uses,omitempty"`
	CurrentUses int     `json:"current_uses"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts an Invite model to an InviteResponse DTO
func (i *Invite) ToResponse() *InviteResponse {
	resp := &InviteResponse{
		PublicID:    i.PublicID.String(),
		GroupID:     i.GroupID,
		IssuerID:    i.IssuerID,
		Code:        i.Code,
		MaxUses:     i.MaxUses,
		CurrentUses: i.CurrentUses,
		CreatedAt:   i.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if i.ExpiresAt != nil {
		expires := i.ExpiresAt.Format("2006-01-02T15:04:05Z")
		resp.ExpiresAt = &expires
	}
	return resp
}
