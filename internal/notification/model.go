package notification

import "time"

// Kind classifies a notification for client-side grouping and routing
type Kind string

const (
	KindJoinRequest Kind = "JOIN_REQUEST"
	KindGroupInvite Kind = "GROUP_INVITE"
)

// Notification represents an inbox entry for a user
type Notification struct {
	ID             int64     `json:"id"`
	RecipientID    int64     `json:"recipient_id"`
	Kind           Kind      `json:"kind"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	RelatedGroupID *int64    `json:"related_group_id,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}
