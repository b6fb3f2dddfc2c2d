package group

import "time"

// MemberStatus represents the lifecycle state of a group member
type MemberStatus string

const (
	MemberStatusPending MemberStatus = "PENDING"
	MemberStatusJoined  MemberStatus = "JOINED"
	MemberStatusLeft    MemberStatus = "LEFT"
)

// MemberRole represents the privilege level of a group member
type MemberRole string

const (
	MemberRoleCreator MemberRole = "CREATOR"
	MemberRoleAdmin   MemberRole = "ADMIN"
	MemberRoleMember  MemberRole = "MEMBER"
)

// Group represents a study group
type Group struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creator_id"`
	CourseID    *int64    `json:"course_id,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Capacity    *int      `json:"capacity,omitempty"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member represents a user's membership in a group. At most one record
// exists per (group, user) pair; leaving sets status LEFT rather than
// deleting the row, so the record carries the full membership history.
type Member struct {
	ID        int64        `json:"id"`
	GroupID   int64        `json:"group_id"`
	UserID    int64        `json:"user_id"`
	Role      MemberRole   `json:"role"`
	Status    MemberStatus `json:"status"`
	InvitedBy *int64       `json:"invited_by,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Populated from JOIN
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
