package group

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	CourseID    *int64  `json:"course_id,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

// DirectInviteRequest represents the request to invite a user by lookup key
type DirectInviteRequest struct {
	LookupKey string `json:"lookup_key" validate:"required"`
}

// RespondRequest represents a user's answer to a pending membership
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// ChangeRoleRequest represents the request to promote or demote a member
type ChangeRoleRequest struct {
	Role MemberRole `json:"role" validate:"required"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          int64             `json:"id"`
	CreatorID   int64             `json:"creator_id"`
	CourseID    *int64            `json:"course_id,omitempty"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Capacity    *int              `json:"capacity,omitempty"`
	IsPublic    bool              `json:"is_public"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID       int64        `json:"id"`
	UserID   int64        `json:"user_id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Role     MemberRole   `json:"role"`
	Status   MemberStatus `json:"status"`
	JoinedAt string       `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		CreatorID:   g.CreatorID,
		CourseID:    g.CourseID,
		Name:        g.Name,
		Description: g.Description,
		Capacity:    g.Capacity,
		IsPublic:    g.IsPublic,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Username: m.Username,
		Email:    m.Email,
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
