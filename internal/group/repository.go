package group

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles group and membership persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const memberColumns = `id, group_id, user_id, role, status, invited_by, created_at, updated_at`

// Create inserts a new group and its creator membership in one transaction.
// The creator row is the only place role CREATOR is ever written.
func (r *Repository) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (creator_id, course_id, name, description, capacity, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, creator_id, course_id, name, description, capacity, is_public, created_at
	`

	group := &Group{}
	err = tx.QueryRowContext(ctx, query, creatorID, req.CourseID, req.Name, req.Description, req.Capacity, req.IsPublic).Scan(
		&group.ID,
		&group.CreatorID,
		&group.CourseID,
		&group.Name,
		&group.Description,
		&group.Capacity,
		&group.IsPublic,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	memberQuery := `
		INSERT INTO group_members (group_id, user_id, role, status)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, memberQuery, group.ID, creatorID, MemberRoleCreator, MemberStatusJoined); err != nil {
		return nil, fmt.Errorf("failed to add creator member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group creation: %w", err)
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT id, creator_id, course_id, name, description, capacity, is_public, created_at
		FROM groups
		WHERE id = $1
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.CreatorID,
		&group.CourseID,
		&group.Name,
		&group.Description,
		&group.Capacity,
		&group.IsPublic,
		&group.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// ListByUserID retrieves all groups a user has a membership in
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(DISTINCT g.id)
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1 AND gm.status <> 'LEFT'
	`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT g.id, g.creator_id, g.course_id, g.name, g.description, g.capacity, g.is_public, g.created_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1 AND gm.status <> 'LEFT'
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.CreatorID,
			&group.CourseID,
			&group.Name,
			&group.Description,
			&group.Capacity,
			&group.IsPublic,
			&group.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, total, nil
}

// Update modifies an existing group
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    capacity = COALESCE($4, capacity),
		    is_public = COALESCE($5, is_public)
		WHERE id = $1
		RETURNING id, creator_id, course_id, name, description, capacity, is_public, created_at
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id, req.Name, req.Description, req.Capacity, req.IsPublic).Scan(
		&group.ID,
		&group.CreatorID,
		&group.CourseID,
		&group.Name,
		&group.Description,
		&group.Capacity,
		&group.IsPublic,
		&group.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// Delete removes a group; members and invites cascade at the schema level
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("group not found")
	}

	return nil
}

// GetMember retrieves a specific membership record
func (r *Repository) GetMember(ctx context.Context, groupID, userID int64) (*Member, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.status, gm.invited_by, gm.created_at, gm.updated_at, u.username, u.email
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1 AND gm.user_id = $2
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.InvitedBy,
		&member.CreatedAt,
		&member.UpdatedAt,
		&member.Username,
		&member.Email,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetMembers retrieves all membership records of a group
func (r *Repository) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.status, gm.invited_by, gm.created_at, gm.updated_at, u.username, u.email
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.Status,
			&member.CreatedAt,
			&member.UpdatedAt,
			&member.Username,
			&member.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

// ListApproverIDs returns the user IDs of everyone who reviews join
// requests for a group: the creator plus all joined admins.
func (r *Repository) ListApproverIDs(ctx context.Context, groupID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM group_members
		WHERE group_id = $1 AND status = 'JOINED' AND role IN ('CREATOR', 'ADMIN')
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan approver: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// UpsertPending creates a PENDING membership, or flips a LEFT one back to
// PENDING, as a single atomic statement. Re-entry always resets the role to
// MEMBER; a former admin does not carry privileges across a departure.
// invitedBy records the inviting actor for invite-originated records and is
// nil for discovery join requests. Returns nil when the existing row is
// already PENDING or JOINED; the caller re-reads to tell the two apart.
func (r *Repository) UpsertPending(ctx context.Context, groupID, userID int64, invitedBy *int64) (*Member, error) {
	query := `
		INSERT INTO group_members (group_id, user_id, role, status, invited_by)
		VALUES ($1, $2, 'MEMBER', 'PENDING', $3)
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET status = 'PENDING', role = 'MEMBER', invited_by = EXCLUDED.invited_by, updated_at = now()
		WHERE group_members.status = 'LEFT'
		RETURNING ` + memberColumns

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID, invitedBy).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.InvitedBy,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to upsert pending member: %w", err)
	}

	return member, nil
}

// TransitionStatus moves a membership from one status to another as an
// atomic check-and-set. Returns nil when the row is absent or not in the
// expected from status, so concurrent transitions cannot be lost.
func (r *Repository) TransitionStatus(ctx context.Context, groupID, userID int64, from, to MemberStatus) (*Member, error) {
	query := `
		UPDATE group_members
		SET status = $4, updated_at = now()
		WHERE group_id = $1 AND user_id = $2 AND status = $3
		RETURNING ` + memberColumns

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID, from, to).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.InvitedBy,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to transition member status: %w", err)
	}

	return member, nil
}

// MarkLeft sets a membership's status to LEFT regardless of whether it is
// currently PENDING or JOINED. Returns nil if the row is absent or already
// LEFT.
func (r *Repository) MarkLeft(ctx context.Context, groupID, userID int64) (*Member, error) {
	query := `
		UPDATE group_members
		SET status = 'LEFT', updated_at = now()
		WHERE group_id = $1 AND user_id = $2 AND status <> 'LEFT'
		RETURNING ` + memberColumns

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.InvitedBy,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark member left: %w", err)
	}

	return member, nil
}

// UpdateRole changes a member's role as an atomic check-and-set against
// the role the caller validated. Returns nil if the row no longer holds
// the from role.
func (r *Repository) UpdateRole(ctx context.Context, groupID, userID int64, from, to MemberRole) (*Member, error) {
	query := `
		UPDATE group_members
		SET role = $4, updated_at = now()
		WHERE group_id = $1 AND user_id = $2 AND role = $3 AND status = 'JOINED'
		RETURNING ` + memberColumns

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID, from, to).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.InvitedBy,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	return member, nil
}
