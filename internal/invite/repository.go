package invite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hqasem/studycircle/internal/group"
)

// errCodeTaken signals a generated code collided with a stored one; the
// service regenerates and retries.
var errCodeTaken = errors.New("invite code already taken")

// uniqueViolation is the Postgres error code for unique constraint violations
const uniqueViolation = "23505"

// Repository handles invite persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new invite repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const inviteColumns = `id, public_id, group_id, issuer_id, code, max_uses, current_uses, expires_at, created_at`

func scanInvite(row *sql.Row) (*Invite, error) {
	inv := &Invite{}
	err := row.Scan(
		&inv.ID,
		&inv.PublicID,
		&inv.GroupID,
		&inv.IssuerID,
		&inv.Code,
		&inv.MaxUses,
		&inv.CurrentUses,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Create inserts a new invite. Returns errCodeTaken when the generated
// code collides with an existing one.
func (r *Repository) Create(ctx context.Context, inv *Invite) (*Invite, error) {
	query := `
		INSERT INTO group_invites (public_id, group_id, issuer_id, code, max_uses, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + inviteColumns

	created, err := scanInvite(r.db.QueryRowContext(ctx, query,
		inv.PublicID, inv.GroupID, inv.IssuerID, inv.Code, inv.MaxUses, inv.ExpiresAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, errCodeTaken
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	return created, nil
}

// GetByPublicID retrieves an invite by its public identifier
func (r *Repository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM group_invites WHERE public_id = $1`

	inv, err := scanInvite(r.db.QueryRowContext(ctx, query, publicID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return inv, nil
}

// ListByGroup retrieves all invites of a group
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM group_invites
		WHERE group_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*Invite
	for rows.Next() {
		inv := &Invite{}
		if err := rows.Scan(
			&inv.ID,
			&inv.PublicID,
			&inv.GroupID,
			&inv.IssuerID,
			&inv.Code,
			&inv.MaxUses,
			&inv.CurrentUses,
			&inv.ExpiresAt,
			&inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, inv)
	}

	return invites, nil
}

// Delete removes an invite
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM group_invites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrInviteNotFound
	}

	return nil
}

// Redeem consumes an invite code for a user inside a single transaction.
// The invite row is locked for the duration, so concurrent redemptions at
// the usage ceiling serialize and at most max_uses of them succeed. The
// usage counter is incremented only when the membership write succeeds;
// a rejected attempt leaves no state behind.
func (r *Repository) Redeem(ctx context.Context, code string, userID int64) (*group.Member, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inv := &Invite{}
	err = tx.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM group_invites WHERE code = $1 FOR UPDATE`, code).Scan(
		&inv.ID,
		&inv.PublicID,
		&inv.GroupID,
		&inv.IssuerID,
		&inv.Code,
		&inv.MaxUses,
		&inv.CurrentUses,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to lock invite: %w", err)
	}

	if inv.Expired(time.Now()) {
		return nil, ErrInviteExpired
	}
	if inv.Exhausted() {
		return nil, ErrInviteExhausted
	}

	// Code redemption grants immediate membership: a fresh or LEFT record
	// becomes JOINED, and a PENDING one is approved. Re-entry resets the
	// role to MEMBER; prior privileges do not survive a departure. Only an
	// already JOINED member is refused.
	memberQuery := `
		INSERT INTO group_members (group_id, user_id, role, status)
		VALUES ($1, $2, 'MEMBER', 'JOINED')
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET status = 'JOINED', role = 'MEMBER', updated_at = now()
		WHERE group_members.status IN ('LEFT', 'PENDING')
		RETURNING id, group_id, user_id, role, status, invited_by, created_at, updated_at
	`

	member := &group.Member{}
	err = tx.QueryRowContext(ctx, memberQuery, inv.GroupID, userID).Scan(
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
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join via invite: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE group_invites SET current_uses = current_uses + 1 WHERE id = $1`, inv.ID); err != nil {
		return nil, fmt.Errorf("failed to increment invite usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	return member, nil
}
