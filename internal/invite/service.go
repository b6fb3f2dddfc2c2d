package invite

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hqasem/studycircle/internal/group"
)

// Common errors
var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrInviteNotFound   = errors.New("invite not found")
	ErrInviteExpired    = errors.New("invite has expired")
	ErrInviteExhausted  = errors.New("invite usage limit reached")
	ErrAlreadyMember    = errors.New("user is already a member of this group")
	ErrPermissionDenied = errors.New("not allowed to perform this action")
)

// maxCodeAttempts bounds regeneration when a fresh code collides with a
// stored one. With 36^6 possible codes more than a couple of retries
// indicates something is wrong with the registry.
const maxCodeAttempts = 5

// Store is the invite persistence surface the service depends on
type Store interface {
	Create(ctx context.Context, inv *Invite) (*Invite, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*Invite, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Invite, error)
	Delete(ctx context.Context, id int64) error
	Redeem(ctx context.Context, code string, userID int64) (*group.Member, error)
}

// GroupDirectory supplies the group and membership reads needed for
// permission checks. *group.Repository satisfies it.
type GroupDirectory interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	GetMember(ctx context.Context, groupID, userID int64) (*group.Member, error)
}

// Service handles invite business logic
type Service struct {
	store  Store
	groups GroupDirectory
	log    *zap.Logger
}

// NewService creates a new invite service
func NewService(store Store, groups GroupDirectory, logger *zap.Logger) *Service {
	return &Service{store: store, groups: groups, log: logger}
}

// Create issues a new invite code for a group. The issuer must be a
// joined creator or admin of the group.
func (s *Service) Create(ctx context.Context, issuerID int64, req *CreateInviteRequest) (*Invite, error) {
	if err := s.requireInvitePermission(ctx, req.GroupID, issuerID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}

		created, err := s.store.Create(ctx, &Invite{
			PublicID:  uuid.New(),
			GroupID:   req.GroupID,
			IssuerID:  issuerID,
			Code:      code,
			MaxUses:   req.MaxUses,
			ExpiresAt: req.ExpiresAt,
		})
		if errors.Is(err, errCodeTaken) {
			s.log.Debug("invite code collision, regenerating",
				zap.Int64("group_id", req.GroupID),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		return created, nil
	}

	return nil, errors.New("failed to generate a unique invite code")
}

// Redeem consumes an invite code and joins the user to the owning group.
// Membership is granted immediately; the approval step of the discovery
// path does not apply to pre-authorized codes.
func (s *Service) Redeem(ctx context.Context, code string, userID int64) (*group.Member, error) {
	member, err := s.store.Redeem(ctx, code, userID)
	if err != nil {
		return nil, err
	}

	s.log.Info("invite redeemed",
		zap.Int64("group_id", member.GroupID),
		zap.Int64("user_id", userID))

	return member, nil
}

// ListByGroup returns all invites of a group; restricted to the group's
// joined creator or admins since codes grant membership directly.
func (s *Service) ListByGroup(ctx context.Context, groupID, actorID int64) ([]*Invite, error) {
	if err := s.requireInvitePermission(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListByGroup(ctx, groupID)
}

// Delete removes an invite. Allowed for the invite's issuer and for the
// owning group's creator.
func (s *Service) Delete(ctx context.Context, publicID uuid.UUID, actorID int64) error {
	inv, err := s.store.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrInviteNotFound
	}

	if actorID != inv.IssuerID {
		g, err := s.groups.GetByID(ctx, inv.GroupID)
		if err != nil {
			return err
		}
		if g == nil || g.CreatorID != actorID {
			return ErrPermissionDenied
		}
	}

	return s.store.Delete(ctx, inv.ID)
}

func (s *Service) requireInvitePermission(ctx context.Context, groupID, actorID int64) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGroupNotFound
	}

	member, err := s.groups.GetMember(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if member == nil || member.Status != group.MemberStatusJoined ||
		!group.Can(member.Role, false, group.MemberRoleMember, group.ActionInviteMember) {
		return ErrPermissionDenied
	}

	return nil
}
