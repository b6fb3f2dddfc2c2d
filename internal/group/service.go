package group

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hqasem/studycircle/internal/user"
)

// Common errors
var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyMember    = errors.New("user is already a member of this group")
	ErrAlreadyRequested = errors.New("user already has a pending request for this group")
	ErrPermissionDenied = errors.New("not allowed to perform this action")
	ErrSelfOperation    = errors.New("action may not target the acting user")
	ErrInvalidState     = errors.New("membership is not in the expected state")
)

// Store is the membership persistence surface the service depends on.
// *Repository satisfies it; tests use in-memory fakes.
type Store interface {
	Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id int64) error
	GetMember(ctx context.Context, groupID, userID int64) (*Member, error)
	GetMembers(ctx context.Context, groupID int64) ([]*Member, error)
	ListApproverIDs(ctx context.Context, groupID int64) ([]int64, error)
	UpsertPending(ctx context.Context, groupID, userID int64, invitedBy *int64) (*Member, error)
	TransitionStatus(ctx context.Context, groupID, userID int64, from, to MemberStatus) (*Member, error)
	MarkLeft(ctx context.Context, groupID, userID int64) (*Member, error)
	UpdateRole(ctx context.Context, groupID, userID int64, from, to MemberRole) (*Member, error)
}

// UserDirectory resolves users for the direct-invite path.
type UserDirectory interface {
	// Resolve returns nil when no user matches the lookup key.
	Resolve(ctx context.Context, lookupKey string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Notifier delivers membership notifications. Delivery is best effort:
// failures never roll back membership state.
type Notifier interface {
	NotifyJoinRequest(ctx context.Context, recipientID int64, requesterName, groupName string, groupID int64) error
	NotifyGroupInvite(ctx context.Context, recipientID int64, groupName string, groupID int64) error
}

// Service handles group and membership business logic
type Service struct {
	store    Store
	users    UserDirectory
	notifier Notifier
	log      *zap.Logger
}

// NewService creates a new group service
func NewService(store Store, users UserDirectory, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{store: store, users: users, notifier: notifier, log: logger}
}

// Create creates a new group with the acting user as its creator. The
// creator membership is written in the same transaction as the group row
// with role CREATOR and status JOINED.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	return s.store.Create(ctx, creatorID, req)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its membership records
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*Member, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.store.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies a group; only the creator may do so
func (s *Service) Update(ctx context.Context, id, actorID int64, req *UpdateGroupRequest) (*Group, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != actorID {
		return nil, ErrPermissionDenied
	}

	return s.store.Update(ctx, id, req)
}

// Delete removes a group; only the creator may do so
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if group.CreatorID != actorID {
		return ErrPermissionDenied
	}

	return s.store.Delete(ctx, id)
}

// GetMembers retrieves all membership records of a group
func (s *Service) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.GetMembers(ctx, groupID)
}

// RequestToJoin files a join request for a public group. On success the
// membership is PENDING and the creator plus every joined admin receives a
// notification; notification failures are logged and never undo the
// membership change.
func (s *Service) RequestToJoin(ctx context.Context, groupID, userID int64) (*Member, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsPublic {
		return nil, ErrPermissionDenied
	}

	member, err := s.upsertPending(ctx, groupID, userID, nil)
	if err != nil {
		return nil, err
	}

	s.notifyApprovers(ctx, group, userID)

	return member, nil
}

// DirectInvite invites a specific user, resolved by username or student
// number, into the group. Requires invite permission on the actor. The
// invitee lands in PENDING and accepts or declines through Respond.
func (s *Service) DirectInvite(ctx context.Context, groupID, actorID int64, lookupKey string) (*Member, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	actor, err := s.store.GetMember(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Status != MemberStatusJoined || !Can(actor.Role, false, MemberRoleMember, ActionInviteMember) {
		return nil, ErrPermissionDenied
	}

	invitee, err := s.users.Resolve(ctx, lookupKey)
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, ErrUserNotFound
	}
	if invitee.ID == actorID {
		return nil, ErrSelfOperation
	}

	member, err := s.upsertPending(ctx, groupID, invitee.ID, &actorID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyGroupInvite(ctx, invitee.ID, group.Name, group.ID); err != nil {
		s.log.Warn("invite notification failed",
			zap.Int64("group_id", group.ID),
			zap.Int64("recipient_id", invitee.ID),
			zap.Error(err))
	}

	return member, nil
}

// Respond answers the user's own PENDING invitation: accept moves it to
// JOINED, decline moves it to LEFT. Only invite-originated records can be
// self-resolved; a discovery join request awaits ReviewRequest by an
// approver, so the requester cannot wave themselves through.
func (s *Service) Respond(ctx context.Context, groupID, userID int64, accept bool) (*Member, error) {
	member, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != MemberStatusPending {
		return nil, ErrInvalidState
	}
	if member.InvitedBy == nil {
		return nil, ErrPermissionDenied
	}

	return s.resolvePending(ctx, groupID, userID, accept)
}

// ReviewRequest lets a creator or admin approve or reject a pending join
// request on behalf of the group.
func (s *Service) ReviewRequest(ctx context.Context, groupID, actorID, targetID int64, accept bool) (*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	actor, err := s.store.GetMember(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Status != MemberStatusJoined {
		return nil, ErrPermissionDenied
	}

	target, err := s.store.GetMember(ctx, groupID, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}

	if !Can(actor.Role, actorID == targetID, target.Role, ActionReviewJoinRequest) {
		return nil, ErrPermissionDenied
	}
	if target.Status != MemberStatusPending {
		return nil, ErrInvalidState
	}

	return s.resolvePending(ctx, groupID, targetID, accept)
}

// resolvePending moves a validated PENDING record to JOINED or LEFT as an
// atomic check-and-set, so a concurrent resolution cannot be applied twice.
func (s *Service) resolvePending(ctx context.Context, groupID, userID int64, accept bool) (*Member, error) {
	to := MemberStatusJoined
	if !accept {
		to = MemberStatusLeft
	}

	member, err := s.store.TransitionStatus(ctx, groupID, userID, MemberStatusPending, to)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrInvalidState
	}

	return member, nil
}

// ChangeRole promotes a member to ADMIN or demotes an ADMIN back to
// MEMBER. Only the creator may change roles, and the creator's own role is
// immutable.
func (s *Service) ChangeRole(ctx context.Context, groupID, actorID, targetID int64, newRole MemberRole) (*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	actor, err := s.store.GetMember(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Status != MemberStatusJoined {
		return nil, ErrPermissionDenied
	}

	target, err := s.store.GetMember(ctx, groupID, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}

	var action Action
	switch newRole {
	case MemberRoleAdmin:
		action = ActionPromoteToAdmin
	case MemberRoleMember:
		action = ActionDemoteToMember
	default:
		return nil, ErrPermissionDenied
	}

	if !Can(actor.Role, actorID == targetID, target.Role, action) {
		return nil, ErrPermissionDenied
	}
	if target.Status != MemberStatusJoined {
		return nil, ErrInvalidState
	}

	member, err := s.store.UpdateRole(ctx, groupID, targetID, target.Role, newRole)
	if err != nil {
		return nil, err
	}
	if member == nil {
		// Lost a race against a concurrent role or status change.
		return nil, ErrInvalidState
	}

	return member, nil
}

// RemoveMember sets the target's status to LEFT, gated by the permission
// policy. The record is kept; removal is never a hard delete.
func (s *Service) RemoveMember(ctx context.Context, groupID, actorID, targetID int64) (*Member, error) {
	if actorID == targetID {
		return nil, ErrSelfOperation
	}

	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	actor, err := s.store.GetMember(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Status != MemberStatusJoined {
		return nil, ErrPermissionDenied
	}

	target, err := s.store.GetMember(ctx, groupID, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrMemberNotFound
	}

	if !Can(actor.Role, false, target.Role, ActionRemoveMember) {
		return nil, ErrPermissionDenied
	}

	member, err := s.store.MarkLeft(ctx, groupID, targetID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrInvalidState
	}

	return member, nil
}

// Leave is voluntary self-removal. It is always permitted except for the
// creator, whose membership is fixed for the lifetime of the group.
func (s *Service) Leave(ctx context.Context, groupID, userID int64) (*Member, error) {
	member, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Role == MemberRoleCreator {
		return nil, ErrPermissionDenied
	}

	left, err := s.store.MarkLeft(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, ErrInvalidState
	}

	return left, nil
}

// upsertPending performs the shared atomic create-or-reenter step of both
// join paths, mapping a refused write to the precise conflict error.
func (s *Service) upsertPending(ctx context.Context, groupID, userID int64, invitedBy *int64) (*Member, error) {
	member, err := s.store.UpsertPending(ctx, groupID, userID, invitedBy)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return member, nil
	}

	existing, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// The conflicting row vanished between the two statements.
		return nil, ErrInvalidState
	}

	switch existing.Status {
	case MemberStatusJoined:
		return nil, ErrAlreadyMember
	case MemberStatusPending:
		return nil, ErrAlreadyRequested
	default:
		return nil, ErrInvalidState
	}
}

// notifyApprovers fans a join-request notification out to the group's
// creator and joined admins, one notification per recipient, concurrently.
// Failures are isolated per recipient.
func (s *Service) notifyApprovers(ctx context.Context, group *Group, requesterID int64) {
	approvers, err := s.store.ListApproverIDs(ctx, group.ID)
	if err != nil {
		s.log.Error("failed to list approvers for join request",
			zap.Int64("group_id", group.ID),
			zap.Error(err))
		return
	}

	requesterName := "A student"
	if requester, err := s.users.GetByID(ctx, requesterID); err == nil && requester != nil {
		requesterName = requester.Username
	}

	var wg sync.WaitGroup
	for _, recipientID := range approvers {
		recipientID := recipientID
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.notifier.NotifyJoinRequest(ctx, recipientID, requesterName, group.Name, group.ID); err != nil {
				s.log.Warn("join request notification failed",
					zap.Int64("group_id", group.ID),
					zap.Int64("recipient_id", recipientID),
					zap.Error(err))
			}
		}()
	}
	wg.Wait()
}
