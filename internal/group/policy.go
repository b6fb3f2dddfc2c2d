package group

// Action is an administrative action gated by the permission policy.
type Action int

const (
	ActionInviteMember Action = iota
	ActionReviewJoinRequest
	ActionPromoteToAdmin
	ActionDemoteToMember
	ActionRemoveMember
)

// Can reports whether an actor with actorRole may perform action against a
// member holding targetRole. It is the single source of permission rules;
// callers surface a rejection as ErrPermissionDenied, never silently.
//
// Self-management (leaving a group, responding to one's own invite) is not
// routed through this policy: actors may never remove or alter themselves
// via these administrative actions.
func Can(actorRole MemberRole, actorIsSelf bool, targetRole MemberRole, action Action) bool {
	if actorIsSelf {
		return false
	}

	switch action {
	case ActionInviteMember, ActionReviewJoinRequest:
		return actorRole == MemberRoleCreator || actorRole == MemberRoleAdmin
	case ActionPromoteToAdmin:
		return actorRole == MemberRoleCreator && targetRole == MemberRoleMember
	case ActionDemoteToMember:
		return actorRole == MemberRoleCreator && targetRole == MemberRoleAdmin
	case ActionRemoveMember:
		// The creator can never be removed.
		if targetRole == MemberRoleCreator {
			return false
		}
		if actorRole == MemberRoleCreator {
			return true
		}
		return actorRole == MemberRoleAdmin && targetRole == MemberRoleMember
	}

	return false
}
