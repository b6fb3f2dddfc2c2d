package group

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hqasem/studycircle/internal/user"
)

type memberKey struct {
	groupID int64
	userID  int64
}

// fakeStore is an in-memory Store mirroring the conditional-write
// semantics of the Postgres repository.
type fakeStore struct {
	mu      sync.Mutex
	groups  map[int64]*Group
	members map[memberKey]*Member
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:  make(map[int64]*Group),
		members: make(map[memberKey]*Member),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addGroup(g *Group) *Group {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.ID == 0 {
		g.ID = f.id()
	}
	f.groups[g.ID] = g
	return g
}

func (f *fakeStore) addMember(groupID, userID int64, role MemberRole, status MemberStatus) *Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &Member{
		ID:      f.id(),
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
		Status:  status,
	}
	f.members[memberKey{groupID, userID}] = m
	return m
}

func (f *fakeStore) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	g := f.addGroup(&Group{
		CreatorID: creatorID,
		Name:      req.Name,
		IsPublic:  req.IsPublic,
		CreatedAt: time.Now(),
	})
	f.addMember(g.ID, creatorID, MemberRoleCreator, MemberStatusJoined)
	return g, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groups[id], nil
}

func (f *fakeStore) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var groups []*Group
	for _, m := range f.members {
		if m.UserID == userID && m.Status != MemberStatusLeft {
			if g, ok := f.groups[m.GroupID]; ok {
				groups = append(groups, g)
			}
		}
	}
	return groups, len(groups), nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.groups[id]
	if g == nil {
		return nil, nil
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.IsPublic != nil {
		g.IsPublic = *req.IsPublic
	}
	return g, nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups, id)
	return nil
}

func (f *fakeStore) GetMember(ctx context.Context, groupID, userID int64) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[memberKey{groupID, userID}], nil
}

func (f *fakeStore) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var members []*Member
	for _, m := range f.members {
		if m.GroupID == groupID {
			members = append(members, m)
		}
	}
	return members, nil
}

func (f *fakeStore) ListApproverIDs(ctx context.Context, groupID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for _, m := range f.members {
		if m.GroupID == groupID && m.Status == MemberStatusJoined &&
			(m.Role == MemberRoleCreator || m.Role == MemberRoleAdmin) {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

func (f *fakeStore) UpsertPending(ctx context.Context, groupID, userID int64, invitedBy *int64) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{groupID, userID}
	if m, ok := f.members[key]; ok {
		if m.Status != MemberStatusLeft {
			return nil, nil
		}
		m.Status = MemberStatusPending
		m.Role = MemberRoleMember
		m.InvitedBy = invitedBy
		return m, nil
	}
	m := &Member{
		ID:        f.id(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      MemberRoleMember,
		Status:    MemberStatusPending,
		InvitedBy: invitedBy,
	}
	f.members[key] = m
	return m, nil
}

func (f *fakeStore) TransitionStatus(ctx context.Context, groupID, userID int64, from, to MemberStatus) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.members[memberKey{groupID, userID}]
	if m == nil || m.Status != from {
		return nil, nil
	}
	m.Status = to
	return m, nil
}

func (f *fakeStore) MarkLeft(ctx context.Context, groupID, userID int64) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.members[memberKey{groupID, userID}]
	if m == nil || m.Status == MemberStatusLeft {
		return nil, nil
	}
	m.Status = MemberStatusLeft
	return m, nil
}

func (f *fakeStore) UpdateRole(ctx context.Context, groupID, userID int64, from, to MemberRole) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.members[memberKey{groupID, userID}]
	if m == nil || m.Role != from || m.Status != MemberStatusJoined {
		return nil, nil
	}
	m.Role = to
	return m, nil
}

type fakeDirectory struct {
	byKey map[string]*user.User
	byID  map[int64]*user.User
}

func newFakeDirectory(users ...*user.User) *fakeDirectory {
	d := &fakeDirectory{
		byKey: make(map[string]*user.User),
		byID:  make(map[int64]*user.User),
	}
	for _, u := range users {
		d.byKey[u.Username] = u
		d.byID[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) Resolve(ctx context.Context, lookupKey string) (*user.User, error) {
	return d.byKey[lookupKey], nil
}

func (d *fakeDirectory) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u := d.byID[id]
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

type joinRequestCall struct {
	recipientID   int64
	requesterName string
	groupName     string
}

type fakeNotifier struct {
	mu           sync.Mutex
	joinRequests []joinRequestCall
	invites      []int64
	failFor      map[int64]error
}

func (n *fakeNotifier) NotifyJoinRequest(ctx context.Context, recipientID int64, requesterName, groupName string, groupID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.failFor[recipientID]; err != nil {
		return err
	}
	n.joinRequests = append(n.joinRequests, joinRequestCall{recipientID, requesterName, groupName})
	return nil
}

func (n *fakeNotifier) NotifyGroupInvite(ctx context.Context, recipientID int64, groupName string, groupID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.failFor[recipientID]; err != nil {
		return err
	}
	n.invites = append(n.invites, recipientID)
	return nil
}

func (n *fakeNotifier) joinRequestRecipients() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []int64
	for _, call := range n.joinRequests {
		ids = append(ids, call.recipientID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func newTestService(users ...*user.User) (*Service, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	notifier := &fakeNotifier{failFor: make(map[int64]error)}
	service := NewService(store, newFakeDirectory(users...), notifier, zap.NewNop())
	return service, store, notifier
}

func TestRequestToJoinCreatesPendingAndNotifies(t *testing.T) {
	alice := &user.User{ID: 3, Username: "alice"}
	service, store, notifier := newTestService(alice)

	g := store.addGroup(&Group{CreatorID: 1, Name: "Algorithms", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)

	member, err := service.RequestToJoin(context.Background(), g.ID, 3)
	if err != nil {
		t.Fatalf("RequestToJoin: %v", err)
	}
	if member.Status != MemberStatusPending {
		t.Errorf("status = %s, want PENDING", member.Status)
	}
	if member.Role != MemberRoleMember {
		t.Errorf("role = %s, want MEMBER", member.Role)
	}

	recipients := notifier.joinRequestRecipients()
	if len(recipients) != 2 || recipients[0] != 1 || recipients[1] != 2 {
		t.Errorf("notified %v, want [1 2]", recipients)
	}
	for _, call := range notifier.joinRequests {
		if call.requesterName != "alice" {
			t.Errorf("requester name = %q, want alice", call.requesterName)
		}
		if call.groupName != "Algorithms" {
			t.Errorf("group name = %q, want Algorithms", call.groupName)
		}
	}
}

func TestRequestToJoinTwiceFailsAlreadyRequested(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)

	if _, err := service.RequestToJoin(context.Background(), g.ID, 5); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := service.RequestToJoin(context.Background(), g.ID, 5); !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("second request err = %v, want ErrAlreadyRequested", err)
	}
}

func TestRequestToJoinWhenJoinedFailsAlreadyMember(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusJoined)

	if _, err := service.RequestToJoin(context.Background(), g.ID, 5); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestRequestToJoinPrivateGroupDenied(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Secret", IsPublic: false})

	if _, err := service.RequestToJoin(context.Background(), g.ID, 5); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestRequestToJoinUnknownGroup(t *testing.T) {
	service, _, _ := newTestService()

	if _, err := service.RequestToJoin(context.Background(), 404, 5); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("err = %v, want ErrGroupNotFound", err)
	}
}

func TestRequestToJoinAfterLeaveReentersPending(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	left := store.addMember(g.ID, 5, MemberRoleMember, MemberStatusLeft)

	member, err := service.RequestToJoin(context.Background(), g.ID, 5)
	if err != nil {
		t.Fatalf("RequestToJoin: %v", err)
	}
	if member.Status != MemberStatusPending {
		t.Errorf("status = %s, want PENDING", member.Status)
	}
	if member.ID != left.ID {
		t.Errorf("member id = %d, want reused record %d", member.ID, left.ID)
	}
}

func TestRequestToJoinNotificationFailureIsIsolated(t *testing.T) {
	service, store, notifier := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)
	notifier.failFor[1] = errors.New("inbox write failed")

	member, err := service.RequestToJoin(context.Background(), g.ID, 5)
	if err != nil {
		t.Fatalf("RequestToJoin: %v", err)
	}
	if member.Status != MemberStatusPending {
		t.Errorf("status = %s, want PENDING despite notification failure", member.Status)
	}

	recipients := notifier.joinRequestRecipients()
	if len(recipients) != 1 || recipients[0] != 2 {
		t.Errorf("notified %v, want [2]", recipients)
	}
}

func TestDirectInviteByAdmin(t *testing.T) {
	bob := &user.User{ID: 7, Username: "bob"}
	service, store, notifier := newTestService(bob)

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)

	member, err := service.DirectInvite(context.Background(), g.ID, 2, "bob")
	if err != nil {
		t.Fatalf("DirectInvite: %v", err)
	}
	if member.UserID != 7 || member.Status != MemberStatusPending {
		t.Errorf("member = (%d, %s), want (7, PENDING)", member.UserID, member.Status)
	}
	if member.InvitedBy == nil || *member.InvitedBy != 2 {
		t.Errorf("invited_by = %v, want inviting actor 2", member.InvitedBy)
	}
	if len(notifier.invites) != 1 || notifier.invites[0] != 7 {
		t.Errorf("invite notifications = %v, want [7]", notifier.invites)
	}
}

func TestDirectInviteByPlainMemberDenied(t *testing.T) {
	bob := &user.User{ID: 7, Username: "bob"}
	service, store, _ := newTestService(bob)

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleMember, MemberStatusJoined)

	if _, err := service.DirectInvite(context.Background(), g.ID, 2, "bob"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestDirectInviteByNonMemberDenied(t *testing.T) {
	bob := &user.User{ID: 7, Username: "bob"}
	service, store, _ := newTestService(bob)

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})

	if _, err := service.DirectInvite(context.Background(), g.ID, 9, "bob"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestDirectInviteSelfDisallowed(t *testing.T) {
	admin := &user.User{ID: 2, Username: "carol"}
	service, store, _ := newTestService(admin)

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)

	if _, err := service.DirectInvite(context.Background(), g.ID, 2, "carol"); !errors.Is(err, ErrSelfOperation) {
		t.Fatalf("err = %v, want ErrSelfOperation", err)
	}
}

func TestDirectInviteUnknownLookup(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)

	if _, err := service.DirectInvite(context.Background(), g.ID, 2, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestRespondAcceptInvitation(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	inviter := int64(1)
	invited := store.addMember(g.ID, 5, MemberRoleMember, MemberStatusPending)
	invited.InvitedBy = &inviter

	member, err := service.Respond(context.Background(), g.ID, 5, true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if member.Status != MemberStatusJoined {
		t.Errorf("status = %s, want JOINED", member.Status)
	}
}

func TestRespondDeclineInvitation(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	inviter := int64(1)
	invited := store.addMember(g.ID, 5, MemberRoleMember, MemberStatusPending)
	invited.InvitedBy = &inviter

	member, err := service.Respond(context.Background(), g.ID, 5, false)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if member.Status != MemberStatusLeft {
		t.Errorf("status = %s, want LEFT", member.Status)
	}
}

func TestRespondWithoutPendingRecord(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})

	if _, err := service.Respond(context.Background(), g.ID, 5, true); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("absent record err = %v, want ErrMemberNotFound", err)
	}

	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusJoined)
	if _, err := service.Respond(context.Background(), g.ID, 5, true); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("joined record err = %v, want ErrInvalidState", err)
	}
}

func TestRespondCannotSelfApproveJoinRequest(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)

	if _, err := service.RequestToJoin(context.Background(), g.ID, 5); err != nil {
		t.Fatalf("RequestToJoin: %v", err)
	}

	if _, err := service.Respond(context.Background(), g.ID, 5, true); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("self-approval err = %v, want ErrPermissionDenied", err)
	}

	member, _ := store.GetMember(context.Background(), g.ID, 5)
	if member.Status != MemberStatusPending {
		t.Errorf("status = %s, want still PENDING until an approver reviews", member.Status)
	}
}

func TestReviewJoinRequestByCreator(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)

	if _, err := service.RequestToJoin(context.Background(), g.ID, 5); err != nil {
		t.Fatalf("RequestToJoin: %v", err)
	}

	member, err := service.ReviewRequest(context.Background(), g.ID, 1, 5, true)
	if err != nil {
		t.Fatalf("ReviewRequest: %v", err)
	}
	if member.Status != MemberStatusJoined {
		t.Errorf("status = %s, want JOINED", member.Status)
	}
}

func TestReviewJoinRequestRejectByAdmin(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusPending)

	member, err := service.ReviewRequest(context.Background(), g.ID, 2, 5, false)
	if err != nil {
		t.Fatalf("ReviewRequest: %v", err)
	}
	if member.Status != MemberStatusLeft {
		t.Errorf("status = %s, want LEFT", member.Status)
	}
}

func TestReviewJoinRequestByPlainMemberDenied(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 3, MemberRoleMember, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusPending)

	if _, err := service.ReviewRequest(context.Background(), g.ID, 3, 5, true); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestReviewJoinRequestNotPending(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusJoined)

	if _, err := service.ReviewRequest(context.Background(), g.ID, 1, 5, true); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestRejoinAfterLeaveResetsAdminRole(t *testing.T) {
	service, store, _ := newTestService()
	ctx := context.Background()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleAdmin, MemberStatusLeft)

	member, err := service.RequestToJoin(ctx, g.ID, 5)
	if err != nil {
		t.Fatalf("RequestToJoin: %v", err)
	}
	if member.Role != MemberRoleMember {
		t.Fatalf("role after re-request = %s, want MEMBER", member.Role)
	}

	member, err = service.ReviewRequest(ctx, g.ID, 1, 5, true)
	if err != nil {
		t.Fatalf("ReviewRequest: %v", err)
	}
	if member.Role != MemberRoleMember {
		t.Errorf("role after re-join = %s, want MEMBER until promoted again", member.Role)
	}
}

func TestChangeRolePromoteByCreator(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusJoined)

	member, err := service.ChangeRole(context.Background(), g.ID, 1, 5, MemberRoleAdmin)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if member.Role != MemberRoleAdmin {
		t.Errorf("role = %s, want ADMIN", member.Role)
	}
}

func TestChangeRoleDemoteByCreator(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleAdmin, MemberStatusJoined)

	member, err := service.ChangeRole(context.Background(), g.ID, 1, 5, MemberRoleMember)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if member.Role != MemberRoleMember {
		t.Errorf("role = %s, want MEMBER", member.Role)
	}
}

func TestChangeRoleByAdminDenied(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusJoined)

	if _, err := service.ChangeRole(context.Background(), g.ID, 2, 5, MemberRoleAdmin); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestChangeRoleTargetingCreatorDenied(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)

	if _, err := service.ChangeRole(context.Background(), g.ID, 1, 1, MemberRoleMember); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestRemoveMemberByCreator(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleAdmin, MemberStatusJoined)

	member, err := service.RemoveMember(context.Background(), g.ID, 1, 5)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if member.Status != MemberStatusLeft {
		t.Errorf("status = %s, want LEFT", member.Status)
	}
}

func TestRemoveAdminByAdminDenied(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleAdmin, MemberStatusJoined)

	if _, err := service.RemoveMember(context.Background(), g.ID, 2, 5); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestRemoveMemberByAdmin(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)
	store.addMember(g.ID, 5, MemberRoleMember, MemberStatusJoined)

	member, err := service.RemoveMember(context.Background(), g.ID, 2, 5)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if member.Status != MemberStatusLeft {
		t.Errorf("status = %s, want LEFT", member.Status)
	}
}

func TestRemoveMemberSelfDisallowed(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 2, MemberRoleAdmin, MemberStatusJoined)

	if _, err := service.RemoveMember(context.Background(), g.ID, 2, 2); !errors.Is(err, ErrSelfOperation) {
		t.Fatalf("err = %v, want ErrSelfOperation", err)
	}
}

func TestLeaveAndRejoinLifecycle(t *testing.T) {
	alice := &user.User{ID: 5, Username: "alice"}
	service, store, _ := newTestService(alice)
	ctx := context.Background()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)

	if _, err := service.RequestToJoin(ctx, g.ID, 5); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := service.ReviewRequest(ctx, g.ID, 1, 5, true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	member, err := service.Leave(ctx, g.ID, 5)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if member.Status != MemberStatusLeft {
		t.Fatalf("status after leave = %s, want LEFT", member.Status)
	}

	member, err = service.RequestToJoin(ctx, g.ID, 5)
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if member.Status != MemberStatusPending {
		t.Errorf("status after re-request = %s, want PENDING", member.Status)
	}
}

func TestLeaveByCreatorDenied(t *testing.T) {
	service, store, _ := newTestService()

	g := store.addGroup(&Group{CreatorID: 1, Name: "Calc", IsPublic: true})
	store.addMember(g.ID, 1, MemberRoleCreator, MemberStatusJoined)

	if _, err := service.Leave(context.Background(), g.ID, 1); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}
