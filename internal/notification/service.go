package notification

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Notify records a notification for a single recipient. Delivery to a
// device (push, mail) is a downstream concern; this subsystem only writes
// the inbox entry.
func (s *Service) Notify(ctx context.Context, recipientID int64, kind Kind, title, body string, relatedGroupID *int64) error {
	_, err := s.repo.Create(ctx, recipientID, kind, title, body, relatedGroupID)
	return err
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// Helper methods for the membership workflows

// NotifyJoinRequest tells a group approver that someone asked to join
func (s *Service) NotifyJoinRequest(ctx context.Context, recipientID int64, requesterName, groupName string, groupID int64) error {
	title := "New join request"
	body := fmt.Sprintf("%s requested to join %s", requesterName, groupName)
	return s.Notify(ctx, recipientID, KindJoinRequest, title, body, &groupID)
}

// NotifyGroupInvite tells a user they have been invited to a group
func (s *Service) NotifyGroupInvite(ctx context.Context, recipientID int64, groupName string, groupID int64) error {
	title := "Group invitation"
	body := fmt.Sprintf("You have been invited to join %s", groupName)
	return s.Notify(ctx, recipientID, KindGroupInvite, title, body, &groupID)
}
