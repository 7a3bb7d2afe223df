package services

import (
	"context"
	"errors"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationStore is the storage contract the notification service depends on.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error)
	GetUserNotifications(ctx context.Context, userID string, limit, skip int64) ([]models.Notification, int64, int64, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	ClearAll(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// NotificationList is one page of a user's notifications.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unreadCount"`
	HasMore       bool                  `json:"hasMore"`
}

type NotificationService struct {
	repo       NotificationStore
	dispatcher Dispatcher
}

func NewNotificationService(repo NotificationStore, dispatcher Dispatcher) *NotificationService {
	return &NotificationService{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// CreateNotification validates and persists a new notification with a
// 30-day lifetime, then pushes it to the owner's live connections.
func (s *NotificationService) CreateNotification(ctx context.Context, userID, notifType, title, message, actionURL string) (*models.Notification, error) {
	if userID == "" || notifType == "" || title == "" || message == "" {
		return nil, validationf("userId, type, title and message are required")
	}
	if !models.IsValidNotificationType(notifType) {
		return nil, validationf("invalid notification type: %s", notifType)
	}

	notif := &models.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		ActionURL: actionURL,
	}

	created, err := s.repo.CreateNotification(ctx, notif)
	if err != nil {
		return nil, err
	}

	s.dispatcher.PushToUser(userID, "notification:received", created)

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID,
		"type":    notifType,
	}).Info("Notification created")

	return created, nil
}

// GetUserNotifications returns one page of non-expired notifications with
// pagination metadata and the unread count.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string, limit, skip int64) (*NotificationList, error) {
	notifications, total, unread, err := s.repo.GetUserNotifications(ctx, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	return &NotificationList{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
		HasMore:       skip+limit < total,
	}, nil
}

// MarkAsRead flips one notification to read. Idempotent.
func (s *NotificationService) MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	notif, err := s.repo.MarkAsRead(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return notif, err
}

// MarkAllAsRead flips every unread notification of the user.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// CountUnread counts the user's unread, non-expired notifications.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// DeleteNotification removes one notification by id.
func (s *NotificationService) DeleteNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	notif, err := s.repo.DeleteNotification(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return notif, err
}

// ClearAll deletes every notification for the user and returns the count.
func (s *NotificationService) ClearAll(ctx context.Context, userID string) (int64, error) {
	return s.repo.ClearAll(ctx, userID)
}

// DeleteExpired purges notifications past their expiry. Called by the cron
// sweep; reads never depend on it because they filter on expires_at too.
func (s *NotificationService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}
