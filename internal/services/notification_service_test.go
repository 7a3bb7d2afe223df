package services

import (
	"context"
	"testing"
	"time"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newNotificationService() (*NotificationService, *fakeNotificationStore, *fakeDispatcher) {
	store := newFakeNotificationStore()
	dispatcher := &fakeDispatcher{}
	return NewNotificationService(store, dispatcher), store, dispatcher
}

func TestCreateNotificationValidation(t *testing.T) {
	svc, store, dispatcher := newNotificationService()
	ctx := context.Background()

	cases := []struct {
		name                           string
		userID, notifType, title, body string
	}{
		{"missing user", "", models.NotificationSystem, "Title", "Body"},
		{"missing type", "u1", "", "Title", "Body"},
		{"missing title", "u1", models.NotificationSystem, "", "Body"},
		{"missing message", "u1", models.NotificationSystem, "Title", ""},
		{"unknown type", "u1", "marketing", "Title", "Body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateNotification(ctx, tc.userID, tc.notifType, tc.title, tc.body, "")
			assert.True(t, IsValidationError(err))
		})
	}

	assert.Empty(t, store.docs)
	assert.Empty(t, dispatcher.pushes)
}

func TestCreateNotificationSetsExpiryAndPushes(t *testing.T) {
	svc, _, dispatcher := newNotificationService()

	created, err := svc.CreateNotification(context.Background(), "u1", models.NotificationAchievement, "First log!", "You created your first log.", "/logs")
	require.NoError(t, err)
	assert.False(t, created.Read)
	assert.True(t, created.ExpiresAt.After(created.CreatedAt))
	assert.WithinDuration(t, created.CreatedAt.Add(models.NotificationTTL), created.ExpiresAt, time.Second)

	require.Len(t, dispatcher.pushes, 1)
	assert.Equal(t, "u1", dispatcher.pushes[0].UserID)
	assert.Equal(t, "notification:received", dispatcher.pushes[0].Event)
}

func TestExpiredNotificationsAreInvisible(t *testing.T) {
	svc, store, _ := newNotificationService()
	ctx := context.Background()

	_, err := svc.CreateNotification(ctx, "u1", models.NotificationReminder, "Fresh", "still valid", "")
	require.NoError(t, err)

	// A document past its expiry but not yet swept must be hidden by the
	// read-side filter.
	store.docs = append(store.docs, models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    "u1",
		Type:      models.NotificationReminder,
		Title:     "Stale",
		Message:   "expired 1 day ago",
		CreatedAt: time.Now().Add(-31 * 24 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	})

	list, err := svc.GetUserNotifications(ctx, "u1", 50, 0)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "Fresh", list.Notifications[0].Title)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, int64(1), list.UnreadCount)

	unread, err := svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestDeleteExpiredSweep(t *testing.T) {
	svc, store, _ := newNotificationService()
	ctx := context.Background()

	_, err := svc.CreateNotification(ctx, "u1", models.NotificationSystem, "Fresh", "keep me", "")
	require.NoError(t, err)
	store.docs = append(store.docs, models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    "u1",
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	deleted, err := svc.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, store.docs, 1)
}

func TestNotificationMarkAllAsReadIdempotent(t *testing.T) {
	svc, _, _ := newNotificationService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateNotification(ctx, "u1", models.NotificationSocial, "Hello", "message", "")
		require.NoError(t, err)
	}

	modified, err := svc.MarkAllAsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), modified)

	unread, err := svc.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	modified, err = svc.MarkAllAsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), modified)
}

func TestNotificationMarkAsReadNotFound(t *testing.T) {
	svc, _, _ := newNotificationService()

	_, err := svc.MarkAsRead(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearAllReturnsDeletedCount(t *testing.T) {
	svc, _, _ := newNotificationService()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.CreateNotification(ctx, "u1", models.NotificationMilestone, "Milestone", "done", "")
		require.NoError(t, err)
	}
	_, err := svc.CreateNotification(ctx, "u2", models.NotificationMilestone, "Milestone", "done", "")
	require.NoError(t, err)

	deleted, err := svc.ClearAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	list, err := svc.GetUserNotifications(ctx, "u2", 50, 0)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 1, "other users keep their notifications")
}

func TestNotificationListHasMore(t *testing.T) {
	svc, _, _ := newNotificationService()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := svc.CreateNotification(ctx, "u1", models.NotificationSystem, "Title", "message", "")
		require.NoError(t, err)
	}

	list, err := svc.GetUserNotifications(ctx, "u1", 5, 0)
	require.NoError(t, err)
	assert.True(t, list.HasMore)
	assert.Len(t, list.Notifications, 5)

	list, err = svc.GetUserNotifications(ctx, "u1", 5, 5)
	require.NoError(t, err)
	assert.False(t, list.HasMore)
	assert.Len(t, list.Notifications, 2)
}
