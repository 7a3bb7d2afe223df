package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles database operations for notifications.
// Every read filters on expires_at: the TTL index and the cron sweep remove
// expired documents eventually, the filter hides them immediately.
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// EnsureIndexes creates the listing index and the TTL index on expires_at.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %v", err)
	}
	return nil
}

// CreateNotification inserts a new notification with its expiry stamped.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(models.NotificationTTL)
	notif.Read = false

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert notification")
		return nil, fmt.Errorf("failed to create notification: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted notification ID")
		return nil, fmt.Errorf("failed to cast inserted notification ID")
	}
	notif.ID = insertedID

	return notif, nil
}

func (r *NotificationRepository) activeFilter(userID string) bson.M {
	return bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
}

// GetUserNotifications fetches a page of non-expired notifications, newest
// first, with total and unread counts for the same filter.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID string, limit, skip int64) ([]models.Notification, int64, int64, error) {
	filter := r.activeFilter(userID)
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

	opts := options.Find().SetSort(sort).SetLimit(limit).SetSkip(skip)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode notifications: %v", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count notifications: %v", err)
	}

	unreadFilter := r.activeFilter(userID)
	unreadFilter["read"] = false
	unread, err := r.collection.CountDocuments(ctx, unreadFilter)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count unread notifications: %v", err)
	}

	return notifications, total, unread, nil
}

// MarkAsRead sets read=true and returns the updated notification.
// Returns mongo.ErrNoDocuments when the id is unknown.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var notif models.Notification
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&notif)
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

// MarkAllAsRead flips every unread notification of the user and returns the count.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %v", err)
	}
	return result.ModifiedCount, nil
}

// CountUnread counts the user's unread, non-expired notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	filter := r.activeFilter(userID)
	filter["read"] = false

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %v", err)
	}
	return count, nil
}

// DeleteNotification removes one notification by id.
// Returns mongo.ErrNoDocuments when the id is unknown.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notif models.Notification
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&notif)
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

// ClearAll deletes every notification for the user and returns the count.
func (r *NotificationRepository) ClearAll(ctx context.Context, userID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %v", err)
	}
	return result.DeletedCount, nil
}

// DeleteExpired removes notifications past their expiry. Backstop for the
// TTL index, which Mongo runs on its own schedule.
func (r *NotificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	if result.DeletedCount > 0 {
		logrus.Infof("Deleted %d expired notifications", result.DeletedCount)
	}
	return result.DeletedCount, nil
}
