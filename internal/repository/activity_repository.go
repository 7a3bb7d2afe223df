package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository handles database operations for the activity feed.
type ActivityRepository struct {
	collection *mongo.Collection
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
	}
}

// EnsureIndexes creates the indexes the feed queries depend on.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create activity indexes: %v", err)
	}
	return nil
}

// CreateActivity inserts a new activity with a server-side timestamp.
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	activity.Timestamp = time.Now()
	activity.Read = false

	result, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert activity")
		return nil, fmt.Errorf("failed to insert activity: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted activity ID")
		return nil, fmt.Errorf("failed to cast inserted activity ID")
	}
	activity.ID = insertedID

	return activity, nil
}

// GetUserActivities fetches a page of a user's activities, newest first.
// Ties on timestamp fall back to _id so pagination never skips or repeats rows.
func (r *ActivityRepository) GetUserActivities(ctx context.Context, userID string, limit, skip int64) ([]models.Activity, int64, error) {
	filter := bson.M{"user_id": userID}
	sort := bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}

	opts := options.Find().SetSort(sort).SetLimit(limit).SetSkip(skip)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch activities: %v", err)
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, 0, fmt.Errorf("failed to decode activities: %v", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %v", err)
	}
	return activities, total, nil
}

// MarkAsRead sets read=true and returns the updated activity.
// Returns mongo.ErrNoDocuments when the id is unknown.
func (r *ActivityRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var activity models.Activity
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&activity)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// MarkAllAsRead flips every unread activity of the user and returns the count.
func (r *ActivityRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark activities as read: %v", err)
	}
	return result.ModifiedCount, nil
}

// CountUnread counts the user's activities with read=false.
func (r *ActivityRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread activities: %v", err)
	}
	return count, nil
}

// DeleteActivity removes one activity by id.
// Returns mongo.ErrNoDocuments when the id is unknown.
func (r *ActivityRepository) DeleteActivity(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	var activity models.Activity
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&activity)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}
