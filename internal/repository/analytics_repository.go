package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AnalyticsRepository handles the per-user analytics documents. All counter
// mutations go through storage-level operators ($inc, $max, $push) so
// concurrent updates cannot lose writes.
type AnalyticsRepository struct {
	collection *mongo.Collection
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{
		collection: db.Collection("analytics"),
	}
}

// EnsureIndexes creates the unique per-user index.
func (r *AnalyticsRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create analytics indexes: %v", err)
	}
	return nil
}

// GetByUserID fetches the analytics document for a user.
// Returns mongo.ErrNoDocuments when none exists.
func (r *AnalyticsRepository) GetByUserID(ctx context.Context, userID string) (*models.Analytics, error) {
	var analytics models.Analytics
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&analytics)
	if err != nil {
		return nil, err
	}
	return &analytics, nil
}

// GetOrCreate returns the user's analytics document, creating a zeroed one
// when the user has none yet.
func (r *AnalyticsRepository) GetOrCreate(ctx context.Context, userID string) (*models.Analytics, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{"updated_at": time.Now()}}

	var analytics models.Analytics
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&analytics)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to get or create analytics")
		return nil, fmt.Errorf("failed to get or create analytics: %v", err)
	}
	return &analytics, nil
}

// IncrementField atomically increments one numeric field, upserting the
// document if absent, and returns the updated state. The field name is a
// bson field from the models allow-list, never raw caller input.
func (r *AnalyticsRepository) IncrementField(ctx context.Context, userID, field string, delta interface{}) (*models.Analytics, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	var analytics models.Analytics
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&analytics)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"user_id": userID,
			"field":   field,
		}).Error("Failed to increment analytics field")
		return nil, fmt.Errorf("failed to increment %s: %v", field, err)
	}
	return &analytics, nil
}

// UpdateStreak sets the current streak and raises the longest streak via
// $max, so longest >= current holds no matter what the caller sends.
func (r *AnalyticsRepository) UpdateStreak(ctx context.Context, userID string, newStreak int) (*models.Analytics, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{
		"$set": bson.M{"current_streak": newStreak, "updated_at": time.Now()},
		"$max": bson.M{"longest_streak": newStreak},
	}

	var analytics models.Analytics
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&analytics)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to update streak")
		return nil, fmt.Errorf("failed to update streak: %v", err)
	}
	return &analytics, nil
}

// AppendWeekly pushes one weekly entry, keeping only the newest maxEntries
// so the document stays size-bounded.
func (r *AnalyticsRepository) AppendWeekly(ctx context.Context, userID string, entry models.WeeklyEntry, maxEntries int) (*models.Analytics, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{
		"$push": bson.M{
			"weekly_data": bson.M{
				"$each":  []models.WeeklyEntry{entry},
				"$slice": -maxEntries,
			},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	var analytics models.Analytics
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&analytics)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to append weekly data")
		return nil, fmt.Errorf("failed to append weekly data: %v", err)
	}
	return &analytics, nil
}

// ReplaceHistory overwrites both history arrays in one update. Used by the
// rollup job after folding old weekly entries into monthly buckets.
func (r *AnalyticsRepository) ReplaceHistory(ctx context.Context, userID string, weekly []models.WeeklyEntry, monthly []models.MonthlyEntry) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"weekly_data":  weekly,
			"monthly_data": monthly,
			"updated_at":   time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to replace analytics history: %v", err)
	}
	return nil
}

// GetLeaderboard lists analytics documents by total learning hours,
// descending, with _id as tie-break for stable pagination.
func (r *AnalyticsRepository) GetLeaderboard(ctx context.Context, limit, skip int64) ([]models.Analytics, int64, error) {
	sort := bson.D{{Key: "total_learning_hours", Value: -1}, {Key: "_id", Value: -1}}

	opts := options.Find().SetSort(sort).SetLimit(limit).SetSkip(skip)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch leaderboard: %v", err)
	}
	defer cursor.Close(ctx)

	analytics := []models.Analytics{}
	if err := cursor.All(ctx, &analytics); err != nil {
		return nil, 0, fmt.Errorf("failed to decode leaderboard: %v", err)
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count analytics: %v", err)
	}
	return analytics, total, nil
}
