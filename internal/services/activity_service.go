package services

import (
	"context"
	"errors"

	"github.com/Temirlan472/Learning_Tracker/internal/models"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ActivityStore is the storage contract the activity service depends on.
type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	GetUserActivities(ctx context.Context, userID string, limit, skip int64) ([]models.Activity, int64, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Activity, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	DeleteActivity(ctx context.Context, id primitive.ObjectID) (*models.Activity, error)
}

// ActivityFeed is one page of a user's activity feed.
type ActivityFeed struct {
	Activities []models.Activity `json:"activities"`
	Total      int64             `json:"total"`
	HasMore    bool              `json:"hasMore"`
}

type ActivityService struct {
	repo       ActivityStore
	dispatcher Dispatcher
}

func NewActivityService(repo ActivityStore, dispatcher Dispatcher) *ActivityService {
	return &ActivityService{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// CreateActivity validates and persists a new activity, then pushes it to
// the owner's live connections.
func (s *ActivityService) CreateActivity(ctx context.Context, userID, activityType, title, description string, data bson.M) (*models.Activity, error) {
	if userID == "" || activityType == "" || title == "" {
		return nil, validationf("userId, type and title are required")
	}
	if !models.IsValidActivityType(activityType) {
		return nil, validationf("invalid activity type: %s", activityType)
	}

	activity := &models.Activity{
		UserID:      userID,
		Type:        activityType,
		Title:       title,
		Description: description,
		Data:        data,
	}

	created, err := s.repo.CreateActivity(ctx, activity)
	if err != nil {
		return nil, err
	}

	// Best-effort: dropped silently when the user has no live connection.
	s.dispatcher.PushToUser(userID, "activity:created", created)

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID,
		"type":    activityType,
	}).Info("Activity created")

	return created, nil
}

// GetUserActivities returns one feed page with pagination metadata.
func (s *ActivityService) GetUserActivities(ctx context.Context, userID string, limit, skip int64) (*ActivityFeed, error) {
	activities, total, err := s.repo.GetUserActivities(ctx, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	return &ActivityFeed{
		Activities: activities,
		Total:      total,
		HasMore:    skip+limit < total,
	}, nil
}

// MarkAsRead flips one activity to read. Idempotent.
func (s *ActivityService) MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	activity, err := s.repo.MarkAsRead(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return activity, err
}

// MarkAllAsRead flips every unread activity of the user. Zero modified is
// a valid result, not an error.
func (s *ActivityService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// CountUnread counts the user's unread activities.
func (s *ActivityService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// DeleteActivity removes one activity by id.
func (s *ActivityService) DeleteActivity(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	activity, err := s.repo.DeleteActivity(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return activity, err
}
