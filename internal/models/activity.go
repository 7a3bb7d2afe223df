package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity types form a closed enum; anything else is rejected at ingest.
const (
	ActivityLogin            = "login"
	ActivityLogCreated       = "log_created"
	ActivityGoalCompleted    = "goal_completed"
	ActivitySkillAdded       = "skill_added"
	ActivityPortfolioUpdated = "portfolio_updated"
	ActivityEmailSent        = "email_sent"
)

var activityTypes = map[string]bool{
	ActivityLogin:            true,
	ActivityLogCreated:       true,
	ActivityGoalCompleted:    true,
	ActivitySkillAdded:       true,
	ActivityPortfolioUpdated: true,
	ActivityEmailSent:        true,
}

// IsValidActivityType reports whether t belongs to the activity enum.
func IsValidActivityType(t string) bool {
	return activityTypes[t]
}

type Activity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"userId"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Data        bson.M             `bson:"data,omitempty" json:"data,omitempty"` // opaque payload supplied by the caller
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Read        bool               `bson:"read" json:"read"`
}
