package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationTTL is how long a notification stays visible before it expires.
const NotificationTTL = 30 * 24 * time.Hour

const (
	NotificationAchievement = "achievement"
	NotificationMilestone   = "milestone"
	NotificationReminder    = "reminder"
	NotificationSystem      = "system"
	NotificationSocial      = "social"
)

var notificationTypes = map[string]bool{
	NotificationAchievement: true,
	NotificationMilestone:   true,
	NotificationReminder:    true,
	NotificationSystem:      true,
	NotificationSocial:      true,
}

// IsValidNotificationType reports whether t belongs to the notification enum.
func IsValidNotificationType(t string) bool {
	return notificationTypes[t]
}

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	ActionURL string             `bson:"action_url,omitempty" json:"actionUrl,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expiresAt"` // createdAt + NotificationTTL
}
