package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Incrementable counters form a closed allow-list. The increment endpoint
// accepts these names only; arbitrary field names never reach the database.
const (
	StatLogsCreated    = "logsCreated"
	StatGoalsCompleted = "goalsCompleted"
	StatSkillsAdded    = "skillsAdded"
)

var incrementableStats = map[string]string{
	StatLogsCreated:    "logs_created",
	StatGoalsCompleted: "goals_completed",
	StatSkillsAdded:    "skills_added",
}

// StatField maps an allow-listed stat name to its bson field.
// ok is false for any name outside the allow-list.
func StatField(statName string) (field string, ok bool) {
	field, ok = incrementableStats[statName]
	return field, ok
}

// WeeklyEntry is one bucket of time-tracked history.
type WeeklyEntry struct {
	Date        time.Time `bson:"date" json:"date"`
	HoursLogged float64   `bson:"hours_logged" json:"hoursLogged"`
	LogsCount   int       `bson:"logs_count" json:"logsCount"`
}

// MonthlyEntry aggregates rolled-up weekly history, keyed by "YYYY-MM".
type MonthlyEntry struct {
	Month       string  `bson:"month" json:"month"`
	HoursLogged float64 `bson:"hours_logged" json:"hoursLogged"`
	LogsCount   int     `bson:"logs_count" json:"logsCount"`
}

type Analytics struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             string             `bson:"user_id" json:"userId"`
	TotalLearningHours float64            `bson:"total_learning_hours" json:"totalLearningHours"`
	CurrentStreak      int                `bson:"current_streak" json:"currentStreak"`
	LongestStreak      int                `bson:"longest_streak" json:"longestStreak"`
	LogsCreated        int                `bson:"logs_created" json:"logsCreated"`
	GoalsCompleted     int                `bson:"goals_completed" json:"goalsCompleted"`
	SkillsAdded        int                `bson:"skills_added" json:"skillsAdded"`
	WeeklyData         []WeeklyEntry      `bson:"weekly_data,omitempty" json:"weeklyData"`
	MonthlyData        []MonthlyEntry     `bson:"monthly_data,omitempty" json:"monthlyData"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Stat returns the current value of an allow-listed counter.
func (a *Analytics) Stat(statName string) int {
	switch statName {
	case StatLogsCreated:
		return a.LogsCreated
	case StatGoalsCompleted:
		return a.GoalsCompleted
	case StatSkillsAdded:
		return a.SkillsAdded
	}
	return 0
}
