package workouts

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserGoal holds the weekly goal and the lifetime penalty of one user. There is
// at most one per user (upserted on every goal change).
type UserGoal struct {
	UserID       string          `json:"userId"`
	Username     string          `json:"username"`
	WeeklyGoal   int             `json:"weeklyGoal"`
	TotalPenalty decimal.Decimal `json:"totalPenalty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// RecordState is the persisted state of a (user, day) workout record. A pair
// without any row is absent.
type RecordState string

const (
	RecordStateActive  RecordState = "active"
	RecordStateRevoked RecordState = "revoked"
)

func (s RecordState) String() string {
	return string(s)
}

// WorkoutRecord is at most one row per (user, workout date). Revoking flips the
// state instead of deleting the row.
type WorkoutRecord struct {
	UserID        string      `json:"userId"`
	Username      string      `json:"username"`
	WorkoutDate   time.Time   `json:"workoutDate"`
	WeekStartDate time.Time   `json:"weekStartDate"`
	State         RecordState `json:"state"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func (r WorkoutRecord) IsRevoked() bool {
	return r.State == RecordStateRevoked
}

// WeeklyPenaltyRecord is the ledger entry for one (user, week). Once written it
// is never written again, which is what keeps the rollup from charging twice.
type WeeklyPenaltyRecord struct {
	UserID        string          `json:"userId"`
	Username      string          `json:"username"`
	WeekStartDate time.Time       `json:"weekStartDate"`
	GoalCount     int             `json:"goalCount"`
	ActualCount   int             `json:"actualCount"`
	PenaltyAmount decimal.Decimal `json:"penaltyAmount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// UserWeeklyData is one row of the all-users weekly fold.
type UserWeeklyData struct {
	UserID       string          `json:"userId"`
	Username     string          `json:"username"`
	WeeklyGoal   int             `json:"weeklyGoal"`
	TotalPenalty decimal.Decimal `json:"totalPenalty"`
	ActiveCount  int             `json:"activeCount"`
}

type WeeklyProgress struct {
	UserID          string    `json:"userId"`
	Username        string    `json:"username"`
	WeekStartDate   time.Time `json:"weekStartDate"`
	CurrentCount    int       `json:"currentCount"`
	WeeklyGoal      int       `json:"weeklyGoal"`
	Remaining       int       `json:"remaining"`
	AchievementRate float64   `json:"achievementRate"`
	IsCompleted     bool      `json:"isCompleted"`
}

// NewWeeklyProgress derives the display view. The achievement rate is capped at
// 100 here only.
func NewWeeklyProgress(goal UserGoal, weekStart time.Time, currentCount int) WeeklyProgress {
	p := WeeklyProgress{
		UserID:        goal.UserID,
		Username:      goal.Username,
		WeekStartDate: weekStart,
		CurrentCount:  currentCount,
		WeeklyGoal:    goal.WeeklyGoal,
		Remaining:     max(0, goal.WeeklyGoal-currentCount),
		IsCompleted:   currentCount >= goal.WeeklyGoal,
	}
	if goal.WeeklyGoal > 0 {
		p.AchievementRate = min(float64(currentCount)/float64(goal.WeeklyGoal)*100, 100)
	}
	return p
}
