package report

import (
	"errors"
	"time"

	"github.com/2beens/workoutfines/internal/penalty"
	"github.com/2beens/workoutfines/internal/workouts"
	"github.com/shopspring/decimal"
)

var ErrNoData = errors.New("no report data")

// closeGoalRatio is the share of the goal from which a missed week still
// counts as close.
const closeGoalRatio = 0.7

type Status string

const (
	StatusAchieved Status = "achieved"
	StatusClose    Status = "close"
	StatusMissed   Status = "missed"
)

func statusOf(goal, actual int) Status {
	switch {
	case actual >= goal:
		return StatusAchieved
	case float64(actual) >= float64(goal)*closeGoalRatio:
		return StatusClose
	default:
		return StatusMissed
	}
}

type Row struct {
	UserID          string          `json:"userId"`
	Username        string          `json:"username"`
	WeeklyGoal      int             `json:"weeklyGoal"`
	ActualCount     int             `json:"actualCount"`
	WeekPenalty     decimal.Decimal `json:"weekPenalty"`
	TotalPenalty    decimal.Decimal `json:"totalPenalty"`
	AchievementRate float64         `json:"achievementRate"`
	Status          Status          `json:"status"`
}

type WeeklyReport struct {
	WeekStartDate time.Time `json:"weekStartDate"`
	WeekEndDate   time.Time `json:"weekEndDate"`
	Rows          []Row     `json:"rows"`
	Participants  int       `json:"participants"`
	// TotalWeekPenalty sums the rows, TotalAccumulated is the lifetime sum over all users.
	TotalWeekPenalty decimal.Decimal `json:"totalWeekPenalty"`
	TotalAccumulated decimal.Decimal `json:"totalAccumulated"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// RollupResult describes one run of the weekly ledger rollup.
type RollupResult struct {
	WeekStartDate  time.Time       `json:"weekStartDate"`
	ProcessedCount int             `json:"processedCount"`
	PenaltyAdded   decimal.Decimal `json:"penaltyAdded"`
	// AlreadyCharged counts users whose ledger entry for the week existed before the run.
	AlreadyCharged int `json:"alreadyCharged"`
}

type UserSummary struct {
	Progress     workouts.WeeklyProgress `json:"progress"`
	Breakdown    penalty.Breakdown       `json:"breakdown"`
	TotalPenalty decimal.Decimal         `json:"totalPenalty"`
}
