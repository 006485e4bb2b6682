package workouts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=workouts_test

// Store is the persistence contract of the penalty accounting core. The
// conditional writes (InsertWorkoutIfAbsent, RevokeWorkoutIfActive,
// InsertWeeklyPenaltyIfAbsent) must be atomic in the implementation, the
// services hold no locks.
//
// Dates passed in are midnight in the reporting location; implementations keep
// only the calendar date.
type Store interface {
	UpsertUserGoal(ctx context.Context, userID, username string, weeklyGoal int) error
	// GetUserGoal returns nil, nil when the user never set a goal.
	GetUserGoal(ctx context.Context, userID string) (*UserGoal, error)

	// InsertWorkoutIfAbsent moves (user, date) from absent or revoked to active.
	// It returns false when the pair is already active. A re-activated row gets
	// username, week start and created at refreshed.
	InsertWorkoutIfAbsent(ctx context.Context, userID, username string, date, weekStart time.Time) (bool, error)
	// RevokeWorkoutIfActive returns false when the pair is absent or already revoked.
	RevokeWorkoutIfActive(ctx context.Context, userID string, date time.Time) (bool, error)
	CountActiveWorkouts(ctx context.Context, userID string, weekStart time.Time) (int, error)

	ListAllUsersWeeklyData(ctx context.Context, weekStart time.Time) ([]UserWeeklyData, error)

	// InsertWeeklyPenaltyIfAbsent writes the ledger entry unless one exists for
	// (user, week). It returns false when the entry was already there.
	InsertWeeklyPenaltyIfAbsent(ctx context.Context, entry WeeklyPenaltyRecord) (bool, error)
	// IncrementTotalPenalty returns false when the user has no goal row.
	IncrementTotalPenalty(ctx context.Context, userID string, amount decimal.Decimal) (bool, error)
	SumAllTotalPenalties(ctx context.Context) (decimal.Decimal, error)

	// ResetAll deletes every row of every entity.
	ResetAll(ctx context.Context) error
}

// PenaltyCharger is implemented by stores that can write the ledger entry and
// bump the total penalty in one atomic step. Without it the two calls are made
// one after the other and a crash in between leaves the week charged in the
// ledger but not in the total.
type PenaltyCharger interface {
	ChargeWeeklyPenalty(ctx context.Context, entry WeeklyPenaltyRecord) (bool, error)
}

// ChangeTracker is implemented by stores that expose a version of their
// committed contents. Two equal versions mean nothing was written in between,
// whoever wrote it. Data read after DataVersion is never older than the
// version returned.
type ChangeTracker interface {
	DataVersion(ctx context.Context) (string, error)
}
