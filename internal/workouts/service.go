package workouts

import (
	"context"
	"strings"
	"time"

	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/2beens/workoutfines/internal/penalty"
	"github.com/2beens/workoutfines/internal/telemetry/metrics"
	"github.com/2beens/workoutfines/internal/telemetry/tracing"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// WorkoutResult is returned by the add/revoke operations. On a conflict it is
// returned together with the error and describes the unchanged state.
type WorkoutResult struct {
	UserID          string           `json:"userId"`
	Username        string           `json:"username"`
	WorkoutDate     time.Time        `json:"workoutDate"`
	WeekStartDate   time.Time        `json:"weekStartDate"`
	CurrentCount    int              `json:"currentCount"`
	WeeklyGoal      int              `json:"weeklyGoal"`
	IsGoalAchieved  bool             `json:"isGoalAchieved"`
	PenaltyEstimate *decimal.Decimal `json:"penaltyEstimate,omitempty"`
}

type Service struct {
	store      Store
	rules      Rules
	calculator *penalty.Calculator
	location   *time.Location
	now        func() time.Time
	metrics    *metrics.Manager
}

type NewServiceParams struct {
	Store Store
	// Rules defaults to DefaultRules when left zero.
	Rules      Rules
	Calculator *penalty.Calculator
	Location   *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
	// Metrics is optional.
	Metrics *metrics.Manager
}

func NewService(params NewServiceParams) *Service {
	if params.Location == nil {
		params.Location = time.UTC
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Calculator == nil {
		params.Calculator = penalty.NewCalculator(penalty.DefaultBasePenalty)
	}
	if params.Rules.IsZero() {
		params.Rules = DefaultRules()
	}
	return &Service{
		store:      params.Store,
		rules:      params.Rules,
		calculator: params.Calculator,
		location:   params.Location,
		now:        params.Now,
		metrics:    params.Metrics,
	}
}

func (s *Service) Location() *time.Location {
	return s.location
}

// ParseWorkoutDate parses a YYYY-MM-DD date in the service location.
func (s *Service) ParseWorkoutDate(value string) (time.Time, error) {
	date, err := calendar.ParseDate(value, s.location)
	if err != nil {
		return time.Time{}, validationErr("parse workout date", ErrInvalidDate, "date %q must be YYYY-MM-DD", value)
	}
	return date, nil
}

func (s *Service) SetGoal(ctx context.Context, userID, username string, weeklyGoal int) (_ *UserGoal, err error) {
	const op = "set goal"
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.goal.set")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID), attribute.Int("weekly_goal", weeklyGoal))

	if err := validateUser(op, userID, username); err != nil {
		return nil, err
	}
	if !s.rules.GoalInRange(weeklyGoal) {
		return nil, validationErr(
			op, ErrInvalidGoal,
			"weekly goal must be between %d and %d, got %d", s.rules.MinWeeklyGoal, s.rules.MaxWeeklyGoal, weeklyGoal,
		)
	}

	if err := s.store.UpsertUserGoal(ctx, userID, username, weeklyGoal); err != nil {
		return nil, storeErr(op, err)
	}

	goal, err := s.store.GetUserGoal(ctx, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if goal == nil {
		return nil, notFoundErr(op, userID)
	}

	log.Debugf("workouts: user %s [%s] weekly goal set to %d", userID, username, weeklyGoal)
	return goal, nil
}

// AddWorkout records a workout for the calendar date of date in the service
// location. The week start is always derived from that date.
func (s *Service) AddWorkout(ctx context.Context, userID, username string, date time.Time) (_ *WorkoutResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.add")
	defer func() {
		if err != nil && KindOf(err) != KindConflict {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("workout.date", calendar.FormatDate(date)))

	return s.addWorkout(ctx, "add workout", userID, username, date)
}

func (s *Service) AddWorkoutToday(ctx context.Context, userID, username string) (*WorkoutResult, error) {
	return s.AddWorkout(ctx, userID, username, calendar.Today(s.now(), s.location))
}

// AdminAddWorkout adds a workout on behalf of userID for an arbitrary date.
// Authorization of the caller is done by the presentation layer.
func (s *Service) AdminAddWorkout(ctx context.Context, userID, username, date string) (_ *WorkoutResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.admin.add")
	defer func() {
		if err != nil && KindOf(err) != KindConflict {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("workout.date", date))

	const op = "admin add workout"
	if err := validateUser(op, userID, username); err != nil {
		return nil, err
	}
	workoutDate, err := s.ParseWorkoutDate(date)
	if err != nil {
		return nil, err
	}

	return s.addWorkout(ctx, op, userID, username, workoutDate)
}

func (s *Service) addWorkout(ctx context.Context, op, userID, username string, date time.Time) (*WorkoutResult, error) {
	if err := validateUser(op, userID, username); err != nil {
		return nil, err
	}

	goal, err := s.store.GetUserGoal(ctx, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if goal == nil {
		return nil, notFoundErr(op, userID)
	}

	day := calendar.StartOfDay(date.In(s.location))
	weekStart := calendar.WeekStart(day)

	inserted, err := s.store.InsertWorkoutIfAbsent(ctx, userID, username, day, weekStart)
	if err != nil {
		return nil, storeErr(op, err)
	}

	count, err := s.store.CountActiveWorkouts(ctx, userID, weekStart)
	if err != nil {
		return nil, storeErr(op, err)
	}

	result := &WorkoutResult{
		UserID:         userID,
		Username:       username,
		WorkoutDate:    day,
		WeekStartDate:  weekStart,
		CurrentCount:   count,
		WeeklyGoal:     goal.WeeklyGoal,
		IsGoalAchieved: count >= goal.WeeklyGoal,
	}

	if !inserted {
		if s.metrics != nil {
			s.metrics.CounterWorkoutsDuplicate.Inc()
		}
		return result, conflictErr(op, ErrDuplicateWorkout, "workout on %s already recorded", calendar.FormatDate(day))
	}

	if s.metrics != nil {
		s.metrics.CounterWorkoutsAdded.Inc()
	}
	log.Debugf("workouts: user %s workout on %s active, week count %d/%d", userID, calendar.FormatDate(day), count, goal.WeeklyGoal)
	return result, nil
}

// RevokeWorkout flips the record for the calendar date of date to revoked.
// The result carries the updated week count, and the weekly goal when the
// user has one.
func (s *Service) RevokeWorkout(ctx context.Context, userID string, date time.Time) (_ *WorkoutResult, err error) {
	const op = "revoke workout"
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.revoke")
	defer func() {
		if err != nil && KindOf(err) != KindConflict {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("workout.date", calendar.FormatDate(date)))

	if strings.TrimSpace(userID) == "" {
		return nil, validationErr(op, ErrInvalidUser, "user id must not be empty")
	}

	day := calendar.StartOfDay(date.In(s.location))
	weekStart := calendar.WeekStart(day)

	revoked, err := s.store.RevokeWorkoutIfActive(ctx, userID, day)
	if err != nil {
		return nil, storeErr(op, err)
	}

	goal, err := s.store.GetUserGoal(ctx, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}

	count, err := s.store.CountActiveWorkouts(ctx, userID, weekStart)
	if err != nil {
		return nil, storeErr(op, err)
	}

	result := &WorkoutResult{
		UserID:        userID,
		WorkoutDate:   day,
		WeekStartDate: weekStart,
		CurrentCount:  count,
	}
	if goal != nil {
		result.Username = goal.Username
		result.WeeklyGoal = goal.WeeklyGoal
		result.IsGoalAchieved = count >= goal.WeeklyGoal
	}

	if !revoked {
		return result, conflictErr(op, ErrNothingToRevoke, "no active workout on %s", calendar.FormatDate(day))
	}

	if s.metrics != nil {
		s.metrics.CounterWorkoutsRevoked.Inc()
	}
	log.Debugf("workouts: user %s workout on %s revoked, week count %d", userID, calendar.FormatDate(day), count)
	return result, nil
}

func (s *Service) RevokeWorkoutToday(ctx context.Context, userID string) (*WorkoutResult, error) {
	return s.RevokeWorkout(ctx, userID, calendar.Today(s.now(), s.location))
}

func (s *Service) RevokeWorkoutOnDate(ctx context.Context, userID, date string) (*WorkoutResult, error) {
	workoutDate, err := s.ParseWorkoutDate(date)
	if err != nil {
		return nil, err
	}
	return s.RevokeWorkout(ctx, userID, workoutDate)
}

// WeeklyProgress returns the progress of userID in the week containing reference.
func (s *Service) WeeklyProgress(ctx context.Context, userID string, reference time.Time) (_ *WeeklyProgress, err error) {
	const op = "weekly progress"
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.progress")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	if strings.TrimSpace(userID) == "" {
		return nil, validationErr(op, ErrInvalidUser, "user id must not be empty")
	}

	goal, err := s.store.GetUserGoal(ctx, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if goal == nil {
		return nil, notFoundErr(op, userID)
	}

	weekStart := calendar.WeekStart(reference.In(s.location))
	count, err := s.store.CountActiveWorkouts(ctx, userID, weekStart)
	if err != nil {
		return nil, storeErr(op, err)
	}

	progress := NewWeeklyProgress(*goal, weekStart, count)
	return &progress, nil
}

func (s *Service) CurrentWeeklyProgress(ctx context.Context, userID string) (*WeeklyProgress, error) {
	return s.WeeklyProgress(ctx, userID, s.now())
}

// ProcessPhotoUpload turns an uploaded image into a workout for today. The
// filename is checked before anything touches the store. The result gets the
// penalty the user would pay with the current week count attached.
func (s *Service) ProcessPhotoUpload(ctx context.Context, userID, username, filename string) (_ *WorkoutResult, err error) {
	const op = "process photo upload"
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.photo")
	defer func() {
		if err != nil && KindOf(err) != KindConflict {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("file.name", filename))

	if err := validateUser(op, userID, username); err != nil {
		return nil, err
	}
	if !s.rules.IsImageFile(filename) {
		return nil, validationErr(
			op, ErrNotImage,
			"%q is not an image, allowed: %s", filename, strings.Join(s.rules.ImageExtensions, " "),
		)
	}

	result, err := s.addWorkout(ctx, op, userID, username, calendar.Today(s.now(), s.location))
	if result != nil && result.WeeklyGoal > 0 {
		estimate := s.calculator.Calculate(result.WeeklyGoal, result.CurrentCount)
		result.PenaltyEstimate = &estimate
	}
	return result, err
}

func validateUser(op, userID, username string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(username) == "" {
		return validationErr(op, ErrInvalidUser, "user id and username must not be empty")
	}
	return nil
}
