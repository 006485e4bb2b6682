package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/2beens/workoutfines/internal/penalty"
	"github.com/2beens/workoutfines/internal/telemetry/metrics"
	"github.com/2beens/workoutfines/internal/telemetry/tracing"
	"github.com/2beens/workoutfines/internal/workouts"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type Service struct {
	store      workouts.Store
	calculator *penalty.Calculator
	location   *time.Location
	now        func() time.Time
	cache      *Cache
	metrics    *metrics.Manager
}

type NewServiceParams struct {
	Store      workouts.Store
	Calculator *penalty.Calculator
	Location   *time.Location
	Now        func() time.Time
	// Cache and Metrics are optional.
	Cache   *Cache
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
	return &Service{
		store:      params.Store,
		calculator: params.Calculator,
		location:   params.Location,
		now:        params.Now,
		cache:      params.Cache,
		metrics:    params.Metrics,
	}
}

// LastWeekReference is the Monday before the current week, midnight in the
// reporting location.
func (s *Service) LastWeekReference() time.Time {
	return calendar.LastWeekStart(s.now(), s.location)
}

// TargetWeekStart resolves an on-demand report offset: 0 is last week, 1 the
// week before and so on. Negative offsets are rejected.
func (s *Service) TargetWeekStart(offset int) (time.Time, error) {
	if offset < 0 {
		return time.Time{}, &workouts.Error{
			Kind: workouts.KindValidation,
			Op:   "target week",
			Msg:  fmt.Sprintf("week offset must not be negative, got %d", offset),
		}
	}
	return calendar.WeekStartWithOffset(s.now(), s.location, offset), nil
}

// ProcessWeeklyPenaltyRecords charges every user the penalty for the week
// starting at weekStart. A user is charged at most once per week: the ledger
// entry is written first and the total is only increased when it is new.
// Running it again for the same week processes nobody.
func (s *Service) ProcessWeeklyPenaltyRecords(ctx context.Context, weekStart time.Time) (_ *RollupResult, err error) {
	const op = "process weekly penalties"
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.report.rollup")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	started := time.Now()
	defer func() {
		if s.metrics == nil {
			return
		}
		s.metrics.HistRollupDuration.Observe(time.Since(started).Seconds())
		result := "success"
		if err != nil {
			result = "failure"
		}
		s.metrics.CounterRollupRuns.WithLabelValues(result).Inc()
	}()

	weekStart = calendar.WeekStart(weekStart.In(s.location))
	span.SetAttributes(attribute.String("week.start", calendar.FormatDate(weekStart)))

	result := &RollupResult{
		WeekStartDate: weekStart,
		PenaltyAdded:  decimal.Zero,
	}

	data, err := s.store.ListAllUsersWeeklyData(ctx, weekStart)
	if err != nil {
		return result, storeError(op, err)
	}

	for _, user := range data {
		if user.WeeklyGoal <= 0 {
			log.Warnf("report: user %s has weekly goal %d, skipping", user.UserID, user.WeeklyGoal)
			continue
		}

		amount := penalty.RoundForLedger(s.calculator.Calculate(user.WeeklyGoal, user.ActiveCount))
		if !amount.IsPositive() {
			continue
		}

		entry := workouts.WeeklyPenaltyRecord{
			UserID:        user.UserID,
			Username:      user.Username,
			WeekStartDate: weekStart,
			GoalCount:     user.WeeklyGoal,
			ActualCount:   user.ActiveCount,
			PenaltyAmount: amount,
			CreatedAt:     s.now(),
		}

		charged, err := s.charge(ctx, entry)
		if err != nil {
			return result, storeError(op, fmt.Errorf("charge user %s: %w", user.UserID, err))
		}
		if !charged {
			result.AlreadyCharged++
			log.Debugf("report: user %s already charged for week %s", user.UserID, calendar.FormatDate(weekStart))
			continue
		}

		result.ProcessedCount++
		result.PenaltyAdded = result.PenaltyAdded.Add(amount)
		if s.metrics != nil {
			s.metrics.CounterPenaltiesCharged.Inc()
		}
		log.Infof(
			"report: charged user %s [%s] %s for week %s (%d/%d)",
			user.UserID, user.Username, amount, calendar.FormatDate(weekStart), user.ActiveCount, user.WeeklyGoal,
		)
	}

	log.Infof(
		"report: weekly rollup %s done, processed %d, already charged %d, added %s",
		calendar.FormatDate(weekStart), result.ProcessedCount, result.AlreadyCharged, result.PenaltyAdded,
	)
	return result, nil
}

func (s *Service) charge(ctx context.Context, entry workouts.WeeklyPenaltyRecord) (bool, error) {
	if charger, ok := s.store.(workouts.PenaltyCharger); ok {
		return charger.ChargeWeeklyPenalty(ctx, entry)
	}

	inserted, err := s.store.InsertWeeklyPenaltyIfAbsent(ctx, entry)
	if err != nil {
		return false, fmt.Errorf("insert ledger entry: %w", err)
	}
	if !inserted {
		return false, nil
	}

	incremented, err := s.store.IncrementTotalPenalty(ctx, entry.UserID, entry.PenaltyAmount)
	if err != nil {
		return false, fmt.Errorf("increment total penalty: %w", err)
	}
	if !incremented {
		log.Warnf("report: ledger entry written for user %s but no goal row to increment", entry.UserID)
	}
	return true, nil
}

// GenerateWeeklyReportData builds the report of the week starting at weekStart.
// It only reads.
func (s *Service) GenerateWeeklyReportData(ctx context.Context, weekStart time.Time) (_ *WeeklyReport, err error) {
	const op = "generate weekly report"
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.report.generate")
	defer func() {
		if err != nil && workouts.KindOf(err) != workouts.KindNotFound {
			span.RecordError(err)
		}
		span.End()
	}()

	weekStart, weekEnd := calendar.WeekWindow(weekStart.In(s.location))
	span.SetAttributes(attribute.String("week.start", calendar.FormatDate(weekStart)))

	// the version is read before the data, so a cached report is never newer
	// than the version it is stored under
	version, cacheable := s.dataVersion(ctx)
	if cacheable {
		if cached, ok := s.cache.Get(weekStart, version); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	data, err := s.store.ListAllUsersWeeklyData(ctx, weekStart)
	if err != nil {
		return nil, storeError(op, err)
	}
	if len(data) == 0 {
		return nil, &workouts.Error{
			Kind: workouts.KindNotFound,
			Op:   op,
			Msg:  "no user has set a weekly goal yet",
			Err:  ErrNoData,
		}
	}

	report := &WeeklyReport{
		WeekStartDate:    weekStart,
		WeekEndDate:      weekEnd,
		Rows:             make([]Row, 0, len(data)),
		TotalWeekPenalty: decimal.Zero,
		GeneratedAt:      s.now(),
	}

	for _, user := range data {
		if user.WeeklyGoal <= 0 {
			log.Warnf("report: user %s has weekly goal %d, left out of the report", user.UserID, user.WeeklyGoal)
			continue
		}
		breakdown := s.calculator.Breakdown(user.WeeklyGoal, user.ActiveCount)
		// rows show what a rollup would charge
		weekPenalty := penalty.RoundForLedger(breakdown.TotalPenalty)
		report.Rows = append(report.Rows, Row{
			UserID:          user.UserID,
			Username:        user.Username,
			WeeklyGoal:      user.WeeklyGoal,
			ActualCount:     user.ActiveCount,
			WeekPenalty:     weekPenalty,
			TotalPenalty:    user.TotalPenalty,
			AchievementRate: breakdown.AchievementRate,
			Status:          statusOf(user.WeeklyGoal, user.ActiveCount),
		})
		report.TotalWeekPenalty = report.TotalWeekPenalty.Add(weekPenalty)
	}
	report.Participants = len(report.Rows)

	report.TotalAccumulated, err = s.store.SumAllTotalPenalties(ctx)
	if err != nil {
		return nil, storeError(op, err)
	}

	if cacheable {
		if err := s.cache.Set(report, version); err != nil {
			log.Errorf("report: %s", err)
		}
	}
	return report, nil
}

// dataVersion reports false when reports cannot be cached: no cache is
// configured or the store cannot tell when its data changed.
func (s *Service) dataVersion(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	tracker, ok := s.store.(workouts.ChangeTracker)
	if !ok {
		return "", false
	}
	version, err := tracker.DataVersion(ctx)
	if err != nil {
		log.Warnf("report: data version, skipping cache: %s", err)
		return "", false
	}
	return version, true
}

// UserWeeklySummary combines the progress of userID in the week containing
// reference with the penalty breakdown and the lifetime total. A zero
// reference means the current week.
func (s *Service) UserWeeklySummary(ctx context.Context, userID string, reference time.Time) (_ *UserSummary, err error) {
	const op = "user weekly summary"
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.report.summary")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user.id", userID))

	if strings.TrimSpace(userID) == "" {
		return nil, &workouts.Error{Kind: workouts.KindValidation, Op: op, Msg: "user id must not be empty", Err: workouts.ErrInvalidUser}
	}
	if reference.IsZero() {
		reference = s.now()
	}

	goal, err := s.store.GetUserGoal(ctx, userID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if goal == nil {
		return nil, &workouts.Error{
			Kind: workouts.KindNotFound,
			Op:   op,
			Msg:  fmt.Sprintf("user %s has no weekly goal, set one first", userID),
			Err:  workouts.ErrNoSettings,
		}
	}

	weekStart := calendar.WeekStart(reference.In(s.location))
	count, err := s.store.CountActiveWorkouts(ctx, userID, weekStart)
	if err != nil {
		return nil, storeError(op, err)
	}

	return &UserSummary{
		Progress:     workouts.NewWeeklyProgress(*goal, weekStart, count),
		Breakdown:    s.calculator.Breakdown(goal.WeeklyGoal, count),
		TotalPenalty: goal.TotalPenalty,
	}, nil
}

// ResetAll wipes every goal, workout and ledger entry.
func (s *Service) ResetAll(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.report.reset")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	defer s.cache.Clear()
	if err := s.store.ResetAll(ctx); err != nil {
		return storeError("reset all", err)
	}

	log.Warnln("report: all goals, workouts and ledger entries deleted")
	return nil
}

func storeError(op string, err error) error {
	return &workouts.Error{Kind: workouts.KindStore, Op: op, Msg: "store operation failed", Err: err}
}
