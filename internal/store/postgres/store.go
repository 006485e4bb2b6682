package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/2beens/workoutfines/internal/telemetry/tracing"
	"github.com/2beens/workoutfines/internal/workouts"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed schema.sql
var schemaSQL string

var (
	_ workouts.Store          = (*Store)(nil)
	_ workouts.PenaltyCharger = (*Store)(nil)
	_ workouts.ChangeTracker  = (*Store)(nil)
)

// Store keeps goals, workout records and the penalty ledger in postgres.
// Dates are sent as YYYY-MM-DD text and money as numeric text, so neither
// depends on the session time zone or on float conversion.
type Store struct {
	db       *pgxpool.Pool
	location *time.Location
}

func NewStore(db *pgxpool.Pool, location *time.Location) *Store {
	if location == nil {
		location = time.UTC
	}
	return &Store{
		db:       db,
		location: location,
	}
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) UpsertUserGoal(ctx context.Context, userID, username string, weeklyGoal int) error {
	_, err := s.db.Exec(
		ctx,
		`INSERT INTO user_goal (user_id, username, weekly_goal, total_penalty, created_at, updated_at)
			VALUES ($1, $2, $3, 0, now(), now())
		ON CONFLICT (user_id) DO UPDATE
			SET username = EXCLUDED.username,
				weekly_goal = EXCLUDED.weekly_goal,
				updated_at = now();`,
		userID, username, weeklyGoal,
	)
	if err != nil {
		return fmt.Errorf("upsert user goal: %w", err)
	}
	return nil
}

func (s *Store) GetUserGoal(ctx context.Context, userID string) (*workouts.UserGoal, error) {
	var (
		goal         workouts.UserGoal
		totalPenalty string
	)
	err := s.db.QueryRow(
		ctx,
		`SELECT user_id, username, weekly_goal, total_penalty::text, created_at, updated_at
			FROM user_goal
			WHERE user_id = $1;`,
		userID,
	).Scan(&goal.UserID, &goal.Username, &goal.WeeklyGoal, &totalPenalty, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user goal: %w", err)
	}

	goal.TotalPenalty, err = decimal.NewFromString(totalPenalty)
	if err != nil {
		return nil, fmt.Errorf("parse total penalty [%s]: %w", totalPenalty, err)
	}
	return &goal, nil
}

// InsertWorkoutIfAbsent inserts the row or flips a revoked one back to active
// in a single statement. The conflict branch only fires for revoked rows, so
// an active row leaves zero rows affected.
func (s *Store) InsertWorkoutIfAbsent(ctx context.Context, userID, username string, date, weekStart time.Time) (bool, error) {
	tag, err := s.db.Exec(
		ctx,
		`INSERT INTO workout_record (user_id, username, workout_date, week_start_date, state, created_at)
			VALUES ($1, $2, $3::date, $4::date, 'active', now())
		ON CONFLICT (user_id, workout_date) DO UPDATE
			SET username = EXCLUDED.username,
				week_start_date = EXCLUDED.week_start_date,
				state = 'active',
				created_at = EXCLUDED.created_at
			WHERE workout_record.state = 'revoked';`,
		userID, username, calendar.FormatDate(date), calendar.FormatDate(weekStart),
	)
	if err != nil {
		return false, fmt.Errorf("insert workout: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) RevokeWorkoutIfActive(ctx context.Context, userID string, date time.Time) (bool, error) {
	tag, err := s.db.Exec(
		ctx,
		`UPDATE workout_record
			SET state = 'revoked'
			WHERE user_id = $1 AND workout_date = $2::date AND state = 'active';`,
		userID, calendar.FormatDate(date),
	)
	if err != nil {
		return false, fmt.Errorf("revoke workout: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) CountActiveWorkouts(ctx context.Context, userID string, weekStart time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		ctx,
		`SELECT COUNT(*)
			FROM workout_record
			WHERE user_id = $1 AND week_start_date = $2::date AND state = 'active';`,
		userID, calendar.FormatDate(weekStart),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active workouts: %w", err)
	}
	return count, nil
}

func (s *Store) ListAllUsersWeeklyData(ctx context.Context, weekStart time.Time) (_ []workouts.UserWeeklyData, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.postgres.weekly_data")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("week.start", calendar.FormatDate(weekStart)))

	rows, err := s.db.Query(
		ctx,
		`SELECT g.user_id, g.username, g.weekly_goal, g.total_penalty::text, COUNT(w.user_id)
			FROM user_goal g
			LEFT JOIN workout_record w
				ON w.user_id = g.user_id AND w.week_start_date = $1::date AND w.state = 'active'
			GROUP BY g.user_id, g.username, g.weekly_goal, g.total_penalty, g.created_at
			ORDER BY g.created_at, g.user_id;`,
		calendar.FormatDate(weekStart),
	)
	if err != nil {
		return nil, fmt.Errorf("query weekly data: %w", err)
	}
	defer rows.Close()

	var data []workouts.UserWeeklyData
	for rows.Next() {
		var (
			d            workouts.UserWeeklyData
			totalPenalty string
		)
		if err := rows.Scan(&d.UserID, &d.Username, &d.WeeklyGoal, &totalPenalty, &d.ActiveCount); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if d.TotalPenalty, err = decimal.NewFromString(totalPenalty); err != nil {
			return nil, fmt.Errorf("parse total penalty [%s]: %w", totalPenalty, err)
		}
		data = append(data, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return data, nil
}

func (s *Store) InsertWeeklyPenaltyIfAbsent(ctx context.Context, entry workouts.WeeklyPenaltyRecord) (bool, error) {
	return insertLedgerEntry(ctx, s.db, entry)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertLedgerEntry(ctx context.Context, db execer, entry workouts.WeeklyPenaltyRecord) (bool, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	tag, err := db.Exec(
		ctx,
		`INSERT INTO weekly_penalty
				(user_id, username, week_start_date, goal_count, actual_count, penalty_amount, created_at)
			VALUES ($1, $2, $3::date, $4, $5, $6::numeric, $7)
		ON CONFLICT (user_id, week_start_date) DO NOTHING;`,
		entry.UserID, entry.Username, calendar.FormatDate(entry.WeekStartDate),
		entry.GoalCount, entry.ActualCount, entry.PenaltyAmount.String(), createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert weekly penalty: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) IncrementTotalPenalty(ctx context.Context, userID string, amount decimal.Decimal) (bool, error) {
	return incrementTotalPenalty(ctx, s.db, userID, amount)
}

func incrementTotalPenalty(ctx context.Context, db execer, userID string, amount decimal.Decimal) (bool, error) {
	tag, err := db.Exec(
		ctx,
		`UPDATE user_goal
			SET total_penalty = total_penalty + $2::numeric, updated_at = now()
			WHERE user_id = $1;`,
		userID, amount.String(),
	)
	if err != nil {
		return false, fmt.Errorf("increment total penalty: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ChargeWeeklyPenalty writes the ledger entry and bumps the total in one
// transaction. If the entry already exists nothing changes.
func (s *Store) ChargeWeeklyPenalty(ctx context.Context, entry workouts.WeeklyPenaltyRecord) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.postgres.charge")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("user.id", entry.UserID),
		attribute.String("week.start", calendar.FormatDate(entry.WeekStartDate)),
	)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("charge weekly penalty: rollback: %s", rbErr)
		}
	}()

	inserted, err := insertLedgerEntry(ctx, tx, entry)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	incremented, err := incrementTotalPenalty(ctx, tx, entry.UserID, entry.PenaltyAmount)
	if err != nil {
		return false, err
	}
	if !incremented {
		return false, fmt.Errorf("charge user %s: %w", entry.UserID, workouts.ErrNoSettings)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

func (s *Store) SumAllTotalPenalties(ctx context.Context) (decimal.Decimal, error) {
	var sum string
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_penalty), 0)::text FROM user_goal;`).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum total penalties: %w", err)
	}
	total, err := decimal.NewFromString(sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse penalty sum [%s]: %w", sum, err)
	}
	return total, nil
}

func (s *Store) ResetAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `TRUNCATE weekly_penalty, workout_record, user_goal;`); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	log.Warnln("postgres store: all tables truncated")
	return nil
}

// DataVersion returns the current snapshot as text. Its xmax and in-progress
// list change once any transaction that could have written commits, so an
// equal snapshot means the tables look exactly the same. Writes elsewhere in
// the database change it too, which only costs a cache miss.
func (s *Store) DataVersion(ctx context.Context) (string, error) {
	var snapshot string
	if err := s.db.QueryRow(ctx, `SELECT pg_current_snapshot()::text;`).Scan(&snapshot); err != nil {
		return "", fmt.Errorf("current snapshot: %w", err)
	}
	return snapshot, nil
}

// Records returns every workout row of userID, revoked ones included.
func (s *Store) Records(ctx context.Context, userID string) ([]workouts.WorkoutRecord, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT user_id, username, workout_date::text, week_start_date::text, state, created_at
			FROM workout_record
			WHERE user_id = $1
			ORDER BY workout_date;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []workouts.WorkoutRecord
	for rows.Next() {
		var (
			r                      workouts.WorkoutRecord
			workoutDate, weekStart string
			state                  string
		)
		if err := rows.Scan(&r.UserID, &r.Username, &workoutDate, &weekStart, &state, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if r.WorkoutDate, err = calendar.ParseDate(workoutDate, s.location); err != nil {
			return nil, err
		}
		if r.WeekStartDate, err = calendar.ParseDate(weekStart, s.location); err != nil {
			return nil, err
		}
		r.State = workouts.RecordState(state)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return records, nil
}
