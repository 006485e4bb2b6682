package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/2beens/workoutfines/internal/workouts"
	"github.com/shopspring/decimal"
)

var (
	_ workouts.Store          = (*Store)(nil)
	_ workouts.PenaltyCharger = (*Store)(nil)
	_ workouts.ChangeTracker  = (*Store)(nil)
)

type recordKey struct {
	userID string
	date   string
}

type ledgerKey struct {
	userID    string
	weekStart string
}

// Store keeps everything in maps guarded by one mutex, so every conditional
// write is atomic. Used in development and in scenario tests.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	// bumped by every write that changed something
	version uint64

	goals   map[string]*workouts.UserGoal
	records map[recordKey]*workouts.WorkoutRecord
	ledger  map[ledgerKey]workouts.WeeklyPenaltyRecord
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		now:     now,
		goals:   make(map[string]*workouts.UserGoal),
		records: make(map[recordKey]*workouts.WorkoutRecord),
		ledger:  make(map[ledgerKey]workouts.WeeklyPenaltyRecord),
	}
}

func (s *Store) UpsertUserGoal(_ context.Context, userID, username string, weeklyGoal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	now := s.now()
	if goal, ok := s.goals[userID]; ok {
		goal.Username = username
		goal.WeeklyGoal = weeklyGoal
		goal.UpdatedAt = now
		return nil
	}

	s.goals[userID] = &workouts.UserGoal{
		UserID:       userID,
		Username:     username,
		WeeklyGoal:   weeklyGoal,
		TotalPenalty: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

func (s *Store) GetUserGoal(_ context.Context, userID string) (*workouts.UserGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal, ok := s.goals[userID]
	if !ok {
		return nil, nil
	}
	g := *goal
	return &g, nil
}

func (s *Store) InsertWorkoutIfAbsent(_ context.Context, userID, username string, date, weekStart time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{userID: userID, date: calendar.FormatDate(date)}
	record, ok := s.records[key]
	if ok && !record.IsRevoked() {
		return false, nil
	}

	s.version++
	if ok {
		record.Username = username
		record.WeekStartDate = weekStart
		record.State = workouts.RecordStateActive
		record.CreatedAt = s.now()
		return true, nil
	}

	s.records[key] = &workouts.WorkoutRecord{
		UserID:        userID,
		Username:      username,
		WorkoutDate:   date,
		WeekStartDate: weekStart,
		State:         workouts.RecordStateActive,
		CreatedAt:     s.now(),
	}
	return true, nil
}

func (s *Store) RevokeWorkoutIfActive(_ context.Context, userID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[recordKey{userID: userID, date: calendar.FormatDate(date)}]
	if !ok || record.IsRevoked() {
		return false, nil
	}
	record.State = workouts.RecordStateRevoked
	s.version++
	return true, nil
}

func (s *Store) CountActiveWorkouts(_ context.Context, userID string, weekStart time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countActive(userID, weekStart), nil
}

func (s *Store) countActive(userID string, weekStart time.Time) int {
	week := calendar.FormatDate(weekStart)
	count := 0
	for key, record := range s.records {
		if key.userID != userID || record.IsRevoked() {
			continue
		}
		if calendar.FormatDate(record.WeekStartDate) == week {
			count++
		}
	}
	return count
}

// ListAllUsersWeeklyData returns one row per goal, oldest goal first.
func (s *Store) ListAllUsersWeeklyData(_ context.Context, weekStart time.Time) ([]workouts.UserWeeklyData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals := make([]*workouts.UserGoal, 0, len(s.goals))
	for _, goal := range s.goals {
		goals = append(goals, goal)
	}
	sort.Slice(goals, func(i, j int) bool {
		if goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].UserID < goals[j].UserID
		}
		return goals[i].CreatedAt.Before(goals[j].CreatedAt)
	})

	data := make([]workouts.UserWeeklyData, 0, len(goals))
	for _, goal := range goals {
		data = append(data, workouts.UserWeeklyData{
			UserID:       goal.UserID,
			Username:     goal.Username,
			WeeklyGoal:   goal.WeeklyGoal,
			TotalPenalty: goal.TotalPenalty,
			ActiveCount:  s.countActive(goal.UserID, weekStart),
		})
	}
	return data, nil
}

func (s *Store) InsertWeeklyPenaltyIfAbsent(_ context.Context, entry workouts.WeeklyPenaltyRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLedgerEntry(entry), nil
}

func (s *Store) insertLedgerEntry(entry workouts.WeeklyPenaltyRecord) bool {
	key := ledgerKey{userID: entry.UserID, weekStart: calendar.FormatDate(entry.WeekStartDate)}
	if _, ok := s.ledger[key]; ok {
		return false
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.ledger[key] = entry
	s.version++
	return true
}

func (s *Store) IncrementTotalPenalty(_ context.Context, userID string, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal, ok := s.goals[userID]
	if !ok {
		return false, nil
	}
	goal.TotalPenalty = goal.TotalPenalty.Add(amount)
	goal.UpdatedAt = s.now()
	s.version++
	return true, nil
}

// ChargeWeeklyPenalty writes the ledger entry and bumps the user total under
// one lock.
func (s *Store) ChargeWeeklyPenalty(_ context.Context, entry workouts.WeeklyPenaltyRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal, ok := s.goals[entry.UserID]
	if !ok {
		return false, fmt.Errorf("charge user %s: %w", entry.UserID, workouts.ErrNoSettings)
	}
	if !s.insertLedgerEntry(entry) {
		return false, nil
	}
	goal.TotalPenalty = goal.TotalPenalty.Add(entry.PenaltyAmount)
	goal.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) SumAllTotalPenalties(_ context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, goal := range s.goals {
		sum = sum.Add(goal.TotalPenalty)
	}
	return sum, nil
}

func (s *Store) ResetAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals = make(map[string]*workouts.UserGoal)
	s.records = make(map[recordKey]*workouts.WorkoutRecord)
	s.ledger = make(map[ledgerKey]workouts.WeeklyPenaltyRecord)
	s.version++
	return nil
}

func (s *Store) DataVersion(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strconv.FormatUint(s.version, 10), nil
}

// Records returns every row stored for userID, revoked ones included, ordered by date.
func (s *Store) Records(userID string) []workouts.WorkoutRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []workouts.WorkoutRecord
	for key, record := range s.records {
		if key.userID == userID {
			records = append(records, *record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].WorkoutDate.Before(records[j].WorkoutDate)
	})
	return records
}

// LedgerEntries returns the ledger entries of userID ordered by week.
func (s *Store) LedgerEntries(userID string) []workouts.WeeklyPenaltyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []workouts.WeeklyPenaltyRecord
	for key, entry := range s.ledger {
		if key.userID == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WeekStartDate.Before(entries[j].WeekStartDate)
	})
	return entries
}
