package rollup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/2beens/workoutfines/internal/report"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// WeeklyLockName is shared by the scheduler and the one-shot command.
const WeeklyLockName = "weekly"

var ErrLockHeld = errors.New("weekly rollup already running elsewhere")

type ReportService interface {
	LastWeekReference() time.Time
	ProcessWeeklyPenaltyRecords(ctx context.Context, weekStart time.Time) (*report.RollupResult, error)
	GenerateWeeklyReportData(ctx context.Context, weekStart time.Time) (*report.WeeklyReport, error)
}

type ReportPublisher interface {
	Publish(ctx context.Context, weekly *report.WeeklyReport) error
}

type Locker interface {
	TryLock(ctx context.Context, name string) (string, bool, error)
	Unlock(ctx context.Context, name, token string) error
}

// Runner triggers the weekly ledger rollup for last week on a Schedule and
// publishes the resulting report. A failed run is logged and the next one is
// waited for; request handling is never affected.
type Runner struct {
	reports    ReportService
	publisher  ReportPublisher
	locker     Locker
	schedule   Schedule
	runTimeout time.Duration

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	wg sync.WaitGroup
}

type NewRunnerParams struct {
	Reports  ReportService
	Schedule Schedule
	// Publisher and Locker are optional.
	Publisher  ReportPublisher
	Locker     Locker
	RunTimeout time.Duration
}

func NewRunner(params NewRunnerParams) *Runner {
	runTimeout := params.RunTimeout
	if runTimeout <= 0 {
		runTimeout = 5 * time.Minute
	}
	return &Runner{
		reports:    params.Reports,
		publisher:  params.Publisher,
		locker:     params.Locker,
		schedule:   params.Schedule,
		runTimeout: runTimeout,
		now:        time.Now,
		after:      time.After,
	}
}

// Start runs the schedule in a goroutine until ctx is done. Wait blocks until
// that goroutine returned.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log.Infof("rollup: scheduled weekly at %s", r.schedule)
		for {
			next := r.schedule.Next(r.now())
			log.Debugf("rollup: next run at %s", next)
			select {
			case <-ctx.Done():
				log.Debugln("rollup: scheduler stopped")
				return
			case <-r.after(next.Sub(r.now())):
			}

			runCtx, cancel := context.WithTimeout(ctx, r.runTimeout)
			if _, err := r.RunOnce(runCtx); err != nil {
				if errors.Is(err, ErrLockHeld) {
					log.Infof("rollup: %s", err)
				} else {
					log.Errorf("rollup: scheduled run failed: %s", err)
				}
			}
			cancel()
		}
	}()
}

func (r *Runner) Wait() {
	r.wg.Wait()
}

// RunOnce charges last week and publishes its report.
func (r *Runner) RunOnce(ctx context.Context) (*report.RollupResult, error) {
	runID := uuid.NewString()
	weekStart := r.reports.LastWeekReference()
	logger := log.WithFields(log.Fields{
		"run_id": runID,
		"week":   calendar.FormatDate(weekStart),
	})

	if r.locker != nil {
		token, ok, err := r.locker.TryLock(ctx, WeeklyLockName)
		if err != nil {
			return nil, fmt.Errorf("acquire rollup lock: %w", err)
		}
		if !ok {
			return nil, ErrLockHeld
		}
		defer func() {
			// the run context may be done by now
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.locker.Unlock(unlockCtx, WeeklyLockName, token); err != nil {
				logger.Warnf("rollup: release lock: %s", err)
			}
		}()
	}

	logger.Infoln("rollup: started")
	result, err := r.reports.ProcessWeeklyPenaltyRecords(ctx, weekStart)
	if err != nil {
		return result, fmt.Errorf("process weekly penalties: %w", err)
	}
	logger.Infof("rollup: processed %d users, added %s", result.ProcessedCount, result.PenaltyAdded)

	if r.publisher == nil {
		return result, nil
	}

	weekly, err := r.reports.GenerateWeeklyReportData(ctx, weekStart)
	if err != nil {
		if errors.Is(err, report.ErrNoData) {
			logger.Infoln("rollup: no users, nothing to publish")
			return result, nil
		}
		return result, fmt.Errorf("generate weekly report: %w", err)
	}
	if err := r.publisher.Publish(ctx, weekly); err != nil {
		return result, fmt.Errorf("publish weekly report: %w", err)
	}
	logger.Infoln("rollup: report published")

	return result, nil
}
