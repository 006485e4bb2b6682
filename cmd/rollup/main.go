package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/workoutfines/internal"
	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/2beens/workoutfines/internal/config"
	"github.com/2beens/workoutfines/internal/logging"
	"github.com/2beens/workoutfines/internal/report"
	"github.com/2beens/workoutfines/internal/rollup"

	log "github.com/sirupsen/logrus"
)

// Runs the weekly rollup once, for a cron job or a manual re-run. With
// -week-offset 0 last week is charged, 1 the week before and so on.
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	weekOffset := flag.Int("week-offset", 0, "0 means last week, 1 the week before, ...")
	publish := flag.Bool("publish", false, "publish the weekly report to kafka after the rollup")
	printReport := flag.Bool("print", false, "print the weekly report as json to stdout")
	timeout := flag.Duration("timeout", 5*time.Minute, "max duration of the whole run")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		Service:       "rollup",
		Environment:   *env,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		LogsPath:      cfg.LogsPath,
		LogToStdout:   true,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     os.Getenv("SENTRY_DSN"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, timeoutCancel := context.WithTimeout(ctx, *timeout)

	err = run(ctx, cfg, *weekOffset, *publish, *printReport)
	timeoutCancel()
	cancel()
	if err != nil {
		log.Errorf("rollup failed: %s", err)
		os.Exit(1)
	}
}

// errMemoryStore stops a rollup that would charge a store dropped on exit.
var errMemoryStore = errors.New("rollup needs a persistent store, config has store = memory")

func run(ctx context.Context, cfg *config.Config, weekOffset int, publish, printReport bool) error {
	if cfg.Store == config.StoreMemory {
		return errMemoryStore
	}

	store, dbPool, err := internal.OpenStore(ctx, cfg, os.Getenv("WORKOUTFINES_PG_PASS"), false)
	if err != nil {
		return err
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	services := internal.NewServices(cfg, store, nil)
	weekStart, err := services.Reports.TargetWeekStart(weekOffset)
	if err != nil {
		return err
	}

	rdb := internal.NewRedisClient(ctx, cfg, os.Getenv("WORKOUTFINES_REDIS_PASS"), false)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("failed to close redis client conn: %s", err)
			}
		}()

		lock := rollup.NewRedisLock(rdb, cfg.RollupLockDuration())
		token, ok, err := lock.TryLock(ctx, rollup.WeeklyLockName)
		if err != nil {
			return fmt.Errorf("acquire rollup lock: %w", err)
		}
		if !ok {
			return rollup.ErrLockHeld
		}
		defer func() {
			if err := lock.Unlock(context.Background(), rollup.WeeklyLockName, token); err != nil {
				log.Warnf("release rollup lock: %s", err)
			}
		}()
	}

	log.Infof("running weekly rollup for week %s", calendar.FormatDate(weekStart))
	result, err := services.Reports.ProcessWeeklyPenaltyRecords(ctx, weekStart)
	if err != nil {
		return err
	}
	log.Infof(
		"done: processed %d, already charged %d, added %s",
		result.ProcessedCount, result.AlreadyCharged, result.PenaltyAdded,
	)

	if !publish && !printReport {
		return nil
	}

	weekly, err := services.Reports.GenerateWeeklyReportData(ctx, weekStart)
	if errors.Is(err, report.ErrNoData) {
		log.Infoln("no users, no report")
		return nil
	}
	if err != nil {
		return err
	}

	if printReport {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(weekly); err != nil {
			return fmt.Errorf("print report: %w", err)
		}
	}

	if publish {
		if !cfg.KafkaEnabled() {
			return errors.New("publish requested but no kafka brokers configured")
		}
		publisher := report.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaReportTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Errorf("close publisher: %s", err)
			}
		}()
		if err := publisher.Publish(ctx, weekly); err != nil {
			return err
		}
		log.Infof("report published to [%s]", cfg.KafkaReportTopic)
	}
	return nil
}
