package internal

import (
	"context"
	"fmt"
	"net"

	"github.com/2beens/workoutfines/internal/config"
	"github.com/2beens/workoutfines/internal/db"
	"github.com/2beens/workoutfines/internal/penalty"
	"github.com/2beens/workoutfines/internal/report"
	"github.com/2beens/workoutfines/internal/store/memory"
	"github.com/2beens/workoutfines/internal/store/postgres"
	"github.com/2beens/workoutfines/internal/telemetry/metrics"
	"github.com/2beens/workoutfines/internal/workouts"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// OpenStore returns the store selected in cfg. The pool is nil for the
// memory store and is owned by the caller otherwise.
func OpenStore(
	ctx context.Context,
	cfg *config.Config,
	postgresPassword string,
	tracingEnabled bool,
) (workouts.Store, *pgxpool.Pool, error) {
	if cfg.Store == config.StoreMemory {
		log.Warnln("using the in-memory store, nothing survives a restart")
		return memory.NewStore(), nil, nil
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     postgresPassword,
		TracingEnabled: tracingEnabled,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	store := postgres.NewStore(dbPool, cfg.Location())
	if err := store.Migrate(ctx); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("migrate db: %w", err)
	}
	return store, dbPool, nil
}

// NewRedisClient returns nil when no redis host is configured. Rate limiting
// and the rollup lock are off then.
func NewRedisClient(ctx context.Context, cfg *config.Config, password string, tracingEnabled bool) *redis.Client {
	if cfg.RedisHost == "" {
		log.Warnln("no redis host configured, rate limiting and rollup lock disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: password,
		DB:       0, // use default DB
	})
	if tracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}
	return rdb
}

type Services struct {
	Workouts *workouts.Service
	Reports  *report.Service
}

func NewServices(cfg *config.Config, store workouts.Store, metricsManager *metrics.Manager) Services {
	calculator := penalty.NewCalculator(cfg.BasePenaltyAmount())
	rules := workouts.Rules{
		MinWeeklyGoal:   cfg.MinWeeklyGoal,
		MaxWeeklyGoal:   cfg.MaxWeeklyGoal,
		ImageExtensions: cfg.ImageExtensions,
	}

	var reportCache *report.Cache
	if ttl := cfg.ReportCacheTTL(); ttl > 0 {
		reportCache = report.NewCache(ttl)
	}

	return Services{
		Workouts: workouts.NewService(workouts.NewServiceParams{
			Store:      store,
			Rules:      rules,
			Calculator: calculator,
			Location:   cfg.Location(),
			Metrics:    metricsManager,
		}),
		Reports: report.NewService(report.NewServiceParams{
			Store:      store,
			Calculator: calculator,
			Location:   cfg.Location(),
			Cache:      reportCache,
			Metrics:    metricsManager,
		}),
	}
}
