package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/workoutfines/internal/api"
	"github.com/2beens/workoutfines/internal/config"
	"github.com/2beens/workoutfines/internal/middleware"
	"github.com/2beens/workoutfines/internal/report"
	"github.com/2beens/workoutfines/internal/rollup"
	"github.com/2beens/workoutfines/internal/telemetry/metrics"
	"github.com/2beens/workoutfines/internal/telemetry/tracing"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	adminTokenHash    string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	services    Services
	publisher   *report.Publisher
	runner      *rollup.Runner
	stopRunner  context.CancelFunc

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	AdminTokenHash          string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "workoutfines-service")
	if err != nil {
		return nil, err
	}

	store, dbPool, err := OpenStore(ctx, cfg, params.PostgresPassword, params.HoneycombTracingEnabled)
	if err != nil {
		otelShutdown()
		return nil, err
	}

	var collectors []prometheus.Collector
	if dbPool != nil {
		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	}
	promRegistry := metrics.SetupPrometheus(collectors...)
	metricsManager := metrics.NewManager("workoutfines", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := NewRedisClient(ctx, cfg, params.RedisPassword, params.HoneycombTracingEnabled)

	s := &Server{
		config:         cfg,
		adminTokenHash: params.AdminTokenHash,
		dbPool:         dbPool,
		redisClient:    rdb,
		services:       NewServices(cfg, store, metricsManager),
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if cfg.KafkaEnabled() {
		s.publisher = report.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaReportTopic)
		log.Infof("weekly reports published to kafka topic [%s]", cfg.KafkaReportTopic)
	}

	if cfg.RollupEnabled {
		runnerParams := rollup.NewRunnerParams{
			Reports: s.services.Reports,
			Schedule: rollup.Schedule{
				Weekday:  cfg.ReportWeekday(),
				Hour:     cfg.ReportHour,
				Minute:   cfg.ReportMinute,
				Location: cfg.Location(),
			},
		}
		if s.publisher != nil {
			runnerParams.Publisher = s.publisher
		}
		if rdb != nil {
			runnerParams.Locker = rollup.NewRedisLock(rdb, cfg.RollupLockDuration())
		}
		if err := runnerParams.Schedule.Validate(); err != nil {
			return nil, fmt.Errorf("rollup schedule: %w", err)
		}
		s.runner = rollup.NewRunner(runnerParams)
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	var photoUploadLimit mux.MiddlewareFunc
	if s.redisClient != nil {
		photoUploadLimit = middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			"photo-upload",
			s.config.PhotoUploadsPerMinute,
			api.PhotoUploadRateKey,
			s.metricsManager,
		)
	}

	handler := api.NewHandler(s.services.Workouts, s.services.Reports)
	handler.RegisterRoutes(r, photoUploadLimit)

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	authMiddleware := middleware.NewAdminAuthMiddlewareHandler(s.adminTokenHash)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context) {
	ipAndPort := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	if s.config.PrometheusMetricsPort != "" {
		go func() {
			log.Debugf(" > metrics listening on: [%s]", metricsAddr)
			err := s.metricsHttpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("metrics service, listen and serve: %s", err)
			}
		}()
	}

	if s.runner != nil {
		runnerCtx, cancel := context.WithCancel(ctx)
		s.stopRunner = cancel
		s.runner.Start(runnerCtx)
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	// a running rollup finishes first, the store is still open
	if s.runner != nil {
		if s.stopRunner != nil {
			s.stopRunner()
		}
		s.runner.Wait()
		log.Debugln("rollup scheduler stopped")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Errorf("failed to close report publisher: %s", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
