package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/workoutfines/internal"
	"github.com/2beens/workoutfines/internal/config"
	"github.com/2beens/workoutfines/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	hashToken := flag.Bool("hash-admin-token", false, "read an admin token from stdin, print its hash for WORKOUTFINES_ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashToken {
		if err := hashAdminToken(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "hash admin token: %s\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("starting ...")

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		Service:       "service",
		Environment:   *env,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		LogsPath:      cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     os.Getenv("SENTRY_DSN"),
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using store: [%s]", cfg.Store)
	log.Debugf("penalty rules: goal %d-%d, base penalty %s, report tz %s", cfg.MinWeeklyGoal, cfg.MaxWeeklyGoal, cfg.BasePenalty, cfg.ReportTimezone)

	adminTokenHash := os.Getenv("WORKOUTFINES_ADMIN_PASSWORD_HASH")
	if adminTokenHash == "" {
		log.Errorf("admin token hash not set, admin routes are disabled. use WORKOUTFINES_ADMIN_PASSWORD_HASH")
	}

	redisPassword := os.Getenv("WORKOUTFINES_REDIS_PASS")
	if redisPassword == "" && cfg.RedisHost != "" {
		log.Warnln("redis password not set. use WORKOUTFINES_REDIS_PASS")
	}

	postgresPassword := os.Getenv("WORKOUTFINES_PG_PASS")
	if postgresPassword == "" && cfg.Store == config.StorePostgres {
		log.Warnln("postgres password not set. use WORKOUTFINES_PG_PASS")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			AdminTokenHash:          adminTokenHash,
			RedisPassword:           redisPassword,
			PostgresPassword:        postgresPassword,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}
