package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	Store          string `toml:"store"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// kafka, report publishing is off when no brokers are set
	KafkaBrokers     []string `toml:"kafka_brokers"`
	KafkaReportTopic string   `toml:"kafka_report_topic"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// penalty rules
	MinWeeklyGoal   int      `toml:"min_weekly_goal"`
	MaxWeeklyGoal   int      `toml:"max_weekly_goal"`
	BasePenalty     string   `toml:"base_penalty"`
	ImageExtensions []string `toml:"image_extensions"`
	// weekly report: day 0 is monday
	ReportTimezone        string `toml:"report_timezone"`
	ReportDayOfWeek       int    `toml:"report_day_of_week"`
	ReportHour            int    `toml:"report_hour"`
	ReportMinute          int    `toml:"report_minute"`
	RollupEnabled         bool   `toml:"rollup_enabled"`
	RollupLockTTL         string `toml:"rollup_lock_ttl"`
	ReportCacheTTLSeconds int    `toml:"report_cache_ttl_seconds"`
	PhotoUploadsPerMinute int    `toml:"photo_uploads_per_minute"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the toml file at path and returns the table for env with
// defaults applied and validated.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] table in %s", env, path)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Store == "" {
		c.Store = StorePostgres
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresDBName == "" {
		c.PostgresDBName = "workoutfines"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.KafkaReportTopic == "" {
		c.KafkaReportTopic = "workoutfines.weekly-reports"
	}
	if c.MinWeeklyGoal == 0 {
		c.MinWeeklyGoal = 4
	}
	if c.MaxWeeklyGoal == 0 {
		c.MaxWeeklyGoal = 7
	}
	if c.BasePenalty == "" {
		c.BasePenalty = "10080"
	}
	if len(c.ImageExtensions) == 0 {
		c.ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}
	}
	if c.ReportTimezone == "" {
		c.ReportTimezone = "Asia/Seoul"
	}
	if c.RollupLockTTL == "" {
		c.RollupLockTTL = "10m"
	}
	if c.PhotoUploadsPerMinute == 0 {
		c.PhotoUploadsPerMinute = 10
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Store != StorePostgres && c.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("store must be %s or %s, got %q", StorePostgres, StoreMemory, c.Store))
	}
	if c.MinWeeklyGoal < 1 || c.MaxWeeklyGoal < c.MinWeeklyGoal {
		errs = append(errs, fmt.Errorf("weekly goal range [%d, %d] invalid", c.MinWeeklyGoal, c.MaxWeeklyGoal))
	}
	if base, err := decimal.NewFromString(c.BasePenalty); err != nil || !base.IsPositive() {
		errs = append(errs, fmt.Errorf("base penalty must be a positive amount, got %q", c.BasePenalty))
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		errs = append(errs, fmt.Errorf("report timezone: %w", err))
	}
	if c.ReportDayOfWeek < 0 || c.ReportDayOfWeek > 6 {
		errs = append(errs, fmt.Errorf("report day of week must be 0 (monday) to 6, got %d", c.ReportDayOfWeek))
	}
	if c.ReportHour < 0 || c.ReportHour > 23 || c.ReportMinute < 0 || c.ReportMinute > 59 {
		errs = append(errs, fmt.Errorf("report time %02d:%02d invalid", c.ReportHour, c.ReportMinute))
	}
	if _, err := time.ParseDuration(c.RollupLockTTL); err != nil {
		errs = append(errs, fmt.Errorf("rollup lock ttl: %w", err))
	}
	if c.ReportCacheTTLSeconds < 0 {
		errs = append(errs, errors.New("report cache ttl must not be negative"))
	}
	for _, ext := range c.ImageExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("image extension %q must start with a dot", ext))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) BasePenaltyAmount() decimal.Decimal {
	base, err := decimal.NewFromString(c.BasePenalty)
	if err != nil {
		return decimal.Zero
	}
	return base
}

// ReportWeekday converts the monday based report day to a time.Weekday.
func (c *Config) ReportWeekday() time.Weekday {
	return time.Weekday((c.ReportDayOfWeek + 1) % 7)
}

func (c *Config) RollupLockDuration() time.Duration {
	ttl, err := time.ParseDuration(c.RollupLockTTL)
	if err != nil {
		return 10 * time.Minute
	}
	return ttl
}

func (c *Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
