package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/workoutfines/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	appName = "workoutfines"

	defaultMaxSizeMB  = 50
	defaultMaxBackups = 30
	defaultMaxAgeDays = 365
)

type LoggerSetupParams struct {
	// Service names the binary (service, rollup). It is attached to every
	// entry and names the sentry server and the log file.
	Service       string
	Environment   string
	LogLevel      string
	LogFormatJSON bool
	// LogsPath is a log file or a directory for it, empty logs to stdout only.
	LogsPath    string
	LogToStdout bool
	// zero keeps the defaults
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	SentryEnabled bool
	SentryDSN     string
}

func (p LoggerSetupParams) serverName() string {
	if p.Service == "" {
		return appName
	}
	return appName + "-" + p.Service
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))
	logrus.AddHook(NewFieldsHook(logrus.Fields{
		"service": params.serverName(),
		"env":     params.Environment,
	}))

	if params.SentryEnabled {
		setupSentry(params)
	}

	logFile := LogFilePath(params.LogsPath, params.serverName())
	if logFile == "" {
		logrus.SetOutput(os.Stdout)
		logrus.Println("writing logs only to STDOUT")
		return
	}

	rotating := newRotatingWriter(logFile, params)
	if params.LogToStdout {
		logrus.SetOutput(pkg.NewCombinedWriter(os.Stdout, rotating))
		logrus.Printf("writing logs to %s and STDOUT", logFile)
	} else {
		logrus.SetOutput(rotating)
	}
}

func setupSentry(params LoggerSetupParams) {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.serverName(),
	})
	if err != nil {
		logrus.Errorf("sentry.Init: %s", err)
		return
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", params.serverName())
	})

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("Sentry set up successfully")
}

func newRotatingWriter(logFile string, params LoggerSetupParams) *lumberjack.Logger {
	rotating := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    defaultMaxSizeMB, // megabytes
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays, // days
		LocalTime:  false,             // false -> use UTC
		Compress:   true,
	}
	if params.MaxSizeMB > 0 {
		rotating.MaxSize = params.MaxSizeMB
	}
	if params.MaxBackups > 0 {
		rotating.MaxBackups = params.MaxBackups
	}
	if params.MaxAgeDays > 0 {
		rotating.MaxAge = params.MaxAgeDays
	}
	return rotating
}

// LogFilePath resolves where name logs to. A directory (existing, or written
// with a trailing slash) gets <name>.log inside it, so the service and the
// rollup binary never share a rotating file.
func LogFilePath(logsPath, name string) string {
	if logsPath == "" {
		return ""
	}
	if strings.HasSuffix(logsPath, string(os.PathSeparator)) || isDir(logsPath) {
		return filepath.Join(logsPath, name+".log")
	}
	if !strings.HasSuffix(logsPath, ".log") {
		logsPath += ".log"
	}
	return logsPath
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn":
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}
