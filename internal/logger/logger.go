package logger

import (
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// New returns the process logger: debug in dev, info otherwise.
func New(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}

// Gorm bridges gorm's SQL logger onto zerolog. Production only reports warnings and
// slow queries.
func Gorm(l zerolog.Logger, appEnv string) gormlogger.Interface {
	level := gormlogger.Info
	if appEnv == "production" {
		level = gormlogger.Warn
	}
	w := l.With().Str("component", "gorm").Logger()
	return gormlogger.New(
		stdlog.New(w, "", 0),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}
