package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Open connects to the configured database and brings its schema up to date.
func Open(options Options) (*gorm.DB, error) {
	switch options.Driver {
	case "", DialectSQLite:
		return OpenSQLite(options.SQLitePath)
	case DialectPostgres:
		return OpenPostgres(options.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", options.Driver)
	}
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}
