package db

import (
	"context"
	"fmt"
	"time"

	"github.com/shaurya/recordkit/config"
	"github.com/shaurya/recordkit/orm"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DSN renders the connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// Connect opens a PostgreSQL connection, pings it and registers the
// pre-set attribute callbacks. SQL is logged through zap's global logger:
// every statement in development, only warnings and slow queries otherwise.
func Connect(cfg config.DatabaseConfig, env string) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if env == "development" || env == "" {
		logLevel = gormlogger.Info
	}

	slowThreshold := time.Duration(cfg.SlowQueryMs) * time.Millisecond
	if slowThreshold == 0 {
		slowThreshold = 200 * time.Millisecond
	}

	gormLogger := gormlogger.New(
		zap.NewStdLog(zap.L().Named("sql")),
		gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("[recordkit] cannot connect to PostgreSQL at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Pool > 0 {
		sqlDB.SetMaxIdleConns(max(cfg.Pool/2, 1))
		sqlDB.SetMaxOpenConns(cfg.Pool)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("[recordkit] cannot connect to PostgreSQL at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	if err := orm.RegisterPreSetCallbacks(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
