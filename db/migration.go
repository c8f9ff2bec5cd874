package db

import (
	"database/sql"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

const dialect = "postgres"

func gooseDB(db *gorm.DB) (*sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return nil, err
	}
	return sqlDB, nil
}

// Migrate runs all pending migrations in dir.
func Migrate(db *gorm.DB, dir string) error {
	sqlDB, err := gooseDB(db)
	if err != nil {
		return err
	}
	return goose.Up(sqlDB, dir)
}

// Rollback rolls back the last steps migrations (at least one).
func Rollback(db *gorm.DB, dir string, steps int) error {
	sqlDB, err := gooseDB(db)
	if err != nil {
		return err
	}
	for range max(steps, 1) {
		if err := goose.Down(sqlDB, dir); err != nil {
			return err
		}
	}
	return nil
}

// MigrationStatus prints the migration status.
func MigrationStatus(db *gorm.DB, dir string) error {
	sqlDB, err := gooseDB(db)
	if err != nil {
		return err
	}
	return goose.Status(sqlDB, dir)
}
