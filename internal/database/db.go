package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open establishes a connection for the given DSN. postgres:// and
// postgresql:// URLs use the PostgreSQL driver, anything else is treated as
// a sqlite path (an optional "sqlite://" or "file:" prefix is accepted).
func Open(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("failed to connect to database: empty DSN")
	}

	db, err := gorm.Open(dialectorFor(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// OpenSQLiteFile opens (and creates if needed) a sqlite database file
func OpenSQLiteFile(path string, logLevel logger.LogLevel) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return Open(path, logLevel)
}

func dialectorFor(dsn string) gorm.Dialector {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
}

// IsPostgres reports whether the DSN selects the PostgreSQL driver
func IsPostgres(dsn string) bool {
	_, ok := dialectorFor(dsn).(*postgres.Dialector)
	return ok
}

// ParseLogLevel maps a config string onto a gorm log level, defaulting to warn
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// AutoMigrate creates the review tables. The lfa1 table is owned by the
// import process; migrating it here only guarantees an empty schema exists.
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running review database migrations...")

	if err := db.AutoMigrate(&MasterRecord{}, &Decision{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Review database migrations completed successfully")
	return nil
}

// AutoMigrateUsers creates the reviewer account table
func AutoMigrateUsers(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("failed to run user migrations: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
