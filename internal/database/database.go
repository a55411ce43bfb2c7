package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/replydesk/replydesk-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

// Connect opens the database identified by databaseURL. PostgreSQL URLs use
// the postgres driver; anything else is treated as a SQLite path, which keeps
// local single-user setups to a single file.
func Connect(databaseURL string) (*gorm.DB, error) {
	dialector := dialectorFor(databaseURL)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	slog.Info("connected to database")
	return db, nil
}

func dialectorFor(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.Open(databaseURL)
	}
	path := strings.TrimPrefix(databaseURL, "sqlite://")
	return sqlite.Open(path)
}

// configureConnectionPool sets up connection pool limits
func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(DefaultMaxIdleConns)
	sqlDB.SetMaxOpenConns(DefaultMaxOpenConns)
	sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	return nil
}

// Migrate ensures the schema for all lifecycle models. It is idempotent:
// missing tables and newly introduced columns are created, existing records
// are never dropped or truncated. Called once at process start, never
// interleaved with normal operations.
func Migrate(db *gorm.DB) error {
	slog.Info("ensuring database schema")

	err := db.AutoMigrate(
		&models.Thread{},
		&models.Message{},
		&models.Suggestion{},
		&models.Decision{},
		&models.Draft{},
	)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	slog.Info("database schema up to date")
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
