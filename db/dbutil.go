package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig holds configuration options for database initialization
type DBConfig struct {
	// Path specifies the database file path. Use ":memory:" for in-memory database
	Path string
	// LogLevel specifies the GORM logging level
	LogLevel logger.LogLevel
}

// InitDB opens the stackd database at the given path with a GORM log level
// derived from the active slog level, and runs migrations.
func InitDB(path string) (*gorm.DB, error) {
	database, err := InitDatabase(DBConfig{
		Path:     path,
		LogLevel: gormLogLevel(),
	})
	if err != nil {
		return nil, err
	}

	if err := AutoMigrateAll(database); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

// InitDatabase creates and configures a SQLite database with the given configuration
// The caller is responsible for running migrations after getting the DB instance
func InitDatabase(config DBConfig) (*gorm.DB, error) {
	dsn := config.Path

	if config.Path != ":memory:" {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Failed to create data directory", "dir", dir, "error", err)
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		slog.Debug("Initializing file-based database", "path", config.Path)
	}

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		slog.Error("Failed to connect to database", "dsn", dsn, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure SQLite pragmas
	pragmas := "PRAGMA foreign_keys = ON;"

	// Performance optimizations only make sense for file-based databases
	if config.Path != ":memory:" {
		pragmas += `
		PRAGMA journal_mode       = WAL;
		PRAGMA synchronous        = NORMAL;
		PRAGMA journal_size_limit = 27103364;
		PRAGMA cache_size         = 2000;`
	}

	if err := database.Exec(pragmas).Error; err != nil {
		slog.Error("Failed to configure database", "error", err)
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	return database, nil
}

// gormLogLevel maps the active slog level to a GORM log level
func gormLogLevel() logger.LogLevel {
	l := slog.Default()

	switch {
	case l.Enabled(context.Background(), slog.LevelDebug):
		// Show SQL queries only when debug logging is enabled
		return logger.Info
	case l.Enabled(context.Background(), slog.LevelWarn):
		return logger.Warn
	case l.Enabled(context.Background(), slog.LevelError):
		return logger.Error
	default:
		return logger.Silent
	}
}
