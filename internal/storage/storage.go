// Package storage persists reminders and notes. Every backend lists newest
// first and scopes rows by owner.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/models"
)

// ErrUnavailable is wrapped by every failure to reach the backing store,
// including calls made after Close.
var ErrUnavailable = errors.New("storage unavailable")

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Gateway interface {
	InsertReminder(ctx context.Context, r *models.Reminder) error
	// ListReminders returns at most limit reminders for owner, newest first.
	// A limit <= 0 returns all of them.
	ListReminders(ctx context.Context, ownerID string, limit int) ([]*models.Reminder, error)
	InsertNote(ctx context.Context, n *models.Note) error
	ListNotes(ctx context.Context, ownerID string, limit int) ([]*models.Note, error)
	Close() error
}

type Config struct {
	Driver     string
	SQLitePath string
	Database   DatabaseConfig
}

// New opens the backend named by cfg.Driver. An empty driver means memory.
func New(cfg Config, logger *zap.Logger) (Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case "", DriverMemory:
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(), nil
	case DriverSQLite:
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	case DriverPostgres:
		logger.Info("Using PostgreSQL storage",
			zap.String("host", cfg.Database.Host),
			zap.String("dbname", cfg.Database.DBName))
		return NewPostgresStorage(cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

var errClosed = errors.New("store is closed")
