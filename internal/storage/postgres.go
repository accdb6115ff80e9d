package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
	closed atomic.Bool
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}
	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) InsertReminder(ctx context.Context, r *models.Reminder) error {
	if s.closed.Load() {
		return unavailable("insert reminder", errClosed)
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO reminders (id, owner_id, content, created_at, trigger_at, completed)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := s.db.ExecContext(ctx, query,
		r.ID, r.OwnerID, r.Content, r.CreatedAt, r.TriggerAt, r.Completed,
	); err != nil {
		s.logger.Error("Failed to insert reminder", zap.Error(err), zap.String("owner_id", r.OwnerID))
		return unavailable("insert reminder", err)
	}
	return nil
}

func (s *PostgresStorage) ListReminders(ctx context.Context, ownerID string, limit int) ([]*models.Reminder, error) {
	if s.closed.Load() {
		return nil, unavailable("list reminders", errClosed)
	}

	query := `
		SELECT id, owner_id, content, created_at, trigger_at, completed
		FROM reminders
		WHERE owner_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, ownerID, sqlLimit(limit))
	if err != nil {
		return nil, unavailable("list reminders", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		r := &models.Reminder{}
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Content, &r.CreatedAt, &r.TriggerAt, &r.Completed); err != nil {
			return nil, fmt.Errorf("error scanning reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list reminders", err)
	}
	return reminders, nil
}

func (s *PostgresStorage) InsertNote(ctx context.Context, n *models.Note) error {
	if s.closed.Load() {
		return unavailable("insert note", errClosed)
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Category == "" {
		n.Category = models.GeneralNote
	}

	query := `
		INSERT INTO notes (id, owner_id, content, category, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.db.ExecContext(ctx, query,
		n.ID, n.OwnerID, n.Content, string(n.Category), n.CreatedAt,
	); err != nil {
		s.logger.Error("Failed to insert note", zap.Error(err), zap.String("owner_id", n.OwnerID))
		return unavailable("insert note", err)
	}
	return nil
}

func (s *PostgresStorage) ListNotes(ctx context.Context, ownerID string, limit int) ([]*models.Note, error) {
	if s.closed.Load() {
		return nil, unavailable("list notes", errClosed)
	}

	query := `
		SELECT id, owner_id, content, category, created_at
		FROM notes
		WHERE owner_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, ownerID, sqlLimit(limit))
	if err != nil {
		return nil, unavailable("list notes", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		n := &models.Note{}
		var category string
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Content, &category, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning note: %w", err)
		}
		n.Category = models.NoteCategory(category)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list notes", err)
	}
	return notes, nil
}

func (s *PostgresStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// sqlLimit maps "no limit" onto LIMIT NULL, which Postgres treats as ALL.
func sqlLimit(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}
