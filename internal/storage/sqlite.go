package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xaenox/offline-assistant/internal/models"
)

// reminderRecord and noteRecord carry an autoincrement Seq so rows created
// within the same clock tick still list in insertion order.
type reminderRecord struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"uniqueIndex;size:36"`
	OwnerID   string    `gorm:"index;not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	TriggerAt time.Time
	Completed bool
}

func (reminderRecord) TableName() string { return "reminders" }

type noteRecord struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"uniqueIndex;size:36"`
	OwnerID   string    `gorm:"index;not null"`
	Content   string    `gorm:"not null"`
	Category  string    `gorm:"size:32"`
	CreatedAt time.Time `gorm:"index"`
}

func (noteRecord) TableName() string { return "notes" }

// SQLiteStorage is the on-device store. It needs no cgo.
type SQLiteStorage struct {
	db     *gorm.DB
	logger *zap.Logger
	closed atomic.Bool
}

func NewSQLiteStorage(path string, logger *zap.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure sqlite directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if err := db.AutoMigrate(&reminderRecord{}, &noteRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) InsertReminder(ctx context.Context, r *models.Reminder) error {
	if s.closed.Load() {
		return unavailable("insert reminder", errClosed)
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	rec := reminderRecord{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		TriggerAt: r.TriggerAt,
		Completed: r.Completed,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.logger.Error("Failed to insert reminder", zap.Error(err), zap.String("owner_id", r.OwnerID))
		return unavailable("insert reminder", err)
	}
	return nil
}

func (s *SQLiteStorage) ListReminders(ctx context.Context, ownerID string, limit int) ([]*models.Reminder, error) {
	if s.closed.Load() {
		return nil, unavailable("list reminders", errClosed)
	}

	var recs []reminderRecord
	q := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, unavailable("list reminders", err)
	}

	out := make([]*models.Reminder, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &models.Reminder{
			ID:        rec.ID,
			OwnerID:   rec.OwnerID,
			Content:   rec.Content,
			CreatedAt: rec.CreatedAt,
			TriggerAt: rec.TriggerAt,
			Completed: rec.Completed,
		})
	}
	return out, nil
}

func (s *SQLiteStorage) InsertNote(ctx context.Context, n *models.Note) error {
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

	rec := noteRecord{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Content:   n.Content,
		Category:  string(n.Category),
		CreatedAt: n.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.logger.Error("Failed to insert note", zap.Error(err), zap.String("owner_id", n.OwnerID))
		return unavailable("insert note", err)
	}
	return nil
}

func (s *SQLiteStorage) ListNotes(ctx context.Context, ownerID string, limit int) ([]*models.Note, error) {
	if s.closed.Load() {
		return nil, unavailable("list notes", errClosed)
	}

	var recs []noteRecord
	q := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, unavailable("list notes", err)
	}

	out := make([]*models.Note, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &models.Note{
			ID:        rec.ID,
			OwnerID:   rec.OwnerID,
			Content:   rec.Content,
			Category:  models.NoteCategory(rec.Category),
			CreatedAt: rec.CreatedAt,
		})
	}
	return out, nil
}

func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
