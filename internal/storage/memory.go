package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xaenox/offline-assistant/internal/models"
)

// MemoryStorage keeps everything in process. Rows are appended in insertion
// order, so listing walks each owner's slice backwards.
type MemoryStorage struct {
	mu        sync.RWMutex
	reminders map[string][]models.Reminder
	notes     map[string][]models.Note
	closed    bool
	now       func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		reminders: make(map[string][]models.Reminder),
		notes:     make(map[string][]models.Note),
		now:       time.Now,
	}
}

func (s *MemoryStorage) InsertReminder(ctx context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return unavailable("insert reminder", errClosed)
	}

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.reminders[r.OwnerID] = append(s.reminders[r.OwnerID], *r)
	return nil
}

func (s *MemoryStorage) ListReminders(ctx context.Context, ownerID string, limit int) ([]*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, unavailable("list reminders", errClosed)
	}

	rows := s.reminders[ownerID]
	out := make([]*models.Reminder, 0, capped(len(rows), limit))
	for i := len(rows) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		r := rows[i]
		out = append(out, &r)
	}
	return out, nil
}

func (s *MemoryStorage) InsertNote(ctx context.Context, n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return unavailable("insert note", errClosed)
	}

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if n.Category == "" {
		n.Category = models.GeneralNote
	}
	s.notes[n.OwnerID] = append(s.notes[n.OwnerID], *n)
	return nil
}

func (s *MemoryStorage) ListNotes(ctx context.Context, ownerID string, limit int) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, unavailable("list notes", errClosed)
	}

	rows := s.notes[ownerID]
	out := make([]*models.Note, 0, capped(len(rows), limit))
	for i := len(rows) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		n := rows[i]
		out = append(out, &n)
	}
	return out, nil
}

func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func capped(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}
