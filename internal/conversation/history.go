package conversation

import "github.com/xaenox/offline-assistant/internal/models"

const DefaultHistorySize = 10

// History is a bounded FIFO of turns, oldest first. It is not safe for
// concurrent use; Session guards it.
type History struct {
	turns    []models.Turn
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		turns:    make([]models.Turn, 0, capacity),
		capacity: capacity,
	}
}

// Append adds t, evicting the oldest turn when full.
func (h *History) Append(t models.Turn) {
	if len(h.turns) == h.capacity {
		copy(h.turns, h.turns[1:])
		h.turns = h.turns[:len(h.turns)-1]
	}
	h.turns = append(h.turns, t)
}

// Turns returns a copy, oldest first.
func (h *History) Turns() []models.Turn {
	out := make([]models.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Last() (models.Turn, bool) {
	if len(h.turns) == 0 {
		return models.Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

func (h *History) Len() int { return len(h.turns) }

func (h *History) Cap() int { return h.capacity }

func (h *History) Clear() {
	h.turns = h.turns[:0]
}
