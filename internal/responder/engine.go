// Package responder turns a classified or raw utterance into reply text.
//
// Two regimes exist. The template regime (Respond) answers a classifier
// result, persisting reminders and notes when asked to. The conversational
// regime (Generate) walks an ordered rule table over the raw text and uses
// the session's memory and history. Neither returns an error: every failure
// is logged and turned into the localized apology.
package responder

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/metrics"
	"github.com/xaenox/offline-assistant/internal/models"
	"github.com/xaenox/offline-assistant/internal/storage"
)

const (
	DefaultListLimit = 5

	// DefaultReminderDelay applies when a reminder names no time.
	DefaultReminderDelay = time.Hour
)

type Engine struct {
	store     storage.Gateway
	logger    *zap.Logger
	metrics   *metrics.Collector
	now       func() time.Time
	listLimit int

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Engine)

// WithRand pins reply selection, mostly for tests.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithListLimit caps how many reminders or notes a reply lists.
func WithListLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.listLimit = n
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// New builds an engine over store. A nil store keeps reminders and notes in
// memory.
func New(store storage.Gateway, opts ...Option) *Engine {
	if store == nil {
		store = storage.NewMemoryStorage()
	}
	e := &Engine{
		store:     store,
		logger:    zap.NewNop(),
		now:       time.Now,
		listLimit: DefaultListLimit,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pick returns a uniformly random entry. Consecutive picks may repeat.
func (e *Engine) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return options[e.rng.Intn(len(options))]
}

func (e *Engine) apology(lang models.Language) string {
	return BankFor(lang).Messages.Apology
}

// recoverTo turns a panic inside a regime into the apology.
func (e *Engine) recoverTo(reply *string, lang models.Language, regime string) {
	if r := recover(); r != nil {
		e.logger.Error("Response generation panicked",
			zap.String("regime", regime),
			zap.String("language", string(lang)),
			zap.String("error", fmt.Sprint(r)))
		e.metrics.Failure(metrics.FailurePanic)
		*reply = e.apology(lang)
	}
}

func (e *Engine) formatTime(lang models.Language) string {
	m := BankFor(lang).Messages
	return fmt.Sprintf(m.Time, e.now().Format(m.TimeLayout))
}

func (e *Engine) formatDate(lang models.Language) string {
	m := BankFor(lang).Messages
	now := e.now()
	return fmt.Sprintf(m.Date,
		m.Weekdays[int(now.Weekday())],
		now.Day(),
		m.Months[int(now.Month())-1],
		now.Year())
}

func bulleted(header string, items []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, item := range items {
		sb.WriteString("\n• ")
		sb.WriteString(item)
	}
	return sb.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
