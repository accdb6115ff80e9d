// Package conversation runs the per-turn pipeline for one user: classify,
// remember, respond, record.
package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/classifier"
	"github.com/xaenox/offline-assistant/internal/language"
	"github.com/xaenox/offline-assistant/internal/memory"
	"github.com/xaenox/offline-assistant/internal/metrics"
	"github.com/xaenox/offline-assistant/internal/models"
	"github.com/xaenox/offline-assistant/internal/responder"
)

// Mode picks which response regime answers a turn.
type Mode string

const (
	// ModeHybrid sends reminder and note intents to the template regime and
	// everything else to the conversational regime.
	ModeHybrid         Mode = "hybrid"
	ModeIntent         Mode = "intent"
	ModeConversational Mode = "conversational"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeHybrid, ModeIntent, ModeConversational:
		return m, nil
	case "":
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

const (
	RegimeTemplate       = "template"
	RegimeConversational = "conversational"
)

type Reply struct {
	Text     string
	Language models.Language
	Intent   models.Intent
	Regime   string
}

// Session owns one user's memory and history. Turns are serialized.
type Session struct {
	id              string
	mode            Mode
	classifier      classifier.Classifier
	engine          *responder.Engine
	strictThreshold float64
	logger          *zap.Logger
	metrics         *metrics.Collector
	now             func() time.Time

	mu      sync.Mutex
	memory  *memory.Memory
	history *History
}

type Option func(*Session)

// WithID sets the owner id used to scope reminders and notes.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithMode(m Mode) Option {
	return func(s *Session) { s.mode = m }
}

func WithHistorySize(n int) Option {
	return func(s *Session) { s.history = NewHistory(n) }
}

func WithClassifier(c classifier.Classifier) Option {
	return func(s *Session) { s.classifier = c }
}

func WithStrictThreshold(th float64) Option {
	return func(s *Session) { s.strictThreshold = th }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(engine *responder.Engine, opts ...Option) *Session {
	s := &Session{
		id:              uuid.New().String(),
		mode:            ModeHybrid,
		engine:          engine,
		strictThreshold: language.DefaultStrictThreshold,
		logger:          zap.NewNop(),
		now:             time.Now,
		memory:          memory.New(),
		history:         NewHistory(DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		s.classifier = classifier.NewRuleClassifier(s.logger)
	}
	if s.engine == nil {
		s.engine = responder.New(nil, responder.WithLogger(s.logger), responder.WithClock(s.now))
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Mode() Mode { return s.mode }

// Handle runs one turn. A context that is already done stops the turn before
// it starts; once started, the turn always completes with a reply.
func (s *Session) Handle(ctx context.Context, text string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	started := time.Now()
	utt := models.NewUtterance(text, language.Detect(text), s.now())

	result := s.classifier.Classify(text)
	s.metrics.Intent(string(result.Intent))
	s.memory.Update(text)

	reply := Reply{Intent: result.Intent, Regime: s.regimeFor(result.Intent)}
	switch reply.Regime {
	case RegimeTemplate:
		reply.Language = result.Language
		reply.Text = s.engine.Respond(ctx, responder.TemplateInput{
			Result:  result,
			OwnerID: s.id,
		})
	default:
		reply.Language = language.DetectStrict(text, s.strictThreshold)
		reply.Text = s.engine.Generate(ctx, responder.ConversationInput{
			Text:     text,
			Language: reply.Language,
			History:  s.history.Turns(),
			Memory:   s.memory,
		})
	}

	s.history.Append(models.Turn{User: text, Assistant: reply.Text, At: utt.Timestamp})

	took := time.Since(started)
	s.metrics.Turn(string(reply.Language), reply.Regime, took)
	s.logger.Debug("Turn handled",
		zap.String("session_id", s.id),
		zap.String("utterance_id", utt.ID),
		zap.String("intent", string(result.Intent)),
		zap.String("regime", reply.Regime),
		zap.String("language", string(reply.Language)),
		zap.Duration("took", took))

	return reply, nil
}

func (s *Session) regimeFor(intent models.Intent) string {
	switch s.mode {
	case ModeIntent:
		return RegimeTemplate
	case ModeConversational:
		return RegimeConversational
	}

	switch intent {
	case models.IntentReminderSet, models.IntentReminderList, models.IntentNoteCreate, models.IntentNoteList:
		return RegimeTemplate
	}
	return RegimeConversational
}

// Reset forgets memory and history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Clear()
	s.history.Clear()
	s.logger.Info("Session reset", zap.String("session_id", s.id))
}

func (s *Session) Facts() map[models.FactKey]string {
	return s.memory.Facts()
}

func (s *Session) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Turns()
}
