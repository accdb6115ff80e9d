package conversation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/offline-assistant/internal/metrics"
	"github.com/xaenox/offline-assistant/internal/models"
	"github.com/xaenox/offline-assistant/internal/responder"
	"github.com/xaenox/offline-assistant/internal/storage"
)

var fixedNow = time.Date(2024, 3, 5, 15, 4, 0, 0, time.UTC)

func newTestSession(t *testing.T, opts ...Option) (*Session, storage.Gateway) {
	t.Helper()
	store := storage.NewMemoryStorage()
	clock := func() time.Time { return fixedNow }
	engine := responder.New(store,
		responder.WithRand(rand.New(rand.NewSource(1))),
		responder.WithClock(clock),
	)
	opts = append([]Option{WithID("local"), WithClock(clock)}, opts...)
	return New(engine, opts...), store
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeHybrid, "hybrid": ModeHybrid, "intent": ModeIntent, "conversational": ModeConversational} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("chatty")
	assert.Error(t, err)
}

func TestSession_MemoryOverride(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.Handle(ctx, "My name is Alex")
	require.NoError(t, err)
	_, err = s.Handle(ctx, "My name is Sam")
	require.NoError(t, err)

	assert.Equal(t, "Sam", s.Facts()[models.FactUserName])

	reply, err := s.Handle(ctx, "what's my name")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Sam")
	assert.Equal(t, RegimeConversational, reply.Regime)
}

func TestSession_Time(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	reply, err := s.Handle(ctx, "what time is it?")
	require.NoError(t, err)
	assert.Equal(t, "It's 3:04 PM.", reply.Text)
	assert.Contains(t, reply.Text, "PM")
	assert.Equal(t, models.LanguageEnglish, reply.Language)
	assert.Equal(t, models.IntentTime, reply.Intent)

	reply, err = s.Handle(ctx, "ساعت چنده؟")
	require.NoError(t, err)
	assert.Equal(t, "ساعت الان 15:04 است", reply.Text)
	assert.Equal(t, models.LanguageFarsi, reply.Language)
}

func TestSession_Math(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	reply, err := s.Handle(ctx, "calculate 5 plus 3")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "8")
	assert.Equal(t, models.IntentCalculate, reply.Intent)

	reply, err = s.Handle(ctx, "12 * 4")
	require.NoError(t, err)
	assert.Equal(t, "12 × 4 = 48", reply.Text)

	reply, err = s.Handle(ctx, "12 / 0")
	require.NoError(t, err)
	assert.Equal(t, "I can't divide by zero.", reply.Text)
}

func TestSession_MathKeywords(t *testing.T) {
	tests := []struct {
		text string
		want string
		lang models.Language
	}{
		{"what is 2 to the 10", "2 ^ 10 = 1024", models.LanguageEnglish},
		{"2 to the power of 3", "2 ^ 3 = 8", models.LanguageEnglish},
		{"2 power 3", "2 ^ 3 = 8", models.LanguageEnglish},
		{"what's 10 remainder 3", "10 mod 3 = 1", models.LanguageEnglish},
		{"what is 10 divide 4", "10 ÷ 4 = 2.5", models.LanguageEnglish},
		{"10 divided by 4", "10 ÷ 4 = 2.5", models.LanguageEnglish},
		{"10 multiply 3", "10 × 3 = 30", models.LanguageEnglish},
		{"7 add 5", "7 + 5 = 12", models.LanguageEnglish},
		{"10 subtract 4", "10 - 4 = 6", models.LanguageEnglish},
		{"20 percent of 50", "20% of 50 = 10", models.LanguageEnglish},
		{"2 ^ 5000", "That number is too large for me to work out.", models.LanguageEnglish},
		{"۲ به توان ۱۰", "نتیجه: 2 ^ 10 = 1024", models.LanguageFarsi},
		{"۱۰ باقیمانده ۳", "نتیجه: 10 mod 3 = 1", models.LanguageFarsi},
		{"۲۰ درصد ۵۰", "نتیجه: 20% of 50 = 10", models.LanguageFarsi},
		{"۱۲ ضربدر ۴", "نتیجه: 12 × 4 = 48", models.LanguageFarsi},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s, _ := newTestSession(t)
			require.Equal(t, ModeHybrid, s.Mode())

			reply, err := s.Handle(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
			assert.Equal(t, tt.lang, reply.Language)
		})
	}
}

func TestSession_ReminderFlow(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()

	reply, err := s.Handle(ctx, "remind me to call mom in 10 minutes")
	require.NoError(t, err)
	assert.Equal(t, models.IntentReminderSet, reply.Intent)
	assert.Equal(t, RegimeTemplate, reply.Regime)
	assert.Contains(t, reply.Text, "Reminder set: call mom")

	stored, err := store.ListReminders(ctx, "local", 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, fixedNow.Add(10*time.Minute), stored[0].TriggerAt)

	reply, err = s.Handle(ctx, "what are my reminders")
	require.NoError(t, err)
	assert.Equal(t, models.IntentReminderList, reply.Intent)
	assert.Contains(t, reply.Text, "• call mom")
}

func TestSession_ReminderMentioningGoodbye(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()

	reply, err := s.Handle(ctx, "remind me to say goodbye to grandma at 5 pm")
	require.NoError(t, err)
	assert.Equal(t, models.IntentReminderSet, reply.Intent)
	assert.Contains(t, reply.Text, "Reminder set: say goodbye to grandma")

	stored, err := store.ListReminders(ctx, "local", 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	reply, err = s.Handle(ctx, "ok bye")
	require.NoError(t, err)
	assert.Equal(t, models.IntentFarewell, reply.Intent)
}

func TestSession_Modes(t *testing.T) {
	ctx := context.Background()

	intent, _ := newTestSession(t, WithMode(ModeIntent))
	reply, err := intent.Handle(ctx, "12 * 4")
	require.NoError(t, err)
	assert.Equal(t, RegimeTemplate, reply.Regime)
	assert.Equal(t, "12 × 4 = 48", reply.Text)

	conv, store := newTestSession(t, WithMode(ModeConversational))
	reply, err = conv.Handle(ctx, "remind me to water the plants")
	require.NoError(t, err)
	assert.Equal(t, RegimeConversational, reply.Regime)

	stored, err := store.ListReminders(ctx, "local", 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSession_HistoryBound(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	for i := 1; i <= 11; i++ {
		_, err := s.Handle(ctx, fmt.Sprintf("tell me a joke %d", i))
		require.NoError(t, err)
	}

	h := s.History()
	require.Len(t, h, 10)
	assert.Equal(t, "tell me a joke 2", h[0].User)
	assert.Equal(t, "tell me a joke 11", h[9].User)
}

func TestSession_Reset(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.Handle(ctx, "my name is Sam and I live in Paris")
	require.NoError(t, err)
	require.NotEmpty(t, s.Facts())
	require.Len(t, s.History(), 1)

	s.Reset()
	assert.Empty(t, s.Facts())
	assert.Empty(t, s.History())

	reply, err := s.Handle(ctx, "what's my name")
	require.NoError(t, err)
	assert.NotContains(t, reply.Text, "Sam")
}

func TestSession_Cancelled(t *testing.T) {
	s, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Handle(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.History())
}

func TestSession_ConcurrentTurnsAreSerialized(t *testing.T) {
	s, _ := newTestSession(t, WithHistorySize(100))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Handle(ctx, fmt.Sprintf("tell me a fact %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.History(), 20)
}

func TestSession_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	s, _ := newTestSession(t, WithMetrics(m))
	_, err = s.Handle(context.Background(), "hello")
	require.NoError(t, err)
	_, err = s.Handle(context.Background(), "سلام")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "assistant_turns_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(reg, "assistant_intents_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSessions_AreIndependent(t *testing.T) {
	a, _ := newTestSession(t)
	b, _ := newTestSession(t)
	ctx := context.Background()

	_, err := a.Handle(ctx, "my name is Alex")
	require.NoError(t, err)

	assert.Equal(t, "Alex", a.Facts()[models.FactUserName])
	assert.Empty(t, b.Facts())
}
