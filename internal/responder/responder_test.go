package responder

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/offline-assistant/internal/classifier"
	"github.com/xaenox/offline-assistant/internal/models"
	"github.com/xaenox/offline-assistant/internal/storage"
)

// Tuesday afternoon.
var fixedNow = time.Date(2024, 3, 5, 15, 4, 0, 0, time.UTC)

func newTestEngine(t *testing.T, store storage.Gateway) *Engine {
	t.Helper()
	return New(store,
		WithRand(rand.New(rand.NewSource(42))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func classify(text string) models.IntentResult {
	return classifier.NewRuleClassifier(nil).Classify(text)
}

type panickingStore struct{ storage.Gateway }

func (panickingStore) ListNotes(context.Context, string, int) ([]*models.Note, error) {
	panic("boom")
}

func TestBanksLoad(t *testing.T) {
	for _, lang := range []models.Language{models.LanguageEnglish, models.LanguageFarsi} {
		b := BankFor(lang)
		require.NotNil(t, b)
		assert.NotEmpty(t, b.Phrases.Jokes)
		assert.NotEmpty(t, b.Defaults.Statement)
		assert.NotEmpty(t, b.Messages.FactLabels[models.FactUserName])
	}
	assert.Equal(t, "Sorry, something went wrong.", BankFor(models.LanguageEnglish).Messages.Apology)
	assert.Equal(t, "متأسفم، مشکلی پیش آمد.", BankFor(models.LanguageFarsi).Messages.Apology)
	assert.Same(t, BankFor(models.LanguageEnglish), BankFor("de"))
}

func TestRespond_TimeAndDate(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		intent models.Intent
		lang   models.Language
		want   string
	}{
		{models.IntentTime, models.LanguageEnglish, "It's 3:04 PM."},
		{models.IntentTime, models.LanguageFarsi, "ساعت الان 15:04 است"},
		{models.IntentDate, models.LanguageEnglish, "Today is Tuesday, March 5, 2024."},
		{models.IntentDate, models.LanguageFarsi, "امروز سه شنبه، 5 مارس 2024 است"},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent)+"/"+string(tt.lang), func(t *testing.T) {
			got := e.Respond(ctx, TemplateInput{Result: models.IntentResult{Intent: tt.intent, Language: tt.lang}})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRespond_Calculate(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	tests := []struct {
		text string
		lang models.Language
		want string
	}{
		{"calculate 5 plus 3", models.LanguageEnglish, "5 + 3 = 8"},
		{"what is 10 divided by 4", models.LanguageEnglish, "10 ÷ 4 = 2.5"},
		{"12 / 0", models.LanguageEnglish, "I can't divide by zero."},
		{"calculate something", models.LanguageEnglish, BankFor(models.LanguageEnglish).Messages.CalcError},
		{"۵ به علاوه ۳", models.LanguageFarsi, "نتیجه: 5 + 3 = 8"},
		{"۷ تقسیم بر ۰", models.LanguageFarsi, "تقسیم بر صفر ممکن نیست."},
		{"10 ^ 400", models.LanguageEnglish, "That number is too large for me to work out."},
		{"۲ به توان ۵۰۰۰", models.LanguageFarsi, "این عدد برای محاسبه خیلی بزرگ است."},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res := models.IntentResult{Intent: models.IntentCalculate, Language: tt.lang, OriginalText: tt.text}
			assert.Equal(t, tt.want, e.Respond(ctx, TemplateInput{Result: res}))
		})
	}
}

func TestRespond_ReminderFlow(t *testing.T) {
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)
	ctx := context.Background()

	res := classify("remind me to call mom in 10 minutes")
	require.Equal(t, models.IntentReminderSet, res.Intent)

	got := e.Respond(ctx, TemplateInput{Result: res, OwnerID: "local"})
	assert.Equal(t, "Reminder set: call mom in 10 minutes\n\nYour reminders:\n• call mom in 10 minutes", got)

	stored, err := store.ListReminders(ctx, "local", 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, fixedNow.Add(10*time.Minute), stored[0].TriggerAt)
	assert.Equal(t, fixedNow, stored[0].CreatedAt)

	list := classify("what are my reminders")
	require.Equal(t, models.IntentReminderList, list.Intent)
	got = e.Respond(ctx, TemplateInput{Result: list, OwnerID: "local"})
	assert.Contains(t, got, "• call mom")

	other := e.Respond(ctx, TemplateInput{Result: list, OwnerID: "someone-else"})
	assert.Equal(t, "You don't have any reminders yet.", other)
}

func TestRespond_ReminderDefaults(t *testing.T) {
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)
	ctx := context.Background()

	res := models.IntentResult{
		Intent:       models.IntentReminderSet,
		Language:     models.LanguageEnglish,
		OriginalText: "  set a reminder  ",
		Entities:     map[string]string{},
	}
	got := e.Respond(ctx, TemplateInput{Result: res, OwnerID: "u"})
	assert.True(t, strings.HasPrefix(got, "Reminder set: set a reminder\n\n"))

	stored, err := store.ListReminders(ctx, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(DefaultReminderDelay), stored[0].TriggerAt)
}

func TestRespond_ListCappedNewestFirst(t *testing.T) {
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		require.NoError(t, store.InsertNote(ctx, &models.Note{
			OwnerID:   "u",
			Content:   "note " + string(rune('0'+i)),
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Second),
		}))
	}

	got := e.Respond(ctx, TemplateInput{
		Result:  models.IntentResult{Intent: models.IntentNoteList, Language: models.LanguageEnglish},
		OwnerID: "u",
	})
	assert.Equal(t, "Your notes:\n• note 7\n• note 6\n• note 5\n• note 4\n• note 3", got)
}

func TestRespond_NoteCreate(t *testing.T) {
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)
	ctx := context.Background()

	got := e.Respond(ctx, TemplateInput{Result: classify("take a note buy oat milk"), OwnerID: "u"})
	assert.Equal(t, "Note saved: buy oat milk\n\nYour notes:\n• buy oat milk", got)

	got = e.Respond(ctx, TemplateInput{Result: classify("یادداشت کن نان بخرم"), OwnerID: "u"})
	assert.True(t, strings.HasPrefix(got, "یادداشت ذخیره شد: نان بخرم"))
	assert.Contains(t, got, "• نان بخرم\n• buy oat milk")
}

func TestRespond_PersistenceFailure(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Close())
	e := newTestEngine(t, store)
	ctx := context.Background()

	got := e.Respond(ctx, TemplateInput{Result: classify("remind me to stretch"), OwnerID: "u"})
	assert.Equal(t, "Sorry, something went wrong.", got)

	got = e.Respond(ctx, TemplateInput{Result: classify("یادآورهای من"), OwnerID: "u"})
	assert.Equal(t, "متأسفم، مشکلی پیش آمد.", got)
}

func TestRespond_RecoversPanics(t *testing.T) {
	e := newTestEngine(t, panickingStore{Gateway: storage.NewMemoryStorage()})

	got := e.Respond(context.Background(), TemplateInput{
		Result: models.IntentResult{Intent: models.IntentNoteList, Language: models.LanguageEnglish},
	})
	assert.Equal(t, "Sorry, something went wrong.", got)
}

func TestRespond_Translate(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	got := e.Respond(ctx, TemplateInput{Result: classify("translate thank you very much into french")})
	assert.Equal(t, `I can't translate "thank you very much into french" into french while offline.`, got)

	got = e.Respond(ctx, TemplateInput{Result: models.IntentResult{Intent: models.IntentTranslate, Language: models.LanguageEnglish}})
	assert.Equal(t, "What would you like me to translate?", got)
}

func TestRespond_CannedIntents(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	for _, lang := range []models.Language{models.LanguageEnglish, models.LanguageFarsi} {
		b := BankFor(lang)
		for _, intent := range []models.Intent{models.IntentGreeting, models.IntentWeather, models.IntentSearch, models.IntentThanks, models.IntentUnknown} {
			got := e.Respond(ctx, TemplateInput{Result: models.IntentResult{Intent: intent, Language: lang}})
			assert.Contains(t, b.Intents[intent], got, "%s/%s", lang, intent)
		}
	}
}

func TestPick_SeedIsDeterministic(t *testing.T) {
	a := New(nil, WithRand(rand.New(rand.NewSource(7))))
	b := New(nil, WithRand(rand.New(rand.NewSource(7))))
	jokes := BankFor(models.LanguageEnglish).Phrases.Jokes

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.pick(jokes), b.pick(jokes))
	}
	assert.Equal(t, "", a.pick(nil))
}

func TestLookup_LongestKeyWins(t *testing.T) {
	entries := map[string]string{"hole": "short", "black hole": "long", "sun": "star"}

	got, ok := lookup(entries, "a black hole")
	assert.True(t, ok)
	assert.Equal(t, "long", got)

	_, ok = lookup(entries, "sunday")
	assert.False(t, ok)
}
