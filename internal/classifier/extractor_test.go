package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/offline-assistant/internal/models"
)

func TestExtract_Reminder(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		lang    models.Language
		time    string
		content string
	}{
		{
			name:    "relative minutes",
			text:    "remind me to call mom in 10 minutes",
			lang:    models.LanguageEnglish,
			time:    "in 10 minutes",
			content: "call mom in 10 minutes",
		},
		{
			name:    "clock time",
			text:    "Remind me to take my pills at 8:30 pm",
			lang:    models.LanguageEnglish,
			time:    "at 8:30 pm",
			content: "take my pills at 8:30 pm",
		},
		{
			name:    "hour with meridiem",
			text:    "remind me to stretch at 7pm",
			lang:    models.LanguageEnglish,
			time:    "at 7pm",
			content: "stretch at 7pm",
		},
		{
			name:    "day part",
			text:    "remind me to water the plants tomorrow",
			lang:    models.LanguageEnglish,
			time:    "tomorrow",
			content: "water the plants tomorrow",
		},
		{
			name:    "relative beats day part",
			text:    "tomorrow remind me to leave in 2 hours",
			lang:    models.LanguageEnglish,
			time:    "in 2 hours",
			content: "leave in 2 hours",
		},
		{
			name:    "farsi",
			text:    "یادم بنداز که ۱۰ دقیقه دیگه به مامان زنگ بزنم",
			lang:    models.LanguageFarsi,
			time:    "10 دقیقه دیگه",
			content: "۱۰ دقیقه دیگه به مامان زنگ بزنم",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, models.IntentReminderSet, tt.lang)
			assert.Equal(t, tt.time, got[EntityTime])
			assert.Equal(t, tt.content, got[EntityContent])
		})
	}
}

func TestExtract_ReminderWithoutContentOrTime(t *testing.T) {
	got := Extract("set a reminder", models.IntentReminderSet, models.LanguageEnglish)
	assert.NotContains(t, got, EntityContent)
	assert.NotContains(t, got, EntityTime)
}

func TestExtract_FirstOccurrence(t *testing.T) {
	got := Extract("remind me to say remind me to twice", models.IntentReminderSet, models.LanguageEnglish)
	assert.Equal(t, "say remind me to twice", got[EntityContent])
}

func TestExtract_Note(t *testing.T) {
	got := Extract("Note that the gate code is 4521.", models.IntentNoteCreate, models.LanguageEnglish)
	assert.Equal(t, "the gate code is 4521", got[EntityContent])

	got = Extract("take note: buy milk", models.IntentNoteCreate, models.LanguageEnglish)
	assert.Equal(t, "buy milk", got[EntityContent])

	got = Extract("یادداشت کن که جلسه لغو شد", models.IntentNoteCreate, models.LanguageFarsi)
	assert.Equal(t, "جلسه لغو شد", got[EntityContent])
}

func TestExtract_Calculate(t *testing.T) {
	got := Extract("calculate 5 plus 3", models.IntentCalculate, models.LanguageEnglish)
	assert.Equal(t, map[string]string{
		EntityExpression: "5 plus 3",
		EntityOperand1:   "5",
		EntityOperator:   "plus",
		EntityOperand2:   "3",
	}, got)

	got = Extract("۱۲ * ۴", models.IntentCalculate, models.LanguageFarsi)
	assert.Equal(t, "12 * 4", got[EntityExpression])

	assert.Empty(t, Extract("calculate something", models.IntentCalculate, models.LanguageEnglish))
}

func TestExtract_Translate(t *testing.T) {
	got := Extract("translate good night into French", models.IntentTranslate, models.LanguageEnglish)
	assert.Equal(t, "good night into French", got[EntityText])
	assert.Equal(t, "french", got[EntityTargetLanguage])

	got = Extract("translate", models.IntentTranslate, models.LanguageEnglish)
	assert.Empty(t, got)
}

func TestExtract_OtherIntentsHaveNoEntities(t *testing.T) {
	assert.Empty(t, Extract("hello", models.IntentGreeting, models.LanguageEnglish))
}

func TestResolveTime(t *testing.T) {
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		expr string
		want time.Time
	}{
		{"in 10 minutes", now.Add(10 * time.Minute)},
		{"in 1 hour", now.Add(time.Hour)},
		{"at 30 secs", now.Add(30 * time.Second)},
		{"in 2 days", now.Add(48 * time.Hour)},
		{"at 8:30 pm", time.Date(2026, 10, 15, 20, 30, 0, 0, time.UTC)},
		{"at 9am", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
		{"at 12 am", time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
		{"tonight", time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)},
		{"today", now.Add(time.Hour)},
		{"evening", time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)},
		{"morning", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
		{"10 دقیقه دیگه", now.Add(10 * time.Minute)},
		{"۲ ساعت دیگه", now.Add(2 * time.Hour)},
		{"ساعت 16:45", time.Date(2026, 10, 15, 16, 45, 0, 0, time.UTC)},
		{"فردا", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := ResolveTime(tt.expr, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ResolveTime("", now)
	assert.False(t, ok)
	_, ok = ResolveTime("someday", now)
	assert.False(t, ok)
	_, ok = ResolveTime("at 25:00", now)
	assert.False(t, ok)
}
