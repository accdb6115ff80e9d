package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/offline-assistant/internal/models"
)

func TestRuleClassifier_Classify(t *testing.T) {
	c := NewRuleClassifier(nil)

	tests := []struct {
		text   string
		intent models.Intent
		lang   models.Language
	}{
		{"Hello there", models.IntentGreeting, models.LanguageEnglish},
		{"goodbye for now", models.IntentFarewell, models.LanguageEnglish},
		{"okay, bye", models.IntentFarewell, models.LanguageEnglish},
		{"remind me to say goodbye to grandma at 5 pm", models.IntentReminderSet, models.LanguageEnglish},
		{"translate good night into french", models.IntentTranslate, models.LanguageEnglish},
		{"خداحافظ", models.IntentFarewell, models.LanguageFarsi},
		{"باشه خداحافظ", models.IntentFarewell, models.LanguageFarsi},
		{"What time is it?", models.IntentTime, models.LanguageEnglish},
		{"what's the date", models.IntentDate, models.LanguageEnglish},
		{"remind me to call mom in 10 minutes", models.IntentReminderSet, models.LanguageEnglish},
		{"what are my reminders", models.IntentReminderList, models.LanguageEnglish},
		{"note that the wifi password is 1234", models.IntentNoteCreate, models.LanguageEnglish},
		{"show my notes", models.IntentNoteList, models.LanguageEnglish},
		{"calculate 5 plus 3", models.IntentCalculate, models.LanguageEnglish},
		{"what is 5 plus 3", models.IntentCalculate, models.LanguageEnglish},
		{"will it be sunny", models.IntentWeather, models.LanguageEnglish},
		{"tell me a joke", models.IntentJoke, models.LanguageEnglish},
		{"translate good morning to spanish", models.IntentGreeting, models.LanguageEnglish},
		{"please translate thank you into french", models.IntentTranslate, models.LanguageEnglish},
		{"what is photosynthesis", models.IntentSearch, models.LanguageEnglish},
		{"can you help", models.IntentHelp, models.LanguageEnglish},
		{"thank you", models.IntentThanks, models.LanguageEnglish},
		{"ساعت چنده؟", models.IntentTime, models.LanguageFarsi},
		{"سلام", models.IntentGreeting, models.LanguageFarsi},
		{"یادآورهای من رو نشون بده", models.IntentReminderList, models.LanguageFarsi},
		{"یادم بنداز که نان بخرم", models.IntentReminderSet, models.LanguageFarsi},
		{"۵ به علاوه ۳", models.IntentCalculate, models.LanguageFarsi},
		{"یه جوک بگو", models.IntentJoke, models.LanguageFarsi},
		{"ممنونم", models.IntentThanks, models.LanguageFarsi},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.lang, got.Language)
			assert.Equal(t, tt.text, got.OriginalText)
			assert.Equal(t, models.MatchConfidence, got.Confidence)
		})
	}
}

func TestRuleClassifier_Unknown(t *testing.T) {
	c := NewRuleClassifier(nil)

	for _, text := range []string{"", "   ", "purple elephants dance", "کتاب قرمز"} {
		got := c.Classify(text)
		assert.Equal(t, models.IntentUnknown, got.Intent, text)
		assert.Equal(t, models.UnknownConfidence, got.Confidence, text)
		assert.NotNil(t, got.Entities)
	}
}

func TestRuleClassifier_ConfidenceIsBinary(t *testing.T) {
	c := NewRuleClassifier(nil)
	inputs := []string{"hi", "weather?", "x", "12 / 0", "who is ada lovelace", "سلام دوست من", "random words"}

	for _, text := range inputs {
		got := c.Classify(text)
		if got.Intent == models.IntentUnknown {
			assert.Equal(t, 0.0, got.Confidence)
		} else {
			assert.Equal(t, 0.9, got.Confidence)
		}
	}
}

func TestRuleClassifier_FirstDeclaredIntentWins(t *testing.T) {
	c := NewRuleClassifier(nil)

	// matches greeting, time, reminder_set and joke patterns
	text := "hello, remind me what time the joke starts"
	for i := 0; i < 20; i++ {
		assert.Equal(t, models.IntentGreeting, c.Classify(text).Intent)
	}

	// "what is" belongs to both calculate and search
	assert.Equal(t, models.IntentCalculate, c.Classify("what is 7 times 6").Intent)
	assert.Equal(t, models.IntentSearch, c.Classify("what is gravity").Intent)
}

func TestTable_Order(t *testing.T) {
	en := Table(models.LanguageEnglish)
	require.NotEmpty(t, en)

	var order []models.Intent
	for _, r := range en {
		order = append(order, r.Intent)
	}
	assert.Equal(t, []models.Intent{
		models.IntentGreeting, models.IntentFarewell, models.IntentTime, models.IntentDate,
		models.IntentReminderSet, models.IntentReminderList, models.IntentNoteCreate, models.IntentNoteList,
		models.IntentCalculate, models.IntentWeather, models.IntentJoke, models.IntentTranslate,
		models.IntentSearch, models.IntentHelp, models.IntentThanks,
	}, order)

	// callers get a copy
	en[0] = Rule{Intent: models.IntentUnknown}
	assert.Equal(t, models.IntentGreeting, Table(models.LanguageEnglish)[0].Intent)

	fa := Table(models.LanguageFarsi)
	assert.Equal(t, models.IntentReminderList, fa[4].Intent)
	assert.Equal(t, models.IntentReminderSet, fa[5].Intent)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "what time is it?", Normalize("  What TIME is it?  "))
	assert.Equal(t, "12 + 3", Normalize("۱۲ + ۳"))
	assert.Equal(t, "یادآوری ها", Normalize("یادآوری\u200cها"))
	// presentation form lam-alef folds to the base letters
	assert.Equal(t, "لا", Normalize("ﻻ"))
}
