package models

import (
	"time"

	"github.com/google/uuid"
)

// Language is the tag of a detected input language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFarsi   Language = "fa"
)

// Utterance is one transcribed user turn.
type Utterance struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Language  Language  `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUtterance(text string, lang Language, at time.Time) Utterance {
	return Utterance{
		ID:        uuid.New().String(),
		Text:      text,
		Language:  lang,
		Timestamp: at,
	}
}

// Intent is the category of a user request.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentFarewell     Intent = "farewell"
	IntentTime         Intent = "time"
	IntentDate         Intent = "date"
	IntentReminderSet  Intent = "reminder_set"
	IntentReminderList Intent = "reminder_list"
	IntentNoteCreate   Intent = "note_create"
	IntentNoteList     Intent = "note_list"
	IntentCalculate    Intent = "calculate"
	IntentWeather      Intent = "weather"
	IntentJoke         Intent = "joke"
	IntentTranslate    Intent = "translate"
	IntentSearch       Intent = "search"
	IntentHelp         Intent = "help"
	IntentThanks       Intent = "thanks"
	IntentUnknown      Intent = "unknown"
)

const (
	MatchConfidence   = 0.9
	UnknownConfidence = 0.0
)

// IntentResult is the outcome of classifying one utterance
type IntentResult struct {
	Intent       Intent            `json:"intent"`
	Confidence   float64           `json:"confidence"`
	Language     Language          `json:"language"`
	OriginalText string            `json:"original_text"`
	Entities     map[string]string `json:"entities"`
}

// Entity returns the extracted value for key, or "" when absent.
func (r IntentResult) Entity(key string) string {
	if r.Entities == nil {
		return ""
	}
	return r.Entities[key]
}

// Turn is one (user, assistant) exchange kept in conversation history.
type Turn struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	At        time.Time `json:"at"`
}
