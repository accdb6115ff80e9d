package responder

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xaenox/offline-assistant/internal/models"
)

//go:embed banks/*.yaml
var bankFS embed.FS

// Messages are the fixed, non-random strings of one language. Most are
// fmt templates.
type Messages struct {
	Apology            string                    `yaml:"apology"`
	Empty              string                    `yaml:"empty"`
	CalcResult         string                    `yaml:"calc_result"`
	CalcError          string                    `yaml:"calc_error"`
	DivideByZero       string                    `yaml:"divide_by_zero"`
	CalcTooLarge       string                    `yaml:"calc_too_large"`
	Time               string                    `yaml:"time"`
	TimeLayout         string                    `yaml:"time_layout"`
	Date               string                    `yaml:"date"`
	ReminderSet        string                    `yaml:"reminder_set"`
	RemindersHeader    string                    `yaml:"reminders_header"`
	NoReminders        string                    `yaml:"no_reminders"`
	NoteSaved          string                    `yaml:"note_saved"`
	NotesHeader        string                    `yaml:"notes_header"`
	NoNotes            string                    `yaml:"no_notes"`
	TranslateOffline   string                    `yaml:"translate_offline"`
	TranslateOfflineTo string                    `yaml:"translate_offline_to"`
	TranslateMissing   string                    `yaml:"translate_missing"`
	NothingToRepeat    string                    `yaml:"nothing_to_repeat"`
	NothingBefore      string                    `yaml:"nothing_before"`
	NameKnown          string                    `yaml:"name_known"`
	NameUnknown        string                    `yaml:"name_unknown"`
	LikesKnown         string                    `yaml:"likes_known"`
	LikesUnknown       string                    `yaml:"likes_unknown"`
	LocationKnown      string                    `yaml:"location_known"`
	LocationUnknown    string                    `yaml:"location_unknown"`
	JobKnown           string                    `yaml:"job_known"`
	JobUnknown         string                    `yaml:"job_unknown"`
	AboutYou           string                    `yaml:"about_you"`
	AboutYouEmpty      string                    `yaml:"about_you_empty"`
	WhoUnknown         string                    `yaml:"who_unknown"`
	HowUnknown         string                    `yaml:"how_unknown"`
	WhyUnknown         string                    `yaml:"why_unknown"`
	FactLabels         map[models.FactKey]string `yaml:"fact_labels"`
	Weekdays           []string                  `yaml:"weekdays"`
	Months             []string                  `yaml:"months"`
}

type Phrases struct {
	Greetings      []string `yaml:"greetings"`
	GreetingsNamed []string `yaml:"greetings_named"`
	HowAreYou      []string `yaml:"how_are_you"`
	Farewells      []string `yaml:"farewells"`
	FarewellsNamed []string `yaml:"farewells_named"`
	Thanks         []string `yaml:"thanks"`
	NiceToMeet     []string `yaml:"nice_to_meet"`
	StateLike      []string `yaml:"state_like"`
	StateLocation  []string `yaml:"state_location"`
	StateJob       []string `yaml:"state_job"`
	Jokes          []string `yaml:"jokes"`
	Facts          []string `yaml:"facts"`
	Quotes         []string `yaml:"quotes"`
	Stories        []string `yaml:"stories"`
	Riddles        []string `yaml:"riddles"`
	Trivia         []string `yaml:"trivia"`
	Advice         []string `yaml:"advice"`
	Identity       []string `yaml:"identity"`
	Capabilities   []string `yaml:"capabilities"`
	Weather        []string `yaml:"weather"`
}

type Defaults struct {
	Question       []string `yaml:"question"`
	Statement      []string `yaml:"statement"`
	QuestionNamed  []string `yaml:"question_named"`
	StatementNamed []string `yaml:"statement_named"`
}

// Bank is all static reply data for one language.
type Bank struct {
	Messages  Messages                   `yaml:"messages"`
	Phrases   Phrases                    `yaml:"phrases"`
	Defaults  Defaults                   `yaml:"defaults"`
	Knowledge map[string]string          `yaml:"knowledge"`
	People    map[string]string          `yaml:"people"`
	HowTo     map[string]string          `yaml:"how_to"`
	Why       map[string]string          `yaml:"why"`
	Intents   map[models.Intent][]string `yaml:"intents"`
}

var banks = map[models.Language]*Bank{
	models.LanguageEnglish: mustLoadBank("banks/en.yaml"),
	models.LanguageFarsi:   mustLoadBank("banks/fa.yaml"),
}

// BankFor returns the bank for lang, falling back to English.
func BankFor(lang models.Language) *Bank {
	if b, ok := banks[lang]; ok {
		return b
	}
	return banks[models.LanguageEnglish]
}

func mustLoadBank(name string) *Bank {
	b, err := loadBank(name)
	if err != nil {
		panic(err)
	}
	return b
}

func loadBank(name string) (*Bank, error) {
	data, err := bankFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read bank %s: %w", name, err)
	}

	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bank %s: %w", name, err)
	}
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("invalid bank %s: %w", name, err)
	}
	return &b, nil
}

func (b *Bank) validate() error {
	m := b.Messages
	required := map[string]string{
		"apology":     m.Apology,
		"time":        m.Time,
		"time_layout": m.TimeLayout,
		"date":        m.Date,
		"calc_result": m.CalcResult,
	}
	for key, v := range required {
		if v == "" {
			return fmt.Errorf("messages.%s is empty", key)
		}
	}
	if len(m.Weekdays) != 7 {
		return fmt.Errorf("messages.weekdays has %d entries, want 7", len(m.Weekdays))
	}
	if len(m.Months) != 12 {
		return fmt.Errorf("messages.months has %d entries, want 12", len(m.Months))
	}
	if len(b.Intents[models.IntentUnknown]) == 0 {
		return fmt.Errorf("intents.unknown is empty")
	}
	return nil
}

// lookup finds the entry whose key appears as whole words in subject. The
// longest key wins so "black hole" beats "hole".
func lookup(entries map[string]string, subject string) (string, bool) {
	padded := " " + subject + " "
	keys := make([]string, 0, len(entries))
	for k := range entries {
		if strings.Contains(padded, " "+k+" ") {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return entries[keys[0]], true
}
