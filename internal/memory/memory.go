// Package memory keeps the handful of facts a user mentions about themselves
// during a session: name, likes, location and job.
package memory

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/xaenox/offline-assistant/internal/models"
)

// MaxValueLength caps every stored value, in runes.
const MaxValueLength = 50

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is\s+([\p{L}'-]+)`),
	regexp.MustCompile(`(?i)\bi'm\s+([\p{L}'-]+)`),
	regexp.MustCompile(`(?i)\bi am\s+([\p{L}'-]+)`),
	regexp.MustCompile(`(?i)\bcall me\s+([\p{L}'-]+)`),
	regexp.MustCompile(`اسم من\s+([\p{L}]+)`),
	regexp.MustCompile(`اسمم\s+([\p{L}]+)`),
}

var nameStopwords = map[string]struct{}{
	"a": {}, "the": {}, "an": {}, "not": {}, "very": {}, "really": {}, "just": {}, "so": {}, "too": {},
	"from": {}, "in": {}, "at": {}, "fine": {}, "good": {}, "ok": {}, "okay": {}, "here": {},
	"going": {}, "feeling": {}, "sorry": {}, "tired": {}, "happy": {}, "busy": {}, "sure": {},
	"چیه": {}, "چی": {}, "چیست": {}, "است": {}, "هست": {},
}

type phrase struct {
	trigger string
	markers []string
}

type factRule struct {
	key     models.FactKey
	phrases []phrase
}

// A fact is stored when a trigger phrase appears; its value is the text after
// the first marker found from the trigger onwards.
var factRules = []factRule{
	{key: models.FactLikes, phrases: []phrase{
		{"i like", []string{"like "}},
		{"i love", []string{"love "}},
	}},
	{key: models.FactLocation, phrases: []phrase{
		{"i live in", []string{"in "}},
		{"i'm from", []string{"from "}},
		{"i am from", []string{"from "}},
	}},
	{key: models.FactJob, phrases: []phrase{
		{"my job", []string{"is ", "as "}},
		{"i work", []string{"as ", "work "}},
		{"my profession", []string{"is ", "as "}},
	}},
}

type Memory struct {
	mu    sync.RWMutex
	facts map[models.FactKey]string
}

func New() *Memory {
	return &Memory{facts: make(map[models.FactKey]string)}
}

// Update scans one utterance and stores whatever facts it states.
// Later statements overwrite earlier ones.
func (m *Memory) Update(text string) {
	found := Extract(text)
	if len(found) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range found {
		m.facts[k] = v
	}
}

// Extract returns the facts stated in text without storing them.
func Extract(text string) map[models.FactKey]string {
	found := make(map[models.FactKey]string)
	if name := extractName(text); name != "" {
		found[models.FactUserName] = name
	}

	lower := strings.ToLower(text)
	// Keep the user's casing when lowering did not shift byte offsets.
	source := lower
	if len(lower) == len(text) {
		source = text
	}
	for _, r := range factRules {
		if v := extractAfterTrigger(lower, source, r); v != "" {
			found[r.key] = v
		}
	}
	return found
}

func extractName(text string) string {
	for _, p := range namePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.Trim(m[1], "'-")
		if _, stop := nameStopwords[strings.ToLower(name)]; stop || name == "" {
			continue
		}
		return capitalize(clip(name))
	}
	return ""
}

func extractAfterTrigger(lower, source string, r factRule) string {
	for _, p := range r.phrases {
		idx := strings.Index(lower, p.trigger)
		if idx < 0 {
			continue
		}
		for _, marker := range p.markers {
			if j := strings.Index(lower[idx:], marker); j >= 0 {
				if v := clip(source[idx+j+len(marker):]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// clip truncates to MaxValueLength runes, trims, and drops trailing sentence
// punctuation.
func clip(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxValueLength {
		s = string([]rune(s)[:MaxValueLength])
	}
	s = strings.TrimRight(s, ".!?,؟ ")
	return strings.TrimSpace(s)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Get returns one fact.
func (m *Memory) Get(key models.FactKey) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.facts[key]
	return v, ok
}

// Facts returns a snapshot copy of everything remembered.
func (m *Memory) Facts() map[models.FactKey]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[models.FactKey]string, len(m.facts))
	for k, v := range m.facts {
		out[k] = v
	}
	return out
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.facts)
}

// Clear forgets everything.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts = make(map[models.FactKey]string)
}
