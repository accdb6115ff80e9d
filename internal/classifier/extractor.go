package classifier

import (
	"regexp"
	"strings"

	"github.com/xaenox/offline-assistant/internal/language"
	"github.com/xaenox/offline-assistant/internal/models"
)

// Entity keys.
const (
	EntityTime           = "time"
	EntityContent        = "content"
	EntityExpression     = "expression"
	EntityOperand1       = "operand1"
	EntityOperator       = "operator"
	EntityOperand2       = "operand2"
	EntityText           = "text"
	EntityTargetLanguage = "target_language"
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// First match wins.
var (
	englishTimePatterns = compileAll(
		`\b(?:in|at)\s+\d+\s*(?:seconds?|secs?|minutes?|mins?|hours?|hrs?|days?)\b`,
		`\bat\s+\d{1,2}:\d{2}\s*(?:am|pm)?`,
		`\bat\s+\d{1,2}\s*(?:am|pm)\b`,
		`\b(?:tomorrow|today|tonight|morning|afternoon|evening)\b`,
	)
	farsiTimePatterns = compileAll(
		`\d+\s*(?:ثانیه|دقیقه|ساعت|روز)\s*(?:دیگه|دیگر|بعد)`,
		`ساعت\s*\d{1,2}(?::\d{2})?`,
		`فردا|امروز|امشب|صبح|عصر|شب`,
	)

	englishReminderContent = compileAll(
		`(?i)remind me to\s*(.+)`,
		`(?i)remind me (?:about|that)\s*(.+)`,
	)
	farsiReminderContent = compileAll(
		`یادم بنداز(?:\s+که)?\s*(.+)`,
		`یادآوری کن(?:\s+که)?\s*(.+)`,
	)

	englishNoteContent = compileAll(
		`(?i)note that\s*(.+)`,
		`(?i)take note\s*(.+)`,
		`(?i)take a note\s*(.+)`,
		`(?i)make a note\s*(.+)`,
		`(?i)write down\s*(.+)`,
	)
	farsiNoteContent = compileAll(
		`یادداشت کن(?:\s+که)?\s*(.+)`,
		`بنویس(?:\s+که)?\s*(.+)`,
	)

	calcExpression = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([-+*/×÷^%x]|plus|minus|times|divided by|multiplied by|mod|to the power of|به علاوه|بعلاوه|منهای|ضربدر|ضرب در|تقسیم بر)\s*(\d+(?:\.\d+)?)`)

	englishTranslate = regexp.MustCompile(`(?i)translate\s*(.+)`)
	farsiTranslate   = regexp.MustCompile(`ترجمه(?:\s+کن)?\s*(.+)`)
	targetLanguage   = regexp.MustCompile(`(?i)\s(?:to|into)\s+([\p{L}]+)\s*[?.!]*$`)
)

// Extract pulls the entities intent needs out of text. It never fails;
// entities that are not found are simply absent.
func Extract(text string, intent models.Intent, lang models.Language) map[string]string {
	entities := make(map[string]string)
	farsi := lang == models.LanguageFarsi

	switch intent {
	case models.IntentReminderSet:
		timePatterns := englishTimePatterns
		contentPatterns := englishReminderContent
		if farsi {
			timePatterns = farsiTimePatterns
			contentPatterns = farsiReminderContent
		}
		lowered := strings.ToLower(language.NormalizeDigits(text))
		for _, p := range timePatterns {
			if m := p.FindString(lowered); m != "" {
				entities[EntityTime] = strings.TrimSpace(m)
				break
			}
		}
		if content := firstCapture(text, contentPatterns); content != "" {
			entities[EntityContent] = content
		}

	case models.IntentNoteCreate:
		contentPatterns := englishNoteContent
		if farsi {
			contentPatterns = farsiNoteContent
		}
		if content := firstCapture(text, contentPatterns); content != "" {
			entities[EntityContent] = content
		}

	case models.IntentCalculate:
		normalized := strings.ToLower(language.NormalizeDigits(text))
		if m := calcExpression.FindStringSubmatch(normalized); m != nil {
			entities[EntityExpression] = m[0]
			entities[EntityOperand1] = m[1]
			entities[EntityOperator] = m[2]
			entities[EntityOperand2] = m[3]
		}

	case models.IntentTranslate:
		p := englishTranslate
		if farsi {
			p = farsiTranslate
		}
		if m := p.FindStringSubmatch(text); m != nil {
			if phrase := cleanContent(m[1]); phrase != "" {
				entities[EntityText] = phrase
				if t := targetLanguage.FindStringSubmatch(" " + phrase); t != nil {
					entities[EntityTargetLanguage] = strings.ToLower(t[1])
				}
			}
		}
	}

	return entities
}

// firstCapture returns the cleaned first group of the first pattern that
// matches. Patterns are tried in order, and each finds its leftmost match.
func firstCapture(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if c := cleanContent(m[1]); c != "" {
				return c
			}
		}
	}
	return ""
}

func cleanContent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":,- ")
	s = strings.TrimRight(s, ".!?؟ ")
	return strings.TrimSpace(s)
}
