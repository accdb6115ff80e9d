package classifier

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/xaenox/offline-assistant/internal/language"
	"github.com/xaenox/offline-assistant/internal/models"
)

type Classifier interface {
	Classify(text string) models.IntentResult
}

// RuleClassifier assigns intents from the static per-language pattern
// tables. The first pattern that matches, in table order, decides.
type RuleClassifier struct {
	logger *zap.Logger
}

func NewRuleClassifier(logger *zap.Logger) *RuleClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleClassifier{logger: logger}
}

// Normalize prepares text for pattern matching: compatibility-folds Arabic
// presentation forms, turns zero-width non-joiners into spaces, maps Persian
// digits to ASCII, lowercases and trims.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\u200c", " ")
	text = language.NormalizeDigits(text)
	return strings.TrimSpace(strings.ToLower(text))
}

func (c *RuleClassifier) Classify(text string) (result models.IntentResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Classification failed",
				zap.String("error", fmt.Sprint(r)),
				zap.String("text", text))
			result = unknown(text, models.LanguageEnglish)
		}
	}()

	normalized := Normalize(text)
	lang := language.Detect(normalized)

	for _, r := range Table(lang) {
		for _, p := range r.Patterns {
			if !p.MatchString(normalized) {
				continue
			}
			c.logger.Debug("Intent matched",
				zap.String("intent", string(r.Intent)),
				zap.String("language", string(lang)),
				zap.String("pattern", p.String()))
			return models.IntentResult{
				Intent:       r.Intent,
				Confidence:   models.MatchConfidence,
				Language:     lang,
				OriginalText: text,
				Entities:     Extract(strings.TrimSpace(text), r.Intent, lang),
			}
		}
	}

	return unknown(text, lang)
}

func unknown(text string, lang models.Language) models.IntentResult {
	return models.IntentResult{
		Intent:       models.IntentUnknown,
		Confidence:   models.UnknownConfidence,
		Language:     lang,
		OriginalText: text,
		Entities:     map[string]string{},
	}
}
