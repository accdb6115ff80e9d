// Package language tells English-like text from Farsi-like text by counting
// runes in the Arabic-script Unicode blocks.
package language

import (
	"strings"
	"unicode"

	"github.com/xaenox/offline-assistant/internal/models"
)

// DefaultStrictThreshold is the share of Farsi letters DetectStrict needs
// before it calls a mixed string Farsi.
const DefaultStrictThreshold = 0.3

var farsiRanges = [][2]rune{
	{0x0600, 0x06FF},
	{0x0750, 0x077F},
	{0xFB50, 0xFDFF},
	{0xFE70, 0xFEFF},
}

// IsFarsiRune reports whether r falls in one of the Arabic-script blocks.
func IsFarsiRune(r rune) bool {
	for _, rng := range farsiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// Detect is the lightweight detector used for classification: a single
// Farsi rune is enough.
func Detect(text string) models.Language {
	for _, r := range text {
		if IsFarsiRune(r) {
			return models.LanguageFarsi
		}
	}
	return models.LanguageEnglish
}

// Ratio returns the share of letters in text that are Farsi.
func Ratio(text string) float64 {
	var letters, farsi int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if IsFarsiRune(r) {
			farsi++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(farsi) / float64(letters)
}

// DetectStrict calls text Farsi only when at least threshold of its letters
// are Farsi. Used on the conversational path so a stray Farsi word in an
// English sentence keeps the reply English.
func DetectStrict(text string, threshold float64) models.Language {
	if threshold <= 0 {
		threshold = DefaultStrictThreshold
	}
	if Ratio(text) >= threshold {
		return models.LanguageFarsi
	}
	return models.LanguageEnglish
}

var digitReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".",
)

// NormalizeDigits rewrites Persian and Arabic-Indic digits as ASCII digits.
func NormalizeDigits(text string) string {
	return digitReplacer.Replace(text)
}
