package classifier

import (
	"regexp"

	"github.com/xaenox/offline-assistant/internal/models"
)

// Rule is one intent with its ordered match patterns.
type Rule struct {
	Intent   models.Intent
	Patterns []*regexp.Regexp
}

func rule(intent models.Intent, patterns ...string) Rule {
	r := Rule{Intent: intent, Patterns: make([]*regexp.Regexp, len(patterns))}
	for i, p := range patterns {
		r.Patterns[i] = regexp.MustCompile(p)
	}
	return r
}

// Declaration order is the precedence order. "what is" is deliberately in
// both calculate and search; calculate comes first.
var englishRules = []Rule{
	rule(models.IntentGreeting,
		`^(?:hi|hello|hey|hiya|howdy)\b`,
		`\bgood (?:morning|afternoon|evening)\b`,
		`\bgreetings\b`,
	),
	// Anchored: farewell precedes reminder_set, and "remind me to say
	// goodbye" is a reminder.
	rule(models.IntentFarewell,
		`^(?:(?:ok(?:ay)?|well|alright),?\s+)?(?:bye|goodbye|good night|see you|farewell)\b`,
	),
	rule(models.IntentTime,
		`\bwhat time\b`,
		`\btime is it\b`,
		`\bcurrent time\b`,
		`\btell me the time\b`,
	),
	rule(models.IntentDate,
		`\bwhat(?:'s| is)? (?:the |today'?s )?date\b`,
		`\bwhat day is\b`,
		`\btoday'?s date\b`,
	),
	rule(models.IntentReminderSet,
		`\bremind me\b`,
		`\bset (?:a |an )?(?:reminder|alarm)\b`,
		`\bdon'?t let me forget\b`,
	),
	rule(models.IntentReminderList,
		`\breminders\b`,
	),
	rule(models.IntentNoteCreate,
		`\bnote that\b`,
		`\btake (?:a )?note\b`,
		`\bmake a note\b`,
		`\bwrite (?:this |that )?down\b`,
	),
	rule(models.IntentNoteList,
		`\bnotes\b`,
	),
	rule(models.IntentCalculate,
		`\d+(?:\.\d+)?\s*(?:[-+*/×÷^%x]|plus|minus|times|divided by|multiplied by|mod|to the power of)\s*\d+`,
		`\bcalculate\b`,
		`\bcompute\b`,
		`\bsquare root\b`,
		`\bsqrt\b`,
		`\bwhat(?:'s| is) \d`,
	),
	rule(models.IntentWeather,
		`\bweather\b`,
		`\b(?:raining|sunny|forecast)\b`,
	),
	rule(models.IntentJoke,
		`\bjoke\b`,
		`\bmake me laugh\b`,
		`\bsomething funny\b`,
	),
	rule(models.IntentTranslate,
		`\btranslate\b`,
		`\bhow do you say\b`,
	),
	rule(models.IntentSearch,
		`\bsearch\b`,
		`\blook up\b`,
		`\bwhat is\b`,
		`\bwho is\b`,
		`\btell me about\b`,
		`\bwhat are\b`,
	),
	rule(models.IntentHelp,
		`\bhelp\b`,
		`\bwhat can you do\b`,
	),
	rule(models.IntentThanks,
		`\bthank(?:s| you)\b`,
		`\bappreciate\b`,
	),
}

// Listing comes before setting here: "یادآور" is a prefix of "یادآورها".
var farsiRules = []Rule{
	rule(models.IntentGreeting,
		`سلام`,
		`درود`,
		`صبح بخیر`,
		`عصر بخیر`,
	),
	rule(models.IntentFarewell,
		`^(?:(?:خب|باشه|پس)،?\s+)?(?:خداحافظ|خدانگهدار|بدرود|شب بخیر)`,
	),
	rule(models.IntentTime,
		`ساعت چند`,
		`چه ساعتی`,
		`الان ساعت`,
	),
	rule(models.IntentDate,
		`تاریخ`,
		`امروز چندم`,
		`چه روزی`,
		`امروز چه روز`,
	),
	rule(models.IntentReminderList,
		`یادآورها`,
		`یادآوری\s?ها`,
		`لیست یادآور`,
	),
	rule(models.IntentReminderSet,
		`یادم بنداز`,
		`یادآوری کن`,
		`یادآور`,
	),
	rule(models.IntentNoteList,
		`یادداشت\s?ها`,
		`لیست یادداشت`,
	),
	rule(models.IntentNoteCreate,
		`یادداشت کن`,
		`بنویس`,
		`یادداشت`,
	),
	rule(models.IntentCalculate,
		`\d+(?:\.\d+)?\s*(?:[-+*/×÷^%]|به علاوه|بعلاوه|منهای|ضربدر|ضرب در|تقسیم بر)\s*\d+`,
		`حساب کن`,
		`چند می\s?شه`,
		`چند میشود`,
		`جذر`,
	),
	rule(models.IntentWeather,
		`آب و هوا`,
		`هوا`,
		`باران`,
	),
	rule(models.IntentJoke,
		`جوک`,
		`لطیفه`,
		`بخندون`,
	),
	rule(models.IntentTranslate,
		`ترجمه`,
	),
	rule(models.IntentSearch,
		`جستجو`,
		`بگرد`,
		`چیست`,
		`کیست`,
		`چیه`,
	),
	rule(models.IntentHelp,
		`کمک`,
		`راهنما`,
		`چه کاری? می\s?تونی`,
	),
	rule(models.IntentThanks,
		`ممنون`,
		`مرسی`,
		`متشکرم`,
		`سپاس`,
	),
}

// Table returns a copy of the rule table for lang in precedence order.
func Table(lang models.Language) []Rule {
	src := englishRules
	if lang == models.LanguageFarsi {
		src = farsiRules
	}
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}
