package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xaenox/offline-assistant/internal/language"
)

var (
	relativeExpr = regexp.MustCompile(`(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?|days?|ثانیه|دقیقه|ساعت|روز)`)
	clockExpr    = regexp.MustCompile(`(?:at|ساعت)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

var unitDurations = map[string]time.Duration{
	"second": time.Second,
	"sec":    time.Second,
	"ثانیه":  time.Second,
	"minute": time.Minute,
	"min":    time.Minute,
	"دقیقه":  time.Minute,
	"hour":   time.Hour,
	"hr":     time.Hour,
	"ساعت":   time.Hour,
	"day":    24 * time.Hour,
	"روز":    24 * time.Hour,
}

type dayPart struct {
	word     string
	hour     int
	nextDay  bool
	fromNow  time.Duration
	relative bool
}

var dayParts = []dayPart{
	{word: "tomorrow", hour: 9, nextDay: true},
	{word: "فردا", hour: 9, nextDay: true},
	{word: "tonight", hour: 20},
	{word: "امشب", hour: 20},
	{word: "today", fromNow: time.Hour, relative: true},
	{word: "امروز", fromNow: time.Hour, relative: true},
	{word: "morning", hour: 9},
	{word: "صبح", hour: 9},
	{word: "afternoon", hour: 15},
	{word: "عصر", hour: 17},
	{word: "evening", hour: 18},
	{word: "شب", hour: 21},
}

// ResolveTime turns an extracted time expression into an absolute trigger
// time relative to now. ok is false when expr is not understood.
func ResolveTime(expr string, now time.Time) (at time.Time, ok bool) {
	expr = strings.ToLower(language.NormalizeDigits(strings.TrimSpace(expr)))
	if expr == "" {
		return time.Time{}, false
	}

	// "ساعت" is both a unit and "o'clock": a relative offset has the number
	// before it, a clock time after it.
	if m := relativeExpr.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			unit := strings.TrimSuffix(m[2], "s")
			if d, found := unitDurations[unit]; found {
				return now.Add(time.Duration(n) * d), true
			}
		}
	}

	if m := clockExpr.FindStringSubmatch(expr); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch m[3] {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
		return nextOccurrence(now, hour, minute), true
	}

	for _, p := range dayParts {
		if !strings.Contains(expr, p.word) {
			continue
		}
		switch {
		case p.relative:
			return now.Add(p.fromNow), true
		case p.nextDay:
			d := now.AddDate(0, 0, 1)
			return time.Date(d.Year(), d.Month(), d.Day(), p.hour, 0, 0, 0, now.Location()), true
		default:
			return nextOccurrence(now, p.hour, 0), true
		}
	}

	return time.Time{}, false
}

func nextOccurrence(now time.Time, hour, minute int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
