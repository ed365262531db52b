package timeutils

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalLayout is the display/storage format used for user-facing dates.
const CanonicalLayout = "02/01/2006 15:04"

// acceptedLayouts are tried in order when re-validating a user- or
// parser-supplied date string. Day-first formats come first because that is
// what the bot prompts for.
var acceptedLayouts = []string{
	CanonicalLayout,
	"02/01/2006",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFlexible parses a date string against the accepted layouts, in order.
func ParseFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// Canonical renders a time in the canonical DD/MM/YYYY HH:MM form.
func Canonical(t time.Time) string {
	return t.Format(CanonicalLayout)
}

var monthAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// MonthFromWord resolves an English month word (any casing, abbreviated or
// full, including OCR-common forms like "Sept") to its month number. The
// word matches on its first three letters.
func MonthFromWord(word string) (time.Month, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) < 3 {
		return 0, false
	}
	m, ok := monthAbbrev[w[:3]]
	return m, ok
}

// NormalizeYear resolves 2-digit years to the 2000s.
func NormalizeYear(y int) int {
	if y < 100 {
		return 2000 + y
	}
	return y
}
