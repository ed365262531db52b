// Package normalize applies the safety pass every draft goes through before
// it reaches the confirmation dialogue: length caps, default substitution,
// date re-validation and ASCII sanitization. The pass is idempotent.
package normalize

import (
	"strings"
	"time"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/pkg/timeutils"
)

// Field length caps enforced before persistence.
const (
	MaxTitle        = 300
	MaxOrganizer    = 100
	MaxPrize        = 200
	MaxRequirements = 500
	MaxNotes        = 300
)

// Defaults substituted for unresolved fields so no field is ever blank when
// shown to the user.
const (
	DefaultTitle        = "Giveaway"
	DefaultOrganizer    = "Unknown"
	DefaultPrize        = "Prize"
	DefaultRequirements = "Check original post"
)

// Draft normalizes in place relative to the current time.
func Draft(d *giveaway.Draft) *giveaway.Draft {
	return DraftAt(d, time.Now())
}

// DraftAt is Draft with an explicit "now" for deterministic date validation.
func DraftAt(d *giveaway.Draft, now time.Time) *giveaway.Draft {
	out := &giveaway.Draft{}

	out.Title = capOrDefault(sanitize(d.Title), MaxTitle, DefaultTitle)
	out.Organizer = capOrDefault(sanitize(d.Organizer), MaxOrganizer, DefaultOrganizer)
	out.Prize = capOrDefault(sanitize(d.Prize), MaxPrize, DefaultPrize)
	out.Requirements = capOrDefault(sanitize(d.Requirements), MaxRequirements, DefaultRequirements)
	out.Notes = capField(sanitize(d.Notes), MaxNotes)

	if d.Platform == "" {
		out.Platform = giveaway.PlatformUnknown
	} else {
		out.Platform = d.Platform
	}

	// The deadline survives only if it parses and is still in the future.
	// A stale or garbled date is dropped, never replaced with a guess.
	if t, err := timeutils.ParseFlexible(d.Deadline); err == nil && t.After(now) {
		out.Deadline = timeutils.Canonical(t)
	}

	// Winner announcement only needs to be a valid date; it may legitimately
	// sit in the past by the time the user confirms.
	if t, err := timeutils.ParseFlexible(d.WinnerAnnouncement); err == nil {
		out.WinnerAnnouncement = timeutils.Canonical(t)
	}

	out.PostURL = strings.TrimSpace(d.PostURL)
	return out
}

func capOrDefault(s string, max int, def string) string {
	s = capField(s, max)
	if s == "" || s == "null" {
		return def
	}
	return s
}

func capField(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		s = strings.TrimSpace(s[:max])
	}
	return s
}

var symbolReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"©", "(c)",
	"€", "EUR",
)

// sanitize maps smart punctuation to ASCII equivalents and drops remaining
// non-ASCII runes so the text renders safely in chat markup.
func sanitize(s string) string {
	s = symbolReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0x7F {
			b.WriteRune(r)
		}
	}
	return b.String()
}
