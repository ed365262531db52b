// Package parser turns raw recognized text into a structured giveaway draft
// using ordered, locale-aware pattern rules. Each field resolves
// independently; within a field the first matching rule wins, and rules run
// from most-specific anchor to most-generic fallback. Parsing never fails:
// unresolved fields stay empty and pick up defaults during normalization.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/pkg/timeutils"
)

type Parser struct {
	now func() time.Time
}

// New builds a parser. now is injectable so date resolution (current-year
// assumptions) is deterministic under test; nil means time.Now.
func New(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse extracts a draft from raw text. Regex matching runs over a
// whitespace-collapsed copy; title selection keeps the original line breaks.
func (p *Parser) Parse(text string) *giveaway.Draft {
	collapsed := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")

	d := &giveaway.Draft{}
	d.Platform = detectPlatform(collapsed)
	d.Prize = extractPrize(collapsed)
	d.Deadline = p.extractDeadline(collapsed)
	d.WinnerAnnouncement = extractWinner(collapsed, d.Deadline)
	d.Requirements = extractRequirements(collapsed)
	d.Title = extractTitle(text)
	d.Organizer = extractOrganizer(collapsed)
	return d
}

func detectPlatform(text string) giveaway.Platform {
	lower := strings.ToLower(text)
	for _, name := range platformVocabulary {
		if strings.Contains(lower, name) {
			return giveaway.Platform(strings.ToUpper(name[:1]) + name[1:])
		}
	}
	for _, hint := range facebookHints {
		if strings.Contains(lower, hint) {
			return giveaway.PlatformFacebook
		}
	}
	return giveaway.PlatformUnknown
}

func extractPrize(text string) string {
	for _, re := range prizeRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[0])
	}
	return ""
}

// extractDeadline resolves the contest close date. Anchored "ends" phrases
// are trusted over any bare date found elsewhere in the post.
func (p *Parser) extractDeadline(text string) string {
	if date, ok := p.monthWordDate(contestEndsRe.FindStringSubmatch(text), text); ok {
		return date
	}
	if date, ok := p.monthWordDate(giveawayEndsRe.FindStringSubmatch(text), text); ok {
		return date
	}

	if m := malayEndsRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if date, ok := p.buildDate(day, time.Month(month), p.now().Year(), text); ok {
			return date
		}
	}

	// Generic "16 Sept 2025" anywhere in the text. Every candidate word is
	// checked against the month table so ordinary prose cannot match.
	for _, m := range dayMonthYearRe.FindAllStringSubmatch(text, -1) {
		if date, ok := p.monthWordDate(m, text); ok {
			return date
		}
	}

	// "August 24, 2025" order.
	for _, m := range monthDayYearRe.FindAllStringSubmatch(text, -1) {
		month, ok := timeutils.MonthFromWord(m[1])
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if date, ok := p.buildDate(day, month, year, text); ok {
			return date
		}
	}

	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if date, ok := p.buildDate(day, time.Month(month), year, text); ok {
			return date
		}
	}

	if m := shortDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if date, ok := p.buildDate(day, time.Month(month), p.now().Year(), text); ok {
			return date
		}
	}

	return ""
}

// monthWordDate converts a (day, month-word, year) submatch into a canonical
// date string, rejecting words that do not resolve to a month.
func (p *Parser) monthWordDate(m []string, text string) (string, bool) {
	if m == nil {
		return "", false
	}
	month, ok := timeutils.MonthFromWord(m[2])
	if !ok {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	return p.buildDate(day, month, year, text)
}

// buildDate validates the components and renders the canonical form,
// attaching an explicit time of day when the text carries one and defaulting
// to end-of-day otherwise.
func (p *Parser) buildDate(day int, month time.Month, year int, text string) (string, bool) {
	if day < 1 || day > 31 || month < time.January || month > time.December {
		return "", false
	}
	year = timeutils.NormalizeYear(year)
	if year < 2000 || year > 2100 {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d %s", day, month, year, timeOfDay(text)), true
}

func timeOfDay(text string) string {
	m := timeOfDayRe.FindStringSubmatch(text)
	if m == nil {
		return "23:59"
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "23:59"
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 {
		return "23:59"
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// extractWinner finds the winner-announcement time. A concrete numeric date
// wins at 18:00; a "same day" marker copies the deadline date at 18:00.
func extractWinner(text, deadline string) string {
	for _, re := range winnerDateRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		parts := strings.FieldsFunc(m[1], func(r rune) bool { return r == '/' || r == '-' })
		if len(parts) != 3 {
			continue
		}
		day, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])
		year, _ := strconv.Atoi(parts[2])
		year = timeutils.NormalizeYear(year)
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}
		return fmt.Sprintf("%02d/%02d/%04d 18:00", day, month, year)
	}

	for _, re := range winnerSameDayRules {
		if re.MatchString(text) && deadline != "" {
			datePart := strings.SplitN(deadline, " ", 2)[0]
			return datePart + " 18:00"
		}
	}
	return ""
}

func extractRequirements(text string) string {
	lower := strings.ToLower(text)
	var labels []string
	for _, rule := range requirementRules {
		for _, word := range rule.words {
			if strings.Contains(lower, word) {
				labels = append(labels, rule.label)
				break
			}
		}
	}
	return strings.Join(labels, ", ")
}

// extractTitle picks the headline line of the post: the first line longer
// than ten characters containing a giveaway keyword, else the first long
// line, cleaned of header noise and capped at 80 characters.
func extractTitle(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 10 {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range titleKeywords {
			if strings.Contains(lower, kw) {
				return cleanTitle(line, true)
			}
		}
	}
	return cleanTitle(lines[0], false)
}

func cleanTitle(line string, stripVerbs bool) string {
	s := leadingNonLetterRe.ReplaceAllString(line, "")
	s = punctuationRe.ReplaceAllString(s, " ")
	s = ageAuthorMetaRe.ReplaceAllString(s, "")
	s = ageMarkerRe.ReplaceAllString(s, "")
	s = authorLabelRe.ReplaceAllString(s, " ")
	if stripVerbs {
		s = ocrArtifactRe.ReplaceAllString(s, "")
		s = giveawayVerbRe.ReplaceAllString(s, "")
	}
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if len(s) > 80 {
		s = strings.TrimSpace(s[:80])
	}
	return s
}

func extractOrganizer(text string) string {
	for _, re := range organizerRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return strings.TrimSpace(m[1])
	}
	return ""
}
