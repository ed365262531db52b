package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
)

var testNow = time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)

func TestDefaultsApplied(t *testing.T) {
	out := DraftAt(&giveaway.Draft{}, testNow)

	assert.Equal(t, DefaultTitle, out.Title)
	assert.Equal(t, DefaultOrganizer, out.Organizer)
	assert.Equal(t, DefaultPrize, out.Prize)
	assert.Equal(t, DefaultRequirements, out.Requirements)
	assert.Equal(t, giveaway.PlatformUnknown, out.Platform)
	assert.Empty(t, out.Notes)
}

func TestLengthCaps(t *testing.T) {
	d := &giveaway.Draft{
		Title:        strings.Repeat("t", 400),
		Organizer:    strings.Repeat("o", 150),
		Prize:        strings.Repeat("p", 250),
		Requirements: strings.Repeat("r", 600),
		Notes:        strings.Repeat("n", 400),
	}
	out := DraftAt(d, testNow)

	assert.LessOrEqual(t, len(out.Title), MaxTitle)
	assert.LessOrEqual(t, len(out.Organizer), MaxOrganizer)
	assert.LessOrEqual(t, len(out.Prize), MaxPrize)
	assert.LessOrEqual(t, len(out.Requirements), MaxRequirements)
	assert.LessOrEqual(t, len(out.Notes), MaxNotes)
}

func TestFutureDeadlineKept(t *testing.T) {
	d := &giveaway.Draft{Deadline: "16/09/2025 23:59"}
	out := DraftAt(d, testNow)
	assert.Equal(t, "16/09/2025 23:59", out.Deadline)
}

func TestPastDeadlineDropped(t *testing.T) {
	d := &giveaway.Draft{Deadline: "16/09/2024 23:59"}
	out := DraftAt(d, testNow)
	assert.Empty(t, out.Deadline)
}

func TestGarbledDeadlineDropped(t *testing.T) {
	d := &giveaway.Draft{Deadline: "soon-ish"}
	out := DraftAt(d, testNow)
	assert.Empty(t, out.Deadline)
}

func TestDeadlineDateOnlyCanonicalized(t *testing.T) {
	d := &giveaway.Draft{Deadline: "16/09/2025"}
	out := DraftAt(d, testNow)
	assert.Equal(t, "16/09/2025 00:00", out.Deadline)
}

func TestWinnerAnnouncementPastIsKept(t *testing.T) {
	// Unlike the deadline, a past announcement date is still meaningful.
	d := &giveaway.Draft{WinnerAnnouncement: "01/01/2025 18:00"}
	out := DraftAt(d, testNow)
	assert.Equal(t, "01/01/2025 18:00", out.WinnerAnnouncement)
}

func TestSanitization(t *testing.T) {
	d := &giveaway.Draft{
		Title:     "“Mega” Giveaway © Sunway — 好运",
		Organizer: "’Brand’ €100 Club",
	}
	out := DraftAt(d, testNow)

	assert.Equal(t, `"Mega" Giveaway (c) Sunway`, out.Title)
	assert.Equal(t, "'Brand' EUR100 Club", out.Organizer)
}

func TestIdempotence(t *testing.T) {
	drafts := []*giveaway.Draft{
		{},
		{Title: "Win gold", Deadline: "16/09/2025 23:59", WinnerAnnouncement: "16/09/2025 18:00"},
		{Title: strings.Repeat("long ", 100), Prize: "RM1,000", Platform: giveaway.PlatformFacebook},
		{Organizer: "© Sunway Lagoon", Notes: "“quoted”"},
	}
	for _, d := range drafts {
		once := DraftAt(d, testNow)
		twice := DraftAt(once, testNow)
		assert.Equal(t, once, twice)
	}
}
