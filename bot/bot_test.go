package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-giveaway/config"
	"github.com/AzielCF/az-giveaway/core/database"
	"github.com/AzielCF/az-giveaway/dialogue"
	"github.com/AzielCF/az-giveaway/dialogue/session"
	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/domains/transport"
	"github.com/AzielCF/az-giveaway/extractor/urlextract"
	"github.com/AzielCF/az-giveaway/repository"
	"github.com/AzielCF/az-giveaway/usecase"
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard [][]transport.Button
}

type fakeMessenger struct {
	sent    []sentMessage
	edits   []sentMessage
	answers []string
	photo   []byte
	nextID  int
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string, opts *transport.SendOptions) (int, error) {
	msg := sentMessage{chatID: chatID, text: text}
	if opts != nil {
		msg.keyboard = opts.Keyboard
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts *transport.SendOptions) error {
	msg := sentMessage{chatID: chatID, text: text}
	if opts != nil {
		msg.keyboard = opts.Keyboard
	}
	f.edits = append(f.edits, msg)
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) DownloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	if f.photo == nil {
		return nil, assert.AnError
	}
	return f.photo, nil
}

func (f *fakeMessenger) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].text
}

func (f *fakeMessenger) lastEdit() string {
	if len(f.edits) == 0 {
		return ""
	}
	return f.edits[len(f.edits)-1].text
}

type fakeExtractor struct {
	draft *giveaway.Draft
	err   error
}

func (f *fakeExtractor) FromImage(ctx context.Context, image []byte) (*giveaway.Draft, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	d := *f.draft
	return &d, "ocr-multi", nil
}

func (f *fakeExtractor) FromURL(ctx context.Context, rawURL string) (*giveaway.Draft, error) {
	if rawURL == "not a url" {
		return nil, urlextract.ErrInvalidURL
	}
	d := *f.draft
	d.PostURL = rawURL
	return &d, nil
}

// botTestNow anchors the clock at noon UTC today so "ending today" windows
// never straddle midnight while a test runs.
var botTestNow = func() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
}()

func extractedDraft() *giveaway.Draft {
	return &giveaway.Draft{
		Title:        "Mega Gold Giveaway",
		Organizer:    "Sunway Lagoon",
		Platform:     giveaway.PlatformFacebook,
		Deadline:     botTestNow.AddDate(0, 1, 0).Format("02/01/2006 15:04"),
		Prize:        "RM1,000",
		Requirements: "Follow, Like, Comment",
	}
}

func newTestBot(t *testing.T) (*Bot, *fakeMessenger, *usecase.GiveawayUsecase, session.Store) {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite"}}
	db, err := database.NewDatabaseWithCustomPath(cfg, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	repo := repository.NewGiveawayRepository(db)
	require.NoError(t, repo.Init(context.Background()))

	u := usecase.NewGiveawayUsecase(repo, func() time.Time { return botTestNow })
	msgr := &fakeMessenger{photo: []byte("fake-image-bytes")}
	store := session.NewMemoryStore()
	conv := dialogue.New(store, u, msgr, time.Hour)
	extract := &fakeExtractor{draft: extractedDraft()}

	return New(u, extract, conv, store, msgr, time.Hour), msgr, u, store
}

func command(userID int64, name, args string) transport.Event {
	return transport.Event{Kind: transport.EventCommand, UserID: userID, ChatID: userID, Command: name, Text: args}
}

func text(userID int64, body string) transport.Event {
	return transport.Event{Kind: transport.EventText, UserID: userID, ChatID: userID, Text: body}
}

func callback(userID int64, data string) transport.Event {
	return transport.Event{Kind: transport.EventCallback, UserID: userID, ChatID: userID, MessageID: 1, CallbackID: "cb", CallbackData: data}
}

func TestQuickAddPhotoFlow(t *testing.T) {
	b, msgr, u, store := newTestBot(t)
	ctx := context.Background()

	b.HandleEvent(ctx, command(1, "quick_add", ""))
	assert.Contains(t, msgr.lastSent(), "Send me a screenshot")

	b.HandleEvent(ctx, transport.Event{Kind: transport.EventPhoto, UserID: 1, ChatID: 1, PhotoFileID: "file-1"})

	// Progress message sent, then edited into the confirmation card.
	assert.Contains(t, msgr.lastSent(), "Processing your image")
	require.NotEmpty(t, msgr.edits)
	assert.Contains(t, msgr.lastEdit(), "Mega Gold Giveaway")

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, session.PhaseConfirming, state.Phase)

	// Confirming persists the giveaway.
	b.HandleEvent(ctx, callback(1, dialogue.CallbackConfirm))
	items, err := u.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Mega Gold Giveaway", items[0].Title)
}

func TestPhotoWithoutQuickAddGetsHint(t *testing.T) {
	b, msgr, u, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleEvent(ctx, transport.Event{Kind: transport.EventPhoto, UserID: 1, ChatID: 1, PhotoFileID: "file-1"})

	assert.Contains(t, msgr.lastSent(), "/quick_add")
	items, err := u.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExtractionFailureReportsAndClearsState(t *testing.T) {
	b, msgr, _, store := newTestBot(t)
	b.extract = &fakeExtractor{err: assert.AnError}
	ctx := context.Background()

	b.HandleEvent(ctx, command(1, "quick_add", ""))
	b.HandleEvent(ctx, transport.Event{Kind: transport.EventPhoto, UserID: 1, ChatID: 1, PhotoFileID: "file-1"})

	assert.Contains(t, msgr.lastEdit(), "Could not read any text")

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestParseURLFlow(t *testing.T) {
	b, msgr, _, store := newTestBot(t)
	ctx := context.Background()

	b.HandleEvent(ctx, command(1, "parse", ""))
	assert.Contains(t, msgr.lastSent(), "Send me the link")

	b.HandleEvent(ctx, text(1, "https://www.facebook.com/share/p/ABC123"))

	assert.Contains(t, msgr.lastSent(), "Mega Gold Giveaway")

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, session.PhaseConfirming, state.Phase)
}

func TestParseInvalidURL(t *testing.T) {
	b, msgr, _, store := newTestBot(t)
	ctx := context.Background()

	b.HandleEvent(ctx, command(1, "parse", ""))
	b.HandleEvent(ctx, text(1, "not a url"))

	assert.Contains(t, msgr.lastSent(), "valid URL")

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state, "awaiting-url state must be cleared")
}

func TestManualAddFlow(t *testing.T) {
	b, msgr, u, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleEvent(ctx, command(1, "add", ""))
	assert.Contains(t, msgr.lastSent(), "Current Title")

	answers := []string{
		"PS5 Giveaway",      // title
		"GameHub MY",        // organizer
		"Instagram",         // platform
		"ok",                // deadline (keep absent)
		"skip",              // winner announcement
		"PlayStation 5",     // prize
		"Follow and share",  // requirements
		"Found via a group", // notes
	}
	for _, a := range answers {
		b.HandleEvent(ctx, text(1, a))
	}

	assert.Contains(t, msgr.lastSent(), "Saved Successfully")

	items, err := u.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "PS5 Giveaway", items[0].Title)
	assert.Equal(t, "Instagram", items[0].Platform)
	assert.Equal(t, "Found via a group", items[0].Notes)
}

func TestListTodayWeek(t *testing.T) {
	b, msgr, u, _ := newTestBot(t)
	ctx := context.Background()

	draft := extractedDraft()
	draft.Deadline = botTestNow.Add(2 * time.Hour).Format("02/01/2006 15:04")
	_, err := u.Save(ctx, 1, draft)
	require.NoError(t, err)

	b.HandleEvent(ctx, command(1, "list", ""))
	assert.Contains(t, msgr.lastSent(), "Your Giveaways (1)")

	b.HandleEvent(ctx, command(1, "today", ""))
	assert.Contains(t, msgr.lastSent(), "Ending Today")

	b.HandleEvent(ctx, command(1, "week", ""))
	assert.Contains(t, msgr.lastSent(), "Ending This Week")

	b.HandleEvent(ctx, command(2, "list", ""))
	assert.Contains(t, msgr.lastSent(), "not tracking any giveaways")
}

func TestRemoveFlow(t *testing.T) {
	b, msgr, u, _ := newTestBot(t)
	ctx := context.Background()

	id, err := u.Save(ctx, 1, extractedDraft())
	require.NoError(t, err)

	b.HandleEvent(ctx, command(1, "remove", ""))
	last := msgr.sent[len(msgr.sent)-1]
	require.NotEmpty(t, last.keyboard)
	assert.Equal(t, fmt.Sprintf("remove_%d", id), last.keyboard[0][0].Data)

	b.HandleEvent(ctx, callback(1, fmt.Sprintf("remove_%d", id)))
	assert.Contains(t, msgr.lastEdit(), "Removed Successfully")

	items, err := u.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWonCommandWithID(t *testing.T) {
	b, msgr, u, _ := newTestBot(t)
	ctx := context.Background()

	id, err := u.Save(ctx, 1, extractedDraft())
	require.NoError(t, err)

	b.HandleEvent(ctx, command(1, "won", fmt.Sprintf("%d", id)))
	assert.Contains(t, msgr.lastSent(), "Congratulations")

	g, err := u.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, giveaway.ResultWon, g.Result)
	assert.Equal(t, giveaway.StatusCompleted, g.Status)
}

func TestLostViaKeyboard(t *testing.T) {
	b, msgr, u, _ := newTestBot(t)
	ctx := context.Background()

	id, err := u.Save(ctx, 1, extractedDraft())
	require.NoError(t, err)

	b.HandleEvent(ctx, command(1, "lost", ""))
	last := msgr.sent[len(msgr.sent)-1]
	require.NotEmpty(t, last.keyboard)

	b.HandleEvent(ctx, callback(1, fmt.Sprintf("lost_%d", id)))
	assert.Contains(t, msgr.lastEdit(), "Better luck next time")

	g, err := u.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, giveaway.ResultLost, g.Result)
}

func TestStatsAndAnalyticsCommands(t *testing.T) {
	b, msgr, u, _ := newTestBot(t)
	ctx := context.Background()

	id, err := u.Save(ctx, 1, extractedDraft())
	require.NoError(t, err)
	require.NoError(t, u.MarkResult(ctx, 1, id, giveaway.ResultWon))

	b.HandleEvent(ctx, command(1, "stats", ""))
	assert.Contains(t, msgr.lastSent(), "Win rate: 100.0%")

	b.HandleEvent(ctx, command(1, "analytics", ""))
	assert.Contains(t, msgr.lastSent(), "Facebook: 1 entered, 1 won")

	b.HandleEvent(ctx, command(1, "year", ""))
	assert.Contains(t, msgr.lastSent(), "Wins this year (1)")
}

func TestUnknownCommand(t *testing.T) {
	b, msgr, _, _ := newTestBot(t)

	b.HandleEvent(context.Background(), command(1, "frobnicate", ""))
	assert.Contains(t, msgr.lastSent(), "Unknown command: /frobnicate")
	assert.Contains(t, msgr.lastSent(), "/quick_add")
}
