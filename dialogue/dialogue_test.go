package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-giveaway/dialogue/session"
	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/domains/transport"
)

type fakeMessenger struct {
	sent    []string
	edited  []string
	nextID  int
	answers []string
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string, opts *transport.SendOptions) (int, error) {
	f.sent = append(f.sent, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts *transport.SendOptions) error {
	f.edited = append(f.edited, text)
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) DownloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

type fakeSaver struct {
	saved []*giveaway.Draft
	err   error
}

func (f *fakeSaver) Save(ctx context.Context, userID int64, draft *giveaway.Draft) (uint, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, draft)
	return uint(len(f.saved)), nil
}

func sampleDraft() *giveaway.Draft {
	return &giveaway.Draft{
		Title:        "Mega Gold Giveaway",
		Organizer:    "Sunway Lagoon",
		Platform:     giveaway.PlatformFacebook,
		Deadline:     "16/09/2030 23:59",
		Prize:        "RM1,000",
		Requirements: "Follow, Like, Comment",
	}
}

func setup() (*Dialogue, *fakeMessenger, *fakeSaver, session.Store) {
	msgr := &fakeMessenger{}
	saver := &fakeSaver{}
	store := session.NewMemoryStore()
	return New(store, saver, msgr, time.Hour), msgr, saver, store
}

func callback(userID int64, data string) transport.Event {
	return transport.Event{
		Kind:         transport.EventCallback,
		UserID:       userID,
		ChatID:       userID,
		CallbackID:   "cb",
		CallbackData: data,
	}
}

func textEvent(userID int64, text string) transport.Event {
	return transport.Event{
		Kind:   transport.EventText,
		UserID: userID,
		ChatID: userID,
		Text:   text,
	}
}

func TestConfirmRoundTrip(t *testing.T) {
	d, _, saver, store := setup()
	ctx := context.Background()
	draft := sampleDraft()

	require.NoError(t, d.BeginConfirmation(ctx, 1, 1, draft, 0))

	handled, err := d.HandleCallback(ctx, callback(1, CallbackConfirm))
	require.NoError(t, err)
	assert.True(t, handled)

	require.Len(t, saver.saved, 1)
	assert.Equal(t, draft, saver.saved[0])

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state, "state must be cleared after save")
}

func TestEditPathAllKeepTokensLeavesDraftUnchanged(t *testing.T) {
	d, _, saver, _ := setup()
	ctx := context.Background()
	original := *sampleDraft()

	require.NoError(t, d.BeginConfirmation(ctx, 1, 1, sampleDraft(), 0))

	handled, err := d.HandleCallback(ctx, callback(1, CallbackEdit))
	require.NoError(t, err)
	assert.True(t, handled)

	for i := 0; i < 8; i++ {
		handled, err := d.HandleText(ctx, textEvent(1, "ok"))
		require.NoError(t, err)
		assert.True(t, handled, "step %d", i)
	}

	require.Len(t, saver.saved, 1)
	assert.Equal(t, &original, saver.saved[0])
}

func TestEditOverwritesField(t *testing.T) {
	d, _, saver, _ := setup()
	ctx := context.Background()

	require.NoError(t, d.BeginConfirmation(ctx, 1, 1, sampleDraft(), 0))
	_, err := d.HandleCallback(ctx, callback(1, CallbackEdit))
	require.NoError(t, err)

	// First step is the title; overwrite it, keep the rest.
	_, err = d.HandleText(ctx, textEvent(1, "Corrected Title"))
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		_, err = d.HandleText(ctx, textEvent(1, "ok"))
		require.NoError(t, err)
	}

	require.Len(t, saver.saved, 1)
	assert.Equal(t, "Corrected Title", saver.saved[0].Title)
	assert.Equal(t, "Sunway Lagoon", saver.saved[0].Organizer)
}

func TestSkipClearsWinnerAnnouncement(t *testing.T) {
	d, _, saver, _ := setup()
	ctx := context.Background()
	draft := sampleDraft()
	draft.WinnerAnnouncement = "16/09/2030 18:00"

	require.NoError(t, d.BeginConfirmation(ctx, 1, 1, draft, 0))
	_, err := d.HandleCallback(ctx, callback(1, CallbackEdit))
	require.NoError(t, err)

	inputs := []string{"ok", "ok", "ok", "ok", "skip", "ok", "ok", "ok"}
	for _, in := range inputs {
		_, err = d.HandleText(ctx, textEvent(1, in))
		require.NoError(t, err)
	}

	require.Len(t, saver.saved, 1)
	assert.Empty(t, saver.saved[0].WinnerAnnouncement)
}

func TestCancelClearsState(t *testing.T) {
	d, msgr, saver, store := setup()
	ctx := context.Background()

	require.NoError(t, d.BeginConfirmation(ctx, 1, 1, sampleDraft(), 0))

	handled, err := d.HandleCallback(ctx, callback(1, CallbackCancel))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, saver.saved)

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)
	require.NotEmpty(t, msgr.edited)
	assert.Contains(t, msgr.edited[len(msgr.edited)-1], "Cancelled")
}

func TestPersistenceFailureClearsState(t *testing.T) {
	d, msgr, saver, store := setup()
	saver.err = errors.New("disk full")
	ctx := context.Background()

	require.NoError(t, d.BeginConfirmation(ctx, 1, 1, sampleDraft(), 0))
	_, err := d.HandleCallback(ctx, callback(1, CallbackConfirm))
	require.NoError(t, err)

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state, "state cleared even when save fails")
	require.NotEmpty(t, msgr.sent)
	assert.Contains(t, msgr.sent[len(msgr.sent)-1], "Error saving giveaway")
}

func TestCallbackWithoutConversationIgnored(t *testing.T) {
	d, _, saver, _ := setup()

	handled, err := d.HandleCallback(context.Background(), callback(5, CallbackConfirm))
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, saver.saved)
}

func TestTextOutsideEditingIgnored(t *testing.T) {
	d, _, _, _ := setup()

	handled, err := d.HandleText(context.Background(), textEvent(5, "hello"))
	require.NoError(t, err)
	assert.False(t, handled)
}
