// Package bot routes incoming chat events to command handlers, the extraction
// pipeline and the confirmation dialogue. It is transport-agnostic: the
// Telegram adapter turns updates into transport.Event values and feeds them
// here.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/dialogue/session"
	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/domains/transport"
	"github.com/AzielCF/az-giveaway/extractor/urlextract"
	"github.com/AzielCF/az-giveaway/usecase"
)

// Callback prefixes for the bot-level inline keyboards.
const (
	callbackRemovePrefix = "remove_"
	callbackWonPrefix    = "won_"
	callbackLostPrefix   = "lost_"
	callbackCancelRemove = "cancel_remove"
)

// Extractor turns images and links into drafts. Satisfied by extractor.Engine.
type Extractor interface {
	FromImage(ctx context.Context, image []byte) (*giveaway.Draft, string, error)
	FromURL(ctx context.Context, rawURL string) (*giveaway.Draft, error)
}

// Conversation is the confirmation/editing dialogue contract, satisfied by
// dialogue.Dialogue.
type Conversation interface {
	BeginConfirmation(ctx context.Context, chatID, userID int64, draft *giveaway.Draft, messageID int) error
	BeginEditing(ctx context.Context, chatID, userID int64, draft *giveaway.Draft) error
	HandleCallback(ctx context.Context, ev transport.Event) (bool, error)
	HandleText(ctx context.Context, ev transport.Event) (bool, error)
}

type Bot struct {
	usecase  *usecase.GiveawayUsecase
	extract  Extractor
	dialogue Conversation
	store    session.Store
	msgr     transport.Messenger
	ttl      time.Duration
	now      func() time.Time
}

func New(u *usecase.GiveawayUsecase, extract Extractor, conv Conversation, store session.Store, msgr transport.Messenger, ttl time.Duration) *Bot {
	return &Bot{
		usecase:  u,
		extract:  extract,
		dialogue: conv,
		store:    store,
		msgr:     msgr,
		ttl:      ttl,
		now:      time.Now,
	}
}

// HandleEvent is the single entry point for every incoming update. Errors are
// logged here rather than returned; a chat bot has nobody upstream to report
// them to.
func (b *Bot) HandleEvent(ctx context.Context, ev transport.Event) {
	var err error
	switch ev.Kind {
	case transport.EventCommand:
		err = b.handleCommand(ctx, ev)
	case transport.EventPhoto:
		err = b.handlePhoto(ctx, ev)
	case transport.EventCallback:
		err = b.handleCallback(ctx, ev)
	case transport.EventText:
		err = b.handleText(ctx, ev)
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", ev.UserID).Error("[BOT] Event handling failed")
	}
}

// handlePhoto runs the extraction pipeline when the user announced an image
// with /quick_add. Photos sent out of the blue get a pointer to the command.
func (b *Bot) handlePhoto(ctx context.Context, ev transport.Event) error {
	state, err := b.store.Get(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if state == nil || state.Phase != session.PhaseAwaitingImage {
		return b.send(ctx, ev.ChatID,
			"Nice screenshot! Type /quick_add first and I'll extract the giveaway details from it.")
	}

	// One photo per /quick_add. Clearing early also stops an album from
	// triggering the pipeline repeatedly.
	if err := b.store.Delete(ctx, ev.UserID); err != nil {
		logrus.WithError(err).Warn("[BOT] Failed to clear awaiting-image state")
	}

	progressID, err := b.msgr.SendMessage(ctx, ev.ChatID,
		"Processing your image...\n\nExtracting giveaway details. This may take a moment.", nil)
	if err != nil {
		return err
	}

	image, err := b.msgr.DownloadPhoto(ctx, ev.PhotoFileID)
	if err != nil {
		logrus.WithError(err).Error("[BOT] Photo download failed")
		return b.edit(ctx, ev.ChatID, progressID,
			"Could not download that image. Please try /quick_add again.")
	}

	draft, source, err := b.extract.FromImage(ctx, image)
	if err != nil {
		logrus.WithError(err).Warn("[BOT] Extraction failed")
		return b.edit(ctx, ev.ChatID, progressID,
			"Could not read any text from this image.\n\nTips:\n- Crop to the giveaway post before sending\n- Avoid blurry or dark screenshots\n- Or use /add to enter the details manually")
	}
	logrus.Infof("[BOT] Extracted draft for user %d via %s", ev.UserID, source)

	return b.dialogue.BeginConfirmation(ctx, ev.ChatID, ev.UserID, draft, progressID)
}

// handleText dispatches free text by conversation phase: a URL when one was
// requested, an edit answer while editing, otherwise ignored.
func (b *Bot) handleText(ctx context.Context, ev transport.Event) error {
	state, err := b.store.Get(ctx, ev.UserID)
	if err != nil {
		return err
	}

	if state != nil && state.Phase == session.PhaseAwaitingURL {
		return b.handleURL(ctx, ev)
	}

	handled, err := b.dialogue.HandleText(ctx, ev)
	if err != nil {
		return err
	}
	if !handled {
		logrus.Debugf("[BOT] Ignoring free text from user %d outside any conversation", ev.UserID)
	}
	return nil
}

func (b *Bot) handleURL(ctx context.Context, ev transport.Event) error {
	if err := b.store.Delete(ctx, ev.UserID); err != nil {
		logrus.WithError(err).Warn("[BOT] Failed to clear awaiting-url state")
	}

	draft, err := b.extract.FromURL(ctx, strings.TrimSpace(ev.Text))
	if errors.Is(err, urlextract.ErrInvalidURL) {
		return b.send(ctx, ev.ChatID,
			"That doesn't look like a valid URL.\n\nExample: https://www.facebook.com/share/p/ABC123\n\nType /parse to try again.")
	}
	if err != nil {
		return err
	}
	return b.dialogue.BeginConfirmation(ctx, ev.ChatID, ev.UserID, draft, 0)
}

// handleCallback gives the dialogue first refusal, then resolves the
// bot-level keyboards (/remove, /won, /lost).
func (b *Bot) handleCallback(ctx context.Context, ev transport.Event) error {
	handled, err := b.dialogue.HandleCallback(ctx, ev)
	if err != nil || handled {
		return err
	}

	data := ev.CallbackData
	switch {
	case data == callbackCancelRemove:
		b.edit(ctx, ev.ChatID, ev.MessageID, "Removal Cancelled\n\nNo giveaway was removed.")
		return b.answer(ctx, ev.CallbackID, "Cancelled")

	case strings.HasPrefix(data, callbackRemovePrefix):
		return b.resolveRemove(ctx, ev, strings.TrimPrefix(data, callbackRemovePrefix))

	case strings.HasPrefix(data, callbackWonPrefix):
		return b.resolveResult(ctx, ev, strings.TrimPrefix(data, callbackWonPrefix), giveaway.ResultWon)

	case strings.HasPrefix(data, callbackLostPrefix):
		return b.resolveResult(ctx, ev, strings.TrimPrefix(data, callbackLostPrefix), giveaway.ResultLost)
	}

	logrus.Debugf("[BOT] Unrecognized callback %q from user %d", data, ev.UserID)
	return b.answer(ctx, ev.CallbackID, "")
}

func (b *Bot) resolveRemove(ctx context.Context, ev transport.Event, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return b.answer(ctx, ev.CallbackID, "Error: Giveaway not found")
	}

	g, err := b.usecase.Get(ctx, ev.UserID, id)
	if err != nil {
		return b.answer(ctx, ev.CallbackID, "Error: Giveaway not found")
	}
	if err := b.usecase.Remove(ctx, ev.UserID, id); err != nil {
		logrus.WithError(err).Error("[BOT] Remove failed")
		return b.answer(ctx, ev.CallbackID, "Error deleting giveaway")
	}

	b.edit(ctx, ev.ChatID, ev.MessageID,
		"Giveaway Removed Successfully!\n\n"+g.Title+" has been removed from your tracking list.")
	return b.answer(ctx, ev.CallbackID, "Giveaway removed!")
}

func (b *Bot) resolveResult(ctx context.Context, ev transport.Event, rawID, result string) error {
	id, err := parseID(rawID)
	if err != nil {
		return b.answer(ctx, ev.CallbackID, "Error: Giveaway not found")
	}

	g, err := b.usecase.Get(ctx, ev.UserID, id)
	if err != nil {
		return b.answer(ctx, ev.CallbackID, "Error: Giveaway not found")
	}
	if err := b.usecase.MarkResult(ctx, ev.UserID, id, result); err != nil {
		logrus.WithError(err).Error("[BOT] Result update failed")
		return b.answer(ctx, ev.CallbackID, "Error updating result")
	}

	if result == giveaway.ResultWon {
		b.edit(ctx, ev.ChatID, ev.MessageID,
			"Congratulations!\n\nMarked as WON: "+g.Title+"\n\nCheck your /stats to see your win rate climb.")
		return b.answer(ctx, ev.CallbackID, "Marked as won!")
	}
	b.edit(ctx, ev.ChatID, ev.MessageID,
		"Better luck next time!\n\nMarked as lost: "+g.Title)
	return b.answer(ctx, ev.CallbackID, "Marked as lost")
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid giveaway id")
	}
	return uint(id), nil
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) error {
	_, err := b.msgr.SendMessage(ctx, chatID, text, nil)
	return err
}

func (b *Bot) sendKeyboard(ctx context.Context, chatID int64, text string, keyboard [][]transport.Button) error {
	_, err := b.msgr.SendMessage(ctx, chatID, text, &transport.SendOptions{Keyboard: keyboard})
	return err
}

func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string) error {
	return b.msgr.EditMessage(ctx, chatID, messageID, text, nil)
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) error {
	return b.msgr.AnswerCallback(ctx, callbackID, text)
}
