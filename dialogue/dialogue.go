// Package dialogue implements the confirmation conversation: show the
// extracted draft, let the user save it as-is, walk every field in a fixed
// order, or cancel. State lives in a session.Store so a user never has more
// than one conversation in flight.
package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/dialogue/session"
	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/domains/transport"
	"github.com/AzielCF/az-giveaway/pkg/timeutils"
)

// Callback identifiers exposed on the confirmation keyboard.
const (
	CallbackConfirm = "confirm_extracted"
	CallbackEdit    = "edit_extracted"
	CallbackCancel  = "cancel_extracted"
)

// Reserved tokens during editing.
const (
	tokenKeep  = "ok"
	tokenClear = "skip"
)

// editFields is the fixed editing order.
var editFields = []string{
	"title", "organizer", "platform", "deadline",
	"winner_announcement", "prize", "requirements", "notes",
}

// Saver persists a confirmed draft and schedules its reminders.
type Saver interface {
	Save(ctx context.Context, userID int64, draft *giveaway.Draft) (uint, error)
}

type Dialogue struct {
	store session.Store
	saver Saver
	msgr  transport.Messenger
	ttl   time.Duration
}

func New(store session.Store, saver Saver, msgr transport.Messenger, ttl time.Duration) *Dialogue {
	return &Dialogue{store: store, saver: saver, msgr: msgr, ttl: ttl}
}

// BeginConfirmation shows the extracted draft with the action keyboard and
// puts the user in the confirming phase. When messageID is non-zero the
// existing processing message is edited in place.
func (d *Dialogue) BeginConfirmation(ctx context.Context, chatID, userID int64, draft *giveaway.Draft, messageID int) error {
	text := confirmationSummary(draft)
	keyboard := &transport.SendOptions{Keyboard: [][]transport.Button{
		{
			{Text: "Save as-is", Data: CallbackConfirm},
			{Text: "Edit details", Data: CallbackEdit},
		},
		{
			{Text: "Cancel", Data: CallbackCancel},
		},
	}}

	if messageID != 0 {
		if err := d.msgr.EditMessage(ctx, chatID, messageID, text, keyboard); err != nil {
			return err
		}
	} else {
		var err error
		messageID, err = d.msgr.SendMessage(ctx, chatID, text, keyboard)
		if err != nil {
			return err
		}
	}

	return d.store.Save(ctx, userID, &session.State{
		Phase:           session.PhaseConfirming,
		Draft:           draft,
		PromptMessageID: messageID,
	}, d.ttl)
}

// BeginEditing starts the field-by-field walk directly over the given draft,
// bypassing the confirmation card. Manual entry uses this with a blank draft.
func (d *Dialogue) BeginEditing(ctx context.Context, chatID, userID int64, draft *giveaway.Draft) error {
	if err := d.store.Save(ctx, userID, &session.State{
		Phase: session.PhaseEditing,
		Draft: draft,
	}, d.ttl); err != nil {
		return err
	}
	_, err := d.msgr.SendMessage(ctx, chatID, editPrompt(draft, 0), nil)
	return err
}

// HandleCallback processes confirm/edit/cancel button presses. Returns false
// when the callback does not belong to this conversation.
func (d *Dialogue) HandleCallback(ctx context.Context, ev transport.Event) (bool, error) {
	state, err := d.store.Get(ctx, ev.UserID)
	if err != nil {
		return false, err
	}

	switch ev.CallbackData {
	case CallbackConfirm:
		if state == nil || state.Phase != session.PhaseConfirming {
			return false, nil
		}
		d.save(ctx, ev.ChatID, ev.UserID, state)
		d.answer(ctx, ev.CallbackID, "Giveaway saved!")
		return true, nil

	case CallbackEdit:
		if state == nil || state.Phase != session.PhaseConfirming {
			return false, nil
		}
		state.Phase = session.PhaseEditing
		state.EditStep = 0
		if err := d.store.Save(ctx, ev.UserID, state, d.ttl); err != nil {
			return true, err
		}
		prompt := "Edit Giveaway Details\n\nI'll ask you to confirm or change each field.\n\n" + editPrompt(state.Draft, 0)
		d.edit(ctx, ev.ChatID, state.PromptMessageID, prompt)
		d.answer(ctx, ev.CallbackID, "")
		return true, nil

	case CallbackCancel:
		messageID := ev.MessageID
		if state != nil && state.PromptMessageID != 0 {
			messageID = state.PromptMessageID
		}
		d.edit(ctx, ev.ChatID, messageID, "Cancelled\n\nGiveaway was not saved. Try /quick_add again or use /add for manual entry.")
		if err := d.store.Delete(ctx, ev.UserID); err != nil {
			logrus.WithError(err).Warn("[DIALOGUE] Failed to clear state on cancel")
		}
		d.answer(ctx, ev.CallbackID, "Cancelled")
		return true, nil
	}

	return false, nil
}

// HandleText consumes free-text input while the user is editing. Returns
// false when the user has no editing conversation in flight.
func (d *Dialogue) HandleText(ctx context.Context, ev transport.Event) (bool, error) {
	state, err := d.store.Get(ctx, ev.UserID)
	if err != nil {
		return false, err
	}
	if state == nil || state.Phase != session.PhaseEditing {
		return false, nil
	}

	applyEdit(state.Draft, editFields[state.EditStep], ev.Text)

	if state.EditStep < len(editFields)-1 {
		state.EditStep++
		if err := d.store.Save(ctx, ev.UserID, state, d.ttl); err != nil {
			return true, err
		}
		if _, err := d.msgr.SendMessage(ctx, ev.ChatID, editPrompt(state.Draft, state.EditStep), nil); err != nil {
			logrus.WithError(err).Warn("[DIALOGUE] Failed to send edit prompt")
		}
		return true, nil
	}

	d.save(ctx, ev.ChatID, ev.UserID, state)
	return true, nil
}

// applyEdit mutates one draft field. The keep token leaves it untouched; the
// clear token empties the winner announcement; anything else is taken
// verbatim, trusting the user over the parser.
func applyEdit(draft *giveaway.Draft, field, input string) {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)

	if lower == tokenKeep {
		return
	}
	if field == "winner_announcement" && lower == tokenClear {
		draft.WinnerAnnouncement = ""
		return
	}

	switch field {
	case "title":
		draft.Title = trimmed
	case "organizer":
		draft.Organizer = trimmed
	case "platform":
		draft.Platform = giveaway.Platform(trimmed)
	case "deadline":
		draft.Deadline = trimmed
	case "winner_announcement":
		draft.WinnerAnnouncement = trimmed
	case "prize":
		draft.Prize = trimmed
	case "requirements":
		draft.Requirements = trimmed
	case "notes":
		draft.Notes = trimmed
	}
}

// save persists the draft, reports the outcome and clears the conversation.
// State is cleared even on failure so the user never gets stuck retrying
// against a broken session.
func (d *Dialogue) save(ctx context.Context, chatID, userID int64, state *session.State) {
	_, err := d.saver.Save(ctx, userID, state.Draft)
	if err != nil {
		logrus.WithError(err).Error("[DIALOGUE] Failed to persist giveaway")
		d.send(ctx, chatID, "Error saving giveaway. Please try again or use /add for manual entry.")
	} else {
		d.send(ctx, chatID, savedSummary(state.Draft))
	}

	if err := d.store.Delete(ctx, userID); err != nil {
		logrus.WithError(err).Warn("[DIALOGUE] Failed to clear conversation state")
	}
}

func confirmationSummary(draft *giveaway.Draft) string {
	title := draft.Title
	if len(title) > 150 {
		title = title[:150] + "..."
	}

	var b strings.Builder
	b.WriteString("Extraction Complete!\n\nExtracted Information:\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Organizer: %s\n", draft.Organizer)
	fmt.Fprintf(&b, "Platform: %s\n", draft.Platform)
	fmt.Fprintf(&b, "Deadline: %s\n", orNotDetected(draft.Deadline))
	fmt.Fprintf(&b, "Winner announcement: %s\n", orNotDetected(draft.WinnerAnnouncement))
	fmt.Fprintf(&b, "Prize: %s\n", draft.Prize)
	fmt.Fprintf(&b, "Requirements: %s\n", draft.Requirements)
	if draft.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", draft.Notes)
	}
	b.WriteString("\nIs this information correct?")
	return b.String()
}

func savedSummary(draft *giveaway.Draft) string {
	var b strings.Builder
	b.WriteString("Giveaway Saved Successfully!\n\n")
	fmt.Fprintf(&b, "%s\n", draft.Title)

	if t, err := timeutils.ParseFlexible(draft.Deadline); err == nil {
		fmt.Fprintf(&b, "Deadline: %s (%s)\n", draft.Deadline, humanize.Time(t))
		b.WriteString("\nI'll remind you before the deadline!")
	} else {
		b.WriteString("\nConsider adding a deadline for reminders")
	}
	if draft.WinnerAnnouncement != "" {
		b.WriteString("\nI'll also remind you when the winner is announced!")
	}
	return b.String()
}

func editPrompt(draft *giveaway.Draft, step int) string {
	switch editFields[step] {
	case "title":
		return fmt.Sprintf("Current Title: %s\n\nIs this title correct? Type the correct title or send 'ok' to keep it:", draft.Title)
	case "organizer":
		return fmt.Sprintf("Current Organizer: %s\n\nIs this organizer correct? Type the correct organizer or 'ok':", draft.Organizer)
	case "platform":
		return fmt.Sprintf("Current Platform: %s\n\nIs this platform correct? Type the correct platform or 'ok':", draft.Platform)
	case "deadline":
		return fmt.Sprintf("Current Deadline: %s\n\nIs this deadline correct? Use format DD/MM/YYYY HH:MM or 'ok':", orNotDetected(draft.Deadline))
	case "winner_announcement":
		return fmt.Sprintf("Current Winner Announcement: %s\n\nWhen will the winner be announced? Use format DD/MM/YYYY HH:MM or 'ok' (leave as is) or 'skip' (remove):", orNotMentioned(draft.WinnerAnnouncement))
	case "prize":
		return fmt.Sprintf("Current Prize: %s\n\nIs this prize correct? Type the correct prize or 'ok':", draft.Prize)
	case "requirements":
		return fmt.Sprintf("Current Requirements: %s\n\nAre these requirements correct? Type the correct requirements or 'ok':", draft.Requirements)
	case "notes":
		if draft.Notes == "" {
			return "Current Notes: None\n\nAny additional notes? Type notes or 'ok':"
		}
		return fmt.Sprintf("Current Notes: %s\n\nAny additional notes? Type notes or 'ok':", draft.Notes)
	}
	return ""
}

func orNotDetected(s string) string {
	if s == "" {
		return "Not detected"
	}
	return s
}

func orNotMentioned(s string) string {
	if s == "" {
		return "Not mentioned"
	}
	return s
}

func (d *Dialogue) send(ctx context.Context, chatID int64, text string) {
	if _, err := d.msgr.SendMessage(ctx, chatID, text, nil); err != nil {
		logrus.WithError(err).Warn("[DIALOGUE] Failed to send message")
	}
}

func (d *Dialogue) edit(ctx context.Context, chatID int64, messageID int, text string) {
	if err := d.msgr.EditMessage(ctx, chatID, messageID, text, nil); err != nil {
		logrus.WithError(err).Warn("[DIALOGUE] Failed to edit message")
	}
}

func (d *Dialogue) answer(ctx context.Context, callbackID, text string) {
	if err := d.msgr.AnswerCallback(ctx, callbackID, text); err != nil {
		logrus.WithError(err).Warn("[DIALOGUE] Failed to answer callback")
	}
}
