package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AzielCF/az-giveaway/dialogue/session"
	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/domains/transport"
	"github.com/AzielCF/az-giveaway/extractor/normalize"
)

var knownCommands = []string{
	"start", "help", "commands", "about",
	"add", "quick_add", "parse",
	"list", "today", "week", "remove",
	"stats", "analytics", "year", "won", "lost",
}

const startText = `Giveaway Tracker Bot

Welcome! I can help you track giveaways in three ways:

Manual Entry:
/add - Add a giveaway step by step

Smart Entry:
/quick_add - Send me a screenshot and I'll extract the details automatically
/parse - Send me a giveaway URL and I'll extract details from the post

View & Manage:
/list - View all giveaways
/today - Giveaways ending today
/week - Giveaways ending this week
/remove - Remove a giveaway
/won - Mark a giveaway as won
/lost - Mark a giveaway as lost

Analytics:
/stats - Your giveaway statistics
/analytics - Detailed participation analysis
/year - This year's summary

Information:
/commands - Quick command reference
/help - Detailed help guide
/about - About this bot

Try /quick_add with a giveaway screenshot!`

const helpText = `Giveaway Tracker Help

Image Recognition:
1. Type /quick_add
2. Send a screenshot of the giveaway post
3. I'll automatically extract the title, organizer, deadline, platform, prize and requirements
4. You can edit anything I got wrong before saving

URL Parser:
1. Type /parse
2. Send any giveaway URL (Facebook, Instagram, Twitter, TikTok, YouTube, Telegram)
3. I'll build an entry from the link, faster than screenshots for some posts

Manual Entry:
/add - Step-by-step guided entry, eight short questions

Viewing:
/list - All tracked giveaways
/today - Ending today
/week - Ending in the next seven days

Results:
/won and /lost record the outcome once a giveaway finishes. Use them bare
to pick from your pending list, or pass an id like /won 12.

Reminders:
Every saved deadline gets reminders 24 hours, 6 hours and 1 hour before it,
plus one 30 minutes before the winner announcement when known.

Supported platforms: Facebook, Instagram, Twitter, TikTok, YouTube, Telegram.`

const commandsText = `Command Reference

/add - manual entry
/quick_add - extract from screenshot
/parse - extract from URL
/list /today /week - view giveaways
/remove - remove a giveaway
/won /lost - record results
/stats /analytics /year - your numbers
/help - detailed guide
/about - about this bot`

const aboutText = `Giveaway Tracker Bot

Tracks the giveaways you join so you never miss a deadline or a winner
announcement. Screenshots and links go through a recognition pipeline that
reads the post and fills in the details for you; everything stays editable
before it is saved.

Built for giveaway hunters in Malaysia and beyond.`

func (b *Bot) handleCommand(ctx context.Context, ev transport.Event) error {
	switch ev.Command {
	case "start":
		return b.send(ctx, ev.ChatID, startText)
	case "help":
		return b.send(ctx, ev.ChatID, helpText)
	case "commands":
		return b.send(ctx, ev.ChatID, commandsText)
	case "about":
		return b.send(ctx, ev.ChatID, aboutText)

	case "add":
		return b.cmdAdd(ctx, ev)
	case "quick_add":
		return b.cmdQuickAdd(ctx, ev)
	case "parse":
		return b.cmdParse(ctx, ev)

	case "list":
		return b.cmdList(ctx, ev)
	case "today":
		return b.cmdToday(ctx, ev)
	case "week":
		return b.cmdWeek(ctx, ev)
	case "remove":
		return b.cmdRemove(ctx, ev)

	case "stats":
		return b.cmdStats(ctx, ev)
	case "analytics":
		return b.cmdAnalytics(ctx, ev)
	case "year":
		return b.cmdYear(ctx, ev)
	case "won":
		return b.cmdResult(ctx, ev, giveaway.ResultWon)
	case "lost":
		return b.cmdResult(ctx, ev, giveaway.ResultLost)
	}

	return b.send(ctx, ev.ChatID,
		"Unknown command: /"+ev.Command+"\n\nAvailable commands: /"+strings.Join(knownCommands, " /"))
}

// cmdAdd starts manual entry by walking the editing flow over a blank draft.
// The same prompts and tokens apply as when correcting an extraction.
func (b *Bot) cmdAdd(ctx context.Context, ev transport.Event) error {
	draft := normalize.DraftAt(&giveaway.Draft{}, b.now())
	if err := b.send(ctx, ev.ChatID,
		"Add New Giveaway\n\nI'll walk you through eight quick questions. Answer each one, or send 'ok' to keep the value shown."); err != nil {
		return err
	}
	return b.dialogue.BeginEditing(ctx, ev.ChatID, ev.UserID, draft)
}

func (b *Bot) cmdQuickAdd(ctx context.Context, ev transport.Event) error {
	if err := b.store.Save(ctx, ev.UserID, &session.State{Phase: session.PhaseAwaitingImage}, b.ttl); err != nil {
		return err
	}
	return b.send(ctx, ev.ChatID,
		"Quick Add with Image Recognition\n\nSend me a screenshot of the giveaway post and I'll extract:\n- Title and organizer\n- Deadline and platform\n- Prize and requirements\n\nFor best results, crop the screenshot to the post itself.")
}

func (b *Bot) cmdParse(ctx context.Context, ev transport.Event) error {
	if err := b.store.Save(ctx, ev.UserID, &session.State{Phase: session.PhaseAwaitingURL}, b.ttl); err != nil {
		return err
	}
	return b.send(ctx, ev.ChatID,
		"URL Parser\n\nSend me the link to the giveaway post (Facebook, Instagram, Twitter, TikTok, YouTube or Telegram) and I'll build an entry from it.")
}

func (b *Bot) cmdList(ctx context.Context, ev transport.Event) error {
	items, err := b.usecase.List(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.send(ctx, ev.ChatID, "You're not tracking any giveaways yet.\n\nUse /quick_add with a screenshot or /add to start.")
	}
	return b.send(ctx, ev.ChatID, formatList("Your Giveaways", items))
}

func (b *Bot) cmdToday(ctx context.Context, ev transport.Event) error {
	items, err := b.usecase.EndingToday(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.send(ctx, ev.ChatID, "Nothing ends today. Enjoy the quiet!")
	}
	return b.send(ctx, ev.ChatID, formatList("Ending Today", items))
}

func (b *Bot) cmdWeek(ctx context.Context, ev transport.Event) error {
	items, err := b.usecase.EndingThisWeek(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.send(ctx, ev.ChatID, "Nothing ends in the next seven days.")
	}
	return b.send(ctx, ev.ChatID, formatList("Ending This Week", items))
}

func (b *Bot) cmdRemove(ctx context.Context, ev transport.Event) error {
	items, err := b.usecase.List(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.send(ctx, ev.ChatID, "Nothing to remove, your list is empty.")
	}

	keyboard := make([][]transport.Button, 0, len(items)+1)
	for _, g := range items {
		if len(keyboard) == 10 {
			break
		}
		keyboard = append(keyboard, []transport.Button{{
			Text: displayTitle(g.Title, 40),
			Data: fmt.Sprintf("%s%d", callbackRemovePrefix, g.ID),
		}})
	}
	keyboard = append(keyboard, []transport.Button{{Text: "Cancel", Data: callbackCancelRemove}})

	return b.sendKeyboard(ctx, ev.ChatID, "Remove Giveaway\n\nWhich one should I remove?", keyboard)
}

// cmdResult records a win or loss. With an id argument it resolves directly;
// bare, it offers the pending giveaways as buttons.
func (b *Bot) cmdResult(ctx context.Context, ev transport.Event, result string) error {
	arg := strings.TrimSpace(ev.Text)
	if arg != "" {
		id, err := parseID(arg)
		if err != nil {
			return b.send(ctx, ev.ChatID, "That doesn't look like a giveaway id. Use /list to find the number, or send the bare command to pick from a list.")
		}
		g, err := b.usecase.Get(ctx, ev.UserID, id)
		if err != nil {
			return b.send(ctx, ev.ChatID, fmt.Sprintf("Giveaway %d not found in your list.", id))
		}
		if err := b.usecase.MarkResult(ctx, ev.UserID, id, result); err != nil {
			return err
		}
		if result == giveaway.ResultWon {
			return b.send(ctx, ev.ChatID, "Congratulations!\n\nMarked as WON: "+g.Title)
		}
		return b.send(ctx, ev.ChatID, "Better luck next time!\n\nMarked as lost: "+g.Title)
	}

	pending, err := b.usecase.PendingResult(ctx, ev.UserID, 10)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return b.send(ctx, ev.ChatID, "No giveaways waiting for a result.")
	}

	prefix := callbackWonPrefix
	header := "Mark as Won\n\nWhich giveaway did you win?"
	if result == giveaway.ResultLost {
		prefix = callbackLostPrefix
		header = "Mark as Lost\n\nWhich giveaway didn't work out?"
	}

	keyboard := make([][]transport.Button, 0, len(pending))
	for _, g := range pending {
		keyboard = append(keyboard, []transport.Button{{
			Text: displayTitle(g.Title, 40),
			Data: fmt.Sprintf("%s%d", prefix, g.ID),
		}})
	}
	return b.sendKeyboard(ctx, ev.ChatID, header, keyboard)
}

func (b *Bot) cmdStats(ctx context.Context, ev transport.Event) error {
	stats, err := b.usecase.Stats(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if stats.Total == 0 {
		return b.send(ctx, ev.ChatID, "No statistics yet, add your first giveaway with /quick_add or /add.")
	}

	var sb strings.Builder
	sb.WriteString("Your Giveaway Statistics\n\n")
	fmt.Fprintf(&sb, "Total tracked: %d\n", stats.Total)
	fmt.Fprintf(&sb, "Active: %d\n", stats.Active)
	fmt.Fprintf(&sb, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(&sb, "Won: %d\n", stats.Won)
	fmt.Fprintf(&sb, "Lost: %d\n", stats.Lost)
	fmt.Fprintf(&sb, "Past deadline: %d\n", stats.Ended)

	if decided := stats.Won + stats.Lost; decided > 0 {
		fmt.Fprintf(&sb, "\nWin rate: %.1f%%\n", float64(stats.Won)/float64(decided)*100)
	}
	if stats.FirstEntry != nil {
		fmt.Fprintf(&sb, "Tracking since: %s\n", stats.FirstEntry.Format("Jan 2, 2006"))
	}
	return b.send(ctx, ev.ChatID, sb.String())
}

func (b *Bot) cmdAnalytics(ctx context.Context, ev transport.Event) error {
	analytics, err := b.usecase.Analytics(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(analytics.Platforms) == 0 {
		return b.send(ctx, ev.ChatID, "No data to analyze yet. Add a few giveaways first!")
	}

	var sb strings.Builder
	sb.WriteString("Participation Analysis\n\nBy platform:\n")
	for _, p := range analytics.Platforms {
		fmt.Fprintf(&sb, "- %s: %d entered, %d won\n", p.Platform, p.Count, p.Wins)
	}

	if len(analytics.Monthly) > 0 {
		sb.WriteString("\nLast six months:\n")
		for _, m := range analytics.Monthly {
			fmt.Fprintf(&sb, "- %s: %d entered, %d won\n", formatMonth(m.Month), m.Count, m.Wins)
		}
	}
	return b.send(ctx, ev.ChatID, sb.String())
}

func (b *Bot) cmdYear(ctx context.Context, ev transport.Event) error {
	summary, err := b.usecase.YearlySummary(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(summary.Monthly) == 0 {
		return b.send(ctx, ev.ChatID, fmt.Sprintf("Nothing tracked in %d yet.", summary.Year))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your %d in Giveaways\n\n", summary.Year)
	for _, m := range summary.Monthly {
		fmt.Fprintf(&sb, "- %s: %d entered, %d won\n", formatMonth(m.Month), m.Count, m.Wins)
	}

	if len(summary.Wins) > 0 {
		fmt.Fprintf(&sb, "\nWins this year (%d):\n", len(summary.Wins))
		for _, g := range summary.Wins {
			fmt.Fprintf(&sb, "- %s (%s)\n", displayTitle(g.Title, 60), g.Prize)
		}
	} else {
		sb.WriteString("\nNo wins yet this year, keep entering!")
	}
	return b.send(ctx, ev.ChatID, sb.String())
}

func formatList(header string, items []giveaway.Giveaway) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d)\n", header, len(items))
	for i, g := range items {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, displayTitle(g.Title, 60))
		fmt.Fprintf(&sb, "   Platform: %s | Prize: %s\n", g.Platform, g.Prize)
		if g.Deadline != nil {
			fmt.Fprintf(&sb, "   Deadline: %s (%s)\n", g.Deadline.Format("02/01/2006 15:04"), humanize.Time(*g.Deadline))
		} else {
			sb.WriteString("   Deadline: not set\n")
		}
		if g.Status == giveaway.StatusCompleted {
			fmt.Fprintf(&sb, "   Result: %s\n", g.Result)
		}
	}
	return sb.String()
}

// displayTitle trims a title for button labels and list rows.
func displayTitle(title string, max int) string {
	if len(title) <= max {
		return title
	}
	return title[:max-3] + "..."
}

// formatMonth turns the breakdown key YYYY-MM into "Jan 2006".
func formatMonth(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}
