package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/domains/transport"
)

// ReminderDispatcher scans for due reminders on a fixed interval and delivers
// them through the messaging transport. Reminders are marked sent only after
// a successful delivery, so a transport outage retries on the next tick.
type ReminderDispatcher struct {
	repo     giveaway.IRepository
	msgr     transport.Messenger
	interval time.Duration
	now      func() time.Time
}

func NewReminderDispatcher(repo giveaway.IRepository, msgr transport.Messenger, interval time.Duration) *ReminderDispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderDispatcher{repo: repo, msgr: msgr, interval: interval, now: time.Now}
}

// Run blocks until the context is cancelled.
func (d *ReminderDispatcher) Run(ctx context.Context) {
	logrus.Infof("[REMIND] Dispatcher started (interval %s)", d.interval)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[REMIND] Dispatcher stopped")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick processes everything currently due. Exposed for tests.
func (d *ReminderDispatcher) Tick(ctx context.Context) {
	due, err := d.repo.DueReminders(ctx, d.now())
	if err != nil {
		logrus.WithError(err).Error("[REMIND] Failed to query due reminders")
		return
	}

	for _, rem := range due {
		g, err := d.repo.GetByID(ctx, rem.GiveawayID, rem.UserID)
		if err != nil {
			// Giveaway was deleted; retire the orphan reminder.
			if markErr := d.repo.MarkReminderSent(ctx, rem.ID); markErr != nil {
				logrus.WithError(markErr).Warnf("[REMIND] Failed to retire orphan reminder %d", rem.ID)
			}
			continue
		}

		if _, err := d.msgr.SendMessage(ctx, rem.UserID, d.message(&rem, g), nil); err != nil {
			logrus.WithError(err).Warnf("[REMIND] Delivery failed for reminder %d, will retry", rem.ID)
			continue
		}
		if err := d.repo.MarkReminderSent(ctx, rem.ID); err != nil {
			logrus.WithError(err).Warnf("[REMIND] Failed to mark reminder %d sent", rem.ID)
		}
	}
}

func (d *ReminderDispatcher) message(rem *giveaway.Reminder, g *giveaway.Giveaway) string {
	switch rem.Kind {
	case giveaway.ReminderWinner:
		return fmt.Sprintf("Winner announcement coming up!\n\n%s\n\nThe winner will be announced %s. Keep an eye on the post!",
			g.Title, relativeTime(g.WinnerAnnouncement))
	default:
		return fmt.Sprintf("Deadline reminder!\n\n%s\n\nThis giveaway ends %s. Make sure you've completed all requirements:\n%s",
			g.Title, relativeTime(g.Deadline), g.Requirements)
	}
}

func relativeTime(t *time.Time) string {
	if t == nil {
		return "soon"
	}
	return humanize.Time(*t)
}
