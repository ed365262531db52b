// Package usecase contains the application services: persisting confirmed
// drafts, the list/result/analytics queries behind the bot commands, and the
// reminder dispatcher.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/pkg/timeutils"
	"github.com/AzielCF/az-giveaway/validations"
)

// Reminder offsets before the deadline, largest first.
var deadlineReminderOffsets = []time.Duration{24 * time.Hour, 6 * time.Hour, time.Hour}

// winnerReminderLead is how far before the announcement the winner reminder fires.
const winnerReminderLead = 30 * time.Minute

type GiveawayUsecase struct {
	repo giveaway.IRepository
	now  func() time.Time
}

func NewGiveawayUsecase(repo giveaway.IRepository, now func() time.Time) *GiveawayUsecase {
	if now == nil {
		now = time.Now
	}
	return &GiveawayUsecase{repo: repo, now: now}
}

// Save persists a confirmed draft and schedules its reminders. Draft date
// fields arrive in the canonical DD/MM/YYYY HH:MM form; unparseable dates are
// stored as absent rather than rejected, since the user already confirmed.
func (u *GiveawayUsecase) Save(ctx context.Context, userID int64, draft *giveaway.Draft) (uint, error) {
	if err := validations.ValidateDraft(draft); err != nil {
		return 0, err
	}

	g := &giveaway.Giveaway{
		UserID:       userID,
		Title:        draft.Title,
		Organizer:    draft.Organizer,
		Platform:     string(draft.Platform),
		Prize:        draft.Prize,
		PostURL:      draft.PostURL,
		Requirements: draft.Requirements,
		Notes:        draft.Notes,
		Status:       giveaway.StatusActive,
		Result:       giveaway.ResultPending,
	}
	if t, err := timeutils.ParseFlexible(draft.Deadline); err == nil {
		g.Deadline = &t
	}
	if t, err := timeutils.ParseFlexible(draft.WinnerAnnouncement); err == nil {
		g.WinnerAnnouncement = &t
	}

	if err := u.repo.Insert(ctx, g); err != nil {
		return 0, err
	}

	u.scheduleReminders(ctx, g)
	return g.ID, nil
}

// scheduleReminders creates the fixed-offset reminders, each only if its fire
// time is still in the future. Scheduling failures are logged, not returned;
// the giveaway itself is already saved.
func (u *GiveawayUsecase) scheduleReminders(ctx context.Context, g *giveaway.Giveaway) {
	now := u.now()

	if g.Deadline != nil {
		for _, offset := range deadlineReminderOffsets {
			at := g.Deadline.Add(-offset)
			if !at.After(now) {
				continue
			}
			rem := &giveaway.Reminder{
				GiveawayID: g.ID,
				UserID:     g.UserID,
				RemindAt:   at,
				Kind:       giveaway.ReminderDeadline,
			}
			if err := u.repo.InsertReminder(ctx, rem); err != nil {
				logrus.WithError(err).Warnf("[REMIND] Failed to schedule deadline reminder for giveaway %d", g.ID)
			}
		}
	}

	if g.WinnerAnnouncement != nil {
		at := g.WinnerAnnouncement.Add(-winnerReminderLead)
		if at.After(now) {
			rem := &giveaway.Reminder{
				GiveawayID: g.ID,
				UserID:     g.UserID,
				RemindAt:   at,
				Kind:       giveaway.ReminderWinner,
			}
			if err := u.repo.InsertReminder(ctx, rem); err != nil {
				logrus.WithError(err).Warnf("[REMIND] Failed to schedule winner reminder for giveaway %d", g.ID)
			}
		}
	}
}

func (u *GiveawayUsecase) Get(ctx context.Context, userID int64, id uint) (*giveaway.Giveaway, error) {
	return u.repo.GetByID(ctx, id, userID)
}

func (u *GiveawayUsecase) List(ctx context.Context, userID int64) ([]giveaway.Giveaway, error) {
	return u.repo.ListByUser(ctx, userID)
}

// EndingToday lists active giveaways whose deadline falls today.
func (u *GiveawayUsecase) EndingToday(ctx context.Context, userID int64) ([]giveaway.Giveaway, error) {
	now := u.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return u.repo.ListEndingBetween(ctx, userID, start, start.AddDate(0, 0, 1))
}

// EndingThisWeek lists active giveaways closing in the next seven days.
func (u *GiveawayUsecase) EndingThisWeek(ctx context.Context, userID int64) ([]giveaway.Giveaway, error) {
	now := u.now()
	return u.repo.ListEndingBetween(ctx, userID, now, now.AddDate(0, 0, 7))
}

func (u *GiveawayUsecase) PendingResult(ctx context.Context, userID int64, limit int) ([]giveaway.Giveaway, error) {
	return u.repo.ListPendingResult(ctx, userID, limit)
}

func (u *GiveawayUsecase) Remove(ctx context.Context, userID int64, id uint) error {
	return u.repo.Delete(ctx, id, userID)
}

func (u *GiveawayUsecase) UpdateStatus(ctx context.Context, userID int64, id uint, status string) error {
	if status != giveaway.StatusActive && status != giveaway.StatusCompleted {
		return fmt.Errorf("invalid status: %s", status)
	}
	return u.repo.UpdateStatus(ctx, id, userID, status)
}

// MarkResult records a win or loss, completing the giveaway.
func (u *GiveawayUsecase) MarkResult(ctx context.Context, userID int64, id uint, result string) error {
	if result != giveaway.ResultWon && result != giveaway.ResultLost {
		return fmt.Errorf("invalid result: %s", result)
	}
	return u.repo.UpdateResult(ctx, id, userID, result)
}

func (u *GiveawayUsecase) Stats(ctx context.Context, userID int64) (*giveaway.Stats, error) {
	return u.repo.Stats(ctx, userID, u.now())
}

// Analytics is the detailed breakdown behind /analytics: per-platform totals
// and the last six months of activity.
type Analytics struct {
	Platforms []giveaway.PlatformStat `json:"platforms"`
	Monthly   []giveaway.MonthStat    `json:"monthly"`
}

func (u *GiveawayUsecase) Analytics(ctx context.Context, userID int64) (*Analytics, error) {
	platforms, err := u.repo.PlatformBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	monthly, err := u.repo.MonthlyBreakdown(ctx, userID, u.now().AddDate(0, -6, 0))
	if err != nil {
		return nil, err
	}
	return &Analytics{Platforms: platforms, Monthly: monthly}, nil
}

// YearlySummary covers the current calendar year: month-by-month activity and
// the wins collected so far.
type YearlySummary struct {
	Year    int                  `json:"year"`
	Monthly []giveaway.MonthStat `json:"monthly"`
	Wins    []giveaway.Giveaway  `json:"wins"`
}

func (u *GiveawayUsecase) YearlySummary(ctx context.Context, userID int64) (*YearlySummary, error) {
	now := u.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	monthly, err := u.repo.MonthlyBreakdown(ctx, userID, yearStart)
	if err != nil {
		return nil, err
	}
	wins, err := u.repo.WonSince(ctx, userID, yearStart, 0)
	if err != nil {
		return nil, err
	}
	return &YearlySummary{Year: now.Year(), Monthly: monthly, Wins: wins}, nil
}
