// Package repository contains the gorm-backed persistence implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
	pkgError "github.com/AzielCF/az-giveaway/pkg/error"
)

type GiveawayRepository struct {
	db *gorm.DB
}

func NewGiveawayRepository(db *gorm.DB) *GiveawayRepository {
	return &GiveawayRepository{db: db}
}

// Init migrates the schema.
func (r *GiveawayRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&giveaway.Giveaway{}, &giveaway.Reminder{})
}

func (r *GiveawayRepository) Insert(ctx context.Context, g *giveaway.Giveaway) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("failed to insert giveaway: %w", err)
	}
	return nil
}

func (r *GiveawayRepository) GetByID(ctx context.Context, id uint, userID int64) (*giveaway.Giveaway, error) {
	var g giveaway.Giveaway
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgError.NotFoundError(fmt.Sprintf("giveaway %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return &g, nil
}

func (r *GiveawayRepository) ListByUser(ctx context.Context, userID int64) ([]giveaway.Giveaway, error) {
	var out []giveaway.Giveaway
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("deadline ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaways: %w", err)
	}
	return out, nil
}

func (r *GiveawayRepository) ListEndingBetween(ctx context.Context, userID int64, from, to time.Time) ([]giveaway.Giveaway, error) {
	var out []giveaway.Giveaway
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND deadline >= ? AND deadline < ?",
			userID, giveaway.StatusActive, from, to).
		Order("deadline ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ending giveaways: %w", err)
	}
	return out, nil
}

func (r *GiveawayRepository) ListPendingResult(ctx context.Context, userID int64, limit int) ([]giveaway.Giveaway, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND result = ?", userID, giveaway.ResultPending).
		Order("deadline ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []giveaway.Giveaway
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending giveaways: %w", err)
	}
	return out, nil
}

func (r *GiveawayRepository) UpdateStatus(ctx context.Context, id uint, userID int64, status string) error {
	return r.updateColumn(ctx, id, userID, "status", status)
}

func (r *GiveawayRepository) UpdateResult(ctx context.Context, id uint, userID int64, result string) error {
	// Marking a result also completes the giveaway.
	res := r.db.WithContext(ctx).
		Model(&giveaway.Giveaway{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"result": result, "status": giveaway.StatusCompleted})
	if res.Error != nil {
		return fmt.Errorf("failed to update result: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgError.NotFoundError(fmt.Sprintf("giveaway %d not found", id))
	}
	return nil
}

func (r *GiveawayRepository) updateColumn(ctx context.Context, id uint, userID int64, column string, value any) error {
	res := r.db.WithContext(ctx).
		Model(&giveaway.Giveaway{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgError.NotFoundError(fmt.Sprintf("giveaway %d not found", id))
	}
	return nil
}

func (r *GiveawayRepository) Delete(ctx context.Context, id uint, userID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&giveaway.Giveaway{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgError.NotFoundError(fmt.Sprintf("giveaway %d not found", id))
		}
		return tx.Where("giveaway_id = ?", id).Delete(&giveaway.Reminder{}).Error
	})
	if err != nil {
		var nf pkgError.NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return fmt.Errorf("failed to delete giveaway: %w", err)
	}
	return nil
}

func (r *GiveawayRepository) InsertReminder(ctx context.Context, rem *giveaway.Reminder) error {
	if err := r.db.WithContext(ctx).Create(rem).Error; err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func (r *GiveawayRepository) DueReminders(ctx context.Context, now time.Time) ([]giveaway.Reminder, error) {
	var out []giveaway.Reminder
	err := r.db.WithContext(ctx).
		Where("sent = ? AND remind_at <= ?", false, now).
		Order("remind_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	return out, nil
}

func (r *GiveawayRepository) MarkReminderSent(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&giveaway.Reminder{}).
		Where("id = ?", id).
		Update("sent", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func (r *GiveawayRepository) Stats(ctx context.Context, userID int64, now time.Time) (*giveaway.Stats, error) {
	stats := &giveaway.Stats{}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&giveaway.Giveaway{}).Where("user_id = ?", userID)
	}

	counts := []struct {
		dest *int64
		cond func(*gorm.DB) *gorm.DB
	}{
		{&stats.Total, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.Active, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", giveaway.StatusActive) }},
		{&stats.Completed, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", giveaway.StatusCompleted) }},
		{&stats.Won, func(q *gorm.DB) *gorm.DB { return q.Where("result = ?", giveaway.ResultWon) }},
		{&stats.Lost, func(q *gorm.DB) *gorm.DB { return q.Where("result = ?", giveaway.ResultLost) }},
		{&stats.Ended, func(q *gorm.DB) *gorm.DB { return q.Where("deadline IS NOT NULL AND deadline < ?", now) }},
	}
	for _, c := range counts {
		if err := c.cond(base()).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute stats: %w", err)
		}
	}

	type bounds struct {
		First *time.Time
		Last  *time.Time
	}
	var b bounds
	err := base().
		Select("MIN(created_at) AS first, MAX(created_at) AS last").
		Scan(&b).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute entry bounds: %w", err)
	}
	stats.FirstEntry = b.First
	stats.LastEntry = b.Last

	return stats, nil
}

func (r *GiveawayRepository) PlatformBreakdown(ctx context.Context, userID int64) ([]giveaway.PlatformStat, error) {
	var out []giveaway.PlatformStat
	err := r.db.WithContext(ctx).
		Model(&giveaway.Giveaway{}).
		Select("platform, COUNT(*) AS count, SUM(CASE WHEN result = ? THEN 1 ELSE 0 END) AS wins", giveaway.ResultWon).
		Where("user_id = ?", userID).
		Group("platform").
		Order("count DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute platform breakdown: %w", err)
	}
	return out, nil
}

// MonthlyBreakdown aggregates per calendar month in Go rather than SQL so the
// query stays portable between SQLite and Postgres date functions.
func (r *GiveawayRepository) MonthlyBreakdown(ctx context.Context, userID int64, since time.Time) ([]giveaway.MonthStat, error) {
	var rows []giveaway.Giveaway
	err := r.db.WithContext(ctx).
		Select("created_at, result").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly breakdown: %w", err)
	}

	byMonth := make(map[string]*giveaway.MonthStat)
	for _, g := range rows {
		month := g.CreatedAt.Format("2006-01")
		stat, ok := byMonth[month]
		if !ok {
			stat = &giveaway.MonthStat{Month: month}
			byMonth[month] = stat
		}
		stat.Count++
		if g.Result == giveaway.ResultWon {
			stat.Wins++
		}
	}

	out := make([]giveaway.MonthStat, 0, len(byMonth))
	for _, stat := range byMonth {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *GiveawayRepository) WonSince(ctx context.Context, userID int64, since time.Time, limit int) ([]giveaway.Giveaway, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND result = ? AND created_at >= ?", userID, giveaway.ResultWon, since).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []giveaway.Giveaway
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list won giveaways: %w", err)
	}
	return out, nil
}
