package giveaway

import (
	"context"
	"time"
)

// Platform identifies the social network a giveaway runs on.
type Platform string

const (
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
	PlatformTikTok    Platform = "TikTok"
	PlatformYouTube   Platform = "YouTube"
	PlatformTelegram  Platform = "Telegram"
	PlatformUnknown   Platform = "Unknown"
)

// Draft is the structured-but-unconfirmed giveaway data produced by
// extraction, pending user confirmation. Date fields hold the canonical
// DD/MM/YYYY HH:MM representation; empty means "not detected".
type Draft struct {
	Title              string   `json:"title"`
	Organizer          string   `json:"organizer"`
	Platform           Platform `json:"platform"`
	Deadline           string   `json:"deadline,omitempty"`
	WinnerAnnouncement string   `json:"winner_announcement,omitempty"`
	Prize              string   `json:"prize"`
	Requirements       string   `json:"requirements"`
	Notes              string   `json:"notes,omitempty"`
	PostURL            string   `json:"post_url,omitempty"`
}

// Lifecycle status of a tracked giveaway.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"

	ResultPending = "pending"
	ResultWon     = "won"
	ResultLost    = "lost"
)

// Giveaway is the persisted entity, owned by a single user.
type Giveaway struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             int64      `gorm:"index" json:"user_id"`
	Title              string     `gorm:"not null" json:"title"`
	Organizer          string     `json:"organizer"`
	Platform           string     `json:"platform"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	WinnerAnnouncement *time.Time `json:"winner_announcement,omitempty"`
	Prize              string     `json:"prize"`
	PostURL            string     `json:"post_url,omitempty"`
	Requirements       string     `json:"requirements"`
	Notes              string     `json:"notes,omitempty"`
	Status             string     `gorm:"default:active" json:"status"`
	Result             string     `gorm:"default:pending" json:"result"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Reminder kinds.
const (
	ReminderDeadline = "deadline"
	ReminderWinner   = "winner"
)

// Reminder is a scheduled notification row. The dispatcher scans for unsent
// reminders whose RemindAt has passed.
type Reminder struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GiveawayID uint      `gorm:"index" json:"giveaway_id"`
	UserID     int64     `gorm:"index" json:"user_id"`
	RemindAt   time.Time `gorm:"index" json:"remind_at"`
	Kind       string    `json:"kind"`
	Sent       bool      `gorm:"default:false" json:"sent"`
}

// PlatformStat is a per-platform participation aggregate.
type PlatformStat struct {
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
	Wins     int64  `json:"wins"`
}

// MonthStat is a per-month participation aggregate (Month is "YYYY-MM").
type MonthStat struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
	Wins  int64  `json:"wins"`
}

// Stats is the quick overview returned by the /stats command and dashboard.
type Stats struct {
	Total      int64      `json:"total"`
	Active     int64      `json:"active"`
	Completed  int64      `json:"completed"`
	Won        int64      `json:"won"`
	Lost       int64      `json:"lost"`
	Ended      int64      `json:"ended"`
	FirstEntry *time.Time `json:"first_entry,omitempty"`
	LastEntry  *time.Time `json:"last_entry,omitempty"`
}

// IRepository is the persistence contract for giveaways and reminders.
type IRepository interface {
	Init(ctx context.Context) error

	Insert(ctx context.Context, g *Giveaway) error
	GetByID(ctx context.Context, id uint, userID int64) (*Giveaway, error)
	ListByUser(ctx context.Context, userID int64) ([]Giveaway, error)
	ListEndingBetween(ctx context.Context, userID int64, from, to time.Time) ([]Giveaway, error)
	ListPendingResult(ctx context.Context, userID int64, limit int) ([]Giveaway, error)
	UpdateStatus(ctx context.Context, id uint, userID int64, status string) error
	UpdateResult(ctx context.Context, id uint, userID int64, result string) error
	Delete(ctx context.Context, id uint, userID int64) error

	InsertReminder(ctx context.Context, r *Reminder) error
	DueReminders(ctx context.Context, now time.Time) ([]Reminder, error)
	MarkReminderSent(ctx context.Context, id uint) error

	Stats(ctx context.Context, userID int64, now time.Time) (*Stats, error)
	PlatformBreakdown(ctx context.Context, userID int64) ([]PlatformStat, error)
	MonthlyBreakdown(ctx context.Context, userID int64, since time.Time) ([]MonthStat, error)
	WonSince(ctx context.Context, userID int64, since time.Time, limit int) ([]Giveaway, error)
}
