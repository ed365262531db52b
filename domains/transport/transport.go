package transport

import "context"

// EventKind discriminates inbound events from the messaging transport.
type EventKind string

const (
	EventCommand  EventKind = "command"
	EventText     EventKind = "text"
	EventPhoto    EventKind = "photo"
	EventCallback EventKind = "callback"
)

// Event is a transport-agnostic inbound message, keyed by user and chat.
type Event struct {
	Kind      EventKind
	UserID    int64
	ChatID    int64
	MessageID int

	// Command without the leading slash (EventCommand only).
	Command string
	// Free text or command arguments.
	Text string

	// Highest-resolution photo reference (EventPhoto only).
	PhotoFileID string

	// Callback query fields (EventCallback only).
	CallbackID   string
	CallbackData string
}

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// SendOptions carries optional message decorations.
type SendOptions struct {
	Keyboard [][]Button
}

// Messenger is the outbound capability interface consumed by the bot and the
// reminder dispatcher. Implementations wrap a concrete chat platform.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (messageID int, err error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts *SendOptions) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DownloadPhoto(ctx context.Context, fileID string) ([]byte, error)
}
