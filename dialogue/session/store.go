// Package session holds the per-user conversation state and the stores that
// persist it between messages. A user has at most one active conversation;
// starting a new flow overwrites whatever was in progress.
package session

import (
	"context"
	"time"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
)

// Phase is where the conversation currently stands.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseAwaitingImage Phase = "awaiting_image"
	PhaseAwaitingURL   Phase = "awaiting_url"
	PhaseConfirming    Phase = "confirming"
	PhaseEditing       Phase = "editing"
)

// State is the serializable conversation state for one user.
type State struct {
	Phase Phase `json:"phase"`

	// Draft under confirmation or editing.
	Draft *giveaway.Draft `json:"draft,omitempty"`

	// Index into the fixed editing field order (PhaseEditing only).
	EditStep int `json:"edit_step"`

	// Message carrying the confirmation summary, edited in place as the
	// conversation progresses.
	PromptMessageID int `json:"prompt_message_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists conversation state keyed by user ID. Implementations must
// treat a missing key as (nil, nil), not an error.
type Store interface {
	Save(ctx context.Context, userID int64, state *State, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (*State, error)
	Delete(ctx context.Context, userID int64) error
}
