package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/AzielCF/az-giveaway/infrastructure/valkey"
)

// ValkeyStore persists conversation state in Valkey, so multi-instance
// deployments share conversations and state survives restarts.
type ValkeyStore struct {
	client *valkey.Client
	prefix string
}

func NewValkeyStore(client *valkey.Client) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		prefix: client.Key("dialogue") + ":",
	}
}

func (s *ValkeyStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

func (s *ValkeyStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeyStore) Save(ctx context.Context, userID int64, state *State, ttl time.Duration) error {
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation state: %w", err)
	}

	cmd := s.inner().B().Set().
		Key(s.key(userID)).
		Value(string(data)).
		Ex(ttl).
		Build()

	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save conversation state: %w", err)
	}
	return nil
}

func (s *ValkeyStore) Get(ctx context.Context, userID int64) (*State, error) {
	cmd := s.inner().B().Get().Key(s.key(userID)).Build()

	data, err := s.inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation state: %w", err)
	}
	return &state, nil
}

func (s *ValkeyStore) Delete(ctx context.Context, userID int64) error {
	cmd := s.inner().B().Del().Key(s.key(userID)).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return nil
}
