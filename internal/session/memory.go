package session

import (
	"context"
	"errors"
	"sync"

	"github.com/harborhealth/appointment-agent/internal/dialogue"
)

// MemoryStore holds conversation state in-process. For local development and
// tests; state is lost on restart and never expires.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*dialogue.State
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*dialogue.State)}
}

func (s *MemoryStore) Save(ctx context.Context, state *dialogue.State) error {
	if state == nil || state.ConversationID == "" {
		return errors.New("session: state with conversation ID required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ConversationID] = state
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, conversationID string) (*dialogue.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[conversationID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

func (s *MemoryStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, conversationID)
	return nil
}
