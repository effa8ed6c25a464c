package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. A single mutex serializes all operations,
// which is enough for linearizability and cheap at the expected cardinality.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, identity string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[identity]
	if !ok || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

func (s *MemoryStore) SetRefreshToken(_ context.Context, identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		delete(s.tokens, identity)
		return nil
	}
	s.tokens[identity] = token
	return nil
}

func (s *MemoryStore) Matches(_ context.Context, identity, presented string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Equal(s.tokens[identity], presented), nil
}

func (s *MemoryStore) Clear(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, identity)
	return nil
}

func (s *MemoryStore) Rotate(_ context.Context, identity, presented, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !Equal(s.tokens[identity], presented) {
		return ErrMismatch
	}
	s.tokens[identity] = next
	return nil
}

var _ Store = (*MemoryStore)(nil)
