package handoff

import (
	"context"
	"sync"
)

type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]map[string]string)}
}

func (b *MemoryBackend) Session(id string) Store {
	return &memoryStore{backend: b, id: id}
}

func (b *MemoryBackend) Clear(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, id)
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}

type memoryStore struct {
	backend *MemoryBackend
	id      string
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	value, ok := s.backend.sessions[s.id][key]
	return value, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	values, ok := s.backend.sessions[s.id]
	if !ok {
		values = make(map[string]string)
		s.backend.sessions[s.id] = values
	}
	values[key] = value
	return nil
}
