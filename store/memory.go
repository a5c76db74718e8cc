package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore 内存实现，用于测试和 --memory 模式
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
	hub  *Hub
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte), hub: NewHub()}
}

func (s *MemoryStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte)
	for p, v := range s.docs {
		if strings.HasPrefix(p, prefix) {
			out[p] = clone(v)
		}
	}
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, path string, value []byte) error {
	s.mu.Lock()
	s.docs[path] = clone(value)
	s.mu.Unlock()
	s.hub.Publish(Change{Path: path, Value: clone(value)})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
	s.hub.Publish(Change{Path: path})
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, prefix string) (<-chan Change, error) {
	return s.hub.Subscribe(ctx, prefix), nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
