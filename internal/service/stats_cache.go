package service

import (
	"context"
	"sync"
	"time"
)

// StatsCacheStore shields the dashboard aggregate queries from
// repeated fan-outs. Namespaces group related keys so a moderation
// write can drop every stale aggregate at once.
type StatsCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopStatsCacheStore struct{}

func NewNoopStatsCacheStore() *NoopStatsCacheStore { return &NoopStatsCacheStore{} }

func (s *NoopStatsCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopStatsCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopStatsCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type memoryCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryStatsCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]memoryCacheEntry
}

func NewInMemoryStatsCacheStore() *InMemoryStatsCacheStore {
	return &InMemoryStatsCacheStore{
		store: make(map[string]map[string]memoryCacheEntry),
	}
}

func (s *InMemoryStatsCacheStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	ns, ok := s.store[namespace]
	if !ok {
		s.mu.RUnlock()
		return nil, false, nil
	}
	entry, ok := ns[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if ns2, ok2 := s.store[namespace]; ok2 {
			delete(ns2, key)
			if len(ns2) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryStatsCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]memoryCacheEntry)
		s.store[namespace] = ns
	}
	ns[key] = memoryCacheEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *InMemoryStatsCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}
