package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is an in-process LRU store.
type MemoryStore struct {
	lru *lru.Cache
	now func() time.Time
}

// NewMemoryStore holds at most size entries.
func NewMemoryStore(size int) (*MemoryStore, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &MemoryStore{lru: c, now: time.Now}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	e := v.(memoryEntry)
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.lru.Add(key, e)
	return nil
}

// Len reports the number of entries, including expired ones not yet evicted.
func (m *MemoryStore) Len() int { return m.lru.Len() }

func (m *MemoryStore) Close() error {
	m.lru.Purge()
	return nil
}
