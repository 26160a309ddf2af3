// Package cache stores finished question-answering results keyed by the
// normalized question, so repeated questions skip the whole pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Entry is a cached pipeline result.
type Entry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Reasoning string    `json:"reasoning,omitempty"`
	CachedAt  time.Time `json:"cached_at"`
}

// Store is implemented by every result cache backend. Get returns (nil, nil)
// on a miss; only infrastructure failures are errors.
type Store interface {
	Get(ctx context.Context, question string) (*Entry, error)
	Set(ctx context.Context, entry *Entry) error
	Clear(ctx context.Context) error
}

// Key normalizes a question into a stable cache key.
func Key(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Memory is an in-process Store with optional TTL.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
}

// MemoryOption configures the in-memory cache.
type MemoryOption func(*Memory)

// WithTTL expires entries after d (0 means no expiration).
func WithTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// NewMemory creates an in-memory result cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached entry for the question, or nil on a miss.
func (m *Memory) Get(ctx context.Context, question string) (*Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[Key(question)]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && time.Since(entry.CachedAt) > m.ttl {
		m.mu.Lock()
		delete(m.entries, Key(question))
		m.mu.Unlock()
		return nil, nil
	}
	clone := *entry
	return &clone, nil
}

// Set stores the entry under its question key.
func (m *Memory) Set(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return nil
	}
	clone := *entry
	if clone.CachedAt.IsZero() {
		clone.CachedAt = time.Now()
	}
	m.mu.Lock()
	m.entries[Key(entry.Question)] = &clone
	m.mu.Unlock()
	return nil
}

// Clear drops every cached entry.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]*Entry)
	m.mu.Unlock()
	return nil
}
