package kv

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrQuotaExceeded is returned by Memory when a write would exceed its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Memory is an in-process Backend. The zero value is not usable; use NewMemory.
//
// Thread-safety: Memory is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	data  map[string]string
	quota int
}

var _ Backend = (*Memory)(nil)

// NewMemory creates an empty in-memory backend without a quota.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// WithQuota limits the total bytes (keys plus values) the backend accepts.
// Zero disables the limit.
func (m *Memory) WithQuota(bytes int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = bytes
	return m
}

// Get implements Backend.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Put implements Backend.
func (m *Memory) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		used := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used > m.quota {
			return ErrQuotaExceeded
		}
	}
	m.data[key] = value
	return nil
}

// Delete implements Backend.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Clear implements Backend.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Raw returns the stored string under key, for tests and debugging.
func (m *Memory) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}
