// Package kv adapts a raw key-value backend into the JSON document storage
// used by the carta stores.
//
// Every adapter operation is failure tolerant: read, decode, encode and
// write errors are logged and reported as a false return, never as an
// error or panic. Callers keep their in-memory state authoritative when a
// write fails.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Backend is a raw string key-value namespace.
// store.Bucket and Memory implement it.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Storage is the document capability consumed by the stores.
type Storage interface {
	// Load decodes the JSON document under key into dst.
	// Returns false when the key is missing or the document cannot be read.
	Load(key string, dst any) bool

	// Set encodes v as JSON and writes it under key.
	Set(key string, v any) bool

	// Remove deletes key.
	Remove(key string) bool

	// Clear deletes every key of the namespace.
	Clear() bool
}

// Get returns the document under key decoded as T, or def when the key is
// missing or unreadable.
func Get[T any](s Storage, key string, def T) T {
	var v T
	if !s.Load(key, &v) {
		return def
	}
	return v
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for failure reports.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTimeout bounds each backend call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// Adapter implements Storage over a Backend.
type Adapter struct {
	backend Backend
	logger  *slog.Logger
	timeout time.Duration
}

var _ Storage = (*Adapter)(nil)

// New creates an Adapter over backend.
func New(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Adapter) context() (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(context.Background(), a.timeout)
	}
	return context.WithCancel(context.Background())
}

// Load implements Storage.
func (a *Adapter) Load(key string, dst any) bool {
	ctx, cancel := a.context()
	defer cancel()

	raw, found, err := a.backend.Get(ctx, key)
	if err != nil {
		a.logger.Warn("error reading from storage", "key", key, "error", err)
		return false
	}
	if !found || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.logger.Warn("error decoding stored document", "key", key, "error", err)
		return false
	}
	return true
}

// Set implements Storage.
func (a *Adapter) Set(key string, v any) bool {
	data, err := marshal(v)
	if err != nil {
		a.logger.Warn("error encoding document", "key", key, "error", err)
		return false
	}

	ctx, cancel := a.context()
	defer cancel()

	if err := a.backend.Put(ctx, key, data); err != nil {
		a.logger.Warn("error writing to storage", "key", key, "error", err)
		return false
	}
	return true
}

// Remove implements Storage.
func (a *Adapter) Remove(key string) bool {
	ctx, cancel := a.context()
	defer cancel()

	if err := a.backend.Delete(ctx, key); err != nil {
		a.logger.Warn("error removing from storage", "key", key, "error", err)
		return false
	}
	return true
}

// Clear implements Storage.
func (a *Adapter) Clear() bool {
	ctx, cancel := a.context()
	defer cancel()

	if err := a.backend.Clear(ctx); err != nil {
		a.logger.Warn("error clearing storage", "error", err)
		return false
	}
	return true
}

// marshal encodes v as compact JSON with HTML escaping disabled, so dish
// names like "Fish & Chips" are stored as written.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
