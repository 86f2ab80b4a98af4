package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Bucket is one key namespace inside a Store.
// Buckets sharing a Store never see each other's keys.
type Bucket struct {
	store     *Store
	namespace string
}

// Namespace returns the bucket for the given namespace name.
// The namespace does not need to exist beforehand.
func (s *Store) Namespace(name string) *Bucket {
	return &Bucket{store: s, namespace: name}
}

// Name returns the namespace this bucket addresses.
func (b *Bucket) Name() string {
	return b.namespace
}

// Get returns the raw value stored under key.
// found is false (with a nil error) when the key does not exist.
func (b *Bucket) Get(ctx context.Context, key string) (value string, found bool, err error) {
	err = b.store.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE namespace = ? AND key = ?
	`, b.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
// The write is stamped with the next logical seq of the store.
func (b *Bucket) Put(ctx context.Context, key, value string) error {
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put %q: begin tx: %w", key, err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM kv`).Scan(&seq); err != nil {
		return fmt.Errorf("put %q: next seq: %w", key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (namespace, key, value, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, seq = excluded.seq
	`, b.namespace, key, value, seq)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put %q: commit: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.store.db.ExecContext(ctx, `
		DELETE FROM kv WHERE namespace = ? AND key = ?
	`, b.namespace, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Clear removes every key in this namespace.
func (b *Bucket) Clear(ctx context.Context) error {
	_, err := b.store.db.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ?`, b.namespace)
	if err != nil {
		return fmt.Errorf("clear namespace %q: %w", b.namespace, err)
	}
	return nil
}

// Keys lists the keys of this namespace in binary key order.
// Returns an empty slice (not nil) for an empty namespace.
func (b *Bucket) Keys(ctx context.Context) ([]string, error) {
	return b.queryKeys(ctx, `
		SELECT key FROM kv WHERE namespace = ? ORDER BY key COLLATE BINARY ASC
	`)
}

// RecentKeys lists the keys of this namespace, most recently written first.
func (b *Bucket) RecentKeys(ctx context.Context) ([]string, error) {
	return b.queryKeys(ctx, `
		SELECT key FROM kv WHERE namespace = ? ORDER BY seq DESC
	`)
}

func (b *Bucket) queryKeys(ctx context.Context, query string) ([]string, error) {
	rows, err := b.store.db.QueryContext(ctx, query, b.namespace)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}
