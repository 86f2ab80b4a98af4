// Package store provides SQLite-backed durable storage for carta state.
//
// The store is a namespaced key-value table. Each namespace holds the
// JSON documents written by the key-value adapter (menu items, categories,
// selection, group-sharing options) under fixed keys.
//
// # Write Semantics
//
//   - Put is an upsert: last write wins.
//   - Every write stamps a logical seq (per store, monotonic) so the most
//     recently written keys can be listed without relying on wall time.
//   - Clear removes every key of one namespace and nothing else.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// The schema is embedded (schema.sql) and versioned with PRAGMA user_version.
package store
