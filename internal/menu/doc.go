// Package menu holds the carta domain model and its four state stores:
// menu items, categories, group-sharing options and the customer selection.
//
// Every store follows the same cycle:
//
//  1. Load its collection from kv.Storage at construction (seeding from a
//     Seeds provider when nothing usable is persisted).
//  2. Apply each mutation in memory.
//  3. Persist the full collection under its fixed key.
//  4. Notify subscribers with a fresh snapshot.
//
// Validation failures are returned as *ValidationError. Operations that
// address an unknown identifier return an error wrapping ErrNotFound and
// leave both memory and storage untouched.
//
// Persistence failures are not errors here: the kv adapter logs them and
// the in-memory collection stays authoritative for the session.
//
// Stores are safe for concurrent use, although carta drives each store from
// a single goroutine.
package menu

// Storage keys, one per store.
const (
	KeyMenuItems    = "menuItems"
	KeyCategories   = "categories"
	KeySelection    = "selection"
	KeyGroupOptions = "groupOptions"
)
