package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore opens a fresh file-backed store for one test.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "kv", name)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	b := s.Namespace("carta")
	require.NoError(t, b.Put(context.Background(), "k", `"v"`))

	value, found, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `"v"`, value)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.pragma(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_UpgradesUnversionedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("DROP INDEX idx_kv_namespace_seq")
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_kv_namespace_seq'").Scan(&name)
	require.NoError(t, err)

	version, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)
}

func TestBucket_GetMissing(t *testing.T) {
	s := createTestStore(t)

	value, found, err := s.Namespace("carta").Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestBucket_PutOverwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	b := s.Namespace("carta")

	require.NoError(t, b.Put(ctx, "selection", `{"1":1}`))
	require.NoError(t, b.Put(ctx, "selection", `{"1":2}`))

	value, found, err := b.Get(ctx, "selection")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"1":2}`, value)

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"selection"}, keys)
}

func TestBucket_NamespacesAreIsolated(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := s.Namespace("a")
	b := s.Namespace("b")

	require.NoError(t, a.Put(ctx, "categories", "[]"))
	require.NoError(t, b.Put(ctx, "categories", `[{"id":1,"name":"Postres"}]`))

	require.NoError(t, a.Clear(ctx))

	_, found, err := a.Get(ctx, "categories")
	require.NoError(t, err)
	assert.False(t, found)

	value, found, err := b.Get(ctx, "categories")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":1,"name":"Postres"}]`, value)

	names, err := s.Namespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestBucket_DeleteMissingIsNoError(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.Namespace("carta").Delete(context.Background(), "nope"))
}

func TestBucket_KeysOrdering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	b := s.Namespace("carta")

	require.NoError(t, b.Put(ctx, "selection", "{}"))
	require.NoError(t, b.Put(ctx, "categories", "[]"))
	require.NoError(t, b.Put(ctx, "menuItems", "[]"))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"categories", "menuItems", "selection"}, keys)

	recent, err := b.RecentKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"menuItems", "categories", "selection"}, recent)

	empty, err := s.Namespace("other").Keys(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBucket_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Namespace("carta").Put(ctx, "menuItems", `[{"id":1}]`))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	value, found, err := s2.Namespace("carta").Get(ctx, "menuItems")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":1}]`, value)
}
