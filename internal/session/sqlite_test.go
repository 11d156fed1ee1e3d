package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, path string) *SQLiteStorage {
	t.Helper()
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "session.db"))

	_, ok, err := s.GetItem(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, "k", "v1"))
	require.NoError(t, s.SetItem(ctx, "k", "v2"))

	v, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.RemoveItem(ctx, "k"))
	require.NoError(t, s.RemoveItem(ctx, "k"))

	_, ok, err = s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStorage_SessionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	store, err := New(ctx, first)
	require.NoError(t, err)
	require.NoError(t, store.Login(ctx, "Alice", "1"))
	require.NoError(t, first.Close())

	second := openTestSQLite(t, path)
	restored, err := New(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, State{IsLoggedIn: true, UserName: "Alice", UserID: "1"}, restored.State())

	require.NoError(t, restored.Logout(ctx))

	again, err := New(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, State{}, again.State())
}
