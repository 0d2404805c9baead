package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := OpenGormStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyAuthToken, "tok-1"))
	v, err := s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", v)

	// last write wins
	require.NoError(t, s.Set(ctx, KeyAuthToken, "tok-2"))
	v, err = s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, s.Delete(ctx, KeyAuthToken))
	_, err = s.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent key is fine
	require.NoError(t, s.Delete(ctx, "missing"))
}

func TestGormStore(t *testing.T) {
	exerciseStore(t, openTestStore(t))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestGormStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := OpenGormStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyChatSessions, `[{"id":"a"}]`))
	require.NoError(t, s.Close())

	s, err = OpenGormStore(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, KeyChatSessions)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, v)
}
