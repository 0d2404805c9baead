package token

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/storage"
)

type brokenStore struct{}

var errDisk = errors.New("disk on fire")

func (brokenStore) Get(context.Context, string) (string, error) { return "", errDisk }
func (brokenStore) Set(context.Context, string, string) error   { return errDisk }
func (brokenStore) Delete(context.Context, string) error        { return errDisk }

func TestTokenRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(storage.NewMemoryStore(), &logging.NoOpLogger{})

	_, ok := repo.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "not-even-a-jwt"))
	tok, ok := repo.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "not-even-a-jwt", tok)

	require.NoError(t, repo.Clear(ctx))
	_, ok = repo.Get(ctx)
	assert.False(t, ok)
}

func TestTokenRepository_UnavailableStorageMeansNoToken(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(brokenStore{}, &logging.NoOpLogger{})

	tok, ok := repo.Get(ctx)
	assert.False(t, ok)
	assert.Empty(t, tok)
	assert.ErrorIs(t, repo.Set(ctx, "x"), errDisk)
	assert.ErrorIs(t, repo.Clear(ctx), errDisk)
}
