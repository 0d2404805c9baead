package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/asha-chat/internal/config"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/repository/user"
	"github.com/iyunix/asha-chat/internal/server"
	"github.com/iyunix/asha-chat/internal/services/account_services"
	"github.com/iyunix/asha-chat/internal/services/ai"
	"github.com/iyunix/asha-chat/internal/services/chat"
	"github.com/iyunix/asha-chat/internal/services/user_services"
	"github.com/iyunix/asha-chat/internal/storage"
)

func startBackend(t *testing.T) string {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "backend.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Account{}))

	log := &logging.NoOpLogger{}
	srv := httptest.NewServer(server.NewRouter(server.Deps{
		Accounts:  account_services.NewAccountService(user.NewGormAccountRepository(db, log), "secret", time.Hour, log),
		Responder: ai.EchoResponder{},
		Logger:    log,
	}))
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return srv.URL
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:     baseURL,
		DBPath:         "unused.db",
		RequestTimeout: 5 * time.Second,
	}
}

func TestApplicationLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(startBackend(t))
	store := storage.NewMemoryStore()

	a, err := New(ctx, cfg, store, &logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, user_services.StateAnonymous, a.Auth.Snapshot().State)

	require.NoError(t, a.Credentials.Register(ctx, user_services.RegisterInput{
		Email: "asha@example.com", Password: "long-enough", FullName: "Asha User",
	}))
	require.NoError(t, a.Credentials.Login(ctx, user_services.LoginInput{
		Email: "asha@example.com", Password: "long-enough",
	}))
	snap := a.Auth.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "Asha User", snap.User.DisplayName())

	id := a.NewChat(ctx)
	res, err := a.Flow.Submit(ctx, "they are a great fit", nil)
	require.NoError(t, err)
	assert.Equal(t, id, res.SessionID)

	_, err = a.Flow.Submit(ctx, "he is a great fit", nil)
	assert.ErrorIs(t, err, chat.ErrContentBlocked)
	assert.Len(t, a.Sessions.DisplayedMessages(), 2)

	// A second start on the same store restores token and sessions.
	restarted, err := New(ctx, cfg, store, &logging.NoOpLogger{})
	require.NoError(t, err)
	assert.True(t, restarted.Auth.Snapshot().Authenticated())
	sessions := restarted.Sessions.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "they are a great fit", sessions[0].Title)

	restarted.SignOut(ctx)
	assert.False(t, restarted.Auth.Snapshot().Authenticated())
	assert.Empty(t, restarted.Sessions.Sessions())
	for _, key := range []string{storage.KeyAuthToken, storage.KeyUser, storage.KeyChatSessions} {
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrNotFound, key)
	}
	assert.NoError(t, restarted.Close())
}

func TestActiveChatSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(startBackend(t))
	store := storage.NewMemoryStore()

	a, err := New(ctx, cfg, store, &logging.NoOpLogger{})
	require.NoError(t, err)
	id := a.NewChat(ctx)
	a.NewChat(ctx)
	a.Sessions.SelectSession(id)
	a.RememberActiveChat(ctx)

	b, err := New(ctx, cfg, store, &logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Empty(t, b.Sessions.CurrentID())
	b.RestoreActiveChat(ctx)
	assert.Equal(t, id, b.Sessions.CurrentID())

	b.Sessions.DeleteSession(ctx, id)
	b.RememberActiveChat(ctx)
	_, err = store.Get(ctx, storage.KeyActiveChat)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoredTokenRejectedStartsAnonymous(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(startBackend(t))
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyAuthToken, "stale-token"))

	a, err := New(ctx, cfg, store, &logging.NoOpLogger{})
	require.NoError(t, err)

	snap := a.Auth.Snapshot()
	assert.Equal(t, user_services.StateAnonymous, snap.State)
	assert.Empty(t, snap.Token)
	_, err = store.Get(ctx, storage.KeyAuthToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpenUsesSQLiteFile(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(startBackend(t))
	cfg.DBPath = filepath.Join(t.TempDir(), "client.db")

	a, err := Open(ctx, cfg, &logging.NoOpLogger{})
	require.NoError(t, err)
	id := a.NewChat(ctx)
	require.NoError(t, a.Close())

	reopened, err := Open(ctx, cfg, &logging.NoOpLogger{})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	_, ok := reopened.Sessions.Session(id)
	assert.True(t, ok)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{APIBaseURL: "nope"}, &logging.NoOpLogger{})
	assert.Error(t, err)
}

type syncLogger struct {
	logging.NoOpLogger
	synced int
}

func (s *syncLogger) Sync() error {
	s.synced++
	return nil
}

func TestCloseFlushesLogger(t *testing.T) {
	log := &syncLogger{}
	a, err := New(context.Background(), testConfig(startBackend(t)), storage.NewMemoryStore(), log)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.Equal(t, 1, log.synced)
}
