package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	chatrepo "github.com/iyunix/asha-chat/internal/repository/chat"
	"github.com/iyunix/asha-chat/internal/storage"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func newTestRegistry(t *testing.T, config *Config) (*Registry, chatrepo.SessionRepository, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	repo := chatrepo.NewSessionRepository(store, &logging.NoOpLogger{})
	r := NewRegistry(repo, config, &logging.NoOpLogger{})
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	r.now = func() time.Time { return fixedNow }
	return r, repo, store
}

func userMsg(content string) domain.Message {
	return domain.Message{Role: domain.RoleUser, Content: content}
}

func assistantMsg(content string) domain.Message {
	return domain.Message{Role: domain.RoleAssistant, Content: content}
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	r, repo, _ := newTestRegistry(t, nil)

	first := r.CreateSession(ctx)
	second := r.CreateSession(ctx)

	sessions := r.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].ID, "newest first")
	assert.Equal(t, first, sessions[1].ID)
	assert.Equal(t, domain.DefaultChatTitle, sessions[0].Title)
	assert.Equal(t, "10/15/2026", sessions[0].Date)
	assert.Equal(t, second, r.CurrentID())
	assert.Empty(t, r.DisplayedMessages())

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCreateThenDeleteLeavesNoActiveSession(t *testing.T) {
	ctx := context.Background()
	r, repo, _ := newTestRegistry(t, nil)

	id := r.CreateSession(ctx)
	r.DeleteSession(ctx, id)

	_, ok := r.Session(id)
	assert.False(t, ok)
	assert.Empty(t, r.CurrentID())
	assert.Empty(t, r.DisplayedMessages())

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDeleteInactiveSessionKeepsSelection(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)

	old := r.CreateSession(ctx)
	active := r.CreateSession(ctx)
	r.DeleteSession(ctx, old)

	assert.Equal(t, active, r.CurrentID())
	assert.Len(t, r.Sessions(), 1)
}

func TestUnknownSessionIdsAreTolerated(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)
	id := r.CreateSession(ctx)
	r.AppendMessage(ctx, id, userMsg("hello"))

	r.SelectSession("missing")
	assert.Equal(t, "missing", r.CurrentID())
	assert.Empty(t, r.DisplayedMessages())

	assert.NotPanics(t, func() { r.DeleteSession(ctx, "missing") })
	assert.Len(t, r.Sessions(), 1)

	r.SelectSession(id)
	assert.Len(t, r.DisplayedMessages(), 1)
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, &Config{RequestTimeout: time.Second})
	id := r.CreateSession(ctx)

	want := []domain.Message{userMsg("A"), assistantMsg("B"), userMsg("C"), assistantMsg("D")}
	for i, m := range want {
		require.True(t, r.AppendMessage(ctx, id, m))
		s, _ := r.Session(id)
		require.Len(t, s.Messages, i+1)
		assert.Equal(t, want[:i+1], s.Messages)
	}
}

func TestAppendToDeletedSessionIsDropped(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)
	id := r.CreateSession(ctx)
	r.DeleteSession(ctx, id)

	assert.False(t, r.AppendMessage(ctx, id, assistantMsg("late reply")))
	assert.Empty(t, r.Sessions())
}

func TestSessionOrderIgnoresActivity(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)
	old := r.CreateSession(ctx)
	newer := r.CreateSession(ctx)

	r.AppendMessage(ctx, old, userMsg("bump"))

	sessions := r.Sessions()
	assert.Equal(t, []string{newer, old}, []string{sessions[0].ID, sessions[1].ID})
}

func TestAutoTitle(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)
	id := r.CreateSession(ctx)

	r.AppendMessage(ctx, id, userMsg("  How do I   negotiate\na raise?  "))
	r.AppendMessage(ctx, id, userMsg("second question"))

	s, _ := r.Session(id)
	assert.Equal(t, "How do I negotiate a raise?", s.Title)
}

func TestAutoTitleTruncates(t *testing.T) {
	got := makeTitle("Could you walk me through preparing for a product manager interview", 40)
	assert.Equal(t, "Could you walk me through preparing f...", got)
	assert.Equal(t, 40, len([]rune(got)))
}

func TestAutoTitleWithTinyLimitDoesNotPanic(t *testing.T) {
	assert.Equal(t, "Co", makeTitle("Could you help", 2))
	assert.Equal(t, "Cou", makeTitle("Could you help", 3))
	assert.Equal(t, "", makeTitle("Could you help", 0))
	assert.Equal(t, "", makeTitle("Could you help", -5))

	ctx := context.Background()
	r, _, _ := newTestRegistry(t, &Config{RequestTimeout: time.Second, AutoTitle: true, TitleMaxRunes: 0})
	id := r.CreateSession(ctx)
	assert.NotPanics(t, func() { r.AppendMessage(ctx, id, userMsg("a long first question")) })

	s, _ := r.Session(id)
	assert.Equal(t, domain.DefaultChatTitle, s.Title)
}

func TestAutoTitleDisabled(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, &Config{RequestTimeout: time.Second})
	id := r.CreateSession(ctx)
	r.AppendMessage(ctx, id, userMsg("hello"))

	s, _ := r.Session(id)
	assert.Equal(t, domain.DefaultChatTitle, s.Title)
}

func TestTruncateAfterAndClear(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)
	id := r.CreateSession(ctx)
	for _, m := range []domain.Message{userMsg("A"), assistantMsg("B"), userMsg("C")} {
		r.AppendMessage(ctx, id, m)
	}

	assert.False(t, r.TruncateAfter(ctx, id, 3))
	assert.False(t, r.TruncateAfter(ctx, "missing", 0))

	require.True(t, r.TruncateAfter(ctx, id, 1))
	s, _ := r.Session(id)
	assert.Equal(t, []domain.Message{userMsg("A"), assistantMsg("B")}, s.Messages)

	require.True(t, r.ClearMessages(ctx, id))
	s, _ = r.Session(id)
	assert.Empty(t, s.Messages)
	assert.Equal(t, "A", s.Title, "clearing keeps the title")
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)
	id := r.CreateSession(ctx)

	require.NoError(t, r.Rename(ctx, id, "  Salary talk "))
	s, _ := r.Session(id)
	assert.Equal(t, "Salary talk", s.Title)

	var chatErr *ChatError
	require.ErrorAs(t, r.Rename(ctx, id, "   "), &chatErr)
	assert.Equal(t, ErrTypeValidation, chatErr.Type)
	require.ErrorAs(t, r.Rename(ctx, "missing", "x"), &chatErr)
}

func TestSessionsAreCopies(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t, nil)
	id := r.CreateSession(ctx)
	r.AppendMessage(ctx, id, userMsg("A"))

	s, _ := r.Session(id)
	s.Messages[0].Content = "mutated"
	s.Messages = append(s.Messages, userMsg("extra"))

	again, _ := r.Session(id)
	assert.Equal(t, []domain.Message{userMsg("A")}, again.Messages)
}

func TestLoadRestoresPersistedSessions(t *testing.T) {
	ctx := context.Background()
	r, repo, _ := newTestRegistry(t, nil)
	id := r.CreateSession(ctx)
	r.AppendMessage(ctx, id, domain.Message{
		Role:    domain.RoleUser,
		Content: "see attached",
		File:    &domain.Attachment{Name: "cv.pdf", Data: []byte("%PDF")},
	})

	restored := NewRegistry(repo, nil, &logging.NoOpLogger{})
	require.NoError(t, restored.Load(ctx))

	sessions := restored.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	require.Len(t, sessions[0].Messages, 1)
	assert.Nil(t, sessions[0].Messages[0].File, "attachments are not persisted")
	assert.Empty(t, restored.CurrentID())
}

func TestLoadTreatsCorruptDataAsEmpty(t *testing.T) {
	ctx := context.Background()
	r, _, store := newTestRegistry(t, nil)
	require.NoError(t, store.Set(ctx, storage.KeyChatSessions, "{not json"))

	require.NoError(t, r.Load(ctx))
	assert.Empty(t, r.Sessions())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	r, _, store := newTestRegistry(t, nil)
	r.CreateSession(ctx)

	r.Reset(ctx)

	assert.Empty(t, r.Sessions())
	assert.Empty(t, r.CurrentID())
	_, err := store.Get(ctx, storage.KeyChatSessions)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
