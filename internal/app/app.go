// File: internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/config"
	"github.com/iyunix/asha-chat/internal/logging"
	chatrepo "github.com/iyunix/asha-chat/internal/repository/chat"
	"github.com/iyunix/asha-chat/internal/repository/token"
	"github.com/iyunix/asha-chat/internal/repository/user"
	"github.com/iyunix/asha-chat/internal/services/analytics"
	"github.com/iyunix/asha-chat/internal/services/chat"
	"github.com/iyunix/asha-chat/internal/services/user_services"
	"github.com/iyunix/asha-chat/internal/storage"
)

// Application is the client context. It owns every component and is handed
// to whatever front end drives it.
type Application struct {
	Config      *config.Config
	Logger      logging.Logger
	API         *api.Client
	Auth        *user_services.AuthSession
	Credentials *user_services.CredentialService
	Sessions    *chat.Registry
	Flow        *chat.FlowController
	Tracker     analytics.Tracker
	// Store is the durable key-value store the components persist to.
	Store storage.Store
}

// Open builds the application on the SQLite file named by cfg.DBPath.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, err := storage.OpenGormStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a, err := New(ctx, cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// New wires the components on top of store, restores the persisted sessions
// and checks any stored token. A failed token check is not an error: the
// application simply starts logged out.
func New(ctx context.Context, cfg *config.Config, store storage.Store, logger logging.Logger) (*Application, error) {
	client, err := api.NewClient(&api.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout,
		UserAgent: api.DefaultConfig().UserAgent,
	}, logger)
	if err != nil {
		return nil, err
	}

	tracker := analytics.NewLogTracker(logger)

	auth := user_services.NewAuthSession(
		token.NewTokenRepository(store, logger),
		user.NewProfileRepository(store),
		client,
		user_services.Config{KeepTokenOnTransportError: cfg.KeepTokenOnTransportError},
		logger,
	)

	chatConfig := chat.DefaultConfig()
	chatConfig.RequestTimeout = cfg.RequestTimeout
	chatConfig.RollbackOnFailure = cfg.RollbackOnFailure

	registry := chat.NewRegistry(chatrepo.NewSessionRepository(store, logger), chatConfig, logger)
	flow, err := chat.NewFlowController(registry, client, tracker, chatConfig, logger)
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:      cfg,
		Logger:      logger,
		API:         client,
		Auth:        auth,
		Credentials: user_services.NewCredentialService(client, auth, logger),
		Sessions:    registry,
		Flow:        flow,
		Tracker:     tracker,
		Store:       store,
	}

	if err := registry.Load(ctx); err != nil {
		return nil, fmt.Errorf("restore chat sessions: %w", err)
	}
	if err := auth.Initialize(ctx); err != nil {
		logger.Warn("[App] stored session not restored", "error", err)
	}
	return a, nil
}

// NewChat starts an empty conversation and makes it active.
func (a *Application) NewChat(ctx context.Context) string {
	id := a.Sessions.CreateSession(ctx)
	a.Tracker.Track(analytics.EventChatStarted, map[string]interface{}{"session_id": id})
	return id
}

// RestoreActiveChat selects the session remembered by RememberActiveChat, if
// it still exists.
func (a *Application) RestoreActiveChat(ctx context.Context) {
	id, err := a.Store.Get(ctx, storage.KeyActiveChat)
	if err != nil {
		return
	}
	if _, ok := a.Sessions.Session(id); ok {
		a.Sessions.SelectSession(id)
	}
}

// RememberActiveChat persists the active session id.
func (a *Application) RememberActiveChat(ctx context.Context) {
	var err error
	if id := a.Sessions.CurrentID(); id != "" {
		err = a.Store.Set(ctx, storage.KeyActiveChat, id)
	} else {
		err = a.Store.Delete(ctx, storage.KeyActiveChat)
	}
	if err != nil {
		a.Logger.Warn("[App] active chat not remembered", "error", err)
	}
}

// SignOut drops the credential and every local conversation.
func (a *Application) SignOut(ctx context.Context) {
	a.Auth.Logout(ctx)
	a.Sessions.Reset(ctx)
	a.RememberActiveChat(ctx)
	a.Logger.Info("[App] signed out")
}

// Close releases the store when it holds a resource and flushes the logger.
func (a *Application) Close() error {
	var err error
	if c, ok := a.Store.(io.Closer); ok {
		err = c.Close()
	}
	if s, ok := a.Logger.(interface{ Sync() error }); ok {
		// zap returns EINVAL for a terminal stderr; ignored
		_ = s.Sync()
	}
	return err
}
