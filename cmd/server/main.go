// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/asha-chat/internal/config"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/ratelimit"
	"github.com/iyunix/asha-chat/internal/repository/user"
	"github.com/iyunix/asha-chat/internal/server"
	"github.com/iyunix/asha-chat/internal/services/account_services"
	"github.com/iyunix/asha-chat/internal/services/ai"
)

func main() {
	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Config Error: %v", err)
	}

	logger, err := logging.New("asha-server", cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Logger Error: %v", err)
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	secret := cfg.JWTSecretKey
	if secret == "" {
		secret = "asha-dev-secret"
		logger.Warn("JWT_SECRET_KEY not set, using an insecure development secret")
	}

	db, err := gorm.Open(sqlite.Open(cfg.ServerDBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := db.AutoMigrate(&domain.Account{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Services ---
	accounts := account_services.NewAccountService(
		user.NewGormAccountRepository(db, logger), secret, cfg.TokenTTL, logger)

	var responder ai.Responder = ai.EchoResponder{}
	if cfg.LLMAPIKey != "" {
		aiConfig := ai.DefaultConfig()
		aiConfig.APIKey = cfg.LLMAPIKey
		aiConfig.BaseURL = cfg.LLMBaseURL
		aiConfig.Model = cfg.LLMModel
		provider, err := ai.NewOpenAIProvider(aiConfig, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize AI provider: %v", err)
		}
		responder = provider
		logger.Info("LLM responder enabled", "model", aiConfig.Model, "base_url", aiConfig.BaseURL)
	} else {
		logger.Warn("LLM_API_KEY not set, chat replies are echoed")
	}

	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer limiter.Close()

	srv := &http.Server{
		Addr: ":" + cfg.ServerPort,
		Handler: server.NewRouter(server.Deps{
			Accounts:     accounts,
			Responder:    responder,
			LoginLimiter: limiter,
			AllowOrigins: cfg.AllowOrigins,
			Logger:       logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
