// File: internal/server/router.go
package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/handlers"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/middleware"
	"github.com/iyunix/asha-chat/internal/ratelimit"
	"github.com/iyunix/asha-chat/internal/services/account_services"
	"github.com/iyunix/asha-chat/internal/services/ai"
)

// Deps are the services behind the reference API.
type Deps struct {
	Accounts     *account_services.AccountService
	Responder    ai.Responder
	LoginLimiter *ratelimit.MemoryRateLimiter
	AllowOrigins []string
	Logger       logging.Logger
}

// NewRouter mounts the four endpoints the chat client consumes plus /health
// and /api/log.
func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Accounts, d.Logger)
	chatHandler := handlers.NewChatHandler(d.Responder, d.Logger)

	r := mux.NewRouter()
	r.Use(middleware.CORS(d.AllowOrigins))
	r.Use(middleware.RecoverPanic(d.Logger))
	r.Use(middleware.Logging(d.Logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	token := http.Handler(http.HandlerFunc(authHandler.Token))
	if d.LoginLimiter != nil {
		token = middleware.Throttle(d.LoginLimiter, "token", d.Logger)(token)
	}
	r.Handle(api.PathToken, token).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc(api.PathRegister, authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc(api.PathChat, chatHandler.Chat).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/log", handlers.NewLogHandler(d.Logger)).Methods(http.MethodPost)

	requireBearer := middleware.RequireBearer(d.Accounts, d.Logger)
	r.Handle(api.PathMe, requireBearer(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet, http.MethodOptions)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	})
	return r
}
