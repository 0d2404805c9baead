// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/middleware"
	"github.com/iyunix/asha-chat/internal/services/account_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	Accounts *account_services.AccountService
	logger   logging.Logger
}

func NewAuthHandler(accounts *account_services.AccountService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, logger: logger}
}

// Token handles POST /api/auth/token with an OAuth2 password form.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	token, err := h.Accounts.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if errors.Is(err, account_services.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if err != nil {
		h.logger.Error("[AuthHandler] token issue failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Register handles POST /api/auth/register with a JSON body.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	user, err := h.Accounts.Register(r.Context(), req.Email, req.Password, req.FullName)
	switch {
	case errors.Is(err, account_services.ErrEmailTaken):
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	case errors.Is(err, account_services.ErrInvalidInput):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.logger.Error("[AuthHandler] registration failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Me handles GET /api/users/me. RequireBearer has already resolved the user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
