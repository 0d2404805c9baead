// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/services/ai"
)

// ChatResponse is the server's full reply; clients only need Response.
type ChatResponse struct {
	Response            string           `json:"response"`
	ConversationHistory []domain.Message `json:"conversation_history"`
	Status              string           `json:"status"`
}

type ChatHandler struct {
	Responder ai.Responder
	logger    logging.Logger
	now       func() time.Time
}

func NewChatHandler(responder ai.Responder, logger logging.Logger) *ChatHandler {
	return &ChatHandler{Responder: responder, logger: logger, now: time.Now}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "user_input is required")
		return
	}

	reply, err := h.Responder.Reply(r.Context(), req.Messages, req.UserInput)
	if err != nil {
		h.logger.Error("[ChatHandler] reply failed", "error", err, "history", len(req.Messages))
		status, detail := replyFailure(err)
		writeDetail(w, status, detail)
		return
	}

	stamp := h.now().UTC().Format(time.RFC3339)
	history := append(domain.CloneMessages(req.Messages),
		domain.Message{Role: domain.RoleUser, Content: req.UserInput, Timestamp: stamp},
		domain.Message{Role: domain.RoleAssistant, Content: reply, Timestamp: stamp},
	)
	writeJSON(w, http.StatusOK, ChatResponse{Response: reply, ConversationHistory: history, Status: "success"})
}

// replyFailure maps a responder error onto the status and detail sent back.
func replyFailure(err error) (int, string) {
	var aiErr *ai.AIError
	if errors.As(err, &aiErr) {
		switch aiErr.Type {
		case ai.ErrTypeEmptyInput:
			return http.StatusUnprocessableEntity, "user_input is required"
		case ai.ErrTypeRefused:
			return http.StatusUnprocessableEntity, "The assistant could not answer that request. Please rephrase it."
		case ai.ErrTypeUpstream, ai.ErrTypeEmptyReply:
			return http.StatusBadGateway, "The assistant is unavailable right now. Please try again."
		}
	}
	return http.StatusInternalServerError, "Internal server error during chat processing"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDetail sends the {"detail": "..."} error body clients expect.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
