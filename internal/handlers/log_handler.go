package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iyunix/asha-chat/internal/logging"
)

// ClientLogPayload is a log line or analytics event sent by a front end.
type ClientLogPayload struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// NewLogHandler accepts POST /api/log and writes the entry through logger.
func NewLogHandler(logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ClientLogPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == "" {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		kv := []interface{}{"message", payload.Message, "context", payload.Context}
		switch strings.ToLower(payload.Level) {
		case "error":
			logger.Error("CLIENT_LOG", kv...)
		case "warn", "warning":
			logger.Warn("CLIENT_LOG", kv...)
		case "debug":
			logger.Debug("CLIENT_LOG", kv...)
		default:
			logger.Info("CLIENT_LOG", kv...)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
