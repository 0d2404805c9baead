// File: internal/services/analytics/tracker.go
package analytics

import (
	"sort"
	"time"

	"github.com/iyunix/asha-chat/internal/logging"
)

// Event names emitted by the client core.
const (
	EventChatStarted     = "chat_started"
	EventMessageSent     = "message_sent"
	EventBiasDetected    = "bias_detected"
	EventMessageFeedback = "message_feedback"
)

// Tracker receives fire-and-forget observability events. Implementations must
// not block and must not fail the caller.
type Tracker interface {
	Track(event string, props map[string]interface{})
}

// LogTracker writes events through the structured logger.
type LogTracker struct {
	logger logging.Logger
	now    func() time.Time
}

func NewLogTracker(logger logging.Logger) *LogTracker {
	return &LogTracker{logger: logger, now: time.Now}
}

func (t *LogTracker) Track(event string, props map[string]interface{}) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, 2*len(keys)+4)
	kv = append(kv, "event", event, "timestamp", t.now().UTC().Format(time.RFC3339))
	for _, k := range keys {
		kv = append(kv, k, props[k])
	}
	t.logger.Info("[Analytics]", kv...)
}

// NopTracker drops everything.
type NopTracker struct{}

func (NopTracker) Track(string, map[string]interface{}) {}
