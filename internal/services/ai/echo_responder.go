package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/iyunix/asha-chat/internal/domain"
)

// EchoResponder answers without a model. The reference server falls back to
// it when no LLM key is configured.
type EchoResponder struct{}

func (EchoResponder) Reply(_ context.Context, history []domain.Message, userInput string) (string, error) {
	input := strings.TrimSpace(userInput)
	if input == "" {
		return "", newEmptyInputError("reply")
	}
	return fmt.Sprintf("You said: %s (turn %d)", input, countUserTurns(history)+1), nil
}

func countUserTurns(history []domain.Message) int {
	n := 0
	for _, m := range history {
		if m.Role == domain.RoleUser {
			n++
		}
	}
	return n
}
