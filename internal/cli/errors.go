package cli

import (
	"errors"

	"github.com/iyunix/asha-chat/internal/api"
	"github.com/iyunix/asha-chat/internal/services/chat"
	"github.com/iyunix/asha-chat/internal/services/user_services"
)

// friendly reduces a service error to the line a user should read.
func friendly(err error) error {
	var authErr *user_services.AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return errors.New(authErr.Message)
	}
	var chatErr *chat.ChatError
	if errors.As(err, &chatErr) {
		switch {
		case chatErr.Advisory != "":
			return errors.New(chatErr.Advisory)
		case chatErr.Type == chat.ErrTypeSendFailure:
			var apiErr *api.APIError
			if errors.As(err, &apiErr) {
				return errors.New("message not delivered: " + apiErr.Message())
			}
			return errors.New("message not delivered, try `asha chat retry`")
		case chatErr.Message != "":
			return errors.New(chatErr.Message)
		}
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message())
	}
	return err
}
