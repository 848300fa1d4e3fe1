package notification

import "errors"

var (
	// ErrNoWebhook is returned when no webhook destination is configured
	ErrNoWebhook = errors.New("webhook url is not set")

	// ErrNoTitle is returned when a message has no title
	ErrNoTitle = errors.New("message title is required")

	// ErrInvalidField is returned when a body field has no label
	ErrInvalidField = errors.New("message field must have a label")

	// ErrSendFailed is returned when the webhook request fails or is rejected
	ErrSendFailed = errors.New("failed to send notification")
)
