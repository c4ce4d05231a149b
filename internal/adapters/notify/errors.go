package notify

import "errors"

var (
	// ErrHubClosed is returned when notifying a hub that has stopped.
	ErrHubClosed = errors.New("websocket hub closed")
	// ErrPublish wraps broker publish failures.
	ErrPublish = errors.New("amqp publish failed")
)
