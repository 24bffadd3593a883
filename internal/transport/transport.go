// Package transport abstracts the chat platform the engine talks to. The real
// product binds this to its messaging backend; the repo ships an in-memory
// implementation used by the dev console and tests.
package transport

import "context"

// Transport is the outbound surface of the chat platform: channel lifecycle
// and message delivery. Retry and backoff are the implementation's own
// business; the engine treats failures as transient and leaves session state
// untouched.
type Transport interface {
	SendMessage(ctx context.Context, channelID, content string) error
	// CreateChannel returns the channel for a user/character pair, creating
	// it on first use and reusing it afterwards.
	CreateChannel(ctx context.Context, userID, characterID string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
}
