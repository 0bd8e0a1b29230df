package domain

import "context"

// Messenger delivers outgoing messages to a chat. Both operations are
// fire-and-forget from the pipeline's perspective: a failure is returned
// for logging but never retried by the caller or surfaced upstream.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error
}
