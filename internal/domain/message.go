package domain

import "time"

// InboundMessage is one chat message received from the webhook.
// Everything the pipeline builds for it lives only until dispatch.
type InboundMessage struct {
	ChatID     int64
	SenderID   int64
	Text       string
	ReceivedAt time.Time
}
