package bus

import (
	"log/slog"
	"sync"
	"time"

	"fashionbot/internal/domain"
)

const publishTimeout = 10 * time.Second

// InMemoryBus decouples the webhook handler from the advice pipeline:
// the handler publishes and returns immediately, the pipeline consumes
// with bounded concurrency.
type InMemoryBus struct {
	inbound chan domain.InboundMessage
	mu      sync.RWMutex
	closed  bool
	logger  *slog.Logger
}

// New creates a new InMemoryBus with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *InMemoryBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryBus{
		inbound: make(chan domain.InboundMessage, bufferSize),
		logger:  logger,
	}
}

// Publish enqueues a message. Blocks up to 10 seconds if the bus is
// full instead of dropping.
func (b *InMemoryBus) Publish(msg domain.InboundMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("attempted to publish to closed bus")
		return
	}

	select {
	case b.inbound <- msg:
	default:
		// Bus full, wait with timeout instead of dropping
		b.logger.Warn("inbound bus full, waiting...", "chat_id", msg.ChatID)
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.inbound <- msg:
			b.logger.Info("message delivered after wait", "chat_id", msg.ChatID)
		case <-timer.C:
			b.logger.Error("message dropped: bus full for 10s", "chat_id", msg.ChatID)
		}
	}
}

func (b *InMemoryBus) Subscribe() <-chan domain.InboundMessage {
	return b.inbound
}

func (b *InMemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.inbound)
	}
}
