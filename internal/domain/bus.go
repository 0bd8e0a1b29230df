package domain

// MessageBus queues webhook messages for the advice pipeline.
type MessageBus interface {
	Publish(msg InboundMessage)
	Subscribe() <-chan InboundMessage
	Close()
}
