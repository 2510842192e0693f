package ports

// Topics of the events published by the engine.
const (
	TopicQuote     = "quote"
	TopicTrade     = "trade"
	TopicBalance   = "balance"
	TopicInventory = "inventory"
)

// PubSub is the notification sink the engine pushes change events to.
// Messages are JSON-encoded by the caller.
type PubSub interface {
	// Publish delivers the message to every subscriber of the topic.
	Publish(topic string, message string) error
	// Close should be used to gracefully stop the service.
	Close() error
}
