package pubsub

import (
	log "github.com/sirupsen/logrus"

	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
)

type compositePubSub struct {
	services []ports.PubSub
}

// NewCompositePubSubService fans every published event out to all the given
// pubsub services. A failing service is logged and does not block the others.
func NewCompositePubSubService(services ...ports.PubSub) ports.PubSub {
	return &compositePubSub{services: services}
}

func (c *compositePubSub) Publish(topic string, message string) error {
	for _, service := range c.services {
		if err := service.Publish(topic, message); err != nil {
			log.WithError(err).WithField("topic", topic).Warn(
				"pubsub service failed to publish",
			)
		}
	}
	return nil
}

func (c *compositePubSub) Close() error {
	for _, service := range c.services {
		if err := service.Close(); err != nil {
			log.WithError(err).Warn("pubsub service failed to close")
		}
	}
	return nil
}
