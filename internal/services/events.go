package services

import (
	"github.com/asaskevich/EventBus"
)

// Topics published on the event bus. Handlers take a single Event argument.
const (
	TopicCartResult = "cart:result"
	TopicAuthResult = "auth:result"
)

// Event is a one-shot notification of a finished action. Subscribers get
// each outcome exactly once and need not clear anything.
type Event struct {
	Action  string
	Success bool
	Message string
}

// NewBus returns a bus for services to publish on.
func NewBus() EventBus.Bus {
	return EventBus.New()
}

func publish(bus EventBus.Bus, topic string, e Event) {
	if bus == nil {
		return
	}
	bus.Publish(topic, e)
}
