// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/zap"

	"smartvns/internal/model"
)

// topicAll receives every event regardless of type.
const topicAll = "*"

// EventBus distributes device events to live subscribers. It satisfies
// service.EventPublisher.
type EventBus struct {
	subscribers map[string][]chan *model.DeviceEvent
	events      chan *model.DeviceEvent
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan *model.DeviceEvent),
		events:      make(chan *model.DeviceEvent, 1000),
		logger:      logger,
	}
}

// Start starts the event bus distribution loop
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}
}

// Stop closes the bus; Start returns once pending events drain.
func (eb *EventBus) Stop() {
	close(eb.events)
}

// Publish publishes an event
func (eb *EventBus) Publish(event *model.DeviceEvent) {
	select {
	case eb.events <- event:
	default:
		if eb.logger != nil {
			eb.logger.Warn("Event bus full, dropping event",
				zap.String("event_type", string(event.EventType)),
			)
		}
	}
}

// Subscribe subscribes to events of a specific type
func (eb *EventBus) Subscribe(eventType model.EventType) <-chan *model.DeviceEvent {
	return eb.subscribe(string(eventType))
}

// SubscribeAll subscribes to every event
func (eb *EventBus) SubscribeAll() <-chan *model.DeviceEvent {
	return eb.subscribe(topicAll)
}

func (eb *EventBus) subscribe(topic string) <-chan *model.DeviceEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan *model.DeviceEvent, 100)
	eb.subscribers[topic] = append(eb.subscribers[topic], subscriber)
	return subscriber
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event *model.DeviceEvent) {
	eb.mutex.RLock()
	subscribers := append([]chan *model.DeviceEvent{},
		eb.subscribers[string(event.EventType)]...)
	subscribers = append(subscribers, eb.subscribers[topicAll]...)
	eb.mutex.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// slow subscriber, skip
		}
	}
}
