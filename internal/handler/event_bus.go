// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"mcintosh-service/internal/model"
)

type subscription struct {
	id     uint64
	types  map[model.EventType]bool
	events chan model.DeviceEvent
}

// EventBus fans device events out to subscribers. Publish never blocks;
// events are dropped when the bus or a subscriber is full.
type EventBus struct {
	subscribers map[uint64]*subscription
	events      chan model.DeviceEvent
	nextID      uint64
	mutex       sync.RWMutex
	closed      atomic.Bool
	dropped     atomic.Int64
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		subscribers: make(map[uint64]*subscription),
		events:      make(chan model.DeviceEvent, 1000),
		logger:      logger.With(zap.String("component", "event-bus")),
	}
}

// Start distributes events until Stop is called
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}

	eb.mutex.Lock()
	for id, sub := range eb.subscribers {
		close(sub.events)
		delete(eb.subscribers, id)
	}
	eb.mutex.Unlock()
}

// Stop ends distribution and closes every subscriber channel
func (eb *EventBus) Stop() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	if !eb.closed.Load() {
		eb.closed.Store(true)
		close(eb.events)
	}
}

// Publish publishes an event
func (eb *EventBus) Publish(event model.DeviceEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	if eb.closed.Load() {
		return
	}

	select {
	case eb.events <- event:
	default:
		eb.dropped.Inc()
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Subscribe returns a channel receiving events of the given types, or of
// every type when none is given, and a function that cancels it.
func (eb *EventBus) Subscribe(eventTypes ...model.EventType) (<-chan model.DeviceEvent, func()) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	eb.nextID++
	sub := &subscription{
		id:     eb.nextID,
		events: make(chan model.DeviceEvent, 100),
	}
	if len(eventTypes) > 0 {
		sub.types = make(map[model.EventType]bool, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = true
		}
	}
	if eb.closed.Load() {
		close(sub.events)
		return sub.events, func() {}
	}
	eb.subscribers[sub.id] = sub

	var once sync.Once
	return sub.events, func() {
		once.Do(func() {
			eb.mutex.Lock()
			defer eb.mutex.Unlock()
			if _, ok := eb.subscribers[sub.id]; ok {
				delete(eb.subscribers, sub.id)
				close(sub.events)
			}
		})
	}
}

// Dropped returns how many events were discarded
func (eb *EventBus) Dropped() int64 {
	return eb.dropped.Load()
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event model.DeviceEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, sub := range eb.subscribers {
		if sub.types != nil && !sub.types[event.EventType] {
			continue
		}
		select {
		case sub.events <- event:
		default:
			// Subscriber is slow, skip
			eb.dropped.Inc()
		}
	}
}
