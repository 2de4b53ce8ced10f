// Package event provides a process-wide publish/subscribe bus used to
// decouple signal evaluation, alerts and notification delivery.
package event

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published on the bus
const (
	TopicSignal     = "signal:evaluated"
	TopicTrade      = "trade:executed"
	TopicPriceAlert = "price:alert"
	TopicNews       = "news:refreshed"
)

// Bus wraps the underlying event bus so subscribers depend on this package
// rather than the library
type Bus struct {
	bus evbus.Bus
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish emits an event on a topic
func (b *Bus) Publish(topic string, args ...any) {
	b.bus.Publish(topic, args...)
}

// Subscribe registers a synchronous handler for a topic
func (b *Bus) Subscribe(topic string, fn any) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler executed on its own goroutine.
// Transactional delivery keeps events for one subscriber in order.
func (b *Bus) SubscribeAsync(topic string, fn any) error {
	return b.bus.SubscribeAsync(topic, fn, true)
}

// Unsubscribe removes a handler from a topic
func (b *Bus) Unsubscribe(topic string, fn any) error {
	return b.bus.Unsubscribe(topic, fn)
}

// WaitAsync blocks until all async handlers have finished
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
