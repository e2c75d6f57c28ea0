package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

var (
	instance evbus.Bus
	asyncBus *AsyncEventBus
	once     sync.Once
)

// Get returns the process-wide synchronous event bus.
func Get() evbus.Bus {
	once.Do(func() {
		instance = New()
		asyncBus = NewAsyncEventBus(10)
		asyncBus.Start()
	})
	return instance
}

// GetAsync returns the process-wide asynchronous event bus.
func GetAsync() *AsyncEventBus {
	once.Do(func() {
		instance = New()
		asyncBus = NewAsyncEventBus(10)
		asyncBus.Start()
	})
	return asyncBus
}

// New creates a fresh synchronous event bus.
func New() evbus.Bus {
	return evbus.New()
}

// Publish delivers an event to synchronous subscribers.
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// PublishAsync queues an event for the async worker pool.
func PublishAsync(topic string, args ...interface{}) {
	GetAsync().PublishAsync(topic, args...)
}

// Subscribe registers a synchronous handler.
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// SubscribeAsync registers a handler on the async bus.
func SubscribeAsync(topic string, fn interface{}) error {
	return GetAsync().SubscribeAsync(topic, fn)
}

// Unsubscribe removes a handler from the async bus.
func Unsubscribe(topic string, fn interface{}) error {
	return GetAsync().Unsubscribe(topic, fn)
}

// Shutdown stops the async worker pool.
func Shutdown() {
	if asyncBus != nil {
		asyncBus.Stop()
	}
}
