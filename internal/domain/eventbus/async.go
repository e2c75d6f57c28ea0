package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// AsyncEventBus decouples publishers from subscribers through a
// buffered queue drained by a fixed worker pool.
type AsyncEventBus struct {
	bus       evbus.Bus
	workerNum int
	workChan  chan asyncEvent
	stopChan  chan struct{}
	wg        sync.WaitGroup
	pending   sync.WaitGroup
}

type asyncEvent struct {
	topic string
	args  []interface{}
}

// NewAsyncEventBus creates an async bus with the given worker count.
func NewAsyncEventBus(workerNum int) *AsyncEventBus {
	if workerNum <= 0 {
		workerNum = 10
	}

	return &AsyncEventBus{
		bus:       evbus.New(),
		workerNum: workerNum,
		workChan:  make(chan asyncEvent, 1000),
		stopChan:  make(chan struct{}),
	}
}

// Start launches the worker pool.
func (aeb *AsyncEventBus) Start() {
	for i := 0; i < aeb.workerNum; i++ {
		aeb.wg.Add(1)
		go aeb.worker()
	}
}

// Stop shuts the workers down after the queue drains. Publishers must be
// quiet before calling it or the drain never completes.
func (aeb *AsyncEventBus) Stop() {
	aeb.pending.Wait()
	close(aeb.stopChan)
	aeb.wg.Wait()
}

func (aeb *AsyncEventBus) worker() {
	defer aeb.wg.Done()

	for {
		select {
		case <-aeb.stopChan:
			return
		case event := <-aeb.workChan:
			aeb.dispatch(event)
		}
	}
}

// dispatch delivers one queued event, recovering from subscriber panics
// so a bad handler cannot take a worker down.
func (aeb *AsyncEventBus) dispatch(event asyncEvent) {
	defer aeb.pending.Done()
	defer func() {
		_ = recover()
	}()
	aeb.bus.Publish(event.topic, event.args...)
}

// Publish delivers an event synchronously on the caller's goroutine.
func (aeb *AsyncEventBus) Publish(topic string, args ...interface{}) {
	aeb.bus.Publish(topic, args...)
}

// PublishAsync queues an event for the worker pool. Events are dropped
// when the queue is full rather than blocking the publisher.
func (aeb *AsyncEventBus) PublishAsync(topic string, args ...interface{}) {
	aeb.pending.Add(1)
	select {
	case aeb.workChan <- asyncEvent{topic: topic, args: args}:
	default:
		aeb.pending.Done()
	}
}

// Subscribe registers a handler for a topic.
func (aeb *AsyncEventBus) Subscribe(topic string, fn interface{}) error {
	return aeb.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler for a topic. Delivery already
// happens off the publisher's goroutine, so this is an alias.
func (aeb *AsyncEventBus) SubscribeAsync(topic string, fn interface{}) error {
	return aeb.bus.Subscribe(topic, fn)
}

// Unsubscribe removes a previously registered handler.
func (aeb *AsyncEventBus) Unsubscribe(topic string, handler interface{}) error {
	return aeb.bus.Unsubscribe(topic, handler)
}

// HasCallback reports whether a topic has subscribers.
func (aeb *AsyncEventBus) HasCallback(topic string) bool {
	return aeb.bus.HasCallback(topic)
}

// WaitAsync blocks until every queued event has been dispatched.
func (aeb *AsyncEventBus) WaitAsync() {
	aeb.pending.Wait()
}
