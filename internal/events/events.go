// Package events is the in-process publish/subscribe bus that connects the
// fetch pipeline and table state to the terminal UI, progress bars and the
// websocket stream.
package events

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
)

// subscription is one buffered channel and the event types it wants.
// A nil filter matches everything.
type subscription struct {
	ch     chan Event
	filter []EventType
}

func (s *subscription) wants(t EventType) bool {
	return s.filter == nil || slices.Contains(s.filter, t)
}

// EventBus fans events out to subscribers. Publishing never blocks: a
// subscriber with a full buffer misses the event and the drop is counted.
type EventBus struct {
	mu         sync.RWMutex
	subs       []*subscription
	bufferSize int
	closed     bool
	dropped    atomic.Int64
}

// NewEventBus creates a bus whose subscriber channels hold bufferSize events.
// Non-positive sizes use constants.EventBusDefaultBuffer; sizes are capped at
// constants.EventBusMaxBuffer.
func NewEventBus(bufferSize int) *EventBus {
	switch {
	case bufferSize <= 0:
		bufferSize = constants.EventBusDefaultBuffer
	case bufferSize > constants.EventBusMaxBuffer:
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{bufferSize: bufferSize}
}

func (eb *EventBus) subscribe(filter []EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	sub := &subscription{ch: make(chan Event, eb.bufferSize), filter: filter}
	eb.subs = append(eb.subs, sub)
	return sub.ch
}

// Subscribe returns a channel receiving events of one type. On a closed bus
// the channel is already closed.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	return eb.subscribe([]EventType{eventType})
}

// SubscribeAll returns a channel receiving every event.
func (eb *EventBus) SubscribeAll() <-chan Event {
	return eb.subscribe(nil)
}

// Publish delivers event to every interested subscriber.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	t := event.Type()
	for _, sub := range eb.subs {
		if !sub.wants(t) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// PublishLog publishes a LogEvent stamped now.
func (eb *EventBus) PublishLog(level LogLevel, message, slug string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{EventType: EventLog, Time: time.Now()},
		Level:     level,
		Message:   message,
		Slug:      slug,
		Error:     err,
	})
}

func (eb *EventBus) remove(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.subs = slices.DeleteFunc(eb.subs, func(sub *subscription) bool {
		if sub.ch == ch {
			close(sub.ch)
			return true
		}
		return false
	})
}

// Unsubscribe closes and removes a channel returned by Subscribe.
func (eb *EventBus) Unsubscribe(_ EventType, ch <-chan Event) {
	eb.remove(ch)
}

// UnsubscribeAll closes and removes a channel returned by SubscribeAll.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.remove(ch)
}

// Close closes every subscriber channel. Later publishes are ignored and
// later subscriptions get a closed channel.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	for _, sub := range eb.subs {
		close(sub.ch)
	}
	eb.subs = nil
}

// GetDroppedEventCount returns how many deliveries were skipped on full buffers.
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.dropped.Load()
}

// ResetDroppedEventCount zeroes the drop counter and returns the old value.
func (eb *EventBus) ResetDroppedEventCount() int64 {
	return eb.dropped.Swap(0)
}
