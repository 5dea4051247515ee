// Package state provides observable state containers for nftdash.
// These containers emit events when state changes, allowing any frontend
// to subscribe and update its UI accordingly.
package state

import (
	"time"

	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// State event types
const (
	EventTableChanged events.EventType = "table_changed"
	EventTableLoading events.EventType = "table_loading"
	EventTableError   events.EventType = "table_error"
)

// IntentRows marks a TableChangedEvent caused by a batch publish rather than
// a user intent.
const IntentRows = "rows"

// TableChangedEvent is published after an intent or a batch publish changed
// the table. Snapshot is the state right after the change.
type TableChangedEvent struct {
	events.BaseEvent
	Intent   string
	Snapshot table.Snapshot
}

// TableLoadingEvent is published when a fetch batch starts or ends.
type TableLoadingEvent struct {
	events.BaseEvent
	Loading bool
}

// TableErrorEvent is published when a refresh could not be started.
type TableErrorEvent struct {
	events.BaseEvent
	Error error
}

// NewTableChangedEvent creates a new TableChangedEvent.
func NewTableChangedEvent(intent string, snap table.Snapshot) *TableChangedEvent {
	return &TableChangedEvent{
		BaseEvent: events.BaseEvent{
			EventType: EventTableChanged,
			Time:      time.Now(),
		},
		Intent:   intent,
		Snapshot: snap,
	}
}

// NewTableLoadingEvent creates a new TableLoadingEvent.
func NewTableLoadingEvent(loading bool) *TableLoadingEvent {
	return &TableLoadingEvent{
		BaseEvent: events.BaseEvent{
			EventType: EventTableLoading,
			Time:      time.Now(),
		},
		Loading: loading,
	}
}

// NewTableErrorEvent creates a new TableErrorEvent.
func NewTableErrorEvent(err error) *TableErrorEvent {
	return &TableErrorEvent{
		BaseEvent: events.BaseEvent{
			EventType: EventTableError,
			Time:      time.Now(),
		},
		Error: err,
	}
}
