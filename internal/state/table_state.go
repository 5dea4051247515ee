package state

import (
	"sync"

	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// TableState is an observable wrapper around a table.View.
// Intents and batch publishes are applied under a lock, then a
// TableChangedEvent carrying the new snapshot is published.
// Thread-safe for concurrent access.
type TableState struct {
	eventBus *events.EventBus

	view      table.View
	loading   bool
	lastError error

	mu sync.RWMutex
}

// NewTableState creates a TableState starting from view.
func NewTableState(view table.View, eventBus *events.EventBus) *TableState {
	return &TableState{
		eventBus: eventBus,
		view:     view,
	}
}

// Snapshot returns the current derived table.
func (s *TableState) Snapshot() table.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Snapshot()
}

// View returns the current controller state. The returned value shares no
// mutable state with the container.
func (s *TableState) View() table.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetRows replaces the row collection and publishes a change event.
func (s *TableState) SetRows(rows []models.Row) table.Snapshot {
	snap, _ := s.update(IntentRows, func(v table.View) (table.View, error) {
		return v.SetRows(rows), nil
	})
	return snap
}

// Apply runs one intent. An invalid intent leaves the state unchanged,
// publishes nothing and returns the error.
func (s *TableState) Apply(in table.Intent) (table.Snapshot, error) {
	return s.update(string(in.Kind), func(v table.View) (table.View, error) {
		return v.Apply(in)
	})
}

// RequestSort handles a header click on key.
func (s *TableState) RequestSort(key table.SortKey) (table.Snapshot, error) {
	return s.Apply(table.Intent{Kind: table.IntentSort, Key: key})
}

// ToggleSelectAll selects every loaded row or clears the selection.
func (s *TableState) ToggleSelectAll(checked bool) table.Snapshot {
	snap, _ := s.Apply(table.Intent{Kind: table.IntentSelectAll, Checked: checked})
	return snap
}

// ToggleSelectOne flips one row's selection.
func (s *TableState) ToggleSelectOne(id string) (table.Snapshot, error) {
	return s.Apply(table.Intent{Kind: table.IntentSelectOne, ID: id})
}

// ChangePage moves to another page.
func (s *TableState) ChangePage(index int) table.Snapshot {
	snap, _ := s.Apply(table.Intent{Kind: table.IntentPage, Index: index})
	return snap
}

// ChangePageSize switches rows per page.
func (s *TableState) ChangePageSize(size int) (table.Snapshot, error) {
	return s.Apply(table.Intent{Kind: table.IntentPageSize, Size: size})
}

// ChangeDensity toggles compact rows.
func (s *TableState) ChangeDensity(dense bool) table.Snapshot {
	snap, _ := s.Apply(table.Intent{Kind: table.IntentDensity, Dense: dense})
	return snap
}

// ChangeTimeWindow switches the displayed window.
func (s *TableState) ChangeTimeWindow(w models.Window) (table.Snapshot, error) {
	return s.Apply(table.Intent{Kind: table.IntentTimeWindow, Window: w})
}

// SetLoading marks a fetch batch as running and publishes an event.
func (s *TableState) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	if loading {
		s.lastError = nil
	}
	s.mu.Unlock()

	if s.eventBus != nil {
		s.eventBus.Publish(NewTableLoadingEvent(loading))
	}
}

// IsLoading returns whether a fetch batch is running.
func (s *TableState) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetError records a refresh error and publishes an error event.
func (s *TableState) SetError(err error) {
	s.mu.Lock()
	s.lastError = err
	s.loading = false
	s.mu.Unlock()

	if s.eventBus != nil && err != nil {
		s.eventBus.Publish(NewTableErrorEvent(err))
	}
}

// GetError returns the last refresh error.
func (s *TableState) GetError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *TableState) update(intent string, fn func(table.View) (table.View, error)) (table.Snapshot, error) {
	s.mu.Lock()
	next, err := fn(s.view)
	if err != nil {
		snap := s.view.Snapshot()
		s.mu.Unlock()
		return snap, err
	}
	s.view = next
	snap := next.Snapshot()
	s.mu.Unlock()

	if s.eventBus != nil {
		s.eventBus.Publish(NewTableChangedEvent(intent, snap))
	}
	return snap, nil
}
