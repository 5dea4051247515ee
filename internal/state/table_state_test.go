package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptogamefiverse/nftdash/internal/events"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

func testRows(n int) []models.Row {
	rows := make([]models.Row, n)
	for i := range rows {
		vol := decimal.NewFromInt(int64(i))
		rows[i] = models.Row{
			Name:   fmt.Sprintf("collection-%02d", i),
			OneDay: models.WindowStats{Volume: vol},
		}
	}
	return rows
}

func waitChanged(t *testing.T, ch <-chan events.Event) *TableChangedEvent {
	t.Helper()
	select {
	case ev := <-ch:
		changed, ok := ev.(*TableChangedEvent)
		if !ok {
			t.Fatalf("got %T, want *TableChangedEvent", ev)
		}
		return changed
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for table_changed event")
	}
	return nil
}

func TestNewTableState(t *testing.T) {
	eventBus := events.NewEventBus(100)
	state := NewTableState(table.NewView(), eventBus)

	if state == nil {
		t.Fatal("NewTableState returned nil")
	}
	snap := state.Snapshot()
	if snap.Total != 0 || len(snap.Rows) != 0 {
		t.Errorf("initial snapshot has %d rows, want 0", snap.Total)
	}
	if state.IsLoading() {
		t.Error("Initial state should not be loading")
	}
}

func TestTableStateSetRowsPublishes(t *testing.T) {
	eventBus := events.NewEventBus(100)
	state := NewTableState(table.NewView(), eventBus)
	ch := eventBus.Subscribe(EventTableChanged)

	state.SetRows(testRows(3))

	changed := waitChanged(t, ch)
	if changed.Intent != IntentRows {
		t.Errorf("Intent = %q, want %q", changed.Intent, IntentRows)
	}
	if changed.Snapshot.Total != 3 {
		t.Errorf("Snapshot.Total = %d, want 3", changed.Snapshot.Total)
	}
}

func TestTableStateIntents(t *testing.T) {
	eventBus := events.NewEventBus(100)
	state := NewTableState(table.NewView(), eventBus)
	state.SetRows(testRows(23))

	snap, err := state.RequestSort(table.KeyVolume)
	if err != nil {
		t.Fatalf("RequestSort: %v", err)
	}
	if snap.Sort.Direction != table.Descending {
		t.Errorf("Direction = %q, want desc", snap.Sort.Direction)
	}
	if snap.Rows[0].Name != "collection-22" {
		t.Errorf("first row = %q, want collection-22", snap.Rows[0].Name)
	}

	snap = state.ChangePage(2)
	if len(snap.Rows) != 3 || snap.Placeholders != 7 {
		t.Errorf("page 2 = (%d rows, %d placeholders), want (3, 7)", len(snap.Rows), snap.Placeholders)
	}

	if _, err := state.ToggleSelectOne("collection-01"); err != nil {
		t.Fatalf("ToggleSelectOne: %v", err)
	}
	if !state.Snapshot().Indeterminate {
		t.Error("one selected row should make the header indeterminate")
	}

	snap = state.ToggleSelectAll(true)
	if !snap.AllSelected {
		t.Error("ToggleSelectAll(true) should select every row")
	}

	snap = state.ChangeDensity(true)
	if !snap.Dense {
		t.Error("Dense = false, want true")
	}

	snap, err = state.ChangeTimeWindow(models.WindowThirtyDay)
	if err != nil {
		t.Fatalf("ChangeTimeWindow: %v", err)
	}
	if snap.Window != models.WindowThirtyDay {
		t.Errorf("Window = %q, want thirty_day", snap.Window)
	}
}

func TestTableStateInvalidIntentDoesNotPublish(t *testing.T) {
	eventBus := events.NewEventBus(100)
	state := NewTableState(table.NewView(), eventBus)
	ch := eventBus.Subscribe(EventTableChanged)

	before := state.View()
	if _, err := state.ChangePageSize(13); !errors.Is(err, table.ErrInvalidPageSize) {
		t.Errorf("error = %v, want ErrInvalidPageSize", err)
	}
	if _, err := state.RequestSort("rarity"); !errors.Is(err, table.ErrUnknownSortKey) {
		t.Errorf("error = %v, want ErrUnknownSortKey", err)
	}

	select {
	case ev := <-ch:
		t.Errorf("unexpected event %T after invalid intents", ev)
	default:
	}

	after := state.View()
	if after.Page != before.Page || after.Sort != before.Sort {
		t.Errorf("state changed: page %v -> %v, sort %v -> %v", before.Page, after.Page, before.Sort, after.Sort)
	}
}

func TestTableStateLoadingAndError(t *testing.T) {
	eventBus := events.NewEventBus(100)
	state := NewTableState(table.NewView(), eventBus)
	loadingCh := eventBus.Subscribe(EventTableLoading)
	errCh := eventBus.Subscribe(EventTableError)

	state.SetLoading(true)
	if !state.IsLoading() {
		t.Error("IsLoading() = false, want true")
	}
	select {
	case ev := <-loadingCh:
		if !ev.(*TableLoadingEvent).Loading {
			t.Error("loading event should carry Loading = true")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for loading event")
	}

	boom := errors.New("refresh already running")
	state.SetError(boom)
	if state.IsLoading() {
		t.Error("SetError should clear loading")
	}
	if !errors.Is(state.GetError(), boom) {
		t.Errorf("GetError() = %v, want %v", state.GetError(), boom)
	}
	select {
	case <-errCh:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for error event")
	}
}

func TestTableStateConcurrentAccess(t *testing.T) {
	state := NewTableState(table.NewView(), nil)
	state.SetRows(testRows(50))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				state.ToggleSelectOne(fmt.Sprintf("collection-%02d", i))
			case 1:
				state.ChangePage(i % 5)
			case 2:
				state.RequestSort(table.KeyName)
			default:
				_ = state.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if got := state.Snapshot().Total; got != 50 {
		t.Errorf("Total = %d, want 50", got)
	}
}
