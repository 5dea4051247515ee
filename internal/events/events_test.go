package events

import (
	"errors"
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventCollectionFetched)

	bus.Publish(&CollectionEvent{
		BaseEvent: BaseEvent{
			EventType: EventCollectionFetched,
			Time:      time.Now(),
		},
		Slug: "doodles-official",
		Name: "Doodles",
	})

	select {
	case received := <-ch:
		ev, ok := received.(*CollectionEvent)
		if !ok {
			t.Fatal("Expected CollectionEvent")
		}
		if ev.Slug != "doodles-official" {
			t.Errorf("Expected slug 'doodles-official', got '%s'", ev.Slug)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_TypeFiltering(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	failed := bus.Subscribe(EventCollectionFailed)
	all := bus.SubscribeAll()

	bus.PublishLog(InfoLevel, "fetching", "meebits", nil)

	select {
	case ev := <-failed:
		t.Errorf("failure subscriber got %s event", ev.Type())
	default:
	}

	select {
	case ev := <-all:
		logEv, ok := ev.(*LogEvent)
		if !ok || logEv.Slug != "meebits" || logEv.Level != InfoLevel {
			t.Errorf("unexpected event %#v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("SubscribeAll channel did not receive the event")
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	_ = bus.Subscribe(EventLog)
	bus.PublishLog(InfoLevel, "first", "", nil)
	bus.PublishLog(WarnLevel, "second", "", errors.New("boom"))

	if got := bus.GetDroppedEventCount(); got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
	if got := bus.ResetDroppedEventCount(); got != 1 {
		t.Errorf("ResetDroppedEventCount() = %d, want 1", got)
	}
	if got := bus.GetDroppedEventCount(); got != 0 {
		t.Errorf("dropped after reset = %d, want 0", got)
	}
}

func TestEventBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()
	bus.UnsubscribeAll(ch)

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after UnsubscribeAll")
	}

	// publishing after unsubscribe must not panic on the closed channel
	bus.PublishLog(DebugLevel, "after unsubscribe", "", nil)
}

func TestEventBus_SubscribeAfterClose(t *testing.T) {
	bus := NewEventBus(10)
	bus.Close()

	ch := bus.Subscribe(EventFetchComplete)
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after bus Close")
	}

	// double close is a no-op
	bus.Close()
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestEventBus_UnsubscribeLeavesOthers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	first := bus.Subscribe(EventFetchComplete)
	second := bus.Subscribe(EventFetchComplete)
	bus.Unsubscribe(EventFetchComplete, first)

	bus.Publish(&FetchCompleteEvent{
		BaseEvent: BaseEvent{EventType: EventFetchComplete, Time: time.Now()},
		Requested: 3,
		Succeeded: 3,
	})

	select {
	case ev := <-second:
		if done, ok := ev.(*FetchCompleteEvent); !ok || done.Requested != 3 {
			t.Errorf("unexpected event %#v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("remaining subscriber did not receive the event")
	}

	if _, ok := <-first; ok {
		t.Error("unsubscribed channel received an event")
	}
}
