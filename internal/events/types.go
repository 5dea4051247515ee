package events

import "time"

// EventType names a kind of event on the bus.
type EventType string

const (
	EventLog EventType = "log"

	// one batch: started, then one fetched/failed per slug, then complete
	EventFetchStarted      EventType = "fetch_started"
	EventCollectionFetched EventType = "collection_fetched"
	EventCollectionFailed  EventType = "collection_fetch_failed"
	EventFetchComplete     EventType = "fetch_complete"
)

// LogLevel is the severity carried by a LogEvent.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Event is anything published on the bus.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent is embedded by every concrete event.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// LogEvent mirrors a warning or error log line for frontends.
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Slug    string
	Error   error
}

// FetchStartedEvent opens a batch, before any request is sent.
type FetchStartedEvent struct {
	BaseEvent
	Slugs []string
}

// CollectionEvent reports one slug's outcome. A failure doesn't stop its siblings.
type CollectionEvent struct {
	BaseEvent
	Slug       string
	Name       string // empty on failure
	Error      error
	ErrorClass string // "network", "retryable", "credential", "fatal"
	Duration   time.Duration
}

// FetchCompleteEvent closes a batch once every request settled.
type FetchCompleteEvent struct {
	BaseEvent
	Requested int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Cancelled bool
}
