package logging

import (
	"github.com/rs/zerolog"

	"github.com/cryptogamefiverse/nftdash/internal/events"
)

// busHook forwards warnings and errors to the event bus so the dashboard
// and terminal UI can surface them.
type busHook struct {
	bus *events.EventBus
}

func (h *busHook) Run(_ *zerolog.Event, level zerolog.Level, message string) {
	switch {
	case level >= zerolog.ErrorLevel && level <= zerolog.PanicLevel:
		h.bus.PublishLog(events.ErrorLevel, message, "", nil)
	case level == zerolog.WarnLevel:
		h.bus.PublishLog(events.WarnLevel, message, "", nil)
	}
}
