package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RetryLogger implements retryablehttp.LeveledLogger on top of zerolog.
// Retry chatter (per-request debug lines) only shows with --debug.
type RetryLogger struct {
	zlog zerolog.Logger
}

// NewRetryLogger returns a LeveledLogger writing through l.
// A nil l uses the global zerolog logger.
func NewRetryLogger(l *Logger) *RetryLogger {
	if l == nil {
		return &RetryLogger{zlog: log.Logger}
	}
	return &RetryLogger{zlog: l.zlog.With().Str("component", "retry").Logger()}
}

func (r *RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	r.zlog.Error().Fields(keysAndValues).Msg(msg)
}

func (r *RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	r.zlog.Debug().Fields(keysAndValues).Msg(msg)
}

func (r *RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.zlog.Debug().Fields(keysAndValues).Msg(msg)
}

func (r *RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.zlog.Warn().Fields(keysAndValues).Msg(msg)
}
