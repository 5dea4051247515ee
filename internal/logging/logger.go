// Package logging provides structured logging for the CLI, terminal UI, and
// dashboard server.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/events"
)

// Logging modes.
const (
	ModeCLI    = "cli"    // console on stdout (stderr is reserved for progress bars)
	ModeTUI    = "tui"    // rotating file; bubbletea owns the terminal
	ModeServer = "server" // console on stderr
)

const timeFormat = "15:04:05"

// Logger wraps zerolog with mode-specific behavior.
type Logger struct {
	zlog     zerolog.Logger
	mode     string
	eventBus *events.EventBus
	output   io.Writer
	file     *lumberjack.Logger
}

// Options configures NewLogger.
type Options struct {
	// Mode is one of ModeCLI, ModeTUI, ModeServer. Empty means ModeCLI.
	Mode string

	// LogFile is the rotating file used in ModeTUI.
	LogFile string

	// EventBus, if set, receives warnings and errors as LogEvents.
	EventBus *events.EventBus
}

// NewLogger creates a new logger for the specified mode.
func NewLogger(opts Options) (*Logger, error) {
	l := &Logger{
		mode:     opts.Mode,
		eventBus: opts.EventBus,
	}
	if l.mode == "" {
		l.mode = ModeCLI
	}

	switch l.mode {
	case ModeCLI:
		l.output = consoleWriter(os.Stdout)
	case ModeServer:
		l.output = consoleWriter(os.Stderr)
	case ModeTUI:
		if opts.LogFile == "" {
			return nil, fmt.Errorf("tui logging requires a log file")
		}
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.file = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    constants.LogFileMaxSizeMB,
			MaxBackups: constants.LogFileMaxBackups,
			MaxAge:     constants.LogFileMaxAgeDays,
			Compress:   true,
		}
		// plain JSON lines in the file, no color codes
		l.output = l.file
	default:
		return nil, fmt.Errorf("unknown logging mode %q", opts.Mode)
	}

	l.rebuild()
	return l, nil
}

// NewDefaultCLILogger creates a default CLI logger.
func NewDefaultCLILogger() *Logger {
	l, _ := NewLogger(Options{Mode: ModeCLI})
	return l
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
}

func (l *Logger) rebuild() {
	zl := zerolog.New(l.output).With().Timestamp().Logger()
	if l.eventBus != nil {
		zl = zl.Hook(&busHook{bus: l.eventBus})
	}
	l.zlog = zl
}

// Zerolog returns the underlying zerolog logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// SetOutput changes the output writer for the logger.
// This is useful for redirecting logs around a progress bar.
func (l *Logger) SetOutput(w io.Writer) {
	if l.mode == ModeTUI {
		l.output = w
	} else {
		l.output = consoleWriter(w)
	}
	l.rebuild()
}

// Install makes this logger the package-global zerolog logger, so code
// that logs through github.com/rs/zerolog/log ends up in the same place.
func (l *Logger) Install() {
	log.Logger = l.zlog
}

// Close flushes and closes the log file in tui mode.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ParseLevel maps a config level name to a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(consoleWriter(os.Stderr))
}
