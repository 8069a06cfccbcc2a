package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with application-specific methods
type Logger struct {
	zerolog.Logger

	file *os.File
}

// New creates a new Logger writing to both the console and the given log
// file. The file receives JSON entries regardless of the console format so
// the durable sink stays machine-readable.
func New(level string, format string, logFile string) (*Logger, error) {
	// Set global log level
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var console io.Writer = os.Stdout
	if format == "text" || format == "console" {
		// Human-readable output for interactive runs
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	l := &Logger{}
	sink := console
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		sink = zerolog.MultiLevelWriter(console, f)
	}

	l.Logger = zerolog.New(sink).With().Timestamp().Logger()
	return l, nil
}

// Close releases the log file, if one is open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithComponent returns a new logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With().Str("component", component).Logger(),
		file:   l.file,
	}
}

// WithRecipient returns a new logger with the recipient address attached
func (l *Logger) WithRecipient(email string) *Logger {
	return &Logger{
		Logger: l.With().Str("recipient", email).Logger(),
		file:   l.file,
	}
}
