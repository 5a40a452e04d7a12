package fdscope

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with handle-specific helpers.
// This keeps field names consistent across open, close and adoption logs.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithFD adds a descriptor field to the logger.
func (l *Logger) WithFD(fd int) *Logger {
	return &Logger{
		Logger: l.Logger.With("fd", fd),
	}
}

// LogOpen logs an open attempt.
func (l *Logger) LogOpen(path string, flag Flag, fd int, err error) {
	if err != nil {
		l.Debug("open failed",
			"path", path,
			"flags", flag.String(),
			"error", err,
		)
		return
	}
	l.Debug("opened",
		"path", path,
		"flags", flag.String(),
		"fd", fd,
	)
}

// LogClose logs a close attempt.
func (l *Logger) LogClose(path string, fd int, err error) {
	if err != nil {
		l.Warn("close failed",
			"path", path,
			"fd", fd,
			"error", err,
		)
		return
	}
	l.Debug("closed",
		"path", path,
		"fd", fd,
	)
}

// LogAdopt logs the adoption of a foreign descriptor.
func (l *Logger) LogAdopt(fd int, owned bool) {
	l.Debug("adopted",
		"fd", fd,
		"owned", owned,
	)
}

// LogInherit logs an inheritance toggle.
func (l *Logger) LogInherit(fd int, inherit bool, err error) {
	if err != nil {
		l.Warn("inherit toggle failed",
			"fd", fd,
			"inherit", inherit,
			"error", err,
		)
		return
	}
	l.Debug("inherit toggled",
		"fd", fd,
		"inherit", inherit,
	)
}
