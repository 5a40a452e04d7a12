package fdscope

import (
	"github.com/hupe1980/fdscope/internal/fs"
)

// DefaultBufferSize is the buffer size of Buffered handles.
const DefaultBufferSize = 4096

type options struct {
	logger     *Logger
	bufferSize int
	owned      bool
	fsys       fs.FileSystem
}

func defaultOptions() options {
	return options{
		logger:     NoopLogger(),
		bufferSize: DefaultBufferSize,
		fsys:       fs.Default,
	}
}

// Option configures Open and Adopt.
type Option func(*options)

// WithLogger configures the logger for the handle.
//
// If nil is passed, logging is discarded.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithBufferSize overrides DefaultBufferSize for a Buffered handle.
// Non-positive sizes are ignored.
func WithBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// WithOwnership makes Adopt take ownership of the descriptor: the handle is
// registered with the pool and closing it closes the descriptor. Open ignores
// this option; opened handles are always owned.
func WithOwnership() Option {
	return func(o *options) {
		o.owned = true
	}
}
