package pool

import (
	"log/slog"
)

type options struct {
	memoryLimit int64
	ioLimit     int64
	chunkSize   int
	logger      *slog.Logger
}

// Option configures a Pool.
type Option func(*options)

// WithMemoryLimit caps the arena memory of the pool and every subpool that
// does not set its own limit. Allocations past the cap fail with
// ErrMemoryLimitExceeded.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit paces buffered file I/O on handles owned by the pool to
// bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithChunkSize sets the arena chunk size.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithLogger sets the logger used for teardown failures.
// If nil is passed, logging is discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}
