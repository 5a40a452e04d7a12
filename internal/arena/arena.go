package arena

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/fdscope/internal/conv"
)

// MemoryAcquirer reserves memory for each allocation before it is handed out.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

var (
	// ErrFreed is returned when allocating from an arena after Free.
	ErrFreed = errors.New("arena: allocation after free")
)

const (
	// DefaultChunkSize is the default size of a chunk (64 KiB).
	DefaultChunkSize = 64 * 1024
	// DefaultAlignment is the default allocation alignment (8 bytes).
	DefaultAlignment = 8
)

// Stats tracks arena memory usage.
type Stats struct {
	ChunksAllocated uint64 // Historical: total chunks ever created
	BytesReserved   uint64 // Current: bytes held in live chunks
	BytesUsed       uint64 // Current: bytes requested by allocations
	BytesWasted     uint64 // Current: alignment padding and chunk tails
	TotalAllocs     uint64 // Historical: total allocations
}

type atomicStats struct {
	ChunksAllocated atomic.Uint64
	BytesReserved   atomic.Uint64
	BytesUsed       atomic.Uint64
	BytesWasted     atomic.Uint64
	TotalAllocs     atomic.Uint64
}

// Arena is a chunked bump allocator. It is safe for concurrent use.
type Arena struct {
	chunkSize int
	alignment int
	acquirer  MemoryAcquirer

	mu       sync.Mutex
	current  []byte // unused tail of the active chunk
	reserved int64  // bytes charged to the acquirer
	freed    bool

	stats atomicStats
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates an arena with the given chunk size. No memory is reserved until
// the first allocation.
func New(chunkSize int, opts ...Option) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	a := &Arena{
		chunkSize: chunkSize,
		alignment: DefaultAlignment,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Alloc returns a zeroed slice of exactly size bytes.
// Requests larger than the chunk size get a dedicated chunk.
func (a *Arena) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}

	mask := a.alignment - 1
	aligned := (size + mask) &^ mask

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.freed {
		return nil, ErrFreed
	}

	// Charge the bytes handed out, not whole chunks.
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(aligned)); err != nil {
			return nil, fmt.Errorf("arena: reserve %d bytes: %w", aligned, err)
		}
	}
	a.reserved += int64(aligned)

	if aligned > len(a.current) {
		if aligned > a.chunkSize {
			buf := a.newChunkLocked(aligned)
			a.account(size, aligned)
			return buf[:size:size], nil
		}

		a.stats.BytesWasted.Add(uint64(len(a.current)))
		a.current = a.newChunkLocked(a.chunkSize)
	}

	buf := a.current[:size:size]
	a.current = a.current[aligned:]
	a.account(size, aligned)
	return buf, nil
}

// AllocString copies s into arena memory.
func (a *Arena) AllocString(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	buf, err := a.Alloc(len(s))
	if err != nil {
		return "", err
	}
	copy(buf, s)
	return unsafe.String(&buf[0], len(buf)), nil //nolint:gosec // buf is never written again
}

func (a *Arena) newChunkLocked(size int) []byte {
	sizeU64, _ := conv.IntToUint64(size)
	a.stats.ChunksAllocated.Add(1)
	a.stats.BytesReserved.Add(sizeU64)

	return make([]byte, size)
}

func (a *Arena) account(size, aligned int) {
	sizeU64, _ := conv.IntToUint64(size)
	wasteU64, _ := conv.IntToUint64(aligned - size)
	a.stats.BytesUsed.Add(sizeU64)
	a.stats.BytesWasted.Add(wasteU64)
	a.stats.TotalAllocs.Add(1)
}

// Reset drops every chunk and returns their reservation to the acquirer.
// The arena stays usable.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

// Free releases the arena for good. Later allocations fail with ErrFreed.
// Free is idempotent.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.freed {
		return
	}
	a.resetLocked()
	a.freed = true
}

func (a *Arena) resetLocked() {
	if a.acquirer != nil && a.reserved > 0 {
		a.acquirer.ReleaseMemory(a.reserved)
	}
	a.reserved = 0
	a.current = nil

	a.stats.BytesReserved.Store(0)
	a.stats.BytesUsed.Store(0)
	a.stats.BytesWasted.Store(0)
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		ChunksAllocated: a.stats.ChunksAllocated.Load(),
		BytesReserved:   a.stats.BytesReserved.Load(),
		BytesUsed:       a.stats.BytesUsed.Load(),
		BytesWasted:     a.stats.BytesWasted.Load(),
		TotalAllocs:     a.stats.TotalAllocs.Load(),
	}
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, reserved: %.1f KB, used: %.1f KB, wasted: %d B, allocs: %d}",
		s.ChunksAllocated,
		float64(s.BytesReserved)/1024,
		float64(s.BytesUsed)/1024,
		s.BytesWasted,
		s.TotalAllocs,
	)
}
