package fdscope

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/fdscope/internal/fdset"
	"github.com/hupe1980/fdscope/internal/fs"
	"github.com/hupe1980/fdscope/pool"
)

// BlockingMode describes whether the descriptor blocks on I/O.
type BlockingMode int

const (
	// BlockingUnknown is reported for adopted descriptors of uncertain origin.
	BlockingUnknown BlockingMode = iota
	// BlockingOn is a blocking descriptor.
	BlockingOn
	// BlockingOff is a non-blocking descriptor.
	BlockingOff
)

func (m BlockingMode) String() string {
	switch m {
	case BlockingOn:
		return "blocking"
	case BlockingOff:
		return "non-blocking"
	default:
		return "unknown"
	}
}

type direction int

const (
	dirRead direction = iota
	dirWrite
)

// File is a descriptor whose lifetime is bound to a pool.
//
// A File opened with Open is closed exactly once: either by Close or by the
// teardown of its pool, whichever comes first. Buffered handles serialise
// their I/O on an internal mutex; unbuffered handles do no locking and must
// not be used from several goroutines without external synchronisation.
type File struct {
	fd     int
	pool   *pool.Pool
	fsys   fs.FileSystem
	fds    *fdset.Set // nil unless owned
	logger *Logger

	name     string
	flags    Flag
	blocking BlockingMode
	timeout  time.Duration

	inherit    bool
	owned      bool
	registered bool

	buffered bool
	mu       *sync.Mutex // non-nil iff buffered
	buffer   []byte
	bufpos   int   // next byte in buffer
	dataRead int   // valid bytes in buffer when reading
	dir      direction

	eof      bool
	ungetc   int // pushed-back byte, -1 for none
	lastByte int // last byte returned by ReadByte, -1 for none
}

// Open opens name under p.
//
// Flag combinations are validated before any syscall: a set without Read or
// Write, or with Exclusive but not Create, fails with a *FlagError. OS
// failures are returned as *os.PathError carrying the raw unix.Errno. On
// success the handle is registered with p so that destroying p closes it,
// unless Inherit was requested.
func Open(p *pool.Pool, name string, flag Flag, perm Perm, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	pol, err := newPolicy(flag)
	if err != nil {
		o.logger.LogOpen(name, flag, -1, err)
		return nil, err
	}

	f := &File{
		fd:       -1,
		pool:     p,
		fsys:     o.fsys,
		logger:   o.logger,
		flags:    flag,
		blocking: BlockingOn,
		timeout:  -1,
		ungetc:   -1,
		lastByte: -1,
	}

	if f.name, err = p.Strdup(name); err != nil {
		return nil, err
	}

	f.buffered = pol.buffered
	if f.buffered {
		if f.buffer, err = p.Alloc(o.bufferSize); err != nil {
			o.logger.LogOpen(name, flag, -1, err)
			return nil, err
		}
		f.mu = &sync.Mutex{}
	}

	fd, err := f.fsys.Open(name, pol.oflags(), perm.Mode())
	if err != nil {
		err = &os.PathError{Op: "open", Path: name, Err: err}
		o.logger.LogOpen(name, flag, -1, err)
		return nil, err
	}
	f.fd = fd

	if pol.deleteOnClose {
		if err := f.fsys.Unlink(name); err != nil {
			f.logger.Debug("unlink after open failed", "path", name, "error", err)
		}
	}

	f.inherit = pol.inherit
	f.owned = true
	f.fds = descriptorsOf(p)
	f.fds.Add(fd)
	f.register()

	o.logger.LogOpen(name, flag, fd, nil)
	return f, nil
}

// fileCleanup is the pool callback for an owned, non-inheritable handle.
func fileCleanup(key any) error {
	return key.(*File).cleanup()
}

func (f *File) cleanupFunc() pool.CleanupFunc {
	if f.inherit {
		return pool.CleanupNull
	}
	return fileCleanup
}

func (f *File) register() {
	fn := f.cleanupFunc()
	f.pool.RegisterCleanup(f, fn, fn)
	f.registered = true
}

// cleanup flushes, then closes the descriptor. It is a no-op on a closed
// handle. A close failure takes precedence over a flush failure.
func (f *File) cleanup() error {
	f.lock()
	defer f.unlock()
	return f.cleanupLocked()
}

func (f *File) cleanupLocked() error {
	if f.fd < 0 {
		return nil
	}

	var flushErr error
	if f.buffered {
		flushErr = f.flushLocked()
	}

	fd := f.fd
	if !f.owned {
		f.fd = -1
		return flushErr
	}

	if err := f.fsys.Close(fd); err != nil {
		err = &os.PathError{Op: "close", Path: f.displayName(), Err: err}
		f.logger.LogClose(f.name, fd, err)
		return err
	}
	f.fd = -1
	f.fds.Remove(fd)
	f.logger.LogClose(f.name, fd, nil)
	return flushErr
}

// Close flushes and closes the handle and cancels its pool registration.
//
// The registration is cancelled once the descriptor is gone, even when a
// flush error is returned. If the OS close fails the registration is kept, so
// pool teardown tries again. Closing a closed handle returns nil. Closing an adopted handle that
// does not own its descriptor only detaches it; the descriptor stays open.
func (f *File) Close() error {
	f.lock()
	defer f.unlock()

	err := f.cleanupLocked()
	if f.fd < 0 && f.registered {
		f.pool.KillCleanup(f)
		f.registered = false
	}
	return err
}

// Fd returns the raw descriptor, or -1 if the handle is closed.
func (f *File) Fd() int {
	return f.fd
}

// Name returns the path the handle was opened with. Adopted handles have no name.
func (f *File) Name() string {
	return f.name
}

// Flags returns the flag set the handle was opened with.
func (f *File) Flags() Flag {
	return f.flags
}

// Pool returns the owning pool.
func (f *File) Pool() *pool.Pool {
	return f.pool
}

// Buffered reports whether the handle has a private buffer.
func (f *File) Buffered() bool {
	return f.buffered
}

// Blocking returns the blocking mode of the descriptor.
func (f *File) Blocking() BlockingMode {
	return f.blocking
}

// Inherited reports whether the descriptor survives exec.
func (f *File) Inherited() bool {
	return f.inherit
}

// Owned reports whether closing the handle closes the descriptor.
func (f *File) Owned() bool {
	return f.owned
}

// IsOpen reports whether the handle still holds a descriptor.
func (f *File) IsOpen() bool {
	return f.fd >= 0
}

// Timeout returns the I/O timeout hint. -1 means block indefinitely.
func (f *File) Timeout() time.Duration {
	return f.timeout
}

// SetTimeout sets the I/O timeout hint. Open and Close ignore it.
func (f *File) SetTimeout(d time.Duration) {
	f.timeout = d
}

// EOF reports io.EOF once a read has observed end of stream, nil before.
// It never touches the descriptor.
func (f *File) EOF() error {
	f.lock()
	defer f.unlock()

	if f.eof {
		return io.EOF
	}
	return nil
}

func (f *File) displayName() string {
	if f.name != "" {
		return f.name
	}
	return fmt.Sprintf("fd:%d", f.fd)
}
