package pool

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/hupe1980/fdscope/internal/arena"
	"github.com/hupe1980/fdscope/internal/resource"
)

var (
	// ErrDestroyed is returned when allocating from a destroyed pool.
	ErrDestroyed = errors.New("pool: destroyed")

	// ErrMemoryLimitExceeded is returned when an allocation would exceed the
	// configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// CleanupFunc releases the resource registered under key. Keys are compared
// with ==, so they must be comparable; pointers are the usual choice.
type CleanupFunc func(key any) error

// CleanupNull does nothing. Register it where a callback is required but no
// action is wanted.
func CleanupNull(any) error { return nil }

type registration struct {
	key   any
	plain CleanupFunc
	child CleanupFunc
}

// Pool is a hierarchical memory region with a cleanup registry.
// It is safe for concurrent use.
type Pool struct {
	parent    *Pool
	arena     *arena.Arena
	chunkSize int
	rc        *resource.Controller
	logger    *slog.Logger

	mu        sync.Mutex
	children  []*Pool
	cleanups  []*registration
	userdata  map[string]any
	destroyed bool
}

// New creates a pool. A nil parent creates a root pool; otherwise the pool is
// destroyed together with parent. A subpool inherits the parent's limits and
// chunk size unless overridden, and logs to the parent's logger.
func New(parent *Pool, opts ...Option) *Pool {
	o := options{}
	if parent != nil {
		o.logger = parent.logger
		o.chunkSize = parent.chunkSize
	} else {
		o.logger = slog.New(slog.DiscardHandler)
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.chunkSize <= 0 {
		o.chunkSize = arena.DefaultChunkSize
	}

	var rc *resource.Controller
	switch {
	case o.memoryLimit > 0 || o.ioLimit > 0:
		rc = resource.NewController(resource.Config{
			MemoryLimitBytes:   o.memoryLimit,
			IOLimitBytesPerSec: o.ioLimit,
		})
	case parent != nil:
		rc = parent.rc
	default:
		rc = resource.NewController(resource.Config{})
	}

	p := &Pool{
		parent:    parent,
		arena:     arena.New(o.chunkSize, arena.WithMemoryAcquirer(rc)),
		chunkSize: o.chunkSize,
		rc:        rc,
		logger:    o.logger,
	}

	if parent != nil {
		parent.mu.Lock()
		if parent.destroyed {
			parent.mu.Unlock()
			p.destroyed = true
			p.arena.Free()
			return p
		}
		parent.children = append(parent.children, p)
		parent.mu.Unlock()
	}
	return p
}

// Parent returns the parent pool, or nil for a root pool.
func (p *Pool) Parent() *Pool {
	return p.parent
}

// Alloc returns size zeroed bytes that live until the pool is cleared.
func (p *Pool) Alloc(size int) ([]byte, error) {
	if p.isDestroyed() {
		return nil, ErrDestroyed
	}
	buf, err := p.arena.Alloc(size)
	if errors.Is(err, arena.ErrFreed) {
		return nil, ErrDestroyed
	}
	return buf, err
}

// Strdup copies s into pool memory.
func (p *Pool) Strdup(s string) (string, error) {
	if p.isDestroyed() {
		return "", ErrDestroyed
	}
	out, err := p.arena.AllocString(s)
	if errors.Is(err, arena.ErrFreed) {
		return "", ErrDestroyed
	}
	return out, err
}

// MemoryUsage returns the bytes reserved against this pool's memory budget.
// Pools sharing a budget report the shared total.
func (p *Pool) MemoryUsage() int64 {
	return p.rc.MemoryUsage()
}

// AcquireIO waits until the pool's IO budget allows n bytes.
func (p *Pool) AcquireIO(ctx context.Context, n int) error {
	return p.rc.AcquireIO(ctx, n)
}

// RegisterCleanup adds a registration for key. plain runs on Clear/Destroy,
// child runs on CleanupForExec. Nil callbacks are treated as CleanupNull.
// Registering on a destroyed pool runs plain immediately.
func (p *Pool) RegisterCleanup(key any, plain, child CleanupFunc) {
	if plain == nil {
		plain = CleanupNull
	}
	if child == nil {
		child = CleanupNull
	}

	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		p.runPlain(&registration{key: key, plain: plain, child: child})
		return
	}
	p.cleanups = append(p.cleanups, &registration{key: key, plain: plain, child: child})
	p.mu.Unlock()
}

// KillCleanup removes the newest registration for key without running it.
// It reports whether a registration was removed.
func (p *Pool) KillCleanup(key any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killLocked(key) != nil
}

func (p *Pool) killLocked(key any) *registration {
	for i := len(p.cleanups) - 1; i >= 0; i-- {
		if p.cleanups[i].key == key {
			r := p.cleanups[i]
			p.cleanups = slices.Delete(p.cleanups, i, i+1)
			return r
		}
	}
	return nil
}

// SetCleanup replaces the callbacks of the newest registration for key,
// keeping its position in the run order. It reports whether key was found.
func (p *Pool) SetCleanup(key any, plain, child CleanupFunc) bool {
	if plain == nil {
		plain = CleanupNull
	}
	if child == nil {
		child = CleanupNull
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.cleanups) - 1; i >= 0; i-- {
		if p.cleanups[i].key == key {
			p.cleanups[i].plain = plain
			p.cleanups[i].child = child
			return true
		}
	}
	return false
}

// RunCleanup removes the newest registration for key and runs its plain
// callback, returning the callback's error. It returns nil if key is not
// registered.
func (p *Pool) RunCleanup(key any) error {
	p.mu.Lock()
	r := p.killLocked(key)
	p.mu.Unlock()

	if r == nil {
		return nil
	}
	return r.plain(r.key)
}

// Registered reports whether key has at least one registration.
func (p *Pool) Registered(key any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.cleanups {
		if r.key == key {
			return true
		}
	}
	return false
}

// Cleanups returns the number of live registrations in this pool, not
// counting subpools.
func (p *Pool) Cleanups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cleanups)
}

// CleanupForExec runs the child callback of every registration in this pool
// and its subpools. Registrations stay in place.
func (p *Pool) CleanupForExec() {
	p.mu.Lock()
	regs := slices.Clone(p.cleanups)
	children := slices.Clone(p.children)
	p.mu.Unlock()

	for _, r := range regs {
		if err := r.child(r.key); err != nil {
			p.logger.Debug("exec cleanup failed", "error", err)
		}
	}
	for _, c := range children {
		c.CleanupForExec()
	}
}

// Userdata returns the value stored under key.
func (p *Pool) Userdata(key string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.userdata[key]
	return v, ok
}

// SetUserdata stores v under key until the pool is destroyed.
func (p *Pool) SetUserdata(key string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.userdata == nil {
		p.userdata = make(map[string]any)
	}
	p.userdata[key] = v
}

// UserdataOrInit returns the value under key, storing init() first if the key
// is absent. init runs under the pool lock and must not call into the pool.
func (p *Pool) UserdataOrInit(key string, init func() any) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.userdata[key]; ok {
		return v
	}
	if p.userdata == nil {
		p.userdata = make(map[string]any)
	}
	v := init()
	p.userdata[key] = v
	return v
}

// Clear destroys all subpools, runs every registration's plain callback in
// registration order and releases the pool's memory. Userdata is kept until
// Destroy. The pool remains usable.
func (p *Pool) Clear() {
	p.mu.Lock()
	children := p.children
	p.children = nil
	p.mu.Unlock()

	for _, c := range children {
		c.destroy(false)
	}

	for {
		p.mu.Lock()
		if len(p.cleanups) == 0 {
			p.mu.Unlock()
			break
		}
		r := p.cleanups[0]
		p.cleanups = p.cleanups[1:]
		p.mu.Unlock()

		p.runPlain(r)
	}

	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logger.Debug("pool cleared", "arena", p.arena.String())
	}
	p.arena.Reset()
}

// Destroy clears the pool, detaches it from its parent and frees its memory.
// Destroy is idempotent.
func (p *Pool) Destroy() {
	p.destroy(true)
}

func (p *Pool) destroy(detach bool) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.Clear()

	p.mu.Lock()
	p.destroyed = true
	p.userdata = nil
	p.mu.Unlock()

	if detach && p.parent != nil {
		p.parent.removeChild(p)
	}
	p.arena.Free()
}

func (p *Pool) removeChild(c *Pool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.Index(p.children, c); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
}

func (p *Pool) runPlain(r *registration) {
	if err := r.plain(r.key); err != nil {
		p.logger.Debug("cleanup failed", "error", err)
	}
}

func (p *Pool) isDestroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}
