package fdscope

import (
	"github.com/hupe1980/fdscope/pool"
	"golang.org/x/sys/unix"
)

// Adopt wraps a descriptor that was not opened by this package.
//
// The handle is unbuffered, its blocking mode is unknown (the descriptor may
// be a pipe) and it is marked inheritable. By default the handle only
// observes the descriptor: nothing is registered with p and Close leaves the
// descriptor open. WithOwnership transfers ownership: the handle is
// registered with p, is not inheritable, and Close or pool teardown closes
// the descriptor.
//
// Adopt performs no syscall.
func Adopt(p *pool.Pool, fd int, opts ...Option) *File {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	f := &File{
		fd:       fd,
		pool:     p,
		fsys:     o.fsys,
		logger:   o.logger,
		blocking: BlockingUnknown,
		timeout:  -1,
		ungetc:   -1,
		lastByte: -1,
		inherit:  true,
	}

	if o.owned && fd >= 0 {
		f.owned = true
		f.inherit = false
		f.fds = descriptorsOf(p)
		f.fds.Add(fd)
		f.register()
	}

	o.logger.LogAdopt(fd, f.owned)
	return f
}

// PutOS is Adopt under the name of the raw-descriptor escape hatch.
func PutOS(p *pool.Pool, fd int, opts ...Option) *File {
	return Adopt(p, fd, opts...)
}

// Stdin returns a fresh non-owning handle for standard input.
func Stdin(p *pool.Pool, opts ...Option) *File {
	return Adopt(p, unix.Stdin, opts...)
}

// Stdout returns a fresh non-owning handle for standard output.
func Stdout(p *pool.Pool, opts ...Option) *File {
	return Adopt(p, unix.Stdout, opts...)
}

// Stderr returns a fresh non-owning handle for standard error.
func Stderr(p *pool.Pool, opts ...Option) *File {
	return Adopt(p, unix.Stderr, opts...)
}
