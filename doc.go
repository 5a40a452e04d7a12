// Package fdscope provides file handles whose lifetime is bound to a pool.
//
// A handle opened with Open registers a cleanup with its pool. Destroying or
// clearing the pool closes every handle that was not closed explicitly, so
// descriptors cannot outlive the scope that created them.
//
// # Quick Start
//
//	p := pool.New(nil)
//	defer p.Destroy()
//
//	f, err := fdscope.Open(p, "data.txt", fdscope.Write|fdscope.Create|fdscope.Buffered, fdscope.OSDefault)
//	if err != nil {
//		return err
//	}
//	f.WriteString("hello\n")
//	return f.Close()
//
// # Flags
//
// Open takes a portable Flag set. At least one of Read or Write is required
// and Exclusive needs Create; invalid sets fail with a *FlagError before any
// syscall is made. Buffered gives the handle a private buffer and a mutex, so
// a buffered handle may be shared between goroutines. DeleteOnClose unlinks
// the name immediately after the open succeeds. Inherit keeps the descriptor
// across exec and exempts it from the pool's automatic close.
//
// # Adoption
//
// Adopt (and Stdin, Stdout, Stderr) wrap descriptors opened elsewhere. Adopted
// handles do not own the descriptor unless WithOwnership is given; closing a
// non-owning handle leaves the descriptor open.
//
// # Exec
//
// pool.CleanupForExec runs the exec pass of every registration: non-inheritable
// handles are closed, inheritable ones are left alone. SetInherit and
// UnsetInherit switch a live handle between the two.
//
// # Errors
//
// OS failures are returned as *os.PathError or *os.LinkError wrapping the raw
// unix.Errno, so errors.Is works with the io/fs sentinels:
//
//	if errors.Is(err, fs.ErrNotExist) { ... }
//
// End of stream is io.EOF and is also reported by (*File).EOF once observed.
package fdscope
