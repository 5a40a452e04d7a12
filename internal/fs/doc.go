// Package fs provides the descriptor-level syscall surface used by file handles.
//
// The package defines one interface, [FileSystem], covering exactly the calls
// a handle makes on a raw descriptor: open, close, read, write, seek, unlink,
// rename and the close-on-exec bit.
//
// # Implementations
//
//   - [LocalFS]: production implementation on golang.org/x/sys/unix
//   - [FaultyFS]: test wrapper that injects open, write and close failures and
//     counts calls, so callers can prove a syscall never happened
//
// # Usage
//
// Production code uses fs.Default:
//
//	fd, err := fs.Default.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
//
// Tests inject a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("passwd", fs.Fault{CloseFailures: 1})
//
// # Errors
//
// Every method returns the raw unix.Errno unchanged. Interrupted reads, writes
// and opens are restarted here; close is never retried because the
// descriptor number may already be reused after an interrupted close.
package fs
