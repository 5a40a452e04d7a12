// Package pool provides hierarchical memory regions with an ordered cleanup registry.
//
// A Pool owns three things: an arena that backs Alloc and Strdup, a list of
// cleanup registrations, and its subpools. Destroying a pool destroys its
// subpools first (depth-first), then runs its own registrations in the order
// they were made, oldest first, then drops its memory.
//
// # Cleanups
//
// A registration pairs a key with two callbacks:
//
//   - plain runs when the pool is cleared or destroyed, or on RunCleanup
//   - child runs during CleanupForExec, the pass made just before the process
//     image is replaced
//
// The key identifies the registration for KillCleanup, SetCleanup and
// RunCleanup and is passed to both callbacks. Callbacks run without any pool
// lock held, so they may call back into the pool.
//
// Errors returned by callbacks during Clear or Destroy have nobody to report
// to; they are logged at debug level and dropped.
//
// # Limits
//
//	root := pool.New(nil, pool.WithMemoryLimit(1<<20), pool.WithIOLimit(8<<20))
//	defer root.Destroy()
//
//	req := pool.New(root) // shares root's limits and logger
//	defer req.Destroy()
package pool
