// Package arena provides the bump allocator behind pool memory.
//
// Memory is carved from fixed-size chunks. Each allocation is charged to an
// optional MemoryAcquirer before it is handed out. Individual allocations are
// never freed; the whole arena is dropped at once by Reset or Free, which is
// exactly the lifetime a pool gives its path copies and I/O buffers.
//
// # Safety
//
// Chunks are ordinary Go heap slices and are never reused after Reset, so a
// slice or string handed out before a Reset stays valid for as long as the
// holder keeps it. Reset only stops the arena from serving more bytes out of
// the old chunks and returns their charges to the acquirer.
package arena
