// Package resource gates the two budgets a pool hands out.
//
//   - Memory: every arena chunk a pool reserves is charged here first. A
//     configured limit is enforced with a weighted semaphore and fails fast
//     with ErrMemoryLimitExceeded; without a limit usage is only tracked.
//   - IO: buffered reads and writes wait on a token bucket when a byte rate
//     is configured.
//
// All Controller methods are safe for concurrent use, and a nil *Controller
// is valid: every method becomes a no-op.
package resource
