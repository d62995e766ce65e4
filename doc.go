// Package tempref provides containers for reusable scratch values, pairing
// each value with a reset operation that is guaranteed to run exactly once
// whenever exclusive access to the value ends. This allows a single
// allocation to be reused across many operations, without manual
// re-initialization, and without state leaking from one use into the next.
//
// Three container variants are provided, differing only in their concurrency
// discipline:
//
//   - [Cell] is for use by a single goroutine, enforcing the shared/exclusive
//     access discipline at runtime, without blocking.
//   - [Mutex] is safe for concurrent use, allowing one exclusive holder at a
//     time.
//   - [RWMutex] is safe for concurrent use, allowing many concurrent readers
//     or one exclusive writer.
//
// All three variants hand out the same exclusive guard type, [MutRef], whose
// Release method runs the container's reset operation exactly once, on every
// exit path, including unwinding panics (when deferred directly). Shared
// access is represented by [Ref], which never triggers a reset.
package tempref
