// Package pool provides reusable I/O buffers.
//
// sync.Pool is a mechanism to cache allocated but unused objects for later reuse,
// relieving pressure on the garbage collector. It is safe for concurrent use.
// Items in the Pool are automatically removed during garbage collection, so it
// is suitable for short-lived objects like copy buffers.
package pool

// DefaultBufferSize is the buffer size used when a non-positive size is requested.
const DefaultBufferSize int64 = 256 * 1024
