// Package bufpool provides scoped, self-clearing scratch buffers for markup
// generation. Buffers are cleared on acquisition and again on release, so no
// stale content can leak into a later refresh and a one-off large document
// does not pin memory for the lifetime of the process.
//
// Usage:
//
//	buf, release := bufpool.Acquire()
//	defer release()
package bufpool

import (
	"bytes"
	"sync"
)

// maxRetained is the largest buffer capacity returned to the pool. Anything
// bigger is dropped and left to the garbage collector.
const maxRetained = 1 << 20

var pool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// Acquire returns an empty buffer and the release function that must run on
// every exit path, including failures.
func Acquire() (*bytes.Buffer, func()) {
	buf := pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf, func() {
		if buf.Cap() > maxRetained {
			return
		}
		buf.Reset()
		pool.Put(buf)
	}
}
