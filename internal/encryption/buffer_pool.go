package encryption

import (
	"sync"

	"github.com/idelchi/minilock/internal/format"
)

// bufferPool provides reusable buffers large enough for one framed chunk.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, format.MaxFramedChunkSize)

		return &buf
	},
}

func getBuffer() []byte {
	return *bufferPool.Get().(*[]byte) //nolint:forcetypeassert
}

// putBuffer wipes buf and returns it to the pool.
func putBuffer(buf []byte) {
	buf = buf[:cap(buf)]
	clear(buf)
	bufferPool.Put(&buf)
}
