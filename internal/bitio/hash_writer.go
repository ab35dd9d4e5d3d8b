package bitio

import (
	"hash"
	"io"
)

// HashWriter tees writes into a hash.Hash while passing them through to
// the underlying writer, so a digest can be produced incidentally while
// copying content.
type HashWriter struct {
	writer io.Writer
	hasher hash.Hash
}

func NewHashWriter(dest io.Writer, hasher hash.Hash) *HashWriter {
	return &HashWriter{writer: dest, hasher: hasher}
}

func (w *HashWriter) Write(b []byte) (int, error) {
	w.hasher.Write(b)
	return w.writer.Write(b)
}

func (w *HashWriter) Sum() []byte {
	return w.hasher.Sum(nil)
}
