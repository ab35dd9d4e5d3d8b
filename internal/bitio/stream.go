// Package bitio provides the little-endian integer, fixed-string and
// padded-copy primitives shared by every codec in relic. Every helper
// restores the caller's cursor unless its name implies advancement.
package bitio

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Stream wraps a seekable source with a cursor that parsing is relative
// to. archiveOffset is the position Open snapshotted, so the same handler
// can operate on sub-streams embedded in a larger container.
type Stream struct {
	rw            io.ReadWriteSeeker
	archiveOffset int64
}

// Open snapshots the current position of rw as the stream's archive
// offset and returns a Stream cursor positioned there.
func Open(rw io.ReadWriteSeeker) (*Stream, error) {
	pos, err := rw.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "bitio: failed to snapshot cursor")
	}
	return &Stream{rw: rw, archiveOffset: pos}, nil
}

// ArchiveOffset returns the absolute offset this stream's handler was
// opened at.
func (s *Stream) ArchiveOffset() int64 {
	return s.archiveOffset
}

// Pos returns the current absolute cursor position.
func (s *Stream) Pos() (int64, error) {
	return s.rw.Seek(0, io.SeekCurrent)
}

// Seek moves the cursor to an absolute position.
func (s *Stream) Seek(pos int64) error {
	_, err := s.rw.Seek(pos, io.SeekStart)
	return err
}

// restore returns a function that puts the cursor back where it was when
// called, for helpers that must not disturb the caller's position.
func (s *Stream) restore() (func(), error) {
	pos, err := s.Pos()
	if err != nil {
		return nil, err
	}
	return func() { s.Seek(pos) }, nil
}

func (s *Stream) ReadU8() (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.rw, b[:]); err != nil {
		return 0, errors.Wrap(err, "bitio: ReadU8")
	}
	return b[0], nil
}

func (s *Stream) WriteU8(v uint8) error {
	_, err := s.rw.Write([]byte{v})
	return errors.Wrap(err, "bitio: WriteU8")
}

func (s *Stream) ReadU16LE() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(s.rw, b[:]); err != nil {
		return 0, errors.Wrap(err, "bitio: ReadU16LE")
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (s *Stream) WriteU16LE(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := s.rw.Write(b[:])
	return errors.Wrap(err, "bitio: WriteU16LE")
}

func (s *Stream) ReadU16BE() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(s.rw, b[:]); err != nil {
		return 0, errors.Wrap(err, "bitio: ReadU16BE")
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (s *Stream) WriteU16BE(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := s.rw.Write(b[:])
	return errors.Wrap(err, "bitio: WriteU16BE")
}

func (s *Stream) ReadU32LE() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s.rw, b[:]); err != nil {
		return 0, errors.Wrap(err, "bitio: ReadU32LE")
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (s *Stream) WriteU32LE(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := s.rw.Write(b[:])
	return errors.Wrap(err, "bitio: WriteU32LE")
}

func (s *Stream) ReadU32BE() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(s.rw, b[:]); err != nil {
		return 0, errors.Wrap(err, "bitio: ReadU32BE")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func (s *Stream) WriteU32BE(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := s.rw.Write(b[:])
	return errors.Wrap(err, "bitio: WriteU32BE")
}

func (s *Stream) ReadI16LE() (int16, error) {
	v, err := s.ReadU16LE()
	return int16(v), err
}

func (s *Stream) WriteI16LE(v int16) error {
	return s.WriteU16LE(uint16(v))
}

func (s *Stream) ReadI32LE() (int32, error) {
	v, err := s.ReadU32LE()
	return int32(v), err
}

func (s *Stream) WriteI32LE(v int32) error {
	return s.WriteU32LE(uint32(v))
}

// ReadCString reads a fixed-width field of n bytes and trims it at the
// first NUL, never reading past the field.
func (s *Stream) ReadCString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.rw, buf); err != nil {
		return "", errors.Wrap(err, "bitio: ReadCString")
	}
	if idx := bytes.IndexByte(buf, 0); idx >= 0 {
		buf = buf[:idx]
	}
	return string(buf), nil
}

// WriteCString writes str into a zero-padded field of width n. str is
// truncated if it doesn't fit.
func (s *Stream) WriteCString(str string, n int) error {
	buf := make([]byte, n)
	copy(buf, str)
	_, err := s.rw.Write(buf)
	return errors.Wrap(err, "bitio: WriteCString")
}

// CopyPadded copies src to the stream, then emits
// (block - len(src)%block) mod block pad bytes.
func CopyPadded(w io.Writer, src []byte, block int, padByte byte) error {
	if _, err := w.Write(src); err != nil {
		return errors.Wrap(err, "bitio: CopyPadded write")
	}
	rem := len(src) % block
	if rem == 0 {
		return nil
	}
	pad := bytes.Repeat([]byte{padByte}, block-rem)
	_, err := w.Write(pad)
	return errors.Wrap(err, "bitio: CopyPadded pad")
}

// ContainsAt tests whether pattern occurs at the given absolute offset,
// without changing the caller's cursor.
func (s *Stream) ContainsAt(offset int64, pattern []byte) (bool, error) {
	restore, err := s.restore()
	if err != nil {
		return false, err
	}
	defer restore()

	if _, err := s.rw.Seek(offset, io.SeekStart); err != nil {
		return false, errors.Wrap(err, "bitio: ContainsAt seek")
	}
	buf := make([]byte, len(pattern))
	if _, err := io.ReadFull(s.rw, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, errors.Wrap(err, "bitio: ContainsAt read")
	}
	return bytes.Equal(buf, pattern), nil
}

// PeekAt reads n bytes at the given absolute offset without disturbing
// the caller's cursor. Used by format probes.
func (s *Stream) PeekAt(offset int64, n int) ([]byte, error) {
	restore, err := s.restore()
	if err != nil {
		return nil, err
	}
	defer restore()

	if _, err := s.rw.Seek(offset, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "bitio: PeekAt seek")
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(s.rw, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, errors.Wrap(err, "bitio: PeekAt read")
	}
	return buf[:read], nil
}
