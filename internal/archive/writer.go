package archive

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/relickit/relic/internal/bitio"
)

// SourceEntry is one caller-supplied member to write into an archive.
type SourceEntry struct {
	Name       string
	Content    io.Reader
	Length     uint32
	ModTime    time.Time
	HasModTime bool
}

// EntryWritten fires once per entry as Write copies its content,
// carrying the written Entry and a blake2b-256 digest of its raw
// (post-compression, pre-block-padding) on-disk bytes -- an
// observability hook for integrity-checking callers; the digest never
// appears in the AFS wire format itself.
type EntryWritten func(Entry, [32]byte)

// Write emits a complete AFS container to dst: magic, entry count,
// entry table, metadata offset/length (placed per settings.Version),
// block-padded entry content, and the footer. dst must support Seek
// because the V1 layout backpatches the metadata offset after the
// entry table has already been written.
func Write(dst io.WriteSeeker, sources []SourceEntry, settings Settings, onEntryWritten EntryWritten) error {
	if settings.BlockSize == 0 {
		settings.BlockSize = 2048
	}
	n := uint32(len(sources))

	prepared, err := prepareEntries(sources, settings.EntryCompression)
	if err != nil {
		return err
	}

	if _, err := dst.Write([]byte(magic)); err != nil {
		return errors.Wrap(err, "archive: writing magic")
	}
	if err := binary.Write(dst, binary.LittleEndian, n); err != nil {
		return errors.Wrap(err, "archive: writing entry count")
	}

	firstEntryOffset := roundUp(headerSize+n*entryRowSize+metaFieldsSize, settings.BlockSize)

	rows := make([]entryRow, n)
	offset := firstEntryOffset
	for i, e := range prepared {
		rows[i] = entryRow{Offset: offset, Length: e.length}
		offset += roundUp(e.length, settings.BlockSize)
	}
	for _, row := range rows {
		if err := binary.Write(dst, binary.LittleEndian, row); err != nil {
			return errors.Wrap(err, "archive: writing entry table")
		}
	}

	metaOffset := offset
	metaLen := n * footerRowSize

	switch settings.Version {
	case V2:
		if err := binary.Write(dst, binary.LittleEndian, metaOffset); err != nil {
			return err
		}
		if err := binary.Write(dst, binary.LittleEndian, metaLen); err != nil {
			return err
		}
	default: // V1: placeholder here, real values backpatched below
		if err := binary.Write(dst, binary.LittleEndian, uint32(0)); err != nil {
			return err
		}
		if err := binary.Write(dst, binary.LittleEndian, uint32(0)); err != nil {
			return err
		}
	}

	pos, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if pad := int64(firstEntryOffset) - pos; pad > 0 {
		if _, err := dst.Write(make([]byte, pad)); err != nil {
			return errors.Wrap(err, "archive: padding to first entry offset")
		}
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return errors.Wrap(err, "archive: initializing entry digest")
	}

	for i, e := range prepared {
		hasher.Reset()
		hw := bitio.NewHashWriter(dst, hasher)
		// e.length was already fixed before the offset table above was
		// written, so the pad owed after this entry's content is a
		// direct arithmetic difference against the next aligned offset
		// -- there's no need to track a running byte count across the
		// copy the way a general-purpose streaming writer would.
		if _, err := io.CopyN(hw, e.content, int64(e.length)); err != nil {
			return errors.Wrapf(err, "archive: writing entry %q content", e.name)
		}
		if pad := roundUp(e.length, settings.BlockSize) - e.length; pad > 0 {
			if _, err := dst.Write(make([]byte, pad)); err != nil {
				return errors.Wrapf(err, "archive: padding entry %q content", e.name)
			}
		}

		var digest [32]byte
		copy(digest[:], hw.Sum())

		if onEntryWritten != nil {
			onEntryWritten(Entry{
				Name: e.name, Offset: rows[i].Offset, Length: e.length,
				ModTime: e.modTime, HasModTime: e.hasModTime,
			}, digest)
		}
	}

	for _, e := range prepared {
		var row footerRow
		name := []byte(e.name)
		if len(name) > len(row.Name) {
			name = name[:len(row.Name)]
		}
		copy(row.Name[:], name)

		if e.hasModTime && settings.HasTimestamps {
			t := e.modTime
			row.Year = int16(t.Year())
			row.Month = int16(t.Month())
			row.Day = int16(t.Day())
			row.Hour = int16(t.Hour())
			row.Minute = int16(t.Minute())
			row.Second = int16(t.Second())
		}
		// row.Tag left at zero: the unexplained AFS "duplicate" field has
		// no caller-supplied source value to reproduce here.
		if err := binary.Write(dst, binary.LittleEndian, row); err != nil {
			return errors.Wrap(err, "archive: writing footer row")
		}
	}

	if settings.Version == V1 {
		if _, err := dst.Seek(int64(firstEntryOffset)-8, io.SeekStart); err != nil {
			return err
		}
		if err := binary.Write(dst, binary.LittleEndian, metaOffset); err != nil {
			return err
		}
		if err := binary.Write(dst, binary.LittleEndian, metaLen); err != nil {
			return err
		}
	}

	return nil
}

type preparedEntry struct {
	name       string
	content    io.Reader
	length     uint32
	modTime    time.Time
	hasModTime bool
}

// prepareEntries resolves each source entry's on-disk length, which the
// entry table needs before any content is written. Uncompressed entries
// pass through streamed with their caller-given length; compressed
// entries are materialized into memory up front since their on-disk
// length can only be known after compressing them.
func prepareEntries(sources []SourceEntry, compression CompressionType) ([]preparedEntry, error) {
	prepared := make([]preparedEntry, len(sources))
	for i, src := range sources {
		if compression == CompressionNone {
			prepared[i] = preparedEntry{src.Name, src.Content, src.Length, src.ModTime, src.HasModTime}
			continue
		}

		var buf bytes.Buffer
		cw, err := newCompressWriter(&buf, compression)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(cw, src.Content); err != nil {
			return nil, errors.Wrapf(err, "archive: compressing entry %q", src.Name)
		}
		if err := cw.Close(); err != nil {
			return nil, errors.Wrapf(err, "archive: finalizing compressed entry %q", src.Name)
		}
		prepared[i] = preparedEntry{src.Name, bytes.NewReader(buf.Bytes()), uint32(buf.Len()), src.ModTime, src.HasModTime}
	}
	return prepared, nil
}

func newCompressWriter(w io.Writer, c CompressionType) (io.WriteCloser, error) {
	switch c {
	case CompressionZstd:
		return zstd.NewWriter(w)
	case CompressionBrotli:
		return brotli.NewWriter(w), nil
	default:
		return nil, errors.Errorf("archive: unknown compression type %d", c)
	}
}
