package archive

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/ghostiam/binstruct"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/andybalholm/brotli"
)

var (
	ErrBadMagic  = errors.New("archive: not an AFS container")
	ErrTruncated = errors.New("archive: truncated container")
)

// Reader parses an AFS container's header, entry table and footer up
// front and hands out per-entry content readers on demand.
type Reader struct {
	src     io.ReadSeeker
	version Version
	entries []Entry
}

// Open reads and validates an AFS header, entry table and footer from
// src.
func Open(src io.ReadSeeker) (*Reader, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var magicBuf [4]byte
	if _, err := io.ReadFull(src, magicBuf[:]); err != nil {
		return nil, errors.Wrap(ErrTruncated, "archive: reading magic")
	}
	if string(magicBuf[:]) != magic {
		return nil, ErrBadMagic
	}

	var table entryTableWire
	if err := binstruct.NewReader(src, binary.LittleEndian, false).Unmarshal(&table); err != nil {
		return nil, errors.Wrap(err, "archive: decoding entry table")
	}

	var metaOffset, metaLen uint32
	if err := binary.Read(src, binary.LittleEndian, &metaOffset); err != nil {
		return nil, errors.Wrap(ErrTruncated, "archive: reading metadata offset")
	}
	if err := binary.Read(src, binary.LittleEndian, &metaLen); err != nil {
		return nil, errors.Wrap(ErrTruncated, "archive: reading metadata length")
	}

	version := V2
	if metaOffset == 0 {
		// V1 convention: the real metadata offset/length pair lives 8
		// bytes before the first entry's content, not inline here.
		version = V1
		if len(table.Rows) == 0 {
			return nil, errors.New("archive: V1 metadata fallback requires at least one entry")
		}
		fallbackPos := int64(table.Rows[0].Offset) - 8
		if _, err := src.Seek(fallbackPos, io.SeekStart); err != nil {
			return nil, err
		}
		if err := binary.Read(src, binary.LittleEndian, &metaOffset); err != nil {
			return nil, errors.Wrap(ErrTruncated, "archive: reading V1 metadata offset")
		}
		if err := binary.Read(src, binary.LittleEndian, &metaLen); err != nil {
			return nil, errors.Wrap(ErrTruncated, "archive: reading V1 metadata length")
		}
	}
	_ = metaLen // derivable from table.Count * footerRowSize; kept for parity with the wire field

	entries := make([]Entry, len(table.Rows))
	for i, row := range table.Rows {
		if _, err := src.Seek(int64(metaOffset)+int64(i)*footerRowSize, io.SeekStart); err != nil {
			return nil, err
		}
		var fr footerRow
		if err := binary.Read(src, binary.LittleEndian, &fr); err != nil {
			return nil, errors.Wrapf(ErrTruncated, "archive: reading footer row %d", i)
		}
		name := cStringTrim(fr.Name[:])
		hasModTime := fr.Year != 0 || fr.Month != 0 || fr.Day != 0
		var modTime time.Time
		if hasModTime {
			modTime = time.Date(int(fr.Year), time.Month(fr.Month), int(fr.Day),
				int(fr.Hour), int(fr.Minute), int(fr.Second), 0, time.UTC)
		}
		entries[i] = Entry{
			Name:       name,
			Offset:     row.Offset,
			Length:     row.Length,
			ModTime:    modTime,
			HasModTime: hasModTime,
			Tag:        fr.Tag,
		}
	}

	return &Reader{src: src, version: version, entries: entries}, nil
}

// Entries returns the archive's members in on-disk table order.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// Version reports which AFS metadata-offset layout this archive used.
func (r *Reader) Version() Version {
	return r.version
}

// Content returns a SectionReader over entry i's raw (possibly
// compressed) on-disk bytes.
func (r *Reader) Content(i int) *io.SectionReader {
	e := r.entries[i]
	return io.NewSectionReader(seekReaderAt{r.src}, int64(e.Offset), int64(e.Length))
}

// DecompressedContent returns entry i's content, transparently
// unwrapped per compression -- the caller must supply the same
// CompressionType the archive was written with, since the AFS wire
// format carries no compression flag of its own.
func (r *Reader) DecompressedContent(i int, compression CompressionType) (io.ReadCloser, error) {
	raw := r.Content(i)
	switch compression {
	case CompressionNone:
		return io.NopCloser(raw), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(raw)
		if err != nil {
			return nil, errors.Wrap(err, "archive: opening zstd entry stream")
		}
		return zr.IOReadCloser(), nil
	case CompressionBrotli:
		return io.NopCloser(brotli.NewReader(raw)), nil
	default:
		return nil, errors.Errorf("archive: unknown compression type %d", compression)
	}
}

// seekReaderAt adapts an io.ReadSeeker to io.ReaderAt via Seek+Read. Not
// safe for concurrent use: callers reading multiple entries from the
// same Reader concurrently need independent underlying ReadSeekers.
type seekReaderAt struct {
	src io.ReadSeeker
}

func (s seekReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := s.src.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(s.src, p)
}

func cStringTrim(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
