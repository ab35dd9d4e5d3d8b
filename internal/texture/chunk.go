package texture

import (
	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/bitio"
	"github.com/relickit/relic/internal/pixel"
)

// globalIndexChunk is the optional 16-byte GBIX/GCIX header:
// char[4] magic | u32 length=8 | u32 global_index | u32 reserved=0.
type globalIndexChunk struct {
	variant     HeaderVariant
	globalIndex uint32
}

func readGlobalIndexChunk(s *bitio.Stream) (*globalIndexChunk, error) {
	magic := make([]byte, 4)
	for i := range magic {
		b, err := s.ReadU8()
		if err != nil {
			return nil, errors.Wrap(err, "texture: reading global-index chunk magic")
		}
		magic[i] = b
	}
	var variant HeaderVariant
	switch string(magic) {
	case "GBIX":
		variant = HeaderGbix
	case "GCIX":
		variant = HeaderGcix
	default:
		return nil, errors.Wrap(ErrBadMagic, "texture: expected GBIX or GCIX")
	}
	if _, err := s.ReadU32LE(); err != nil { // length, always 8
		return nil, errors.Wrap(err, "texture: reading global-index chunk length")
	}
	index, err := s.ReadU32LE()
	if err != nil {
		return nil, errors.Wrap(err, "texture: reading global index")
	}
	if _, err := s.ReadU32LE(); err != nil { // reserved
		return nil, errors.Wrap(err, "texture: reading global-index chunk reserved field")
	}
	return &globalIndexChunk{variant: variant, globalIndex: index}, nil
}

func writeGlobalIndexChunk(s *bitio.Stream, variant HeaderVariant, globalIndex uint32) error {
	magic := "GBIX"
	if variant == HeaderGcix {
		magic = "GCIX"
	}
	if err := s.WriteCString(magic, 4); err != nil {
		return err
	}
	if err := s.WriteU32LE(8); err != nil {
		return err
	}
	if err := s.WriteU32LE(globalIndex); err != nil {
		return err
	}
	return s.WriteU32LE(0)
}

// dataChunkHeader is the decoded form of a PVRT or GVRT data-chunk
// header, independent of the two families' different byte layouts and
// endianness.
type dataChunkHeader struct {
	chunk      DataChunk
	bodyLength uint32
	pixel      pixel.Format
	dataFormat uint8 // raw on-disk code; mapped to DataFormat by the caller once the chunk family is known
	width      int
	height     int
}

// readDataChunkHeader reads a PVRT or GVRT header at the stream's
// current position. PVRT (little-endian throughout):
//
//	char[4] "PVRT" | u32 body_length | u8 pixel_format | u8 data_format |
//	u16 reserved | u16 width | u16 height
//
// GVRT mixes endianness within the same header -- body_length is
// little-endian but width/height are big-endian, and pixel_format/
// data_flags share one byte as nibbles -- which is why this is read by
// hand with bitio's explicit LE/BE helpers rather than a single
// struct-tag decode:
//
//	char[4] "GVRT" | u32 body_length | u16 reserved |
//	(hi nibble pixel_format, lo nibble data_flags) | u8 data_format |
//	u16 width (BE) | u16 height (BE)
func readDataChunkHeader(s *bitio.Stream) (*dataChunkHeader, error) {
	magic := make([]byte, 4)
	for i := range magic {
		b, err := s.ReadU8()
		if err != nil {
			return nil, errors.Wrap(err, "texture: reading data chunk magic")
		}
		magic[i] = b
	}

	switch string(magic) {
	case "PVRT", "SVRT":
		bodyLen, err := s.ReadU32LE()
		if err != nil {
			return nil, err
		}
		pf, err := s.ReadU8()
		if err != nil {
			return nil, err
		}
		df, err := s.ReadU8()
		if err != nil {
			return nil, err
		}
		if _, err := s.ReadU16LE(); err != nil { // reserved
			return nil, err
		}
		width, err := s.ReadU16LE()
		if err != nil {
			return nil, err
		}
		height, err := s.ReadU16LE()
		if err != nil {
			return nil, err
		}
		return &dataChunkHeader{
			chunk: ChunkPvrt, bodyLength: bodyLen,
			pixel: pixel.Format(pf), dataFormat: df,
			width: int(width), height: int(height),
		}, nil

	case "GVRT":
		bodyLen, err := s.ReadU32LE()
		if err != nil {
			return nil, err
		}
		if _, err := s.ReadU16LE(); err != nil { // reserved
			return nil, err
		}
		nibbles, err := s.ReadU8()
		if err != nil {
			return nil, err
		}
		df, err := s.ReadU8()
		if err != nil {
			return nil, err
		}
		width, err := s.ReadU16BE()
		if err != nil {
			return nil, err
		}
		height, err := s.ReadU16BE()
		if err != nil {
			return nil, err
		}
		return &dataChunkHeader{
			chunk: ChunkGvrt, bodyLength: bodyLen,
			pixel: pixel.Format(nibbles >> 4), dataFormat: df,
			width: int(width), height: int(height),
		}, nil

	default:
		return nil, errors.Wrap(ErrBadMagic, "texture: expected PVRT, SVRT or GVRT")
	}
}

func writeDataChunkHeader(s *bitio.Stream, h *dataChunkHeader) error {
	switch h.chunk {
	case ChunkPvrt:
		if err := s.WriteCString("PVRT", 4); err != nil {
			return err
		}
		if err := s.WriteU32LE(h.bodyLength); err != nil {
			return err
		}
		if err := s.WriteU8(uint8(h.pixel)); err != nil {
			return err
		}
		if err := s.WriteU8(h.dataFormat); err != nil {
			return err
		}
		if err := s.WriteU16LE(0); err != nil {
			return err
		}
		if err := s.WriteU16LE(uint16(h.width)); err != nil {
			return err
		}
		return s.WriteU16LE(uint16(h.height))

	case ChunkGvrt:
		if err := s.WriteCString("GVRT", 4); err != nil {
			return err
		}
		if err := s.WriteU32LE(h.bodyLength); err != nil {
			return err
		}
		if err := s.WriteU16LE(0); err != nil {
			return err
		}
		// data_flags (low nibble) carries no modeled semantics here; left 0.
		if err := s.WriteU8(uint8(h.pixel) << 4); err != nil {
			return err
		}
		if err := s.WriteU8(h.dataFormat); err != nil {
			return err
		}
		if err := s.WriteU16BE(uint16(h.width)); err != nil {
			return err
		}
		return s.WriteU16BE(uint16(h.height))

	default:
		return errors.New("texture: unknown data chunk family")
	}
}

// probeHeaderVariant looks at the first bytes of header for a GBIX/GCIX
// prefix, returning which variant (if any) is present and how many bytes
// it occupies.
func probeHeaderVariant(header []byte) (HeaderVariant, int) {
	if len(header) >= 4 {
		switch string(header[:4]) {
		case "GBIX":
			return HeaderGbix, 16
		case "GCIX":
			return HeaderGcix, 16
		}
	}
	return HeaderNone, 0
}

func dataChunkMagicAt(header []byte, offset int) (DataChunk, bool) {
	if len(header) < offset+4 {
		return 0, false
	}
	switch string(header[offset : offset+4]) {
	case "PVRT", "SVRT":
		return ChunkPvrt, true
	case "GVRT":
		return ChunkGvrt, true
	}
	return 0, false
}
