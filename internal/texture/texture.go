// Package texture parses and emits the GBIX/GCIX + PVRT/GVRT texture
// container family: an optional 16-byte global-index chunk, a data-chunk
// header carrying width/height/pixel_format/data_format, an optional
// internal palette, and the encoded pixel data.
package texture

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/bitio"
	"github.com/relickit/relic/internal/pixel"
	"github.com/relickit/relic/internal/registry"
)

// State is the lifecycle of a Texture handle.
type State uint8

const (
	StateUninitialized State = iota
	StateInitialized
	StateDecoded
	StateEncoded
	StateFailed
)

var (
	ErrBadMagic             = errors.New("texture: signature mismatch")
	ErrNotInitialized       = errors.New("texture: property accessed before initialization")
	ErrNeedsExternalPalette = errors.New("texture: an external palette must be supplied via SetPalette before Decode")
	ErrUnsupportedFormat    = errors.New("texture: pixel format or data format not supported")
	ErrTruncated            = errors.New("texture: truncated input")
	ErrInvalidArgument      = errors.New("texture: invalid argument")
)

// Settings are the caller-supplied write-time parameters for encoding a
// texture chunk.
type Settings struct {
	HasGlobalIndex bool
	GlobalIndex    uint32
	PixelFormat    pixel.Format
	DataFormat     DataFormat
}

// Texture is a single parsed or to-be-emitted texture chunk.
type Texture struct {
	state State

	s *bitio.Stream
	// bodyStart is the absolute offset immediately after the data-chunk
	// header, where an embedded palette (if any) or the pixel data
	// begins. Decode retries (after SetPalette) reseek here rather than
	// continuing from wherever the prior attempt gave up.
	bodyStart int64
	// bodyLength is the data-chunk header's body_length field: the byte
	// count of everything following that field, i.e. the 8 fixed
	// pixel_format/data_format/reserved/width/height bytes plus any
	// embedded palette plus the pixel data. Whether a palette is
	// embedded can't be told from truncation alone (pixel data is
	// frequently long enough on its own to satisfy a palette-sized read
	// and would be silently misread as one); bodyLength is compared
	// against the pixel byte count computed from width/height/format to
	// tell the two cases apart deterministically.
	bodyLength int64

	hasGlobalIndex bool
	globalIndex    uint32
	chunk          DataChunk
	pixelFormat    pixel.Format
	dataFormat     DataFormat
	width, height  int

	externalPalette []color.NRGBA
	bitmap          *image.NRGBA
}

func init() {
	registry.Register(registry.Handler{
		Name:        "pvr",
		Extension:   ".pvr",
		CanRead:     true,
		CanWrite:    true,
		Specificity: 10,
		Signature: func(h []byte) bool {
			if variant, size := probeHeaderVariant(h); variant != HeaderNone {
				chunk, ok := dataChunkMagicAt(h, size)
				return ok && chunk == ChunkPvrt
			}
			chunk, ok := dataChunkMagicAt(h, 0)
			return ok && chunk == ChunkPvrt
		},
	})
	registry.Register(registry.Handler{
		Name:        "gvr",
		Extension:   ".gvr",
		CanRead:     true,
		CanWrite:    true,
		Specificity: 10,
		Signature: func(h []byte) bool {
			if variant, size := probeHeaderVariant(h); variant != HeaderNone {
				chunk, ok := dataChunkMagicAt(h, size)
				return ok && chunk == ChunkGvrt
			}
			chunk, ok := dataChunkMagicAt(h, 0)
			return ok && chunk == ChunkGvrt
		},
	})
}

type readWriteSeeker = interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// OpenStream reads a texture container's header from rw and attempts to
// decode its body. A handle that needs an external palette stays in
// StateInitialized (not StateFailed) — the caller calls SetPalette then
// Decode to retry.
func OpenStream(rw readWriteSeeker) (*Texture, error) {
	s, err := bitio.Open(rw)
	if err != nil {
		return nil, err
	}
	t := &Texture{s: s}

	header, err := s.PeekAt(0, 32)
	if err != nil {
		return nil, errors.Wrap(err, "texture: probing header")
	}
	variant, _ := probeHeaderVariant(header)
	t.hasGlobalIndex = variant != HeaderNone

	if t.hasGlobalIndex {
		gi, err := readGlobalIndexChunk(s)
		if err != nil {
			t.state = StateFailed
			return t, err
		}
		t.globalIndex = gi.globalIndex
	}

	dch, err := readDataChunkHeader(s)
	if err != nil {
		t.state = StateFailed
		return t, err
	}
	t.chunk = dch.chunk
	t.pixelFormat = dch.pixel
	t.dataFormat = DataFormat(dch.dataFormat)
	t.width = dch.width
	t.height = dch.height
	t.bodyLength = int64(dch.bodyLength)
	t.state = StateInitialized

	pos, err := s.Pos()
	if err != nil {
		t.state = StateFailed
		return t, err
	}
	t.bodyStart = pos

	if err := t.Decode(); err != nil {
		return t, err
	}
	return t, nil
}

// Decode (re)runs the body decode from bodyStart. Safe to call again
// after a prior ErrNeedsExternalPalette once SetPalette has supplied a
// palette.
func (t *Texture) Decode() error {
	if t.state != StateInitialized {
		return ErrNotInitialized
	}
	if err := t.s.Seek(t.bodyStart); err != nil {
		return err
	}

	dataFmt, ok := t.dataFormat.toTexdata()
	if !ok {
		t.state = StateFailed
		return ErrUnsupportedFormat
	}
	dataFmt.CanDecode = true

	codec, err := pixel.Get(t.pixelFormat)
	if err != nil {
		t.state = StateFailed
		return err
	}

	indexed := dataFmt.Palette != 0 // Index4 or Index8; see texdata.PaletteMode
	pixelByteCount := pixelDataByteCount(t.width, t.height, !indexed, dataFmt.Palette.IndexBits(), codec.Bpp)

	var pal []color.NRGBA
	if indexed {
		if t.externalPalette != nil {
			pal = t.externalPalette
		} else {
			// body_length (everything after the 8 fixed header bytes)
			// tells us deterministically whether a palette is embedded:
			// if what remains is exactly the pixel byte count, there is
			// no embedded palette and the caller must supply one.
			remaining := t.bodyLength - 8
			if remaining == int64(pixelByteCount) {
				// state stays StateInitialized: SetPalette + a retried
				// Decode is the recovery path, not a terminal failure.
				return ErrNeedsExternalPalette
			}
			entries := dataFmt.Palette.PaletteEntries()
			paletteByteCount := entries * codec.Bpp
			if remaining != int64(paletteByteCount)+int64(pixelByteCount) {
				t.state = StateFailed
				return errors.Wrap(ErrTruncated, "texture: body_length does not match any known palette/pixel layout")
			}
			p, err := t.readEmbeddedPalette(entries, codec)
			if err != nil {
				t.state = StateFailed
				return err
			}
			pal = p
		}
	}

	raw := make([]byte, pixelByteCount)
	if _, err := ioReadFull(t.s, raw); err != nil {
		t.state = StateFailed
		return ErrTruncated
	}

	img, err := dataFmt.Decode(raw, t.width, t.height, codec, pal)
	if err != nil {
		t.state = StateFailed
		return err
	}
	t.bitmap = img
	t.state = StateDecoded
	return nil
}

// readEmbeddedPalette reads a palette of `entries` codec.Bpp-byte
// colors at the stream's current position. Only called once body_length
// has confirmed a palette of exactly this size is present on disk.
func (t *Texture) readEmbeddedPalette(entries int, codec pixel.Codec) ([]color.NRGBA, error) {
	raw := make([]byte, entries*codec.Bpp)
	if _, err := ioReadFull(t.s, raw); err != nil {
		return nil, errors.Wrap(ErrTruncated, "texture: reading embedded palette")
	}
	return codec.DecodePalette(raw, entries)
}

// pixelDataByteCount returns the number of on-disk bytes the pixel/index
// data occupies for a width x height image: a whole pixel word per
// pixel for truecolor, or ceil(width*height*indexBits/8) for indexed.
func pixelDataByteCount(width, height int, truecolor bool, indexBits, bpp int) int {
	if truecolor {
		return width * height * bpp
	}
	bits := width * height * indexBits
	return (bits + 7) / 8
}

// ioReadFull is a tiny indirection so this file doesn't need a direct
// "io" import solely for ReadFull.
func ioReadFull(s *bitio.Stream, buf []byte) (int, error) {
	for i := range buf {
		b, err := s.ReadU8()
		if err != nil {
			return i, err
		}
		buf[i] = b
	}
	return len(buf), nil
}

// SetPalette supplies an external palette (from a companion .svp/.gvp
// file) to satisfy a pending ErrNeedsExternalPalette.
func (t *Texture) SetPalette(pal []color.NRGBA) {
	t.externalPalette = pal
}

// Bitmap returns the decoded bitmap. Valid only after Decode succeeds.
func (t *Texture) Bitmap() (*image.NRGBA, error) {
	if t.state != StateDecoded {
		return nil, ErrNotInitialized
	}
	return t.bitmap, nil
}

// GlobalIndex returns the texture's global index and whether one was
// present.
func (t *Texture) GlobalIndex() (uint32, bool, error) {
	if t.state == StateUninitialized {
		return 0, false, ErrNotInitialized
	}
	return t.globalIndex, t.hasGlobalIndex, nil
}

// State returns the handle's current lifecycle state.
func (t *Texture) State() State {
	return t.state
}
