package texdata

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/pixel"
)

// Encode produces on-disk bytes for src under Format f. For truecolor
// formats codec encodes each pixel word directly. For indexed formats,
// Encode builds an exact-match color→index table as it walks the
// bitmap (first-seen color gets the next free index) and fills
// outPalette (sized to f.Palette.PaletteEntries(), zero-padded past the
// distinct color count); if the bitmap holds more distinct colors than
// the palette has room for, Encode fails with ErrPaletteOverflow and
// outPalette is left unmodified.
func (f Format) Encode(src *image.NRGBA, codec pixel.Codec, outPalette []color.NRGBA) ([]byte, error) {
	if !f.CanEncode {
		return nil, ErrUnsupportedDataFormat
	}
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	coords, err := f.tileOrder(width, height)
	if err != nil {
		return nil, err
	}

	if f.Palette == NoPalette {
		out := make([]byte, 0, len(coords)*codec.Bpp)
		for _, xy := range coords {
			c := src.NRGBAAt(xy[0], xy[1])
			word, err := codec.Encode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, word...)
		}
		return out, nil
	}

	maxEntries := f.Palette.PaletteEntries()
	if len(outPalette) != maxEntries {
		return nil, errors.Errorf("texdata: outPalette must have %d entries, got %d", maxEntries, len(outPalette))
	}

	lookup := make(map[color.NRGBA]uint8, maxEntries)
	palette := make([]color.NRGBA, maxEntries)
	indices := make([]uint8, len(coords))
	for i, xy := range coords {
		c := src.NRGBAAt(xy[0], xy[1])
		idx, ok := lookup[c]
		if !ok {
			if len(lookup) >= maxEntries {
				return nil, ErrPaletteOverflow
			}
			idx = uint8(len(lookup))
			lookup[c] = idx
			palette[idx] = c
		}
		indices[i] = idx
	}
	copy(outPalette, palette)

	return writeIndices(indices, f.indexBits()), nil
}

func writeIndices(indices []uint8, bits int) []byte {
	switch bits {
	case 8:
		return indices
	case 4:
		out := make([]byte, (len(indices)+1)/2)
		for i, idx := range indices {
			if i%2 == 0 {
				out[i/2] |= idx << 4
			} else {
				out[i/2] |= idx & 0x0F
			}
		}
		return out
	default:
		return nil
	}
}
