package texdata

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/pixel"
)

// Decode reconstructs a width x height bitmap from src. codec decodes
// truecolor pixel words; for indexed formats pal supplies the already
// decoded palette and codec is not used.
func (f Format) Decode(src []byte, width, height int, codec pixel.Codec, pal []color.NRGBA) (*image.NRGBA, error) {
	if !f.CanDecode {
		return nil, ErrUnsupportedDataFormat
	}
	coords, err := f.tileOrder(width, height)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	if f.Palette == NoPalette {
		need := len(coords) * codec.Bpp
		if len(src) < need {
			return nil, errors.New("texdata: truncated pixel data")
		}
		for i, xy := range coords {
			c, err := codec.Decode(src[i*codec.Bpp : (i+1)*codec.Bpp])
			if err != nil {
				return nil, err
			}
			img.SetNRGBA(xy[0], xy[1], c)
		}
		return img, nil
	}

	if len(pal) == 0 {
		return nil, errors.New("texdata: indexed format requires a palette")
	}
	indices, err := readIndices(src, len(coords), f.indexBits())
	if err != nil {
		return nil, err
	}
	for i, xy := range coords {
		idx := indices[i]
		if int(idx) >= len(pal) {
			return nil, errors.Errorf("texdata: palette index %d out of range (palette has %d entries)", idx, len(pal))
		}
		img.SetNRGBA(xy[0], xy[1], pal[idx])
	}
	return img, nil
}

// readIndices unpacks n sub-byte or whole-byte indices of the given bit
// width, MSB-first within each source byte (the convention the GVR/PVR
// family's 4-bit indexed formats use: the high nibble of each byte is
// the first pixel).
func readIndices(src []byte, n int, bits int) ([]uint8, error) {
	out := make([]uint8, n)
	switch bits {
	case 8:
		if len(src) < n {
			return nil, errors.New("texdata: truncated index data")
		}
		copy(out, src[:n])
	case 4:
		need := (n + 1) / 2
		if len(src) < need {
			return nil, errors.New("texdata: truncated index data")
		}
		for i := 0; i < n; i++ {
			b := src[i/2]
			if i%2 == 0 {
				out[i] = b >> 4
			} else {
				out[i] = b & 0x0F
			}
		}
	default:
		return nil, errors.Errorf("texdata: unsupported index width %d bits", bits)
	}
	return out, nil
}
