// Package pixel implements the per-pixel and per-palette-entry color
// codecs for the device color formats used by the texture container:
// encoding/decoding single pixels and whole palettes between the wire's
// packed device words and image/color.NRGBA.
//
// Each format's codec is a value in a compile-time table indexed by
// Format, not a mutable per-format object, so looking one up never
// touches shared state.
package pixel

import (
	"image/color"

	"github.com/pkg/errors"
)

// Format is the device-specific pixel color layout.
type Format uint8

const (
	Argb1555 Format = iota
	Rgb565
	Argb4444
	Rgb5a3
	Argb8888
)

func (f Format) String() string {
	switch f {
	case Argb1555:
		return "ARGB1555"
	case Rgb565:
		return "RGB565"
	case Argb4444:
		return "ARGB4444"
	case Rgb5a3:
		return "RGB5A3"
	case Argb8888:
		return "ARGB8888"
	default:
		return "unknown"
	}
}

var ErrUnsupportedPixelFormat = errors.New("pixel: unsupported pixel format")

// Codec is a pure pixel-level color transcoder for one Format.
type Codec struct {
	Format Format
	// Bpp is the size in bytes of one encoded pixel word.
	Bpp int

	CanDecode bool
	CanEncode bool

	decodePixel func(bytes []byte) color.NRGBA
	encodePixel func(c color.NRGBA) []byte
}

// Decode decodes a single pixel word at src[0:Bpp].
func (c Codec) Decode(src []byte) (color.NRGBA, error) {
	if !c.CanDecode {
		return color.NRGBA{}, ErrUnsupportedPixelFormat
	}
	if len(src) < c.Bpp {
		return color.NRGBA{}, errors.New("pixel: short pixel word")
	}
	return c.decodePixel(src), nil
}

// Encode encodes a single pixel to its Bpp-byte device word.
func (c Codec) Encode(col color.NRGBA) ([]byte, error) {
	if !c.CanEncode {
		return nil, ErrUnsupportedPixelFormat
	}
	return c.encodePixel(col), nil
}

// DecodePalette decodes count consecutive Bpp-byte entries from src.
func (c Codec) DecodePalette(src []byte, count int) ([]color.NRGBA, error) {
	if !c.CanDecode {
		return nil, ErrUnsupportedPixelFormat
	}
	need := count * c.Bpp
	if len(src) < need {
		return nil, errors.New("pixel: truncated palette")
	}
	out := make([]color.NRGBA, count)
	for i := 0; i < count; i++ {
		out[i] = c.decodePixel(src[i*c.Bpp : (i+1)*c.Bpp])
	}
	return out, nil
}

// EncodePalette encodes a palette of up to count colors into count
// Bpp-byte entries, zero-padding any unused trailing entries.
func (c Codec) EncodePalette(palette []color.NRGBA, count int) ([]byte, error) {
	if !c.CanEncode {
		return nil, ErrUnsupportedPixelFormat
	}
	out := make([]byte, count*c.Bpp)
	for i := 0; i < count && i < len(palette); i++ {
		copy(out[i*c.Bpp:(i+1)*c.Bpp], c.encodePixel(palette[i]))
	}
	return out, nil
}

// expand widens a v of width bits up to 8 bits by repeatedly doubling v
// into itself (v = v<<bits | v, bits *= 2) until it spans at least 8
// bits, then keeps the top 8. For bits in [4,8) this reduces exactly to
// the textbook (v << (8-bits)) | (v >> (2*bits-8)) formula; that two-term
// form is undefined for bits < 4 (2*bits-8 goes negative), which is
// exactly the case RGB5A3's 3-bit alpha channel needs, so the doubling
// form is used uniformly instead.
func expand(v uint32, bits uint) uint8 {
	if bits >= 8 {
		return uint8(v)
	}
	if bits == 0 {
		return 0
	}
	for bits < 8 {
		v = (v << bits) | v
		bits *= 2
	}
	return uint8(v >> (bits - 8))
}

// narrow truncates an 8-bit channel down to bits bits by keeping the
// high bits.
func narrow(v uint8, bits uint) uint32 {
	return uint32(v) >> (8 - bits)
}

// Table is the compile-time codec set indexed by Format.
var Table = map[Format]Codec{
	Argb1555: {
		Format: Argb1555, Bpp: 2, CanDecode: true, CanEncode: true,
		decodePixel: decodeArgb1555,
		encodePixel: encodeArgb1555,
	},
	Rgb565: {
		Format: Rgb565, Bpp: 2, CanDecode: true, CanEncode: true,
		decodePixel: decodeRgb565,
		encodePixel: encodeRgb565,
	},
	Argb4444: {
		Format: Argb4444, Bpp: 2, CanDecode: true, CanEncode: true,
		decodePixel: decodeArgb4444,
		encodePixel: encodeArgb4444,
	},
	Rgb5a3: {
		Format: Rgb5a3, Bpp: 2, CanDecode: true, CanEncode: true,
		decodePixel: decodeRgb5a3,
		encodePixel: encodeRgb5a3,
	},
	Argb8888: {
		Format: Argb8888, Bpp: 4, CanDecode: true, CanEncode: true,
		decodePixel: decodeArgb8888,
		encodePixel: encodeArgb8888,
	},
}

// Get looks up the codec for f.
func Get(f Format) (Codec, error) {
	c, ok := Table[f]
	if !ok {
		return Codec{}, ErrUnsupportedPixelFormat
	}
	return c, nil
}

func le16(b []byte) uint32 { return uint32(b[0]) | uint32(b[1])<<8 }

func put16le(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

// ARGB1555: 1-bit alpha, 5 bits per RGB channel.
func decodeArgb1555(src []byte) color.NRGBA {
	v := le16(src)
	a := uint8(0xFF)
	if v&0x8000 == 0 {
		a = 0
	}
	r := expand((v>>10)&0x1F, 5)
	g := expand((v>>5)&0x1F, 5)
	b := expand(v&0x1F, 5)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func encodeArgb1555(c color.NRGBA) []byte {
	var v uint16
	if c.A >= 0x80 {
		v |= 0x8000
	}
	v |= uint16(narrow(c.R, 5)) << 10
	v |= uint16(narrow(c.G, 5)) << 5
	v |= uint16(narrow(c.B, 5))
	return put16le(v)
}

// RGB565: no alpha, 5/6/5 bits.
func decodeRgb565(src []byte) color.NRGBA {
	v := le16(src)
	r := expand((v>>11)&0x1F, 5)
	g := expand((v>>5)&0x3F, 6)
	b := expand(v&0x1F, 5)
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

func encodeRgb565(c color.NRGBA) []byte {
	var v uint16
	v |= uint16(narrow(c.R, 5)) << 11
	v |= uint16(narrow(c.G, 6)) << 5
	v |= uint16(narrow(c.B, 5))
	return put16le(v)
}

// ARGB4444: 4 bits per channel including alpha.
func decodeArgb4444(src []byte) color.NRGBA {
	v := le16(src)
	a := expand((v>>12)&0xF, 4)
	r := expand((v>>8)&0xF, 4)
	g := expand((v>>4)&0xF, 4)
	b := expand(v&0xF, 4)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func encodeArgb4444(c color.NRGBA) []byte {
	var v uint16
	v |= uint16(narrow(c.A, 4)) << 12
	v |= uint16(narrow(c.R, 4)) << 8
	v |= uint16(narrow(c.G, 4)) << 4
	v |= uint16(narrow(c.B, 4))
	return put16le(v)
}

// RGB5A3: a hybrid format. If the top bit is set, the remaining 15 bits
// are opaque RGB555 (5/5/5). If clear, the top 3 of the remaining bits
// are a coarse 3-bit alpha and the rest pack RGB444 (4/4/4).
func decodeRgb5a3(src []byte) color.NRGBA {
	v := le16(src)
	if v&0x8000 != 0 {
		r := expand((v>>10)&0x1F, 5)
		g := expand((v>>5)&0x1F, 5)
		b := expand(v&0x1F, 5)
		return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
	}
	a := expand((v>>12)&0x7, 3)
	r := expand((v>>8)&0xF, 4)
	g := expand((v>>4)&0xF, 4)
	b := expand(v&0xF, 4)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func encodeRgb5a3(c color.NRGBA) []byte {
	var v uint16
	if c.A >= 0xE0 {
		v |= 0x8000
		v |= uint16(narrow(c.R, 5)) << 10
		v |= uint16(narrow(c.G, 5)) << 5
		v |= uint16(narrow(c.B, 5))
	} else {
		v |= uint16(narrow(c.A, 3)) << 12
		v |= uint16(narrow(c.R, 4)) << 8
		v |= uint16(narrow(c.G, 4)) << 4
		v |= uint16(narrow(c.B, 4))
	}
	return put16le(v)
}

// ARGB8888: full 8-bit channels, little-endian byte order B,G,R,A.
func decodeArgb8888(src []byte) color.NRGBA {
	return color.NRGBA{B: src[0], G: src[1], R: src[2], A: src[3]}
}

func encodeArgb8888(c color.NRGBA) []byte {
	return []byte{c.B, c.G, c.R, c.A}
}
