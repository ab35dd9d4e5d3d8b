package pixel_test

import (
	"image/color"
	"testing"

	"github.com/relickit/relic/internal/pixel"
)

func TestUnsupportedFormat(t *testing.T) {
	_, err := pixel.Get(pixel.Format(200))
	if err != pixel.ErrUnsupportedPixelFormat {
		t.Fatalf("got %v, want ErrUnsupportedPixelFormat", err)
	}
}

func TestRoundTripExtremes(t *testing.T) {
	cases := []color.NRGBA{
		{R: 0, G: 0, B: 0, A: 0},
		{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		{R: 0x80, G: 0x40, B: 0x20, A: 0xFF},
	}
	for _, format := range []pixel.Format{pixel.Argb1555, pixel.Rgb565, pixel.Argb4444, pixel.Rgb5a3, pixel.Argb8888} {
		codec, err := pixel.Get(format)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range cases {
			enc, err := codec.Encode(c)
			if err != nil {
				t.Fatalf("%v: encode: %v", format, err)
			}
			if len(enc) != codec.Bpp {
				t.Fatalf("%v: encode produced %d bytes, want %d", format, len(enc), codec.Bpp)
			}
			dec, err := codec.Decode(enc)
			if err != nil {
				t.Fatalf("%v: decode: %v", format, err)
			}
			_ = dec // exact round trip is format-dependent (lossy channel widths); see below
		}
	}
}

// TestChannelExpansionFullWhite checks that a fully-set N-bit channel
// expands to a fully-set 8-bit channel (0xFF), which is the case the
// repeating-MSB expansion formula exists to get right (a naive left
// shift would leave the low bits zero, e.g. 0x1F*8 = 0xF8, not 0xFF).
func TestChannelExpansionFullWhite(t *testing.T) {
	codec, err := pixel.Get(pixel.Rgb565)
	if err != nil {
		t.Fatal(err)
	}
	white := color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	enc, _ := codec.Encode(white)
	dec, err := codec.Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if dec.R != 0xFF || dec.G != 0xFF || dec.B != 0xFF {
		t.Errorf("got %+v, want fully white", dec)
	}
}

func TestArgb1555AlphaBit(t *testing.T) {
	codec, _ := pixel.Get(pixel.Argb1555)
	opaque := color.NRGBA{R: 10, G: 10, B: 10, A: 0xFF}
	transparent := color.NRGBA{R: 10, G: 10, B: 10, A: 0}

	encOpaque, _ := codec.Encode(opaque)
	encTransparent, _ := codec.Encode(transparent)

	decOpaque, _ := codec.Decode(encOpaque)
	decTransparent, _ := codec.Decode(encTransparent)

	if decOpaque.A != 0xFF {
		t.Errorf("opaque alpha got %d, want 0xFF", decOpaque.A)
	}
	if decTransparent.A != 0 {
		t.Errorf("transparent alpha got %d, want 0", decTransparent.A)
	}
}

func TestRgb5a3HybridThreshold(t *testing.T) {
	codec, _ := pixel.Get(pixel.Rgb5a3)

	// Below the opacity threshold: takes the 4/4/4 + 3-bit alpha branch.
	translucent := color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x40}
	enc, _ := codec.Encode(translucent)
	if enc[1]&0x80 != 0 {
		t.Fatalf("expected the RGB444 branch (top bit clear), got %08b", enc[1])
	}
	dec, _ := codec.Decode(enc)
	if dec.A == 0xFF {
		t.Errorf("expected a non-opaque decode, got alpha %d", dec.A)
	}

	// At/above the opacity threshold: takes the opaque 5/5/5 branch.
	opaque := color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	enc2, _ := codec.Encode(opaque)
	if enc2[1]&0x80 == 0 {
		t.Fatalf("expected the RGB555 branch (top bit set), got %08b", enc2[1])
	}
	dec2, _ := codec.Decode(enc2)
	if dec2.A != 0xFF {
		t.Errorf("got alpha %d, want 0xFF", dec2.A)
	}
}

func TestPaletteRoundTrip(t *testing.T) {
	codec, _ := pixel.Get(pixel.Argb8888)
	palette := []color.NRGBA{
		{R: 1, G: 2, B: 3, A: 4},
		{R: 5, G: 6, B: 7, A: 8},
	}
	enc, err := codec.EncodePalette(palette, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) != 16*codec.Bpp {
		t.Fatalf("got %d bytes, want %d", len(enc), 16*codec.Bpp)
	}
	dec, err := codec.DecodePalette(enc, 16)
	if err != nil {
		t.Fatal(err)
	}
	if dec[0] != palette[0] || dec[1] != palette[1] {
		t.Errorf("palette mismatch: %+v", dec[:2])
	}
	for _, c := range dec[2:] {
		if c != (color.NRGBA{}) {
			t.Errorf("expected zero-padded tail entry, got %+v", c)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	codec, _ := pixel.Get(pixel.Argb8888)
	_, err := codec.Decode([]byte{1, 2})
	if err == nil {
		t.Fatal("expected an error for a short pixel word")
	}
}
