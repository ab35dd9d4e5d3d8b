package texture

import (
	"image/color"
	"io"

	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/pixel"
)

// ReadPaletteFile decodes a .svp/.gvp companion palette file: a u16
// little-endian entry count followed by that many Bpp-byte device
// color words in codec's format. Used to recover from
// ErrNeedsExternalPalette when a texture's data_format calls for a
// palette it does not embed itself.
func ReadPaletteFile(r io.Reader, format pixel.Format) ([]color.NRGBA, error) {
	codec, err := pixel.Get(format)
	if err != nil {
		return nil, err
	}

	var countBytes [2]byte
	if _, err := io.ReadFull(r, countBytes[:]); err != nil {
		return nil, errors.Wrap(err, "texture: reading palette file entry count")
	}
	count := int(countBytes[0]) | int(countBytes[1])<<8

	body := make([]byte, count*codec.Bpp)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Wrap(err, "texture: reading palette file body")
	}
	return codec.DecodePalette(body, count)
}

// WritePaletteFile emits a .svp/.gvp companion palette file for pal in
// codec's device color format.
func WritePaletteFile(w io.Writer, pal []color.NRGBA, format pixel.Format) error {
	codec, err := pixel.Get(format)
	if err != nil {
		return err
	}
	count := len(pal)
	countBytes := [2]byte{byte(count), byte(count >> 8)}
	if _, err := w.Write(countBytes[:]); err != nil {
		return errors.Wrap(err, "texture: writing palette file entry count")
	}
	body, err := codec.EncodePalette(pal, count)
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "texture: writing palette file body")
	}
	return nil
}
