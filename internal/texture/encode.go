package texture

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/relickit/relic/internal/bitio"
	"github.com/relickit/relic/internal/pixel"
)

// EncodeResult is what Encode needs the caller to do next when the
// chosen data format requires an external palette companion file: the
// texture body was written without an embedded palette, and palette
// must be persisted separately (e.g. to a .svp/.gvp file) for the
// texture to be decodable later.
type EncodeResult struct {
	NeedsExternalPalette bool
	Palette              []color.NRGBA
}

// Encode writes a complete texture chunk (optional global-index chunk,
// data-chunk header, optional embedded palette, and pixel data) to rw:
//  1. normalize data_format per the Svr auto-refine rule,
//  2. validate the requested codecs can encode,
//  3. convert to indices+palette if indexed,
//  4. emit GBIX (if requested), the data-chunk header, any embedded
//     palette, and the encoded pixel bytes.
func Encode(rw readWriteSeeker, bitmap *image.NRGBA, chunk DataChunk, settings Settings, embedPalette bool) (*EncodeResult, error) {
	s, err := bitio.Open(rw)
	if err != nil {
		return nil, err
	}

	width, height := bitmap.Bounds().Dx(), bitmap.Bounds().Dy()
	df := normalizeSvrDataFormat(settings.DataFormat, settings.PixelFormat, width, height)

	dataFmt, ok := df.toTexdata()
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	dataFmt.CanEncode = true

	codec, err := pixel.Get(settings.PixelFormat)
	if !codec.CanEncode || err != nil {
		return nil, ErrUnsupportedFormat
	}

	indexed := dataFmt.Palette != 0
	var outPalette []color.NRGBA
	if indexed {
		outPalette = make([]color.NRGBA, dataFmt.Palette.PaletteEntries())
	}

	pixelBytes, err := dataFmt.Encode(bitmap, codec, outPalette)
	if err != nil {
		return nil, err
	}

	var paletteBytes []byte
	if indexed && embedPalette {
		paletteBytes, err = codec.EncodePalette(outPalette, len(outPalette))
		if err != nil {
			return nil, err
		}
	}
	// body_length covers everything after itself: the 8-byte
	// pixel_format/data_format/reserved/width/height fields plus any
	// embedded palette and the pixel data.
	bodyLength := uint32(8 + len(paletteBytes) + len(pixelBytes))

	if settings.HasGlobalIndex {
		if err := writeGlobalIndexChunk(s, HeaderGbix, settings.GlobalIndex); err != nil {
			return nil, err
		}
	}

	header := &dataChunkHeader{
		chunk:      chunk,
		bodyLength: bodyLength,
		pixel:      settings.PixelFormat,
		dataFormat: uint8(df),
		width:      width,
		height:     height,
	}
	if err := writeDataChunkHeader(s, header); err != nil {
		return nil, err
	}
	if len(paletteBytes) > 0 {
		if _, err := rw.Write(paletteBytes); err != nil {
			return nil, errors.Wrap(err, "texture: writing embedded palette")
		}
	}
	if _, err := rw.Write(pixelBytes); err != nil {
		return nil, errors.Wrap(err, "texture: writing pixel data")
	}

	return &EncodeResult{
		NeedsExternalPalette: indexed && !embedPalette,
		Palette:              outPalette,
	}, nil
}
