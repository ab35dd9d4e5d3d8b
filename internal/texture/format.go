package texture

import (
	"github.com/relickit/relic/internal/pixel"
	"github.com/relickit/relic/internal/texdata"
)

// HeaderVariant is the optional global-index chunk preceding the data
// chunk.
type HeaderVariant uint8

const (
	HeaderNone HeaderVariant = iota
	HeaderGbix
	HeaderGcix
)

// DataChunk selects the data-chunk family: Pvrt for the little-endian
// Svr/Pvr family, Gvrt for the big-endian-dimensioned Gvr family.
type DataChunk uint8

const (
	ChunkPvrt DataChunk = iota
	ChunkGvrt
)

// DataFormat is the on-disk arrangement of pixel data: for indexed Svr
// formats it bakes in three axes at once (palette width, square/rect
// tiling, and an assumed companion pixel format), matching how the
// on-disk single byte packs them in the source formats; truecolor
// formats only carry the tiling axis.
type DataFormat uint8

const (
	Index4RectRgb5a3 DataFormat = iota
	Index4SqrRgb5a3
	Index4RectArgb8
	Index4SqrArgb8
	Index8RectRgb5a3
	Index8SqrRgb5a3
	Index8RectArgb8
	Index8SqrArgb8
	TruecolorRect
	TruecolorSqr4
	TruecolorSqr8
)

type dataFormatInfo struct {
	layout   texdata.Layout
	palette  texdata.PaletteMode
	tileSize int
	hint     pixel.Format // companion pixel format named by an indexed entry; zero value for truecolor entries. normalizeSvrDataFormat does not read it.
}

var dataFormatTable = map[DataFormat]dataFormatInfo{
	Index4RectRgb5a3: {texdata.LayoutRectangle, texdata.Index4, 0, pixel.Rgb5a3},
	Index4SqrRgb5a3:  {texdata.LayoutSquare, texdata.Index4, 4, pixel.Rgb5a3},
	Index4RectArgb8:  {texdata.LayoutRectangle, texdata.Index4, 0, pixel.Argb8888},
	Index4SqrArgb8:   {texdata.LayoutSquare, texdata.Index4, 4, pixel.Argb8888},
	Index8RectRgb5a3: {texdata.LayoutRectangle, texdata.Index8, 0, pixel.Rgb5a3},
	Index8SqrRgb5a3:  {texdata.LayoutSquare, texdata.Index8, 4, pixel.Rgb5a3},
	Index8RectArgb8:  {texdata.LayoutRectangle, texdata.Index8, 0, pixel.Argb8888},
	Index8SqrArgb8:   {texdata.LayoutSquare, texdata.Index8, 4, pixel.Argb8888},
	TruecolorRect:    {texdata.LayoutRectangle, texdata.NoPalette, 0, 0},
	TruecolorSqr4:    {texdata.LayoutSquare, texdata.NoPalette, 4, 0},
	TruecolorSqr8:    {texdata.LayoutSquare, texdata.NoPalette, 8, 0},
}

// toTexdata returns the tiling layer's Format for df, ready to decode or
// encode once CanDecode/CanEncode are set by the caller.
func (df DataFormat) toTexdata() (texdata.Format, bool) {
	info, ok := dataFormatTable[df]
	if !ok {
		return texdata.Format{}, false
	}
	return texdata.Format{
		Layout:   info.layout,
		Palette:  info.palette,
		TileSize: info.tileSize,
	}, true
}

// isIndexed reports whether df carries a palette.
func (df DataFormat) isIndexed() bool {
	info, ok := dataFormatTable[df]
	return ok && info.palette != texdata.NoPalette
}

// normalizeSvrDataFormat applies write-time normalization for the Svr
// indexed family: the caller's requested data_format is refined to the
// Square/Rectangle variant matching width == height, and to the
// Rgb5a3/Argb8 variant matching the chosen pixel format. Non-indexed
// (truecolor) formats and formats outside the Svr indexed table pass
// through unchanged.
func normalizeSvrDataFormat(df DataFormat, pf pixel.Format, width, height int) DataFormat {
	info, ok := dataFormatTable[df]
	if !ok || info.palette == texdata.NoPalette {
		return df
	}
	square := width == height

	argb := pf == pixel.Argb8888
	switch info.palette {
	case texdata.Index4:
		switch {
		case square && !argb:
			return Index4SqrRgb5a3
		case square && argb:
			return Index4SqrArgb8
		case !square && !argb:
			return Index4RectRgb5a3
		default:
			return Index4RectArgb8
		}
	case texdata.Index8:
		switch {
		case square && !argb:
			return Index8SqrRgb5a3
		case square && argb:
			return Index8SqrArgb8
		case !square && !argb:
			return Index8RectRgb5a3
		default:
			return Index8RectArgb8
		}
	default:
		return df
	}
}
