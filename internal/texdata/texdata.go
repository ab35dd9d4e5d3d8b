// Package texdata implements the tiling/swizzle layer that sits between
// raw pixel-index or pixel-word bytes (as stored on disk) and a bitmap in
// natural raster order: square formats walk the image in fixed-size N×N
// blocks, rectangle formats store row-major.
package texdata

import (
	"github.com/pkg/errors"
)

// Layout is the on-disk arrangement of a data format: square-tiled or
// row-major rectangular.
type Layout uint8

const (
	LayoutRectangle Layout = iota
	LayoutSquare
)

// PaletteMode selects how pixel indices map to colors.
type PaletteMode uint8

const (
	NoPalette PaletteMode = iota
	Index4
	Index8
)

// PaletteEntries returns the number of palette slots PaletteMode needs.
func (m PaletteMode) PaletteEntries() int {
	switch m {
	case Index4:
		return 16
	case Index8:
		return 256
	default:
		return 0
	}
}

// IndexBits returns the storage width, in bits, of one index entry.
func (m PaletteMode) IndexBits() int {
	switch m {
	case Index4:
		return 4
	case Index8:
		return 8
	default:
		return 0
	}
}

var (
	ErrPaletteOverflow        = errors.New("texdata: bitmap uses more distinct colors than the palette holds")
	ErrUnsupportedDataFormat  = errors.New("texdata: unsupported data format")
	ErrDimensionsNotTileable  = errors.New("texdata: width/height not a multiple of the tile size")
)

// Format describes one on-disk data format: its tiling layout, palette
// mode, and (for square layouts) tile size.
type Format struct {
	Layout      Layout
	Palette     PaletteMode
	TileSize    int // only meaningful when Layout == LayoutSquare
	CanDecode   bool
	CanEncode   bool
}

// indexBits returns the storage width, in bits, of one palette index for
// the given Format: 4 for Index4, 8 for Index8, and 0 for truecolor
// formats, whose pixel words are sized by the pixel codec instead.
func (f Format) indexBits() int {
	return f.Palette.IndexBits()
}

// tileOrder yields the (x, y) raster coordinates in on-disk storage
// order for a width x height image under Layout: row-major for
// rectangles, block-by-block (raster order within each tile) for
// squares.
func (f Format) tileOrder(width, height int) ([][2]int, error) {
	coords := make([][2]int, 0, width*height)
	if f.Layout == LayoutRectangle {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				coords = append(coords, [2]int{x, y})
			}
		}
		return coords, nil
	}

	n := f.TileSize
	if n <= 0 {
		return nil, errors.New("texdata: square layout requires a positive tile size")
	}
	if width%n != 0 || height%n != 0 {
		return nil, ErrDimensionsNotTileable
	}
	for ty := 0; ty < height; ty += n {
		for tx := 0; tx < width; tx += n {
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					coords = append(coords, [2]int{tx + x, ty + y})
				}
			}
		}
	}
	return coords, nil
}
