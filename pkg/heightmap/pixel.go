// Package heightmap converts between images and terrains.
//
// Each pixel is one terrain cell: the R and G channels hold the low and
// high byte of the height, the B and A channels the low and high byte of
// the terrain type. Images without alpha only carry the low type byte.
package heightmap

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/familyline/flterrain/pkg/formats"
)

// ErrUnsupportedFormat is returned for pixels and images that are not
// 3- or 4-channel color.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// PixelToCell maps one pixel sample (R, G, B and optionally A) to a cell.
func PixelToCell(sample []uint8) (formats.TerrainCell, error) {
	if len(sample) < 3 {
		return formats.TerrainCell{}, fmt.Errorf("%w: pixel has %d channels, need 3 or 4", ErrUnsupportedFormat, len(sample))
	}

	cell := formats.TerrainCell{
		Height: uint16(sample[0]) | uint16(sample[1])<<8,
		Type:   formats.TerrainType(sample[2]),
	}
	if len(sample) > 3 {
		cell.Type |= formats.TerrainType(sample[3]) << 8
	}
	return cell, nil
}

// CellToPixel is the inverse of PixelToCell for 4-channel images.
func CellToPixel(cell formats.TerrainCell) color.NRGBA {
	return color.NRGBA{
		R: uint8(cell.Height),
		G: uint8(cell.Height >> 8),
		B: uint8(cell.Type),
		A: uint8(cell.Type >> 8),
	}
}
