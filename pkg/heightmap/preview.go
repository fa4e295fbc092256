package heightmap

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/familyline/flterrain/pkg/formats"
	"github.com/familyline/flterrain/pkg/math"
)

// Terrain type preview colors, by type group.
var typeColors = map[formats.TerrainType]color.RGBA{
	formats.TerrainGrass:    {R: 0x4C, G: 0x9A, B: 0x2A, A: 0xFF},
	formats.TerrainDirt:     {R: 0x8B, G: 0x5A, B: 0x2B, A: 0xFF},
	formats.TerrainWater:    {R: 0x1E, G: 0x5A, B: 0xC8, A: 0xFF},
	formats.TerrainMountain: {R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
}

var unknownTypeColor = color.RGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}

// Hill shading parameters. Light comes from the north west.
var sunDirection = math.Vec3{X: -1, Y: -1, Z: 2}

const (
	cellSizeCM   = 100
	ambientLight = 0.25
)

// HeightPreview renders heights as grayscale, stretched over the terrain's
// altitude range, and scales the result by an integer factor.
func HeightPreview(t *formats.Terrain, scale int) image.Image {
	img := image.NewGray(image.Rect(0, 0, int(t.Width), int(t.Height)))

	min, max := t.GetAltitudeRange()
	span := float64(max - min)
	for i, cell := range t.Cells {
		if span == 0 {
			img.Pix[i] = 0x80
			continue
		}
		img.Pix[i] = uint8(float64(cell.Height-min) / span * 255)
	}

	return scaleImage(img, scale)
}

// TypePreview renders terrain types as flat colors, hill shaded from the
// height field. Flat ground keeps the plain type color.
func TypePreview(t *formats.Terrain, scale int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, int(t.Width), int(t.Height)))

	flat := math.Lambert(math.Up, sunDirection)
	for y := 0; y < int(t.Height); y++ {
		for x := 0; x < int(t.Width); x++ {
			cell := t.GetCell(x, y)
			c, ok := typeColors[cell.Type.Group()]
			if !ok {
				c = unknownTypeColor
			}

			light := math.Lambert(surfaceNormal(t, x, y), sunDirection) / flat
			shade := float64(ambientLight + (1-ambientLight)*light)
			if shade > 1 {
				shade = 1
			}

			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(float64(c.R) * shade)
			img.Pix[i+1] = uint8(float64(c.G) * shade)
			img.Pix[i+2] = uint8(float64(c.B) * shade)
			img.Pix[i+3] = 0xFF
		}
	}

	return scaleImage(img, scale)
}

// surfaceNormal estimates the normal at (x, y) with central differences,
// clamping at the terrain edges.
func surfaceNormal(t *formats.Terrain, x, y int) math.Vec3 {
	height := func(x, y int) float32 {
		x = clamp(x, 0, int(t.Width)-1)
		y = clamp(y, 0, int(t.Height)-1)
		return float32(t.GetCell(x, y).Height)
	}

	dzdx := (height(x+1, y) - height(x-1, y)) / (2 * cellSizeCM)
	dzdy := (height(x, y+1) - height(x, y-1)) / (2 * cellSizeCM)
	return math.SurfaceNormal(dzdx, dzdy)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func scaleImage(src image.Image, scale int) image.Image {
	if scale <= 1 {
		return src
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
