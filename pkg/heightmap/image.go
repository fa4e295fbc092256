package heightmap

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	// Image decoders.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/familyline/flterrain/pkg/formats"
)

// Source is a decoded image as row-major samples of 3 or 4 channels.
type Source struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8 // Channels bytes per pixel
}

// Sample returns the channels of the pixel at (x, y).
func (s *Source) Sample(x, y int) []uint8 {
	i := (y*s.Width + x) * s.Channels
	return s.Pix[i : i+s.Channels]
}

// NewSource extracts the samples of img.
//
// NRGBA images keep their alpha channel as-is. Opaque RGBA and YCbCr images
// are treated as 3-channel RGB; translucent RGBA images are converted to
// straight alpha first. Paletted, gray and CMYK images are rejected.
func NewSource(img image.Image) (*Source, error) {
	b := img.Bounds()
	src := &Source{Width: b.Dx(), Height: b.Dy()}

	var at func(x, y int) []uint8
	switch im := img.(type) {
	case *image.NRGBA:
		src.Channels = 4
		at = func(x, y int) []uint8 {
			i := im.PixOffset(x, y)
			return im.Pix[i : i+4]
		}
	case *image.NRGBA64:
		src.Channels = 4
		at = func(x, y int) []uint8 {
			i := im.PixOffset(x, y)
			p := im.Pix[i : i+8]
			return []uint8{p[0], p[2], p[4], p[6]}
		}
	case *image.RGBA, *image.RGBA64:
		if img.(interface{ Opaque() bool }).Opaque() {
			src.Channels = 3
			at = rgbAt(img)
		} else {
			src.Channels = 4
			at = func(x, y int) []uint8 {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				return []uint8{c.R, c.G, c.B, c.A}
			}
		}
	case *image.YCbCr:
		src.Channels = 3
		at = rgbAt(img)
	default:
		return nil, fmt.Errorf("%w: %T is not an RGB or RGBA image", ErrUnsupportedFormat, img)
	}

	src.Pix = make([]uint8, 0, src.Width*src.Height*src.Channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			src.Pix = append(src.Pix, at(x, y)...)
		}
	}
	return src, nil
}

func rgbAt(img image.Image) func(x, y int) []uint8 {
	return func(x, y int) []uint8 {
		r, g, b, _ := img.At(x, y).RGBA()
		return []uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
	}
}

// TerrainFromSource maps every sample of src to a terrain cell.
func TerrainFromSource(src *Source) (*formats.Terrain, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d image", ErrUnsupportedFormat, src.Width, src.Height)
	}

	t := formats.NewTerrain(uint32(src.Width), uint32(src.Height))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			cell, err := PixelToCell(src.Sample(x, y))
			if err != nil {
				return nil, err
			}
			t.Cells[y*src.Width+x] = cell
		}
	}
	return t, nil
}

// TerrainFromImage converts an image into a terrain without metadata.
func TerrainFromImage(img image.Image) (*formats.Terrain, error) {
	src, err := NewSource(img)
	if err != nil {
		return nil, err
	}
	return TerrainFromSource(src)
}

// TerrainToImage renders the terrain cells back into pixels, so that
// TerrainFromImage(TerrainToImage(t)) restores the grid.
func TerrainToImage(t *formats.Terrain) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, int(t.Width), int(t.Height)))
	for y := 0; y < int(t.Height); y++ {
		for x := 0; x < int(t.Width); x++ {
			img.SetNRGBA(x, y, CellToPixel(*t.GetCell(x, y)))
		}
	}
	return img
}

// LoadImage decodes an image file. It returns the image and its format name.
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decoding %s: %v", ErrUnsupportedFormat, path, err)
	}
	return img, format, nil
}

// SavePNG writes img to path as a PNG file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding png: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing image: %w", err)
	}
	return f.Close()
}
