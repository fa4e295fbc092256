package heightmap

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"github.com/familyline/flterrain/pkg/formats"
)

// GenerateOptions controls noise terrain generation.
type GenerateOptions struct {
	Width  uint32
	Height uint32
	Seed   int64

	// Perlin parameters.
	Alpha     float64 // smoothing
	Beta      float64 // harmonic scaling
	Octaves   int32
	Frequency float64 // noise units per cell

	MaxHeight     uint16 // cm
	WaterLevel    uint16 // cm, cells below are water
	MountainLevel uint16 // cm, cells at or above are mountain
}

// DefaultGenerateOptions returns a 128x128 terrain capped at 64 m.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Width:         128,
		Height:        128,
		Seed:          1,
		Alpha:         2,
		Beta:          2,
		Octaves:       3,
		Frequency:     0.03,
		MaxHeight:     6400,
		WaterLevel:    1600,
		MountainLevel: 4800,
	}
}

// Generate builds a terrain from 2D Perlin noise. Terrain types follow
// altitude bands: water, a dirt shore, grass, then mountain.
func Generate(opts GenerateOptions) (*formats.Terrain, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", formats.ErrInvalidTerrain, opts.Width, opts.Height)
	}
	if opts.WaterLevel > opts.MountainLevel {
		return nil, fmt.Errorf("water level %d above mountain level %d", opts.WaterLevel, opts.MountainLevel)
	}

	noise := perlin.NewPerlin(opts.Alpha, opts.Beta, opts.Octaves, opts.Seed)
	shore := opts.WaterLevel + (opts.MountainLevel-opts.WaterLevel)/8

	t := formats.NewTerrain(opts.Width, opts.Height)
	for y := 0; y < int(opts.Height); y++ {
		for x := 0; x < int(opts.Width); x++ {
			n := (noise.Noise2D(float64(x)*opts.Frequency, float64(y)*opts.Frequency) + 1) / 2
			if n < 0 {
				n = 0
			} else if n > 1 {
				n = 1
			}
			h := uint16(n * float64(opts.MaxHeight))

			cell := t.GetCell(x, y)
			cell.Height = h
			switch {
			case h < opts.WaterLevel:
				cell.Type = formats.TerrainWater
			case h < shore:
				cell.Type = formats.TerrainDirt
			case h >= opts.MountainLevel:
				cell.Type = formats.TerrainMountain
			default:
				cell.Type = formats.TerrainGrass
			}
		}
	}
	return t, nil
}
