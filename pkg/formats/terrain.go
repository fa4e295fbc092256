package formats

import (
	"errors"
	"fmt"
)

// Terrain file format errors.
var (
	ErrBadMagic           = errors.New("bad terrain magic")
	ErrUnsupportedVersion = errors.New("unsupported terrain file version")
	ErrChecksumMismatch   = errors.New("terrain checksum mismatch")
	ErrTruncatedFile      = errors.New("truncated terrain file")
	ErrMalformedField     = errors.New("malformed terrain field")
	ErrInvalidTerrain     = errors.New("invalid terrain")
)

// TerrainType is the numeric terrain code of a cell.
// Codes are grouped in steps of 10 so subtypes can be added later.
type TerrainType uint16

// Terrain type groups.
const (
	TerrainGrass    TerrainType = 0
	TerrainDirt     TerrainType = 10
	TerrainWater    TerrainType = 20
	TerrainMountain TerrainType = 30
)

// Group returns the type rounded down to its group of 10.
func (t TerrainType) Group() TerrainType {
	return t - t%10
}

// String returns a human-readable terrain type name.
func (t TerrainType) String() string {
	name := ""
	switch t.Group() {
	case TerrainGrass:
		name = "Grass"
	case TerrainDirt:
		name = "Dirt"
	case TerrainWater:
		name = "Water"
	case TerrainMountain:
		name = "Mountain"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
	if sub := t % 10; sub != 0 {
		return fmt.Sprintf("%s.%d", name, sub)
	}
	return name
}

// TerrainCell is one grid point of a terrain.
type TerrainCell struct {
	Height uint16 // centimetres
	Type   TerrainType
}

// HeightMeters returns the cell height in metres.
func (c TerrainCell) HeightMeters() float64 {
	return float64(c.Height) / 100
}

// Terrain is a heightmap plus terrain type grid with optional metadata.
type Terrain struct {
	Name        *string // nil when the terrain has no name
	Width       uint32
	Height      uint32
	Authors     []string
	Description string
	Cells       []TerrainCell // row-major, index y*Width+x
}

// NewTerrain creates a terrain of the given size with all cells zeroed.
func NewTerrain(width, height uint32) *Terrain {
	return &Terrain{
		Width:  width,
		Height: height,
		Cells:  make([]TerrainCell, int(width)*int(height)),
	}
}

// SetName sets the terrain name, marking it present.
func (t *Terrain) SetName(name string) {
	t.Name = &name
}

// GetCell returns the cell at the given coordinates.
// Returns nil if coordinates are out of bounds.
func (t *Terrain) GetCell(x, y int) *TerrainCell {
	if x < 0 || y < 0 || x >= int(t.Width) || y >= int(t.Height) {
		return nil
	}
	return &t.Cells[y*int(t.Width)+x]
}

// Validate checks the grid invariants of the terrain.
func (t *Terrain) Validate() error {
	if t.Width == 0 || t.Height == 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidTerrain, t.Width, t.Height)
	}
	if want := uint64(t.Width) * uint64(t.Height); uint64(len(t.Cells)) != want {
		return fmt.Errorf("%w: %d cells for a %dx%d grid", ErrInvalidTerrain, len(t.Cells), t.Width, t.Height)
	}
	return nil
}

// CountByType returns the count of cells for each terrain type.
func (t *Terrain) CountByType() map[TerrainType]int {
	counts := make(map[TerrainType]int)
	for _, cell := range t.Cells {
		counts[cell.Type]++
	}
	return counts
}

// GetAltitudeRange returns the minimum and maximum cell height.
func (t *Terrain) GetAltitudeRange() (min, max uint16) {
	if len(t.Cells) == 0 {
		return 0, 0
	}

	min = t.Cells[0].Height
	max = t.Cells[0].Height
	for _, cell := range t.Cells[1:] {
		if cell.Height < min {
			min = cell.Height
		}
		if cell.Height > max {
			max = cell.Height
		}
	}

	return min, max
}

// TerrainFile is a terrain file holding a single terrain.
type TerrainFile struct {
	Version uint32
	Terrain *Terrain

	// Filled in by the decoder.
	Checksums Checksums
	Layout    TerrainLayout
}

// NewTerrainFile wraps a terrain into a file of the current version.
func NewTerrainFile(t *Terrain) *TerrainFile {
	return &TerrainFile{
		Version: TerrainFileVersion,
		Terrain: t,
	}
}
