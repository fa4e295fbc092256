package formats

import (
	"fmt"
	"math"
)

// Terrain file constants.
const (
	TerrainFileMagic   uint32 = 0x45544C46 // "FLTE"
	TerrainMagic       uint32 = 0x45454554 // "TEEE"
	TerrainFileVersion uint32 = 3

	FileHeaderSize    = 16
	TerrainHeaderSize = 36

	// Checksum field positions, relative to their header.
	fileCRCOffset    = 4
	terrainCRCOffset = 12
)

// Block locates a sub-block of a terrain file. Offsets are absolute.
type Block struct {
	Offset uint32
	Size   uint32
}

// End returns the offset just past the block.
func (b Block) End() uint32 {
	return b.Offset + b.Size
}

// TerrainLayout is the placement of every block of a terrain inside a file.
// Optional blocks are nil when absent; they are written as offset 0.
type TerrainLayout struct {
	Header      Block
	Name        *Block
	Authors     *Block
	Description *Block
	Heights     Block
	Types       Block
}

// End returns the size of a file laid out this way.
func (l TerrainLayout) End() uint32 {
	return l.Types.End()
}

// LayoutBlock is a named entry of a layout. Block is nil for an absent
// optional block.
type LayoutBlock struct {
	Name  string
	Block *Block
}

// Blocks returns every block in planner order, absent ones included.
func (l *TerrainLayout) Blocks() []LayoutBlock {
	return []LayoutBlock{
		{"header", &l.Header},
		{"name", l.Name},
		{"authors", l.Authors},
		{"description", l.Description},
		{"heights", &l.Heights},
		{"types", &l.Types},
	}
}

// offsetOf translates an optional block to its on-disk offset.
func offsetOf(b *Block) uint32 {
	if b == nil {
		return 0
	}
	return b.Offset
}

// terrainFields holds the encoded metadata blocks of a terrain.
// A nil slice means the field is absent.
type terrainFields struct {
	name        []byte
	authors     []byte
	description []byte
}

// encodeTerrainFields encodes the optional metadata of t.
// Absent fields: nil name, empty author list, empty description.
func encodeTerrainFields(t *Terrain) (terrainFields, error) {
	var f terrainFields
	var err error

	if t.Name != nil {
		if f.name, err = encodeName(*t.Name); err != nil {
			return terrainFields{}, err
		}
	}
	if len(t.Authors) > 0 {
		if f.authors, err = encodeAuthors(t.Authors); err != nil {
			return terrainFields{}, err
		}
	}
	if t.Description != "" {
		if f.description, err = encodeDescription(t.Description); err != nil {
			return terrainFields{}, err
		}
	}
	return f, nil
}

// PlanTerrainLayout computes the layout of t with its header at headerOff.
func PlanTerrainLayout(t *Terrain, headerOff uint32) (TerrainLayout, error) {
	layout, _, err := planTerrain(t, headerOff)
	return layout, err
}

// planTerrain validates t, encodes its metadata and lays both out.
func planTerrain(t *Terrain, headerOff uint32) (TerrainLayout, terrainFields, error) {
	if err := t.Validate(); err != nil {
		return TerrainLayout{}, terrainFields{}, err
	}
	fields, err := encodeTerrainFields(t)
	if err != nil {
		return TerrainLayout{}, terrainFields{}, err
	}
	layout, err := planLayout(headerOff, fields, uint64(len(t.Cells)))
	if err != nil {
		return TerrainLayout{}, terrainFields{}, err
	}
	return layout, fields, nil
}

// planLayout places the metadata blocks after the terrain header in the
// order name, authors, description, then the height and type arrays.
func planLayout(headerOff uint32, fields terrainFields, cells uint64) (TerrainLayout, error) {
	if headerOff%fieldAlignment != 0 {
		return TerrainLayout{}, fmt.Errorf("%w: header offset %d is not aligned", ErrInvalidTerrain, headerOff)
	}

	cursor := uint64(headerOff) + TerrainHeaderSize
	place := func(size uint64) Block {
		b := Block{Offset: uint32(cursor), Size: uint32(size)}
		cursor += size
		return b
	}

	l := TerrainLayout{Header: Block{Offset: headerOff, Size: TerrainHeaderSize}}
	for _, opt := range []struct {
		data []byte
		dst  **Block
	}{
		{fields.name, &l.Name},
		{fields.authors, &l.Authors},
		{fields.description, &l.Description},
	} {
		if opt.data == nil {
			continue
		}
		b := place(uint64(len(opt.data)))
		*opt.dst = &b
	}

	arraySize := cells * 2
	if cursor+2*arraySize+fieldAlignment > math.MaxUint32 {
		return TerrainLayout{}, fmt.Errorf("%w: %d cells do not fit in a terrain file", ErrInvalidTerrain, cells)
	}
	l.Heights = place(arraySize)
	// An odd cell count leaves the height array 2 bytes short of a boundary.
	cursor = uint64(alignUp(int(cursor)))
	l.Types = place(arraySize)

	return l, nil
}
