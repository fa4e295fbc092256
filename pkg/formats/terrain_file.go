package formats

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// fileHeader is the fixed 16-byte header at the start of a terrain file.
type fileHeader struct {
	magic      uint32
	crc        uint32
	version    uint32
	terrainOff uint32
}

// terrainHeader is the fixed 36-byte header of a terrain.
type terrainHeader struct {
	magic      uint32
	width      uint32
	height     uint32
	crc        uint32
	nameOff    uint32
	authorOff  uint32
	descOff    uint32
	heightsOff uint32
	typesOff   uint32
}

func readFileHeader(data []byte) (fileHeader, error) {
	if len(data) < FileHeaderSize {
		return fileHeader{}, fmt.Errorf("%w: %d bytes, file header needs %d", ErrTruncatedFile, len(data), FileHeaderSize)
	}

	le := binary.LittleEndian
	h := fileHeader{
		magic:      le.Uint32(data[0:]),
		crc:        le.Uint32(data[4:]),
		version:    le.Uint32(data[8:]),
		terrainOff: le.Uint32(data[12:]),
	}

	if h.magic != TerrainFileMagic {
		return fileHeader{}, fmt.Errorf("%w: file magic is 0x%08x, expected 0x%08x", ErrBadMagic, h.magic, TerrainFileMagic)
	}
	if h.version != TerrainFileVersion {
		return fileHeader{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.version)
	}
	return h, nil
}

func readTerrainHeader(data []byte, off uint32) (terrainHeader, error) {
	if uint64(off)+TerrainHeaderSize > uint64(len(data)) {
		return terrainHeader{}, fmt.Errorf("%w: terrain header at %d past end of file (%d bytes)", ErrTruncatedFile, off, len(data))
	}

	le := binary.LittleEndian
	b := data[off:]
	h := terrainHeader{
		magic:      le.Uint32(b[0:]),
		width:      le.Uint32(b[4:]),
		height:     le.Uint32(b[8:]),
		crc:        le.Uint32(b[12:]),
		nameOff:    le.Uint32(b[16:]),
		authorOff:  le.Uint32(b[20:]),
		descOff:    le.Uint32(b[24:]),
		heightsOff: le.Uint32(b[28:]),
		typesOff:   le.Uint32(b[32:]),
	}

	if h.magic != TerrainMagic {
		return terrainHeader{}, fmt.Errorf("%w: terrain magic is 0x%08x, expected 0x%08x", ErrBadMagic, h.magic, TerrainMagic)
	}
	return h, nil
}

// EncodeTerrainFile encodes tf into the terrain file format.
// No bytes are returned unless encoding fully succeeds.
func EncodeTerrainFile(tf *TerrainFile) ([]byte, error) {
	if tf.Version != TerrainFileVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, tf.Version)
	}
	t := tf.Terrain
	if t == nil {
		return nil, fmt.Errorf("%w: no terrain", ErrInvalidTerrain)
	}
	layout, fields, err := planTerrain(t, FileHeaderSize)
	if err != nil {
		return nil, err
	}

	le := binary.LittleEndian
	buf := make([]byte, layout.End())

	// File header, checksum left zeroed.
	le.PutUint32(buf[0:], TerrainFileMagic)
	le.PutUint32(buf[8:], tf.Version)
	le.PutUint32(buf[12:], layout.Header.Offset)

	// Terrain header, checksum left zeroed.
	h := buf[layout.Header.Offset:]
	le.PutUint32(h[0:], TerrainMagic)
	le.PutUint32(h[4:], t.Width)
	le.PutUint32(h[8:], t.Height)
	le.PutUint32(h[16:], offsetOf(layout.Name))
	le.PutUint32(h[20:], offsetOf(layout.Authors))
	le.PutUint32(h[24:], offsetOf(layout.Description))
	le.PutUint32(h[28:], layout.Heights.Offset)
	le.PutUint32(h[32:], layout.Types.Offset)

	if layout.Name != nil {
		copy(buf[layout.Name.Offset:], fields.name)
	}
	if layout.Authors != nil {
		copy(buf[layout.Authors.Offset:], fields.authors)
	}
	if layout.Description != nil {
		copy(buf[layout.Description.Offset:], fields.description)
	}

	heights := buf[layout.Heights.Offset:layout.Heights.End()]
	types := buf[layout.Types.Offset:layout.Types.End()]
	for i, cell := range t.Cells {
		le.PutUint16(heights[i*2:], cell.Height)
		le.PutUint16(types[i*2:], uint16(cell.Type))
	}

	patchChecksums(buf, layout.Header.Offset)
	return buf, nil
}

// ParseTerrainFile decodes a terrain file from raw bytes.
//
// A checksum mismatch does not stop decoding: the fully decoded file is
// returned together with an error wrapping ErrChecksumMismatch, and the
// caller decides whether to use it. Any other error returns a nil file.
func ParseTerrainFile(data []byte) (*TerrainFile, error) {
	fh, err := readFileHeader(data)
	if err != nil {
		return nil, err
	}
	th, err := readTerrainHeader(data, fh.terrainOff)
	if err != nil {
		return nil, err
	}

	stored := Checksums{File: fh.crc, Terrain: th.crc}
	sumErr := verifyChecksums(data, fh.terrainOff, stored)

	t := &Terrain{Width: th.width, Height: th.height}
	if t.Width == 0 || t.Height == 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidTerrain, t.Width, t.Height)
	}

	tf := &TerrainFile{
		Version:   fh.version,
		Terrain:   t,
		Checksums: stored,
		Layout:    TerrainLayout{Header: Block{Offset: fh.terrainOff, Size: TerrainHeaderSize}},
	}

	if th.nameOff != 0 {
		name, size, err := decodeName(data, th.nameOff)
		if err != nil {
			return nil, err
		}
		t.Name = &name
		tf.Layout.Name = &Block{Offset: th.nameOff, Size: size}
	}
	if th.authorOff != 0 {
		authors, size, err := decodeAuthors(data, th.authorOff)
		if err != nil {
			return nil, err
		}
		t.Authors = authors
		tf.Layout.Authors = &Block{Offset: th.authorOff, Size: size}
	}
	if th.descOff != 0 {
		desc, size, err := decodeDescription(data, th.descOff)
		if err != nil {
			return nil, err
		}
		t.Description = desc
		tf.Layout.Description = &Block{Offset: th.descOff, Size: size}
	}

	cells := uint64(t.Width) * uint64(t.Height)
	if cells > uint64(len(data))/2 {
		return nil, fmt.Errorf("%w: %dx%d cells do not fit in %d bytes", ErrTruncatedFile, t.Width, t.Height, len(data))
	}
	arraySize := cells * 2
	for _, arr := range []struct {
		name string
		off  uint32
	}{
		{"height array", th.heightsOff},
		{"type array", th.typesOff},
	} {
		if uint64(arr.off)+arraySize > uint64(len(data)) {
			return nil, fmt.Errorf("%w: %s needs %d bytes at %d, file has %d", ErrTruncatedFile, arr.name, arraySize, arr.off, len(data))
		}
	}
	tf.Layout.Heights = Block{Offset: th.heightsOff, Size: uint32(arraySize)}
	tf.Layout.Types = Block{Offset: th.typesOff, Size: uint32(arraySize)}

	le := binary.LittleEndian
	heights := data[th.heightsOff:]
	types := data[th.typesOff:]
	t.Cells = make([]TerrainCell, cells)
	for i := range t.Cells {
		t.Cells[i] = TerrainCell{
			Height: le.Uint16(heights[i*2:]),
			Type:   TerrainType(le.Uint16(types[i*2:])),
		}
	}

	return tf, sumErr
}

// ReadTerrainFile parses a terrain file from disk.
func ReadTerrainFile(path string) (*TerrainFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terrain file: %w", err)
	}
	return ParseTerrainFile(data)
}

// WriteTerrainFile encodes tf and writes it to path. The file is written
// to a temporary sibling first and renamed into place.
func WriteTerrainFile(path string, tf *TerrainFile) error {
	data, err := EncodeTerrainFile(tf)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing terrain file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing terrain file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing terrain file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing terrain file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing terrain file: %w", err)
	}
	return nil
}
