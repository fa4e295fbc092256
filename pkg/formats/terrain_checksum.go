package formats

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"go.uber.org/multierr"
)

// Checksums holds the two CRC32 values of a terrain file.
type Checksums struct {
	File    uint32
	Terrain uint32
}

var zeroField [4]byte

// checksumZeroed computes the IEEE CRC32 of data as if the 4 bytes at
// fieldOff were zero. data itself is left untouched.
func checksumZeroed(data []byte, fieldOff int) uint32 {
	h := crc32.NewIEEE()
	h.Write(data[:fieldOff])
	h.Write(zeroField[:])
	h.Write(data[fieldOff+4:])
	return h.Sum32()
}

// terrainChecksum covers the terrain header up to the end of the file.
func terrainChecksum(data []byte, headerOff uint32) uint32 {
	return checksumZeroed(data[headerOff:], terrainCRCOffset)
}

// fileChecksum covers the whole file, terrain checksum included.
func fileChecksum(data []byte) uint32 {
	return checksumZeroed(data, fileCRCOffset)
}

// patchChecksums computes and stores both checksums into buf, terrain first.
func patchChecksums(buf []byte, headerOff uint32) Checksums {
	var sums Checksums

	binary.LittleEndian.PutUint32(buf[headerOff+terrainCRCOffset:], 0)
	sums.Terrain = terrainChecksum(buf, headerOff)
	binary.LittleEndian.PutUint32(buf[headerOff+terrainCRCOffset:], sums.Terrain)

	binary.LittleEndian.PutUint32(buf[fileCRCOffset:], 0)
	sums.File = fileChecksum(buf)
	binary.LittleEndian.PutUint32(buf[fileCRCOffset:], sums.File)

	return sums
}

// verifyChecksums recomputes both checksums and compares them with stored.
// Both mismatches are reported when both checksums are wrong.
func verifyChecksums(data []byte, headerOff uint32, stored Checksums) error {
	var err error
	if got := terrainChecksum(data, headerOff); got != stored.Terrain {
		err = multierr.Append(err, fmt.Errorf("%w: terrain crc32 is 0x%08x, stored 0x%08x", ErrChecksumMismatch, got, stored.Terrain))
	}
	if got := fileChecksum(data); got != stored.File {
		err = multierr.Append(err, fmt.Errorf("%w: file crc32 is 0x%08x, stored 0x%08x", ErrChecksumMismatch, got, stored.File))
	}
	return err
}

// VerifyTerrainChecksums checks both checksums of an encoded terrain file
// without decoding the terrain.
func VerifyTerrainChecksums(data []byte) (Checksums, error) {
	hdr, err := readFileHeader(data)
	if err != nil {
		return Checksums{}, err
	}
	th, err := readTerrainHeader(data, hdr.terrainOff)
	if err != nil {
		return Checksums{}, err
	}
	stored := Checksums{File: hdr.crc, Terrain: th.crc}
	return stored, verifyChecksums(data, hdr.terrainOff, stored)
}
