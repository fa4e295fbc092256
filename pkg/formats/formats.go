// Package formats implements the Familyline terrain file format.
//
// A terrain file is a 16 byte file header followed by a single terrain:
// a 36 byte terrain header, the optional name, author and description
// blocks, then the height and type arrays. All integers are little
// endian and every block starts on a 4 byte boundary.
//
// Two CRC32 (IEEE) checksums protect the data. The terrain checksum
// covers the terrain header through the end of the file, and the file
// checksum covers the whole file. Each is computed with its own field
// zeroed, the terrain checksum first.
package formats
