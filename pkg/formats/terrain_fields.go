package formats

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Variable-length field limits.
const (
	MaxNameLength        = 0xFF   // bytes, also applies to each author
	MaxAuthorCount       = 0xFF   // authors per terrain
	MaxDescriptionLength = 0xFFFF // bytes

	fieldAlignment = 4
)

// Escape sequences expanded in descriptions before encoding.
var descriptionEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t")

// alignUp rounds n up to the next field boundary.
func alignUp(n int) int {
	return (n + fieldAlignment - 1) &^ (fieldAlignment - 1)
}

// padToAlignment appends zero bytes until len(buf) is a multiple of 4.
func padToAlignment(buf []byte) []byte {
	for len(buf)%fieldAlignment != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// appendPascalString appends a 1-byte length prefix and the UTF-8 bytes of s.
func appendPascalString(buf []byte, s, what string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformedField, what)
	}
	if len(s) > MaxNameLength {
		return nil, fmt.Errorf("%w: %s is %d bytes, max %d", ErrMalformedField, what, len(s), MaxNameLength)
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...), nil
}

// encodeName encodes the terrain name block.
func encodeName(name string) ([]byte, error) {
	buf, err := appendPascalString(make([]byte, 0, alignUp(1+len(name))), name, "name")
	if err != nil {
		return nil, err
	}
	return padToAlignment(buf), nil
}

// encodeAuthors encodes the author list block. Items are not padded
// individually; the block is aligned once at the end.
func encodeAuthors(authors []string) ([]byte, error) {
	if len(authors) > MaxAuthorCount {
		return nil, fmt.Errorf("%w: %d authors, max %d", ErrMalformedField, len(authors), MaxAuthorCount)
	}

	buf := []byte{byte(len(authors))}
	for i, a := range authors {
		var err error
		buf, err = appendPascalString(buf, a, fmt.Sprintf("author %d", i))
		if err != nil {
			return nil, err
		}
	}
	return padToAlignment(buf), nil
}

// ExpandDescription replaces literal \n and \t sequences with newline and tab.
func ExpandDescription(desc string) string {
	return descriptionEscapes.Replace(desc)
}

// encodeDescription encodes the description block with a 2-byte length prefix.
func encodeDescription(desc string) ([]byte, error) {
	desc = ExpandDescription(desc)
	if !utf8.ValidString(desc) {
		return nil, fmt.Errorf("%w: description is not valid UTF-8", ErrMalformedField)
	}
	if len(desc) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description is %d bytes, max %d", ErrMalformedField, len(desc), MaxDescriptionLength)
	}

	buf := make([]byte, 2, alignUp(2+len(desc)))
	binary.LittleEndian.PutUint16(buf, uint16(len(desc)))
	buf = append(buf, desc...)
	return padToAlignment(buf), nil
}

// fieldReader reads length-prefixed strings from a file buffer.
type fieldReader struct {
	data []byte
	pos  int
}

func (r *fieldReader) readByte(what string) (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: reading %s length", ErrTruncatedFile, what)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *fieldReader) readUint16(what string) (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("%w: reading %s length", ErrTruncatedFile, what)
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *fieldReader) readString(n int, what string) (string, error) {
	if r.pos+n > len(r.data) {
		return "", fmt.Errorf("%w: reading %s (%d bytes at %d)", ErrTruncatedFile, what, n, r.pos)
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformedField, what)
	}
	return s, nil
}

func (r *fieldReader) readPascalString(what string) (string, error) {
	n, err := r.readByte(what)
	if err != nil {
		return "", err
	}
	return r.readString(int(n), what)
}

// end returns the aligned end of the field just read.
func (r *fieldReader) end() int {
	return alignUp(r.pos)
}

// decodeName reads the name block at off. It returns the name and the
// aligned block size.
func decodeName(data []byte, off uint32) (string, uint32, error) {
	r := &fieldReader{data: data, pos: int(off)}
	name, err := r.readPascalString("name")
	if err != nil {
		return "", 0, err
	}
	return name, uint32(r.end() - int(off)), nil
}

// decodeAuthors reads the author list block at off. A zero count yields
// a nil list.
func decodeAuthors(data []byte, off uint32) ([]string, uint32, error) {
	r := &fieldReader{data: data, pos: int(off)}
	count, err := r.readByte("author count")
	if err != nil {
		return nil, 0, err
	}

	var authors []string
	for i := 0; i < int(count); i++ {
		a, err := r.readPascalString(fmt.Sprintf("author %d", i))
		if err != nil {
			return nil, 0, err
		}
		authors = append(authors, a)
	}
	return authors, uint32(r.end() - int(off)), nil
}

// decodeDescription reads the description block at off.
func decodeDescription(data []byte, off uint32) (string, uint32, error) {
	r := &fieldReader{data: data, pos: int(off)}
	n, err := r.readUint16("description")
	if err != nil {
		return "", 0, err
	}
	desc, err := r.readString(int(n), "description")
	if err != nil {
		return "", 0, err
	}
	return desc, uint32(r.end() - int(off)), nil
}
