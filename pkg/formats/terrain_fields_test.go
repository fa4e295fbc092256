package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeName(t *testing.T) {
	tests := []struct {
		name     string
		expected []byte
	}{
		{"", []byte{0, 0, 0, 0}},
		{"ab", []byte{2, 'a', 'b', 0}},
		{"abc", []byte{3, 'a', 'b', 'c'}},
		{"abcd", []byte{4, 'a', 'b', 'c', 'd', 0, 0, 0}},
	}

	for _, tc := range tests {
		got, err := encodeName(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got, "name %q", tc.name)
	}
}

func TestEncodeName_Limits(t *testing.T) {
	got, err := encodeName(strings.Repeat("n", MaxNameLength))
	require.NoError(t, err)
	assert.Len(t, got, 256)
	assert.Equal(t, byte(MaxNameLength), got[0])

	_, err = encodeName(strings.Repeat("n", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrMalformedField)

	_, err = encodeName("bad \xff utf8")
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestEncodeAuthors(t *testing.T) {
	got, err := encodeAuthors([]string{"ab", "c"})
	require.NoError(t, err)
	// Items are packed back to back, padding only at the end.
	assert.Equal(t, []byte{2, 2, 'a', 'b', 1, 'c', 0, 0}, got)

	got, err = encodeAuthors([]string{"abcd"})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 4, 'a', 'b', 'c', 'd', 0, 0}, got)
}

func TestEncodeAuthors_Limits(t *testing.T) {
	_, err := encodeAuthors(make([]string, MaxAuthorCount+1))
	assert.ErrorIs(t, err, ErrMalformedField)

	_, err = encodeAuthors([]string{"ok", strings.Repeat("a", 256)})
	assert.ErrorIs(t, err, ErrMalformedField)

	_, err = encodeAuthors([]string{"\xc3\x28"})
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestEncodeDescription(t *testing.T) {
	got, err := encodeDescription("hi")
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 'h', 'i'}, got)

	got, err = encodeDescription(`a\nb\tc`)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 'a', '\n', 'b', '\t', 'c', 0}, got)
}

func TestEncodeDescription_Limits(t *testing.T) {
	got, err := encodeDescription(strings.Repeat("d", MaxDescriptionLength))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF}, got[:2])
	assert.Zero(t, len(got)%4)

	_, err = encodeDescription(strings.Repeat("d", MaxDescriptionLength+1))
	assert.ErrorIs(t, err, ErrMalformedField)
}

func TestExpandDescription(t *testing.T) {
	assert.Equal(t, "line1\nline2\tend", ExpandDescription(`line1\nline2\tend`))
	assert.Equal(t, "plain", ExpandDescription("plain"))
}

func TestDecodeFields(t *testing.T) {
	// Fields at offset 4 behind some leading garbage.
	data := []byte{
		0xAA, 0xAA, 0xAA, 0xAA,
		3, 'f', 'o', 'o', // name
		2, 1, 'x', 2, 'y', 'z', 0, 0, // authors
		3, 0, 'b', 'a', 'r', 0, 0, 0, // description
	}

	name, size, err := decodeName(data, 4)
	require.NoError(t, err)
	assert.Equal(t, "foo", name)
	assert.Equal(t, uint32(4), size)

	authors, size, err := decodeAuthors(data, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "yz"}, authors)
	assert.Equal(t, uint32(8), size)

	desc, size, err := decodeDescription(data, 16)
	require.NoError(t, err)
	assert.Equal(t, "bar", desc)
	assert.Equal(t, uint32(8), size)

	authors, size, err = decodeAuthors([]byte{0, 0, 0, 0}, 0)
	require.NoError(t, err)
	assert.Nil(t, authors)
	assert.Equal(t, uint32(4), size)
}

func TestDecodeFields_Errors(t *testing.T) {
	_, _, err := decodeName([]byte{5, 'a', 'b'}, 0)
	assert.ErrorIs(t, err, ErrTruncatedFile)

	_, _, err = decodeName([]byte{1, 0xff, 0, 0}, 0)
	assert.ErrorIs(t, err, ErrMalformedField)

	_, _, err = decodeAuthors([]byte{2, 1, 'a'}, 0)
	assert.ErrorIs(t, err, ErrTruncatedFile)

	_, _, err = decodeDescription([]byte{9}, 0)
	assert.ErrorIs(t, err, ErrTruncatedFile)

	_, _, err = decodeName([]byte{0, 0, 0, 0}, 8)
	assert.ErrorIs(t, err, ErrTruncatedFile)
}
