package archive2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ldmRecord compresses data into a size prefixed LDM record
func ldmRecord(t *testing.T, data []byte, negative bool) []byte {
	t.Helper()
	var compressed bytes.Buffer
	w, err := bzip2.NewWriter(&compressed, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	size := int32(compressed.Len())
	if negative {
		size = -size
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, size)
	buf.Write(compressed.Bytes())
	return buf.Bytes()
}

// chunkedArchive returns an uncompressed archive and its records split into two LDM payloads
func chunkedArchive() (plain []byte, first, second []byte) {
	b := newArchiveBuilder("KTLX").
		fixed(2, statusBody(1900)).
		fixed(5, vcpBody(212, 2, 2, 0, testCut{angle: 0x0058})).
		radial(refRadial(1, 0.5, 66, 68)).
		radial(refRadial(1, 1.0, 70, 72)).
		radial(refRadial(2, 0.5, 74))
	plain = b.bytes()
	split := int(b.offsets[2])
	return plain, plain[VolumeHeaderLength:split], plain[split:]
}

func TestDecompress(t *testing.T) {
	plain, first, second := chunkedArchive()

	var compressed bytes.Buffer
	compressed.Write(plain[:VolumeHeaderLength])
	compressed.Write(ldmRecord(t, first, false))
	compressed.Write(ldmRecord(t, second, true))

	c, chunks, err := Decompress(NewCursor(compressed.Bytes()), DiscardLogger())
	require.NoError(t, err)

	out := make([]byte, c.Size())
	_, err = c.Read(out)
	require.NoError(t, err)
	assert.Equal(t, plain, out)

	split := int64(VolumeHeaderLength + len(first))
	assert.Equal(t, []int64{split, int64(len(plain))}, chunks)
}

func TestDecompressStopsAtZeroSize(t *testing.T) {
	plain, first, second := chunkedArchive()

	var compressed bytes.Buffer
	compressed.Write(plain[:VolumeHeaderLength])
	compressed.Write(ldmRecord(t, first, false))
	compressed.Write([]byte{0, 0, 0, 0})
	compressed.Write(ldmRecord(t, second, false))

	c, chunks, err := Decompress(NewCursor(compressed.Bytes()), DiscardLogger())
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, int64(VolumeHeaderLength+len(first)), c.Size())
}

func TestDecompressIntermediateChunk(t *testing.T) {
	_, _, second := chunkedArchive()

	c, chunks, err := Decompress(NewCursor(ldmRecord(t, second, false)), DiscardLogger())
	require.NoError(t, err)
	assert.Equal(t, []int64{int64(VolumeHeaderLength + len(second))}, chunks)

	out := make([]byte, c.Size())
	_, err = c.Read(out)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, VolumeHeaderLength), out[:VolumeHeaderLength])
	assert.Equal(t, second, out[VolumeHeaderLength:])

	// the radials still decode, they just have no site in the volume header
	ar2 := Decode(NewCursor(ldmRecord(t, second, false)), quietOptions())
	assert.False(t, ar2.Truncated)
	assert.Equal(t, "", ar2.VolumeHeader.ICAO)
	assert.Equal(t, []int{1, 2}, ar2.ListElevations())
}

func TestDecompressUncompressed(t *testing.T) {
	plain, _, _ := chunkedArchive()
	in := NewCursor(plain)

	c, chunks, err := Decompress(in, DiscardLogger())
	require.NoError(t, err)
	assert.Nil(t, chunks)
	assert.Equal(t, in, c)
}

func TestDecompressTruncated(t *testing.T) {
	plain, first, second := chunkedArchive()

	var compressed bytes.Buffer
	compressed.Write(plain[:VolumeHeaderLength])
	compressed.Write(ldmRecord(t, first, false))
	last := ldmRecord(t, second, false)
	compressed.Write(last[:len(last)/2])

	c, chunks, err := Decompress(NewCursor(compressed.Bytes()), DiscardLogger())
	assert.ErrorIs(t, err, ErrTruncatedRecord)
	assert.Len(t, chunks, 1)
	assert.Equal(t, int64(VolumeHeaderLength+len(first)), c.Size())

	// records from the complete LDM record survive
	ar2 := Decode(NewCursor(compressed.Bytes()), quietOptions())
	assert.True(t, ar2.Truncated)
	require.NotNil(t, ar2.Status)
	require.NotNil(t, ar2.VCP)
	assert.Empty(t, ar2.ListElevations())
}

func TestDecodeTagsChunks(t *testing.T) {
	plain, first, second := chunkedArchive()

	var compressed bytes.Buffer
	compressed.Write(plain[:VolumeHeaderLength])
	compressed.Write(ldmRecord(t, first, false))
	compressed.Write(ldmRecord(t, second, false))

	ar2 := Decode(NewCursor(compressed.Bytes()), quietOptions())
	require.False(t, ar2.Truncated)
	assert.Len(t, ar2.ChunkBoundaries, 2)
	assert.Equal(t, "KTLX", ar2.VolumeHeader.ICAO)

	radials, err := ar2.Radials()
	require.NoError(t, err)
	require.Len(t, radials, 2)
	for _, m31 := range radials {
		assert.Equal(t, 1, m31.Chunk)
	}

	// uncompressed archives have no chunks
	plainAr2 := Decode(NewCursor(plain), quietOptions())
	assert.Nil(t, plainAr2.ChunkBoundaries)
	radials, err = plainAr2.Radials()
	require.NoError(t, err)
	assert.Equal(t, -1, radials[0].Chunk)
}
