package archive2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var bzip2Magic = []byte("BZ")

// Decompress turns an archive made of bzip2 LDM records into one contiguous cursor laid out like an uncompressed
// archive: the 24 byte volume header followed by every decompressed record. The returned chunk boundaries are the end
// offset of each LDM record in the new cursor. Input without a compression marker comes back unchanged with no
// boundaries.
//
// Intermediate chunk files start directly with an LDM record and no volume header; an empty header is put in front
// so record offsets line up the same way.
//
// On a corrupt or cut off LDM record the records decompressed before it are returned along with the error.
func Decompress(c Cursor, log logrus.FieldLogger) (Cursor, []int64, error) {
	if _, err := c.Seek(0, io.SeekStart); err != nil {
		return c, nil, err
	}
	data, err := io.ReadAll(c)
	if err != nil {
		return c, nil, err
	}

	var out bytes.Buffer
	var start int
	switch {
	case len(data) >= VolumeHeaderLength+6 && bytes.Equal(data[VolumeHeaderLength+4:VolumeHeaderLength+6], bzip2Magic):
		out.Write(data[:VolumeHeaderLength])
		start = VolumeHeaderLength
	case len(data) >= 6 && bytes.Equal(data[4:6], bzip2Magic):
		log.Debugf("no volume header, treating as an intermediate chunk")
		out.Write(make([]byte, VolumeHeaderLength))
	default:
		return c, nil, nil
	}

	chunks := []int64{}
	for pos := start; pos+4 <= len(data); {
		ldm := LDMRecord{Size: int32(binary.BigEndian.Uint32(data[pos:]))}
		pos += 4

		// the size can be negative, but you just interpret it as positive (RDA/RPG 7.3.4)
		if ldm.Size < 0 {
			ldm.Size = -ldm.Size
		}
		if ldm.Size == 0 {
			break
		}

		log.Debugf("LDM Compressed Record (%s bytes)", color.CyanString("%d", ldm.Size))

		end := pos + int(ldm.Size)
		if end > len(data) {
			return NewCursor(out.Bytes()), chunks, fmt.Errorf("LDM record %d: %w: needs %d bytes, %d left", len(chunks), ErrTruncatedRecord, ldm.Size, len(data)-pos)
		}

		bzipReader, err := bzip2.NewReader(bytes.NewReader(data[pos:end]), nil)
		if err != nil {
			return NewCursor(out.Bytes()), chunks, fmt.Errorf("LDM record %d: %w", len(chunks), err)
		}
		if _, err := io.Copy(&out, bzipReader); err != nil {
			bzipReader.Close()
			return NewCursor(out.Bytes()), chunks, fmt.Errorf("LDM record %d: %w", len(chunks), err)
		}
		bzipReader.Close()

		chunks = append(chunks, int64(out.Len()))
		pos = end
	}

	log.Debugf("decompressed %s LDM records into %s bytes", color.CyanString("%d", len(chunks)), color.CyanString("%d", out.Len()))
	return NewCursor(out.Bytes()), chunks, nil
}
