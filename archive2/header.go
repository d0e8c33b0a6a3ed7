package archive2

import (
	"bytes"
	"fmt"
	"io"
)

// ReadArchiveHeader parses the 24 byte volume header at the start of the cursor and keeps the raw bytes.
func ReadArchiveHeader(c Cursor) (ArchiveHeader, error) {
	header := ArchiveHeader{}

	if _, err := c.Seek(0, io.SeekStart); err != nil {
		return header, err
	}
	if _, err := io.ReadFull(c, header.Raw[:]); err != nil {
		return header, fmt.Errorf("volume header: %w: %v", ErrTruncatedRecord, err)
	}

	vh := volumeHeaderRecord{}
	if err := readAt(c, 0, &vh); err != nil {
		return header, truncated("volume header", 0, err)
	}

	header.Version = string(vh.Version[:])
	header.ModifiedDate = vh.ModifiedDate
	header.ModifiedTime = vh.ModifiedTime
	header.ICAO = string(bytes.TrimRight(vh.ICAO[:], "\x00 "))
	return header, nil
}
