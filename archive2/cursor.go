package archive2

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Cursor is the positioned, big-endian byte source every decoder reads from. *bytes.Reader satisfies it.
type Cursor interface {
	io.ReadSeeker
	Size() int64
}

// NewCursor wraps an in-memory archive
func NewCursor(data []byte) Cursor {
	return bytes.NewReader(data)
}

// readAt seeks to an absolute offset and fills v from the big-endian bytes found there
func readAt(c Cursor, offset int64, v interface{}) error {
	if _, err := c.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	return read(c, v)
}

func read(c Cursor, v interface{}) error {
	err := binary.Read(c, binary.BigEndian, v)
	if err == io.EOF {
		// nothing at all was left, which inside a record is as truncated as a partial read
		return io.ErrUnexpectedEOF
	}
	return err
}
