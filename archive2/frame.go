package archive2

import (
	"fmt"
	"sort"
)

// RecordOffset is where record number `record` starts once `correction` bytes of message 31 size drift have
// accumulated. Every record nominally takes DefaultMetadataRecordLength bytes (RDA/RPG 7.3.5), message 31 doesn't.
func RecordOffset(record int, correction int64) int64 {
	return int64(record)*DefaultMetadataRecordLength + VolumeHeaderLength + correction
}

// message31Drift is how far a message 31 record moves every following record away from the fixed stride
func message31Drift(messageSize uint16) int64 {
	return int64(messageSize)*2 + LegacyCTMHeaderLength - DefaultMetadataRecordLength
}

// DecodeFrame decodes record number `record` given the correction accumulated before it, and returns the frame
// along with the correction for the next record. ErrEndOfArchive is returned when the record would start past the
// end of the cursor.
func DecodeFrame(c Cursor, record int, correction int64, opts Options) (*Frame, int64, error) {
	offset := RecordOffset(record, correction)
	if offset >= c.Size() {
		return nil, correction, ErrEndOfArchive
	}

	frame := Frame{Offset: offset, Chunk: -1}
	if err := readAt(c, offset+LegacyCTMHeaderLength, &frame.Header); err != nil {
		return nil, correction, truncated("message header", offset, err)
	}

	var err error
	switch frame.Header.MessageType {
	case 31:
		frame.Payload, err = decodeMessage31(c, offset, frame.Header, opts)
		correction += message31Drift(frame.Header.MessageSize)
	case 1:
		frame.Payload, err = decodeMessage1(c, offset, opts)
	case 2:
		frame.Payload, err = decodeMessage2(c, offset)
	case 5, 7:
		frame.Payload, err = decodeVCP(c, offset, frame.Header.MessageType)
	}
	if err != nil {
		return nil, correction, truncated(fmt.Sprintf("message %d", frame.Header.MessageType), offset, err)
	}

	return &frame, correction, nil
}

// FrameReader walks the records of an archive in order. It can't be restarted: every record's position depends
// on the sizes of the message 31 records before it.
type FrameReader struct {
	c          Cursor
	opts       Options
	chunks     []int64
	record     int
	correction int64
	err        error
}

// NewFrameReader reads from the first record after the volume header
func NewFrameReader(c Cursor, opts Options) *FrameReader {
	return &FrameReader{c: c, opts: opts}
}

// WithChunkBoundaries tags frames with the chunk they start in, chunks[i] being the end offset of chunk i
func (fr *FrameReader) WithChunkBoundaries(chunks []int64) *FrameReader {
	fr.chunks = chunks
	return fr
}

// Next returns the next frame. Once it returns an error (ErrEndOfArchive included) every later call returns it again.
func (fr *FrameReader) Next() (*Frame, error) {
	if fr.err != nil {
		return nil, fr.err
	}

	frame, correction, err := DecodeFrame(fr.c, fr.record, fr.correction, fr.opts)
	if err != nil {
		fr.err = err
		return nil, err
	}
	fr.record++
	fr.correction = correction

	if fr.chunks != nil {
		frame.Chunk = chunkIndex(fr.chunks, frame.Offset)
		if m31, ok := frame.Payload.(*Message31); ok {
			m31.Chunk = frame.Chunk
		}
	}
	return frame, nil
}

// Record is the number of frames returned so far
func (fr *FrameReader) Record() int { return fr.record }

// Correction accumulated so far
func (fr *FrameReader) Correction() int64 { return fr.correction }

func chunkIndex(chunks []int64, offset int64) int {
	return sort.Search(len(chunks), func(i int) bool { return offset < chunks[i] })
}
