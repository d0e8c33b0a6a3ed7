package archive2

import (
	"errors"
	"fmt"
)

var (
	// ErrEndOfArchive is returned by the frame reader once the next record would start past the buffer. It is
	// the normal end of a decode pass.
	ErrEndOfArchive = errors.New("end of archive")

	// ErrTruncatedRecord means a record ran past the end of the buffer.
	ErrTruncatedRecord = errors.New("truncated record")

	// ErrInvalidSelector is wrapped by every SelectorError.
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrEmptyVolume is returned by accessors when no scans could be decoded at all.
	ErrEmptyVolume = errors.New("no data found in archive")
)

// SelectorError reports an accessor called with an elevation, scan or field that is not in the decoded volume.
type SelectorError struct {
	Accessor  string
	Elevation int
	Scan      int // -1 when the accessor spans every scan
	Reason    string
}

func (e *SelectorError) Error() string {
	if e.Scan < 0 {
		return fmt.Sprintf("%s: %s (elevation %d)", e.Accessor, e.Reason, e.Elevation)
	}
	return fmt.Sprintf("%s: %s (elevation %d, scan %d)", e.Accessor, e.Reason, e.Elevation, e.Scan)
}

func (e *SelectorError) Unwrap() error {
	return ErrInvalidSelector
}

func truncated(what string, offset int64, err error) error {
	return fmt.Errorf("%s @%d: %w: %v", what, offset, ErrTruncatedRecord, err)
}
