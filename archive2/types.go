// Package archive2 provides structs and functions for decoding NEXRAD Archive II files.
//
// The documents used and referenced in this package:
//  • RDA/RPG: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620002T.pdf (high level details)
//  • User: https://www.roc.noaa.gov/wsr88d/PublicDocs/ICDs/2620010H.pdf (bulk of the format)
package archive2

import (
	"fmt"
	"time"
)

const (
	radialStatusStartOfElevationScan   = 0
	radialStatusIntermediateRadialData = 1
	radialStatusEndOfElevation         = 2
	radialStatusBeginningOfVolumeScan  = 3
	radialStatusEndOfVolumeScan        = 4
	radialStatusStartNewElevation      = 5

	// VolumeHeaderLength is the size of the file header in front of the first record
	VolumeHeaderLength = 24

	// LegacyCTMHeaderLength sits in front of every message header
	LegacyCTMHeaderLength = 12

	// MessageHeaderLength is the size of the message header that follows the CTM header (User 3.2.4.1)
	MessageHeaderLength = 16

	// DefaultMetadataRecordLength is the size of every record regardless of its contents
	DefaultMetadataRecordLength = 2432

	// recordPrefixLength is where a message body starts relative to its record
	recordPrefixLength = LegacyCTMHeaderLength + MessageHeaderLength
)

// ArchiveHeader is the Volume Header Record for NEXRAD Archive II Data Streams (RDA/RPG 7.3.3).
type ArchiveHeader struct {
	Version      string // eg "06" from "AR2V0006"
	ModifiedDate int32  // data's valid date (julian day since 1970)
	ModifiedTime int32  // data's valid time (milliseconds past midnight)
	ICAO         string // radar identifier
	Raw          [VolumeHeaderLength]byte
}

// volumeHeaderRecord is the on-disk layout of ArchiveHeader
type volumeHeaderRecord struct {
	TapeFilename    [6]byte // "AR2V00"
	Version         [2]byte // eg "06"
	ExtensionNumber [4]byte // eg ".001" (cycles through 0-999)
	ModifiedDate    int32
	ModifiedTime    int32
	ICAO            [4]byte
}

// Filename for this archive file
func (vh ArchiveHeader) Filename() string {
	return string(vh.Raw[:12])
}

// Date and time this data is valid for
func (vh ArchiveHeader) Date() time.Time {
	return julianTime(int(vh.ModifiedDate), int64(vh.ModifiedTime))
}

// LDMRecord (Local Data Manager) wraps every radar message in bzip2 compression. (RDA/RPG 7.3.4)
type LDMRecord struct {
	Size           int32
	MetaDataRecord []byte
}

// MessageHeader provides a high level description for a particular message. (User 3.2.4.1)
type MessageHeader struct {
	MessageSize         uint16
	RDARedundantChannel uint8
	MessageType         uint8
	IDSequenceNumber    uint16
	JulianDate          uint16
	MillisOfDay         uint32
	NumMessageSegments  uint16
	MessageSegmentNum   uint16
}

// Date the message was generated
func (h MessageHeader) Date() time.Time {
	return julianTime(int(h.JulianDate), int64(h.MillisOfDay))
}

// Message is the payload attached to a Frame. It is one of *Message1, *Message2, *Message31 or *VCP.
type Message interface {
	MessageType() uint8
}

// Frame is one physical record slot of the archive.
type Frame struct {
	Offset int64
	Header MessageHeader

	// Chunk is the index of the compressed chunk the record was found in, -1 without a chunk map
	Chunk int

	// Payload is nil for message types that are not decoded
	Payload Message
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame @%d type=%d size=%d seq=%d", f.Offset, f.Header.MessageType, f.Header.MessageSize, f.Header.IDSequenceNumber)
}

// julianTime converts the modified julian date used throughout the format (day 1 is 1970-01-01)
func julianTime(date int, millis int64) time.Time {
	return time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(date-1) * time.Hour * 24).
		Add(time.Duration(millis) * time.Millisecond)
}

// See the individual messageXX.go files for message specific types.
