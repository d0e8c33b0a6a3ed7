// Package testarchive writes small uncompressed Level II archives for tests outside the archive2 package.
package testarchive

import (
	"bytes"
	"encoding/binary"

	"github.com/dsnet/compress/bzip2"
	"github.com/jddeal/nexrad-level2/archive2"
)

// Builder appends records to an archive. Only reflectivity is written.
type Builder struct {
	buf bytes.Buffer
}

// New starts an archive for the given site, collected 2020-08-25 01:00 UTC
func New(icao string) *Builder {
	b := &Builder{}
	b.buf.WriteString("AR2V0006.001")
	binary.Write(&b.buf, binary.BigEndian, int32(18500))
	binary.Write(&b.buf, binary.BigEndian, int32(3600000))
	b.buf.WriteString(icao)
	return b
}

// Bytes returns the archive built so far
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// Radial appends a message 31 radial with raw reflectivity gates (scale 2, offset 66). Radials are numbered by
// half degree of azimuth, so 0.5 and 1.0 are consecutive.
func (b *Builder) Radial(elevation uint8, azimuth float32, gates ...uint8) *Builder {
	var blocks bytes.Buffer
	start := uint32(binary.Size(archive2.Message31Header{}) + 4*9)

	ref := archive2.GenericDataMoment{
		NumberDataMomentGates:         uint16(len(gates)),
		DataMomentRange:               2125,
		DataMomentRangeSampleInterval: 250,
		DataWordSize:                  8,
		Scale:                         2,
		Offset:                        66,
	}
	ref.DataBlockType[0] = 'D'
	copy(ref.DataName[:], "REF")
	binary.Write(&blocks, binary.BigEndian, ref)
	blocks.Write(gates)

	pointers := make([]uint32, 9)
	pointers[3] = start

	pointers[0] = start + uint32(blocks.Len())
	vol := archive2.VolumeData{LRTUP: 44, Lat: 35.333, Long: -97.278, SiteHeight: 370, VolumeCoveragePatternNumber: 212}
	vol.DataBlockType[0] = 'R'
	copy(vol.DataName[:], "VOL")
	binary.Write(&blocks, binary.BigEndian, vol)

	pointers[1] = start + uint32(blocks.Len())
	elv := archive2.ElevationData{LRTUP: 12}
	elv.DataBlockType[0] = 'R'
	copy(elv.DataName[:], "ELV")
	binary.Write(&blocks, binary.BigEndian, elv)

	pointers[2] = start + uint32(blocks.Len())
	rad := archive2.RadialData{LRTUP: 28, UnambiguousRange: 4660, NyquistVelocity: 2860}
	rad.DataBlockType[0] = 'R'
	copy(rad.DataName[:], "RAD")
	binary.Write(&blocks, binary.BigEndian, rad)

	var body bytes.Buffer
	hdr := archive2.Message31Header{
		CollectionTime:               3600000,
		CollectionDate:               18500,
		AzimuthNumber:                uint16(azimuth * 2),
		AzimuthAngle:                 azimuth,
		AzimuthResolutionSpacingCode: 1,
		ElevationNumber:              elevation,
		ElevationAngle:               0.5 * float32(elevation),
		DataBlockCount:               4,
	}
	copy(hdr.RadarIdentifier[:], "KTLX")
	binary.Write(&body, binary.BigEndian, hdr)
	binary.Write(&body, binary.BigEndian, pointers)
	body.Write(blocks.Bytes())
	// keeps every pointer below the message size, which is counted in halfwords
	body.Write(make([]byte, 200))
	if body.Len()%2 == 1 {
		body.WriteByte(0)
	}

	b.buf.Write(make([]byte, archive2.LegacyCTMHeaderLength))
	binary.Write(&b.buf, binary.BigEndian, archive2.MessageHeader{
		MessageSize:        uint16((archive2.MessageHeaderLength + body.Len()) / 2),
		MessageType:        31,
		JulianDate:         18500,
		MillisOfDay:        3600000,
		NumMessageSegments: 1,
		MessageSegmentNum:  1,
	})
	b.buf.Write(body.Bytes())
	return b
}

// Compress turns an uncompressed archive into a volume header followed by one LDM record
func Compress(archive []byte) ([]byte, error) {
	var compressed bytes.Buffer
	w, err := bzip2.NewWriter(&compressed, nil)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(archive[archive2.VolumeHeaderLength:]); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(archive[:archive2.VolumeHeaderLength])
	binary.Write(&out, binary.BigEndian, int32(compressed.Len()))
	out.Write(compressed.Bytes())
	return out.Bytes(), nil
}

// Chunk compresses the records of an archive into a headerless LDM record, the way intermediate chunks are stored
func Chunk(archive []byte) ([]byte, error) {
	compressed, err := Compress(archive)
	if err != nil {
		return nil, err
	}
	return compressed[archive2.VolumeHeaderLength:], nil
}
