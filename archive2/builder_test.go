package archive2

import (
	"bytes"
	"encoding/binary"
)

// archiveBuilder assembles uncompressed archives record by record
type archiveBuilder struct {
	buf     bytes.Buffer
	offsets []int64
}

func newArchiveBuilder(icao string) *archiveBuilder {
	b := &archiveBuilder{}
	b.buf.WriteString("AR2V0006.001")
	binary.Write(&b.buf, binary.BigEndian, int32(18500))
	binary.Write(&b.buf, binary.BigEndian, int32(3600000))
	b.buf.WriteString(icao)
	return b
}

func (b *archiveBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func (b *archiveBuilder) header(msgType uint8, size uint16, seq uint16) {
	b.offsets = append(b.offsets, int64(b.buf.Len()))
	b.buf.Write(make([]byte, LegacyCTMHeaderLength))
	binary.Write(&b.buf, binary.BigEndian, MessageHeader{
		MessageSize:        size,
		MessageType:        msgType,
		IDSequenceNumber:   seq,
		JulianDate:         18500,
		MillisOfDay:        3600000,
		NumMessageSegments: 1,
		MessageSegmentNum:  1,
	})
}

// fixed writes a record occupying the full 2432 byte slot
func (b *archiveBuilder) fixed(msgType uint8, body []byte) *archiveBuilder {
	size := uint16((MessageHeaderLength + len(body) + 1) / 2)
	b.header(msgType, size, uint16(len(b.offsets)))
	b.buf.Write(body)
	b.buf.Write(make([]byte, DefaultMetadataRecordLength-recordPrefixLength-len(body)))
	return b
}

// variable writes a message 31 record, which only takes as much room as its declared size
func (b *archiveBuilder) variable(body []byte) *archiveBuilder {
	if len(body)%2 == 1 {
		body = append(body, 0)
	}
	size := uint16((MessageHeaderLength + len(body)) / 2)
	b.header(31, size, uint16(len(b.offsets)))
	b.buf.Write(body)
	return b
}

func (b *archiveBuilder) radial(r testRadial) *archiveBuilder {
	return b.variable(r.body())
}

type testMoment struct {
	wordSize uint8
	scale    float32
	offset   float32
	gates    []uint16
	// declared gate count when it differs from len(gates)
	gateCount int
	// extra bytes after the gates inside the block
	trailer []byte
}

func (m testMoment) bytes(ch Channel) []byte {
	var buf bytes.Buffer
	count := m.gateCount
	if count == 0 {
		count = len(m.gates)
	}
	wordSize := m.wordSize
	if wordSize == 0 {
		wordSize = 8
	}
	hdr := GenericDataMoment{
		NumberDataMomentGates:         uint16(count),
		DataMomentRange:               2125,
		DataMomentRangeSampleInterval: 250,
		TOVER:                         50,
		SNRThreshold:                  16,
		DataWordSize:                  wordSize,
		Scale:                         m.scale,
		Offset:                        m.offset,
	}
	hdr.DataBlockType[0] = 'D'
	copy(hdr.DataName[:], string(ch)+"  ")
	binary.Write(&buf, binary.BigEndian, hdr)
	for _, g := range m.gates {
		if wordSize == 16 {
			binary.Write(&buf, binary.BigEndian, g)
		} else {
			buf.WriteByte(byte(g))
		}
	}
	buf.Write(m.trailer)
	return buf.Bytes()
}

type testRadial struct {
	elevation uint8
	azimuth   float32
	// radial number, defaults to the half degree index of the azimuth
	number  uint16
	moments map[Channel]testMoment
	// overrides the computed data block pointer at an index
	pointers map[int]uint32
	// extra bytes at the end of the message
	padding int
}

// body lays out header, pointer table, moment blocks then the VOL, ELV and RAD blocks. Channels that aren't present
// but sit below a present one get a pointer past the end of the message.
func (r testRadial) body() []byte {
	highest := -1
	for i, ch := range AllChannels {
		if _, ok := r.moments[ch]; ok {
			highest = i
		}
	}
	dcount := 3 + highest + 1

	pointers := make([]uint32, message31Pointers)
	var blocks bytes.Buffer
	start := uint32(binary.Size(Message31Header{}) + 4*message31Pointers)

	for i := 0; i <= highest; i++ {
		ch := AllChannels[i]
		m, ok := r.moments[ch]
		if !ok {
			pointers[3+i] = 0xffff
			continue
		}
		pointers[3+i] = start + uint32(blocks.Len())
		blocks.Write(m.bytes(ch))
	}

	pointers[0] = start + uint32(blocks.Len())
	vol := VolumeData{
		LRTUP:                       44,
		VersionMajor:                1,
		Lat:                         35.333,
		Long:                        -97.278,
		SiteHeight:                  370,
		FeedhornHeight:              20,
		CalibrationConstant:         -44.5,
		VolumeCoveragePatternNumber: 212,
	}
	vol.DataBlockType[0] = 'R'
	copy(vol.DataName[:], "VOL")
	binary.Write(&blocks, binary.BigEndian, vol)

	pointers[1] = start + uint32(blocks.Len())
	elv := ElevationData{LRTUP: 12, ATMOS: -12, CalibConst: -44.1}
	elv.DataBlockType[0] = 'R'
	copy(elv.DataName[:], "ELV")
	binary.Write(&blocks, binary.BigEndian, elv)

	pointers[2] = start + uint32(blocks.Len())
	rad := RadialData{LRTUP: 28, UnambiguousRange: 4660, NoiseLevelHorz: -81.5, NoiseLevelVert: -81.2, NyquistVelocity: 2860, RadialFlags: 1, CalibConstHorzChan: -44.1, CalibConstVertChan: -44.2}
	rad.DataBlockType[0] = 'R'
	copy(rad.DataName[:], "RAD")
	binary.Write(&blocks, binary.BigEndian, rad)

	for i, p := range r.pointers {
		pointers[i] = p
	}

	number := r.number
	if number == 0 {
		number = uint16(r.azimuth * 2)
	}

	var buf bytes.Buffer
	hdr := Message31Header{
		CollectionTime:               3600000,
		CollectionDate:               18500,
		AzimuthNumber:                number,
		AzimuthAngle:                 r.azimuth,
		AzimuthResolutionSpacingCode: 1,
		ElevationNumber:              r.elevation,
		ElevationAngle:               0.5 * float32(r.elevation),
		DataBlockCount:               uint16(dcount),
	}
	copy(hdr.RadarIdentifier[:], "KTLX")
	binary.Write(&buf, binary.BigEndian, hdr)
	binary.Write(&buf, binary.BigEndian, pointers)
	buf.Write(blocks.Bytes())
	buf.Write(make([]byte, r.padding))
	return buf.Bytes()
}

func refRadial(elevation uint8, azimuth float32, gates ...uint16) testRadial {
	return testRadial{
		elevation: elevation,
		azimuth:   azimuth,
		moments: map[Channel]testMoment{
			REF: {scale: 2, offset: 64, gates: gates},
		},
	}
}

type testCut struct {
	angle    uint16
	superRes uint8
	azRate   uint16
	supp     uint16
}

func vcpBody(pattern uint16, velRes, pulse uint8, sequencing uint16, cuts ...testCut) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, vcpHeader{
		MessageSize:        uint16((24 + 46*len(cuts)) / 2),
		PatternType:        2,
		PatternNumber:      pattern,
		NumElevations:      uint16(len(cuts)),
		Version:            1,
		ClutterMapGroup:    1,
		VelocityResolution: velRes,
		PulseWidth:         pulse,
		Sequencing:         sequencing,
	})
	for _, c := range cuts {
		binary.Write(&buf, binary.BigEndian, elevationCutRecord{
			ElevationAngle:    c.angle,
			ChannelConfig:     2,
			WaveformType:      1,
			SuperResControl:   c.superRes,
			SurvPRFNumber:     1,
			SurvPRFPulseCount: 15,
			AzimuthRate:       c.azRate,
			REFThreshold:      16,
			VELThreshold:      28,
			SWThreshold:       28,
			ZDRThreshold:      28,
			PHIThreshold:      28,
			RHOThreshold:      28,
			EdgeAngle1:        0x2000,
			DopplerPRFNumber1: 8,
			DopplerPRFPulse1:  52,
			SupplementalData:  c.supp,
			EdgeAngle2:        0x4000,
			DopplerPRFNumber2: 8,
			DopplerPRFPulse2:  52,
			EdgeAngle3:        0x8000,
			DopplerPRFNumber3: 8,
			DopplerPRFPulse3:  52,
		})
	}
	return buf.Bytes()
}

func statusBody(build uint16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, Message2{RDAStatus: 4, RDABuild: build, VolumeCoveragePatternNum: -212})
	return buf.Bytes()
}
