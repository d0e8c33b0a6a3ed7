package archive2

import (
	"fmt"
	"time"
)

// message31Pointers is the width of the data block pointer table; only the first DataBlockCount are meaningful
const message31Pointers = 9

// Message31Header is the non-data portions of Message31 (User 3.2.4.17)
type Message31Header struct {
	RadarIdentifier              [4]byte // ICAO (eg KMPX for Minneapolis)
	CollectionTime               uint32  // CollectionTime Radial data collection time in milliseconds past midnight GMT
	CollectionDate               uint16  // CollectionDate Current Julian date - 2440586.5
	AzimuthNumber                uint16  // AzimuthNumber Radial number within elevation scan
	AzimuthAngle                 float32 // AzimuthAngle Azimuth angle at which radial data was collected
	CompressionIndicator         uint8   // CompressionIndicator Indicates if message type 31 is compressed and what method of compression is used. The Data Header Block is not compressed.
	Spare                        uint8   // unused
	RadialLength                 uint16  // RadialLength Uncompressed length of the radial in bytes including the Data Header block length
	AzimuthResolutionSpacingCode uint8   // AzimuthResolutionSpacing Code for the Azimuthal spacing between adjacent radials. 1 = .5 degrees, 2 = 1degree
	RadialStatus                 uint8   // RadialStatus Radial Status
	ElevationNumber              uint8   // ElevationNumber Elevation number within volume scan
	CutSectorNumber              uint8   // CutSectorNumber Sector Number within cut
	ElevationAngle               float32 // ElevationAngle Elevation angle at which radial radar data was collected
	RadialSpotBlankingStatus     uint8   // RadialSpotBlankingStatus Spot blanking status for current radial, elevation scan and volume scan
	AzimuthIndexingMode          uint8   // AzimuthIndexingMode Azimuth indexing value (Set if azimuth angle is keyed to constant angles)
	DataBlockCount               uint16  // Number of data blocks used
}

func (h Message31Header) String() string {
	return fmt.Sprintf("Message 31 - %s @ %v deg=%.2f tilt=%.2f",
		string(h.RadarIdentifier[:]),
		h.Date(),
		h.AzimuthAngle,
		h.ElevationAngle,
	)
}

// Date and time this data is valid for
func (h Message31Header) Date() time.Time {
	return julianTime(int(h.CollectionDate), int64(h.CollectionTime))
}

// Message31 - Digital Radar Data Generic Format (User 3.2.4.17)
type Message31 struct {
	Header Message31Header

	// DataBlockPointers are byte offsets from the start of Header, one per data block
	DataBlockPointers []uint32

	// MessageSize is the size of the enclosing message in halfwords
	MessageSize uint16

	// Chunk is the LDM record the radial was decompressed from, counted within the decode that produced it. -1 when
	// the input wasn't compressed.
	Chunk int

	VolumeData    *VolumeData
	ElevationData *ElevationData
	RadialData    *RadialData
	REFData       *DataMoment
	VELData       *DataMoment
	SWData        *DataMoment
	ZDRData       *DataMoment
	PHIData       *DataMoment
	RHOData       *DataMoment
}

// MessageType is always 31
func (m *Message31) MessageType() uint8 { return 31 }

// Moment returns the decoded moment for a channel, nil when it was absent or not requested
func (m *Message31) Moment(ch Channel) *DataMoment {
	switch ch {
	case REF:
		return m.REFData
	case VEL:
		return m.VELData
	case SW:
		return m.SWData
	case ZDR:
		return m.ZDRData
	case PHI:
		return m.PHIData
	case RHO:
		return m.RHOData
	}
	return nil
}

func (m *Message31) setMoment(ch Channel, d *DataMoment) {
	switch ch {
	case REF:
		m.REFData = d
	case VEL:
		m.VELData = d
	case SW:
		m.SWData = d
	case ZDR:
		m.ZDRData = d
	case PHI:
		m.PHIData = d
	case RHO:
		m.RHOData = d
	}
}

// HasMoments is true when at least one moment channel was decoded
func (m *Message31) HasMoments() bool {
	for _, ch := range AllChannels {
		if m.Moment(ch) != nil {
			return true
		}
	}
	return false
}

// Channels lists the decoded moment channels in pointer order
func (m *Message31) Channels() []Channel {
	channels := []Channel{}
	for _, ch := range AllChannels {
		if m.Moment(ch) != nil {
			channels = append(channels, ch)
		}
	}
	return channels
}

// AzimuthResolutionSpacing returns the spacing in degrees
func (m *Message31) AzimuthResolutionSpacing() float32 {
	if m.Header.AzimuthResolutionSpacingCode == 1 {
		return 0.5
	}
	return 1
}

// StartsElevation is true for the first radial of an elevation or volume scan
func (m *Message31) StartsElevation() bool {
	switch m.Header.RadialStatus {
	case radialStatusStartOfElevationScan, radialStatusBeginningOfVolumeScan, radialStatusStartNewElevation:
		return true
	}
	return false
}

// EndsElevation is true for the last radial of an elevation or volume scan
func (m *Message31) EndsElevation() bool {
	return m.Header.RadialStatus == radialStatusEndOfElevation || m.Header.RadialStatus == radialStatusEndOfVolumeScan
}

// decodeMessage31 reads the message body of the record starting at recordOffset. Block pointers are relative to
// the Message31Header, which sits right after the CTM and message headers.
func decodeMessage31(c Cursor, recordOffset int64, msg MessageHeader, opts Options) (*Message31, error) {
	base := recordOffset + recordPrefixLength

	m31 := Message31{
		MessageSize: msg.MessageSize,
		Chunk:       -1,
	}
	if err := readAt(c, base, &m31.Header); err != nil {
		return nil, err
	}

	pointers := make([]uint32, message31Pointers)
	if err := read(c, pointers); err != nil {
		return nil, err
	}
	count := int(m31.Header.DataBlockCount)
	if count > message31Pointers {
		count = message31Pointers
	}
	m31.DataBlockPointers = pointers[:count]

	// the first three blocks are always VOL, ELV and RAD when present
	if count > 0 {
		m31.VolumeData = &VolumeData{}
		if err := readAt(c, base+int64(pointers[0]), m31.VolumeData); err != nil {
			return nil, err
		}
	}
	if count > 1 {
		m31.ElevationData = &ElevationData{}
		if err := readAt(c, base+int64(pointers[1]), m31.ElevationData); err != nil {
			return nil, err
		}
	}
	if count > 2 {
		rad, err := decodeRadialData(c, base+int64(pointers[2]))
		if err != nil {
			return nil, err
		}
		m31.RadialData = rad
	}

	for i := 3; i < count; i++ {
		ch := AllChannels[i-3]
		if !opts.wants(ch) {
			continue
		}

		// a pointer past the message means the block isn't really there
		if pointers[i] >= uint32(msg.MessageSize) {
			opts.logger().Tracef("    %s pointer %d beyond message size %d, skipped", ch, pointers[i], msg.MessageSize)
			continue
		}

		moment, err := decodeMoment(c, base+int64(pointers[i]), int(msg.MessageSize))
		if err != nil {
			return nil, fmt.Errorf("%s block: %w", ch, err)
		}
		m31.setMoment(ch, moment)
	}

	return &m31, nil
}

// VolumeData wraps information about the Volume being extracted (User 3.2.4.17.3)
type VolumeData struct {
	DataBlock
	LRTUP                          uint16 // LRTUP Size of data block in bytes
	VersionMajor                   uint8
	VersionMinor                   uint8
	Lat                            float32
	Long                           float32
	SiteHeight                     int16
	FeedhornHeight                 uint16
	CalibrationConstant            float32
	SHVTXPowerHor                  float32
	SHVTXPowerVer                  float32
	SystemDifferentialReflectivity float32
	InitialSystemDifferentialPhase float32
	VolumeCoveragePatternNumber    uint16
	ProcessingStatus               uint16
}

// ElevationData wraps Message 31 elevation data (User 3.2.4.17.4)
type ElevationData struct {
	DataBlock
	LRTUP      uint16  // LRTUP Size of data block in bytes
	ATMOS      int16   // ATMOS Atmospheric Attenuation Factor, 0.001 dB/km
	CalibConst float32 // CalibConst Scaling constant used by the Signal Processor for this elevation to calculate reflectivity
}

// AtmosphericAttenuation in dB/km
func (e ElevationData) AtmosphericAttenuation() float32 {
	return float32(e.ATMOS) / 1000
}

// radialDataLegacyLength is the radial block before the dual pol fields were added
const radialDataLegacyLength = 20

// RadialData wraps Message 31 radial data (User 3.2.4.17.5)
type RadialData struct {
	DataBlock
	LRTUP            uint16 // LRTUP Size of data block in bytes
	UnambiguousRange uint16 // UnambiguousRange, Interval Size, 0.1 km
	NoiseLevelHorz   float32
	NoiseLevelVert   float32
	NyquistVelocity  uint16 // 0.01 m/s

	// only in the extended layout, see Extended
	RadialFlags        uint16
	CalibConstHorzChan float32
	CalibConstVertChan float32
}

type radialDataLegacy struct {
	DataBlock
	LRTUP            uint16
	UnambiguousRange uint16
	NoiseLevelHorz   float32
	NoiseLevelVert   float32
	NyquistVelocity  uint16
}

// Extended is true when the block carries the radial flags and calibration constants
func (r RadialData) Extended() bool {
	return r.LRTUP > radialDataLegacyLength
}

// UnambiguousRangeKm is the unambiguous range in km
func (r RadialData) UnambiguousRangeKm() float32 {
	return float32(r.UnambiguousRange) / 10
}

// NyquistVelocityMS is the nyquist velocity in m/s
func (r RadialData) NyquistVelocityMS() float32 {
	return float32(r.NyquistVelocity) / 100
}

func decodeRadialData(c Cursor, offset int64) (*RadialData, error) {
	legacy := radialDataLegacy{}
	if err := readAt(c, offset, &legacy); err != nil {
		return nil, err
	}
	rad := RadialData{
		DataBlock:        legacy.DataBlock,
		LRTUP:            legacy.LRTUP,
		UnambiguousRange: legacy.UnambiguousRange,
		NoiseLevelHorz:   legacy.NoiseLevelHorz,
		NoiseLevelVert:   legacy.NoiseLevelVert,
		NyquistVelocity:  legacy.NyquistVelocity,
	}
	if rad.Extended() {
		tail := struct {
			RadialFlags        uint16
			CalibConstHorzChan float32
			CalibConstVertChan float32
		}{}
		if err := read(c, &tail); err != nil {
			return nil, err
		}
		rad.RadialFlags = tail.RadialFlags
		rad.CalibConstHorzChan = tail.CalibConstHorzChan
		rad.CalibConstVertChan = tail.CalibConstVertChan
	}
	return &rad, nil
}
