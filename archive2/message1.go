package archive2

import "time"

// legacy moments are always 8 bit with fixed conversions (User 3.2.4.1, table III)
const (
	legacyReflectivityScale  = 2
	legacyReflectivityOffset = 66
	legacyDopplerOffset      = 129
)

// Message1Header is the fixed 100 byte part of Message 1, Digital Radar Data (User 3.2.4.1, table III)
type Message1Header struct {
	CollectionTime             uint32  // milliseconds past midnight GMT
	CollectionDate             uint16  // modified julian date
	UnambiguousRange           uint16  // 0.1 km
	AzimuthAngle               uint16  // coded angle
	AzimuthNumber              uint16  // radial number within elevation scan
	RadialStatus               uint16  // see radialStatus constants
	ElevationAngle             uint16  // coded angle
	ElevationNumber            uint16  // elevation number within volume scan
	SurveillanceFirstGateRange int16   // meters
	DopplerFirstGateRange      int16   // meters
	SurveillanceGateInterval   uint16  // meters
	DopplerGateInterval        uint16  // meters
	SurveillanceGateCount      uint16  //
	DopplerGateCount           uint16  //
	CutSectorNumber            uint16  //
	CalibrationConstant        float32 // dB
	SurveillancePointer        uint16  // byte offset of reflectivity data from the start of this header
	VelocityPointer            uint16  // byte offset of velocity data from the start of this header
	SpectrumWidthPointer       uint16  // byte offset of spectrum width data from the start of this header
	VelocityResolution         uint16  // 2 = 0.5 m/s, 4 = 1.0 m/s
	VolumeCoveragePatternNum   uint16
	_                          [4]uint16
	PlaybackPointers           [3]uint16
	NyquistVelocity            uint16 // 0.01 m/s
	AtmosphericAttenuation     int16  // 0.001 dB/km
	TOVER                      uint16 // 0.1 dB
	SpotBlankingStatus         uint16
	_                          [32]byte
}

// Message1 - Digital Radar Data, the pre-build 10 radial format
type Message1 struct {
	Header Message1Header

	REFData *DataMoment
	VELData *DataMoment
	SWData  *DataMoment
}

// MessageType is always 1
func (m *Message1) MessageType() uint8 { return 1 }

// Date and time this radial was collected
func (m *Message1) Date() time.Time {
	return julianTime(int(m.Header.CollectionDate), int64(m.Header.CollectionTime))
}

// Azimuth in degrees
func (m *Message1) Azimuth() float32 {
	return legacyAngle(m.Header.AzimuthAngle)
}

// Elevation in degrees
func (m *Message1) Elevation() float32 {
	return legacyAngle(m.Header.ElevationAngle)
}

// decodeMessage1 reads the fixed layout and the three legacy moments. Pointers of 0 mean the moment is absent.
func decodeMessage1(c Cursor, recordOffset int64, opts Options) (*Message1, error) {
	base := recordOffset + recordPrefixLength

	m1 := Message1{}
	if err := readAt(c, base, &m1.Header); err != nil {
		return nil, err
	}
	h := m1.Header

	velocityScale := float32(2)
	if h.VelocityResolution == 4 {
		velocityScale = 1
	}

	var err error
	if opts.wants(REF) && h.SurveillancePointer > 0 {
		m1.REFData, err = decodeLegacyMoment(c, base+int64(h.SurveillancePointer), "REF", h.SurveillanceGateCount,
			h.SurveillanceFirstGateRange, h.SurveillanceGateInterval, legacyReflectivityScale, legacyReflectivityOffset)
		if err != nil {
			return nil, err
		}
	}
	if opts.wants(VEL) && h.VelocityPointer > 0 {
		m1.VELData, err = decodeLegacyMoment(c, base+int64(h.VelocityPointer), "VEL", h.DopplerGateCount,
			h.DopplerFirstGateRange, h.DopplerGateInterval, velocityScale, legacyDopplerOffset)
		if err != nil {
			return nil, err
		}
	}
	if opts.wants(SW) && h.SpectrumWidthPointer > 0 {
		m1.SWData, err = decodeLegacyMoment(c, base+int64(h.SpectrumWidthPointer), "SW ", h.DopplerGateCount,
			h.DopplerFirstGateRange, h.DopplerGateInterval, 2, legacyDopplerOffset)
		if err != nil {
			return nil, err
		}
	}

	return &m1, nil
}

func decodeLegacyMoment(c Cursor, offset int64, name string, gates uint16, firstGate int16, interval uint16, scale, off float32) (*DataMoment, error) {
	raw := make([]byte, gates)
	if err := readAt(c, offset, raw); err != nil {
		return nil, err
	}

	m := DataMoment{
		GenericDataMoment: GenericDataMoment{
			NumberDataMomentGates:         gates,
			DataMomentRange:               uint16(firstGate),
			DataMomentRangeSampleInterval: interval,
			DataWordSize:                  8,
			Scale:                         scale,
			Offset:                        off,
		},
		Data: make([]uint16, len(raw)),
	}
	m.DataBlockType[0] = 'D'
	copy(m.DataName[:], name)
	for i, b := range raw {
		m.Data[i] = uint16(b)
	}
	return &m, nil
}
