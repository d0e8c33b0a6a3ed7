package archive2

import "fmt"

// vcpHeader is the fixed prefix of Message 5/7, Volume Coverage Pattern Data (User 3.2.4.11, table XI)
type vcpHeader struct {
	MessageSize        uint16
	PatternType        uint16
	PatternNumber      uint16
	NumElevations      uint16
	Version            uint8
	ClutterMapGroup    uint8
	VelocityResolution uint8
	PulseWidth         uint8
	_                  uint32
	Sequencing         uint16
	Supplemental       uint16
	_                  uint16
}

// elevationCutRecord is one 46 byte elevation cut of a VCP
type elevationCutRecord struct {
	ElevationAngle    uint16
	ChannelConfig     uint8
	WaveformType      uint8
	SuperResControl   uint8
	SurvPRFNumber     uint8
	SurvPRFPulseCount uint16
	AzimuthRate       uint16
	REFThreshold      int16
	VELThreshold      int16
	SWThreshold       int16
	ZDRThreshold      int16
	PHIThreshold      int16
	RHOThreshold      int16
	EdgeAngle1        uint16
	DopplerPRFNumber1 uint16
	DopplerPRFPulse1  uint16
	SupplementalData  uint16
	EdgeAngle2        uint16
	DopplerPRFNumber2 uint16
	DopplerPRFPulse2  uint16
	EBCAngle          uint16
	EdgeAngle3        uint16
	DopplerPRFNumber3 uint16
	DopplerPRFPulse3  uint16
	_                 uint16
}

// VCPSequencing is the packed sequencing word of the VCP header
type VCPSequencing struct {
	Elevations     int
	MaxSAILSCuts   int
	SequenceActive bool
	TruncatedVCP   bool
}

// SuperResolution control flags of an elevation cut
type SuperResolution struct {
	HalfDegreeAzimuth bool
	QuarterKm         bool
	Range300km        bool
	DualPol300km      bool
}

// SupplementalData flags of an elevation cut
type SupplementalData struct {
	SAILSCut      bool
	SAILSSequence int
	MRLECut       bool
	MRLESequence  int
	MPDACut       bool
	BaseTiltCut   bool
}

// SectorPRF describes one of the three doppler azimuth sectors of a cut
type SectorPRF struct {
	EdgeAngle  float64
	PRFNumber  uint16
	PulseCount uint16
}

// Thresholds are the SNR thresholds per moment, raw (0.125 dB)
type Thresholds struct {
	REF int16
	VEL int16
	SW  int16
	ZDR int16
	PHI int16
	RHO int16
}

// ElevationCut is one tilt of a VCP
type ElevationCut struct {
	ElevationAngle    float64
	ChannelConfig     uint8
	WaveformType      uint8
	SuperResolution   SuperResolution
	SurvPRFNumber     uint8
	SurvPRFPulseCount uint16
	AzimuthRate       float64 // deg/s, negative is counter clockwise
	Thresholds        Thresholds
	Sectors           [3]SectorPRF
	Supplemental      SupplementalData
	EBCAngle          float64
}

// VCP is the Volume Coverage Pattern carried by messages 5 and 7
type VCP struct {
	Type               uint8 // 5 or 7
	MessageSize        uint16
	PatternType        uint16
	PatternNumber      uint16
	NumElevations      uint16
	Version            uint8
	ClutterMapGroup    uint8
	VelocityResolution float32 // m/s
	PulseWidth         string  // "short" or "long"
	Sequencing         VCPSequencing
	SupplementalRaw    uint16
	Elevations         []ElevationCut
}

// MessageType is 5 or 7
func (v *VCP) MessageType() uint8 { return v.Type }

func (v *VCP) String() string {
	return fmt.Sprintf("VCP %d (%d elevations, %s pulse, %.1f m/s)", v.PatternNumber, v.NumElevations, v.PulseWidth, v.VelocityResolution)
}

func velocityResolution(raw uint8) float32 {
	if raw == 2 {
		return 0.5
	}
	return 1.0
}

func pulseWidth(raw uint8) string {
	if raw == 2 {
		return "short"
	}
	return "long"
}

func vcpSequencing(raw uint16) VCPSequencing {
	return VCPSequencing{
		Elevations:     int(parseBits(raw, 0, 4)),
		MaxSAILSCuts:   int(parseBits(raw, 5, 6)),
		SequenceActive: bit(raw, 13),
		TruncatedVCP:   bit(raw, 14),
	}
}

func superResolution(raw uint8) SuperResolution {
	r := uint16(raw)
	return SuperResolution{
		HalfDegreeAzimuth: bit(r, 0),
		QuarterKm:         bit(r, 1),
		Range300km:        bit(r, 2),
		DualPol300km:      bit(r, 3),
	}
}

func supplementalData(raw uint16) SupplementalData {
	return SupplementalData{
		SAILSCut:      bit(raw, 0),
		SAILSSequence: int(parseBits(raw, 1, 3)),
		MRLECut:       bit(raw, 4),
		MRLESequence:  int(parseBits(raw, 5, 7)),
		MPDACut:       bit(raw, 9),
		BaseTiltCut:   bit(raw, 10),
	}
}

func decodeVCP(c Cursor, recordOffset int64, msgType uint8) (*VCP, error) {
	h := vcpHeader{}
	if err := readAt(c, recordOffset+recordPrefixLength, &h); err != nil {
		return nil, err
	}

	vcp := VCP{
		Type:               msgType,
		MessageSize:        h.MessageSize,
		PatternType:        h.PatternType,
		PatternNumber:      h.PatternNumber,
		NumElevations:      h.NumElevations,
		Version:            h.Version,
		ClutterMapGroup:    h.ClutterMapGroup,
		VelocityResolution: velocityResolution(h.VelocityResolution),
		PulseWidth:         pulseWidth(h.PulseWidth),
		Sequencing:         vcpSequencing(h.Sequencing),
		SupplementalRaw:    h.Supplemental,
		Elevations:         make([]ElevationCut, 0, h.NumElevations),
	}

	for i := 0; i < int(h.NumElevations); i++ {
		e := elevationCutRecord{}
		if err := read(c, &e); err != nil {
			return nil, fmt.Errorf("elevation cut %d: %w", i+1, err)
		}

		vcp.Elevations = append(vcp.Elevations, ElevationCut{
			ElevationAngle:    parse360Angle(e.ElevationAngle),
			ChannelConfig:     e.ChannelConfig,
			WaveformType:      e.WaveformType,
			SuperResolution:   superResolution(e.SuperResControl),
			SurvPRFNumber:     e.SurvPRFNumber,
			SurvPRFPulseCount: e.SurvPRFPulseCount,
			AzimuthRate:       parseAzimuthRate(e.AzimuthRate),
			Thresholds: Thresholds{
				REF: e.REFThreshold,
				VEL: e.VELThreshold,
				SW:  e.SWThreshold,
				ZDR: e.ZDRThreshold,
				PHI: e.PHIThreshold,
				RHO: e.RHOThreshold,
			},
			Sectors: [3]SectorPRF{
				{EdgeAngle: parse360Angle(e.EdgeAngle1), PRFNumber: e.DopplerPRFNumber1, PulseCount: e.DopplerPRFPulse1},
				{EdgeAngle: parse360Angle(e.EdgeAngle2), PRFNumber: e.DopplerPRFNumber2, PulseCount: e.DopplerPRFPulse2},
				{EdgeAngle: parse360Angle(e.EdgeAngle3), PRFNumber: e.DopplerPRFNumber3, PulseCount: e.DopplerPRFPulse3},
			},
			Supplemental: supplementalData(e.SupplementalData),
			EBCAngle:     parse360Angle(e.EBCAngle),
		})
	}

	return &vcp, nil
}
