package archive2

import (
	"encoding/binary"
	"fmt"
)

// momentHeaderLength is the size of GenericDataMoment including the block type and name; gates follow it
const momentHeaderLength = 28

// DataBlock is sort of like the header for the blocks of data (GenericDataMoment, VolumeData, etc). These 4 bytes are
// normally found at the top of tables XVII-[BEFH] (User 3.2.4.17)
type DataBlock struct {
	DataBlockType [1]byte
	DataName      [3]byte
}

// Name of the block with the trailing padding kept, eg "SW "
func (d DataBlock) Name() string {
	return string(d.DataName[:])
}

// GenericDataMoment is a generic data wrapper for momentary data. ex: REF, VEL, SW data (User 3.2.4.17.2)
type GenericDataMoment struct {
	DataBlock
	Reserved                      uint32  //
	NumberDataMomentGates         uint16  // NumberDataMomentGates Number of data moment gates for current radial
	DataMomentRange               uint16  // DataMomentRange Range to center of first range gate
	DataMomentRangeSampleInterval uint16  // DataMomentRangeSampleInterval Size of data moment sample interval
	TOVER                         uint16  // TOVER Threshold parameter which specifies the minimum difference in echo power between two resolution gates for them not to be labeled "overlayed"
	SNRThreshold                  int16   // SNRThreshold SNR threshold for valid data
	ControlFlags                  uint8   // ControlFlags Indicates special control features
	DataWordSize                  uint8   // DataWordSize Number of bits (DWS) used for storing data for each Data Moment gate
	Scale                         float32 // Scale value used to convert Data Moments from integer to floating point data
	Offset                        float32 // Offset value used to convert Data Moments from integer to floating point data
}

// FirstGateKm is the range to the center of the first gate
func (m GenericDataMoment) FirstGateKm() float32 {
	return float32(m.DataMomentRange) / 1000
}

// GateIntervalKm is the gate spacing
func (m GenericDataMoment) GateIntervalKm() float32 {
	return float32(m.DataMomentRangeSampleInterval) / 1000
}

// RangeFoldingThreshold in dB
func (m GenericDataMoment) RangeFoldingThreshold() float32 {
	return float32(m.TOVER) / 10
}

// SNRThresholdDB in dB
func (m GenericDataMoment) SNRThresholdDB() float32 {
	return float32(m.SNRThreshold) / 1000
}

// DataMoment wraps all Momentary data records. ex: REF, VEL, SW data. Data interpretation provided by User 3.2.4.17.6.
type DataMoment struct {
	GenericDataMoment

	// Data holds one raw word per gate actually read, which can be fewer than NumberDataMomentGates when the
	// block is clipped by the message size.
	Data []uint16
}

const (
	// MomentDataBelowThreshold ...
	MomentDataBelowThreshold = 999

	// MomentDataFolded ...
	MomentDataFolded = 998
)

// Gate is one decoded range bin.
type Gate struct {
	Raw   uint16
	Value float32 // zero unless Valid
}

// Valid is false for the two reserved codes
func (g Gate) Valid() bool { return g.Raw > 1 }

// BelowThreshold is raw code 0
func (g Gate) BelowThreshold() bool { return g.Raw == 0 }

// RangeFolded is raw code 1
func (g Gate) RangeFolded() bool { return g.Raw == 1 }

func (g Gate) String() string {
	switch g.Raw {
	case 0:
		return "below-threshold"
	case 1:
		return "range-folded"
	}
	return fmt.Sprintf("%g", g.Value)
}

// Gates returns the physical value of every gate read. For all data moment integer values N = 0 indicates
// received signal is below threshold and N = 1 indicates range folded data; neither is scaled.
func (d *DataMoment) Gates() []Gate {
	gates := make([]Gate, len(d.Data))
	for idx, val := range d.Data {
		gates[idx].Raw = val
		if val > 1 {
			gates[idx].Value = scaleUint(val, d.Offset, d.Scale)
		}
	}
	return gates
}

// ScaledData automatically scales the nexrad moment values to their actual values.
// For all data moment integer values N = 0 indicates received signal is below
// threshold and N = 1 indicates range folded data. Actual data range is N = 2
// through 255, or 1023 for data resolution size 8, and 10 bits respectively.
func (d *DataMoment) ScaledData() []float32 {
	scaledData := make([]float32, len(d.Data))
	for idx, val := range d.Data {
		if val == 0 {
			// below threshold
			scaledData[idx] = MomentDataBelowThreshold
		} else if val == 1 {
			// range folded
			scaledData[idx] = MomentDataFolded
		} else {
			scaledData[idx] = scaleUint(val, d.GenericDataMoment.Offset, d.GenericDataMoment.Scale)
		}
	}
	return scaledData
}

// scaleUint converts unsigned integer data that can be converted to floating point
// data using the Scale and Offset fields, i.e., F = (N - OFFSET) / SCALE where
// N is the integer data value and F is the resulting floating point value. A
// scale value of 0 indicates floating point moment data for each range gate.
func scaleUint(n uint16, offset, scale float32) float32 {
	val := float32(n)
	if scale == 0 {
		return val
	}
	return (val - offset) / scale
}

// decodeMoment reads a moment block starting at blockOffset. messageSize bounds the gate loop the same way the
// pointer table is bounded: the block relative index never reaches it.
func decodeMoment(c Cursor, blockOffset int64, messageSize int) (*DataMoment, error) {
	m := GenericDataMoment{}
	if err := readAt(c, blockOffset, &m); err != nil {
		return nil, err
	}

	stride := 1
	if m.DataWordSize == 16 {
		stride = 2
	}

	end := momentHeaderLength + int(m.NumberDataMomentGates)*stride
	if messageSize < end {
		end = messageSize
	}

	count := 0
	if end > momentHeaderLength {
		count = (end - momentHeaderLength + stride - 1) / stride
	}

	raw := make([]byte, count*stride)
	if err := read(c, raw); err != nil {
		return nil, err
	}

	data := make([]uint16, count)
	for i := range data {
		if stride == 2 {
			data[i] = binary.BigEndian.Uint16(raw[i*2:])
		} else {
			data[i] = uint16(raw[i])
		}
	}

	return &DataMoment{GenericDataMoment: m, Data: data}, nil
}
