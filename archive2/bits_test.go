package archive2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBits(t *testing.T) {
	assert.Equal(t, uint16(0x1f), parseBits(0xffff, 0, 4))
	assert.Equal(t, uint16(2), parseBits(0x0040, 5, 6))
	assert.Equal(t, uint16(5), parseBits(0b1010, 1, 3))
	assert.Equal(t, uint16(0), parseBits(0xff00, 0, 7))
	assert.True(t, bit(0x2000, 13))
	assert.False(t, bit(0x2000, 14))
}

func TestParse360Angle(t *testing.T) {
	tests := []struct {
		raw  uint16
		want float64
	}{
		{0x0000, 0},
		{0x8000, 180},
		{0x4000, 90},
		{0xc000, 270},
		{0x0008, 180.0 / 4096},
		// bits 0-2 are unused
		{0x0007, 0},
		{0xfff8, 360 - 180.0/4096},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, parse360Angle(tt.raw), 1e-9, "raw %#04x", tt.raw)
	}
}

func TestParse360AngleMatchesLegacyCoding(t *testing.T) {
	for raw := 0; raw <= 0xffff; raw += 37 {
		assert.InDelta(t, float64(legacyAngle(uint16(raw))), parse360Angle(uint16(raw)), 1e-3)
	}
}

func TestParseAzimuthRate(t *testing.T) {
	assert.Equal(t, 0.0, parseAzimuthRate(0))
	assert.InDelta(t, 22.5, parseAzimuthRate(0x4000), 1e-9)
	assert.InDelta(t, -22.5, parseAzimuthRate(0xc000), 1e-9)
	assert.InDelta(t, 11.25+22.5/2048, parseAzimuthRate(0x2008), 1e-9)
	assert.InDelta(t, -(22.5+11.25), parseAzimuthRate(0xe000), 1e-9)
}

func TestPackedFlags(t *testing.T) {
	sr := superResolution(0b1011)
	assert.Equal(t, SuperResolution{HalfDegreeAzimuth: true, QuarterKm: true, DualPol300km: true}, sr)

	supp := supplementalData(0b110_1011_0011)
	assert.Equal(t, SupplementalData{
		SAILSCut:      true,
		SAILSSequence: 1,
		MRLECut:       true,
		MRLESequence:  5,
		MPDACut:       true,
		BaseTiltCut:   true,
	}, supp)

	seq := vcpSequencing(0x6000 | 0x40 | 7)
	assert.Equal(t, VCPSequencing{Elevations: 7, MaxSAILSCuts: 2, SequenceActive: true, TruncatedVCP: true}, seq)

	assert.Equal(t, float32(0.5), velocityResolution(2))
	assert.Equal(t, float32(1.0), velocityResolution(4))
	assert.Equal(t, "short", pulseWidth(2))
	assert.Equal(t, "long", pulseWidth(0))
}
