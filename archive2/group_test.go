package archive2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(elevation uint8, azimuth float32) *Message31 {
	return &Message31{Header: Message31Header{ElevationNumber: elevation, AzimuthAngle: azimuth}}
}

func TestGroupScans(t *testing.T) {
	scans := []*Message31{
		scan(3, 10),
		scan(1, 20),
		scan(3, 5),
		scan(2, 30),
		scan(1, 1),
		scan(3, 7),
	}

	groups := GroupScans(scans)
	require.Len(t, groups, 3)

	assert.Equal(t, 1, groups[0].ElevationNumber)
	assert.Equal(t, 2, groups[1].ElevationNumber)
	assert.Equal(t, 3, groups[2].ElevationNumber)

	// input order is kept inside a group, azimuths are not sorted
	assert.Equal(t, []*Message31{scans[1], scans[4]}, groups[0].Scans)
	assert.Equal(t, []*Message31{scans[3]}, groups[1].Scans)
	assert.Equal(t, []*Message31{scans[0], scans[2], scans[5]}, groups[2].Scans)
}

func TestGroupScansEmpty(t *testing.T) {
	assert.Empty(t, GroupScans(nil))
}

func TestGroupScansSparseElevations(t *testing.T) {
	groups := GroupScans([]*Message31{scan(9, 0), scan(4, 0), scan(12, 0)})
	require.Len(t, groups, 3)
	assert.Equal(t, []int{4, 9, 12}, []int{groups[0].ElevationNumber, groups[1].ElevationNumber, groups[2].ElevationNumber})
}

func numbered(elevation uint8, numbers ...uint16) []*Message31 {
	scans := make([]*Message31, len(numbers))
	for i, n := range numbers {
		scans[i] = &Message31{Header: Message31Header{ElevationNumber: elevation, AzimuthNumber: n}}
	}
	return scans
}

func TestRadialGaps(t *testing.T) {
	tests := []struct {
		name  string
		scans []*Message31
		gaps  bool
	}{
		{"consecutive", numbered(1, 1, 2, 3), false},
		{"starts mid sweep", numbered(2, 241, 242), false},
		{"skipped radial", numbered(1, 1, 2, 4), true},
		{"repeated radial", numbered(1, 5, 5), true},
		{"each elevation restarts", append(numbered(1, 1, 2), numbered(2, 1, 2)...), false},
		{"single radials", append(numbered(1, 9), numbered(3, 700)...), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.gaps, radialGaps(GroupScans(tt.scans)))
		})
	}
}
