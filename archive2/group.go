package archive2

import "sort"

// ElevationGroup is one sweep: every radial that carried the same elevation number, in file order.
type ElevationGroup struct {
	ElevationNumber int
	Scans           []*Message31
}

// GroupScans buckets radials by the elevation number in their header and orders the buckets by ascending elevation
// number. Radials within a bucket keep their input order, which is azimuth order for a sweep.
func GroupScans(scans []*Message31) []ElevationGroup {
	index := map[int]int{}
	groups := []ElevationGroup{}

	for _, scan := range scans {
		elv := int(scan.Header.ElevationNumber)
		i, ok := index[elv]
		if !ok {
			i = len(groups)
			index[elv] = i
			groups = append(groups, ElevationGroup{ElevationNumber: elv})
		}
		groups[i].Scans = append(groups[i].Scans, scan)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Scans[0].Header.ElevationNumber < groups[b].Scans[0].Header.ElevationNumber
	})
	return groups
}

// radialGaps reports whether radial numbers skip within any group. A group may start anywhere, which is how a
// chunk that picks up mid sweep looks.
func radialGaps(groups []ElevationGroup) bool {
	for _, g := range groups {
		for i := 1; i < len(g.Scans); i++ {
			if g.Scans[i].Header.AzimuthNumber != g.Scans[i-1].Header.AzimuthNumber+1 {
				return true
			}
		}
	}
	return false
}
