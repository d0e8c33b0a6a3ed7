package archive2

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
)

// Archive2 wrapper for processed archive 2 data files.
type Archive2 struct {
	VolumeHeader ArchiveHeader

	// VCP is the last volume coverage pattern message seen
	VCP *VCP

	// the metadata record will contain a single Message Type 2 which comes in handy
	// in other parts of the decoding for version-specific handling.
	Status *Message2

	// LegacyRadials are message 1 radials, only found in files from before build 10
	LegacyRadials []*Message1

	// ChunkBoundaries are the end offsets of each LDM record after decompression, nil for uncompressed input
	ChunkBoundaries []int64

	// Truncated is set when decoding stopped on a record that ran past the end of the data
	Truncated bool

	// HasGaps is set when radial numbers skip within an elevation, or when a chunk of a combined volume was missing
	HasGaps bool

	scans  []*Message31
	groups []ElevationGroup

	elevation int
	scan      int
}

// NewArchive2 returns a new Archive2 from the provided reader
func NewArchive2(reader io.Reader, opts Options) (*Archive2, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return Decode(NewCursor(data), opts), nil
}

// NewArchive2FromFile decodes the archive stored in filename
func NewArchive2FromFile(filename string, opts Options) (*Archive2, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return NewArchive2(file, opts)
}

// Decode runs one pass over the cursor. It never fails: anything that goes wrong past the volume header leaves the
// records decoded so far in place and sets Truncated. An archive with no usable radials reports ErrEmptyVolume from
// its accessors.
func Decode(c Cursor, opts Options) *Archive2 {
	log := opts.logger()
	ar2 := &Archive2{}

	// the gist of the file format is documented in RDA/RPG 7.3.6
	// but in short:
	//  - read in 24 byte Volume Header
	//  - read in 1 LDM Compressed Record - this is the metadata record
	//  - read in N LDM Compressed Records - these are the data records
	// compressed files are inflated up front so every record can be addressed by offset
	decompressed, chunks, err := Decompress(c, log)
	if err != nil {
		log.Warnf("decompression stopped early: %v", err)
		ar2.Truncated = true
	}
	c = decompressed
	ar2.ChunkBoundaries = chunks

	ar2.VolumeHeader, err = ReadArchiveHeader(c)
	if err != nil {
		log.Warnf("unable to read volume header: %v", err)
		ar2.Truncated = true
		return ar2
	}
	log.Info(ar2.VolumeHeader.Filename())

	// read until no more messages are available
	messageCounts := map[uint8]int{
		2:  0,
		31: 0,
	}

	fr := NewFrameReader(c, opts).WithChunkBoundaries(chunks)
	for {
		frame, err := fr.Next()
		if errors.Is(err, ErrEndOfArchive) {
			break
		} else if err != nil {
			log.Warnf("message terminated early after %d records: %v", fr.Record(), err)
			ar2.Truncated = true
			break
		}

		log.Tracef("  Message Type %d (segments: %d size: %d)", frame.Header.MessageType, frame.Header.NumMessageSegments, frame.Header.MessageSize)
		messageCounts[frame.Header.MessageType]++

		// anything not called out in the switch has no payload (and is skipped)
		switch m := frame.Payload.(type) {
		case *Message31:
			// instead of having every message dump data out, we'll just look at the 0-1 degree data
			if m.Header.AzimuthAngle < 1 {
				log.Trace(m.Header)
			}
			if m.HasMoments() {
				ar2.scans = append(ar2.scans, m)
			}
		case *Message1:
			if m.REFData != nil || m.VELData != nil || m.SWData != nil {
				ar2.LegacyRadials = append(ar2.LegacyRadials, m)
			}
		case *Message2:
			// we'll keep the first one - it should be the metadata record's
			if ar2.Status == nil {
				ar2.Status = m
				log.Debugf("RDA build %s", color.CyanString("%.2f", m.GetBuildNumber()))
			}
		case *VCP:
			ar2.VCP = m
		}
	}

	// helpful for debugging
	totalMessages := 0
	for _, count := range messageCounts {
		totalMessages += count
	}
	log.Debugf("  found %s messages in this archive", color.CyanString("%d", totalMessages))
	for msgType, count := range messageCounts {
		log.Debugf("    type %02d had %d messages", msgType, count)
	}

	ar2.regroup()
	if ar2.HasGaps {
		log.Warn("gaps were found in the radials")
	}
	return ar2
}

// Combine merges the archives decoded from the chunks of one volume. Radials are appended in argument order, the
// rightmost volume header and VCP win, and the first RDA status is kept. A nil archive stands for a chunk that
// couldn't be loaded and marks the result with HasGaps.
//
// ChunkBoundaries is left nil and every radial keeps the Chunk it was given by its own decode, so Chunk is only
// meaningful relative to the archive the radial came from.
func Combine(archives ...*Archive2) *Archive2 {
	combined := &Archive2{}
	for _, ar2 := range archives {
		if ar2 == nil {
			combined.HasGaps = true
			continue
		}
		if ar2.VolumeHeader.ICAO != "" {
			combined.VolumeHeader = ar2.VolumeHeader
		}
		if ar2.VCP != nil {
			combined.VCP = ar2.VCP
		}
		if combined.Status == nil {
			combined.Status = ar2.Status
		}
		combined.Truncated = combined.Truncated || ar2.Truncated
		combined.HasGaps = combined.HasGaps || ar2.HasGaps
		combined.LegacyRadials = append(combined.LegacyRadials, ar2.LegacyRadials...)
		combined.scans = append(combined.scans, ar2.scans...)
	}
	combined.regroup()
	return combined
}

func (ar2 *Archive2) regroup() {
	ar2.groups = GroupScans(ar2.scans)
	ar2.HasGaps = ar2.HasGaps || radialGaps(ar2.groups)
	ar2.scan = 0
	if len(ar2.groups) > 0 {
		ar2.elevation = ar2.groups[0].ElevationNumber
	}
}

// SetElevation selects the elevation number (1 based, as carried by the radials) used by the accessors
func (ar2 *Archive2) SetElevation(elevation int) {
	ar2.elevation = elevation
}

// Elevation currently selected
func (ar2 *Archive2) Elevation() int {
	return ar2.elevation
}

// SetScan selects the scan (0 based, within the selected elevation) returned by CurrentRadial
func (ar2 *Archive2) SetScan(scan int) {
	ar2.scan = scan
}

// Scan currently selected
func (ar2 *Archive2) Scan() int {
	return ar2.scan
}

// ListElevations returns the decoded elevation numbers in ascending order
func (ar2 *Archive2) ListElevations() []int {
	elevations := make([]int, len(ar2.groups))
	for i, g := range ar2.groups {
		elevations[i] = g.ElevationNumber
	}
	return elevations
}

// Groups returns every elevation group in ascending order
func (ar2 *Archive2) Groups() []ElevationGroup {
	return ar2.groups
}

// ElevationScans returns the radials of one elevation number, nil if it wasn't decoded
func (ar2 *Archive2) ElevationScans(elevation int) []*Message31 {
	i := sort.Search(len(ar2.groups), func(i int) bool { return ar2.groups[i].ElevationNumber >= elevation })
	if i < len(ar2.groups) && ar2.groups[i].ElevationNumber == elevation {
		return ar2.groups[i].Scans
	}
	return nil
}

func (ar2 *Archive2) selected(accessor string) ([]*Message31, error) {
	if len(ar2.groups) == 0 {
		return nil, fmt.Errorf("%s: %w", accessor, ErrEmptyVolume)
	}
	scans := ar2.ElevationScans(ar2.elevation)
	if scans == nil {
		return nil, &SelectorError{Accessor: accessor, Elevation: ar2.elevation, Scan: -1, Reason: "invalid elevation selected"}
	}
	return scans, nil
}

func (ar2 *Archive2) radial(accessor string, scan int) (*Message31, error) {
	scans, err := ar2.selected(accessor)
	if err != nil {
		return nil, err
	}
	if scan < 0 || scan >= len(scans) {
		return nil, &SelectorError{Accessor: accessor, Elevation: ar2.elevation, Scan: scan, Reason: "invalid scan selected"}
	}
	return scans[scan], nil
}

// ScanCount returns the number of scans in the selected elevation
func (ar2 *Archive2) ScanCount() (int, error) {
	scans, err := ar2.selected("ScanCount")
	if err != nil {
		return 0, err
	}
	return len(scans), nil
}

// Radial returns the message 31 record of one scan of the selected elevation
func (ar2 *Archive2) Radial(scan int) (*Message31, error) {
	return ar2.radial("Radial", scan)
}

// CurrentRadial returns the record picked with SetElevation and SetScan
func (ar2 *Archive2) CurrentRadial() (*Message31, error) {
	return ar2.radial("CurrentRadial", ar2.scan)
}

// Radials returns every record of the selected elevation
func (ar2 *Archive2) Radials() ([]*Message31, error) {
	return ar2.selected("Radials")
}

// Azimuth of one scan of the selected elevation
func (ar2 *Archive2) Azimuth(scan int) (float32, error) {
	m31, err := ar2.radial("Azimuth", scan)
	if err != nil {
		return 0, err
	}
	return m31.Header.AzimuthAngle, nil
}

// Azimuths of every scan of the selected elevation, in the same order as the moment accessors
func (ar2 *Archive2) Azimuths() ([]float32, error) {
	scans, err := ar2.selected("Azimuths")
	if err != nil {
		return nil, err
	}
	azimuths := make([]float32, len(scans))
	for i, m31 := range scans {
		azimuths[i] = m31.Header.AzimuthAngle
	}
	return azimuths, nil
}

// Moment returns one channel of one scan of the selected elevation
func (ar2 *Archive2) Moment(ch Channel, scan int) (*DataMoment, error) {
	return ar2.moment(string(ch), ch, scan)
}

// MomentAll returns one channel for every scan of the selected elevation. Scans that lack the channel have a nil
// entry; it's an error only when none of them has it.
func (ar2 *Archive2) MomentAll(ch Channel) ([]*DataMoment, error) {
	return ar2.momentAll(string(ch), ch)
}

func (ar2 *Archive2) moment(accessor string, ch Channel, scan int) (*DataMoment, error) {
	m31, err := ar2.radial(accessor, scan)
	if err != nil {
		return nil, err
	}
	d := m31.Moment(ch)
	if d == nil {
		return nil, &SelectorError{Accessor: accessor, Elevation: ar2.elevation, Scan: scan, Reason: fmt.Sprintf("no %s data", ch)}
	}
	return d, nil
}

func (ar2 *Archive2) momentAll(accessor string, ch Channel) ([]*DataMoment, error) {
	scans, err := ar2.selected(accessor)
	if err != nil {
		return nil, err
	}
	found := false
	moments := make([]*DataMoment, len(scans))
	for i, m31 := range scans {
		moments[i] = m31.Moment(ch)
		found = found || moments[i] != nil
	}
	if !found {
		return nil, &SelectorError{Accessor: accessor, Elevation: ar2.elevation, Scan: -1, Reason: fmt.Sprintf("no %s data", ch)}
	}
	return moments, nil
}

// Reflectivity of one scan of the selected elevation
func (ar2 *Archive2) Reflectivity(scan int) (*DataMoment, error) {
	return ar2.moment("Reflectivity", REF, scan)
}

// ReflectivityAll returns reflectivity for every scan of the selected elevation
func (ar2 *Archive2) ReflectivityAll() ([]*DataMoment, error) {
	return ar2.momentAll("ReflectivityAll", REF)
}

// Velocity of one scan of the selected elevation
func (ar2 *Archive2) Velocity(scan int) (*DataMoment, error) {
	return ar2.moment("Velocity", VEL, scan)
}

// VelocityAll returns velocity for every scan of the selected elevation
func (ar2 *Archive2) VelocityAll() ([]*DataMoment, error) {
	return ar2.momentAll("VelocityAll", VEL)
}

// SpectrumWidth of one scan of the selected elevation
func (ar2 *Archive2) SpectrumWidth(scan int) (*DataMoment, error) {
	return ar2.moment("SpectrumWidth", SW, scan)
}

// SpectrumWidthAll returns spectrum width for every scan of the selected elevation
func (ar2 *Archive2) SpectrumWidthAll() ([]*DataMoment, error) {
	return ar2.momentAll("SpectrumWidthAll", SW)
}

// DiffReflectivity is ZDR of one scan of the selected elevation
func (ar2 *Archive2) DiffReflectivity(scan int) (*DataMoment, error) {
	return ar2.moment("DiffReflectivity", ZDR, scan)
}

// DiffReflectivityAll returns ZDR for every scan of the selected elevation
func (ar2 *Archive2) DiffReflectivityAll() ([]*DataMoment, error) {
	return ar2.momentAll("DiffReflectivityAll", ZDR)
}

// DiffPhase is PHI of one scan of the selected elevation
func (ar2 *Archive2) DiffPhase(scan int) (*DataMoment, error) {
	return ar2.moment("DiffPhase", PHI, scan)
}

// DiffPhaseAll returns PHI for every scan of the selected elevation
func (ar2 *Archive2) DiffPhaseAll() ([]*DataMoment, error) {
	return ar2.momentAll("DiffPhaseAll", PHI)
}

// CorrelationCoefficient is RHO of one scan of the selected elevation
func (ar2 *Archive2) CorrelationCoefficient(scan int) (*DataMoment, error) {
	return ar2.moment("CorrelationCoefficient", RHO, scan)
}

// CorrelationCoefficientAll returns RHO for every scan of the selected elevation
func (ar2 *Archive2) CorrelationCoefficientAll() ([]*DataMoment, error) {
	return ar2.momentAll("CorrelationCoefficientAll", RHO)
}
