package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jddeal/nexrad-level2/archive2"
)

type summary struct {
	Filename string
	Size     int64
	Archive  *archive2.Archive2
}

func decodeOptions(moments []string) (archive2.Options, error) {
	opts := archive2.Options{}
	for _, name := range moments {
		ch, ok := archive2.ParseChannel(strings.ToUpper(name))
		if !ok {
			return opts, fmt.Errorf("unknown moment %q", name)
		}
		opts.Channels = append(opts.Channels, ch)
	}
	return opts, nil
}

func decodeFile(fn string, opts archive2.Options) (summary, error) {
	info, err := os.Stat(fn)
	if err != nil {
		return summary{}, err
	}
	ar2, err := archive2.NewArchive2FromFile(fn, opts)
	if err != nil {
		return summary{}, err
	}
	return summary{Filename: filepath.Base(fn), Size: info.Size(), Archive: ar2}, nil
}

func (s summary) write(w io.Writer, showVolumeHeader, showVCP bool) {
	ar2 := s.Archive
	h := ar2.VolumeHeader

	fmt.Fprintf(w, "%s (%s)\n", color.CyanString(s.Filename), humanize.Bytes(uint64(s.Size)))
	fmt.Fprintf(w, "  site %s  %s", color.CyanString(h.ICAO), h.Date().Format("2006-01-02 15:04:05 MST"))
	if ar2.VCP != nil {
		fmt.Fprintf(w, "  VCP %d", ar2.VCP.PatternNumber)
	}
	if ar2.Status != nil {
		fmt.Fprintf(w, "  build %.2f", ar2.Status.GetBuildNumber())
	}
	fmt.Fprintln(w)

	if showVolumeHeader {
		fmt.Fprintf(w, "  volume header: file=%s version=%s date=%d time=%d icao=%q\n", h.Filename(), h.Version, h.ModifiedDate, h.ModifiedTime, h.ICAO)
	}

	if showVCP && ar2.VCP != nil {
		fmt.Fprintf(w, "  %s\n", ar2.VCP)
		for i, cut := range ar2.VCP.Elevations {
			fmt.Fprintf(w, "    cut %2d: %5.2f deg  waveform %d  %6.2f deg/s\n", i+1, cut.ElevationAngle, cut.WaveformType, cut.AzimuthRate)
		}
	}

	for _, g := range ar2.Groups() {
		seen := map[archive2.Channel]bool{}
		for _, m31 := range g.Scans {
			for _, ch := range m31.Channels() {
				seen[ch] = true
			}
		}
		channels := []string{}
		for _, ch := range archive2.AllChannels {
			if seen[ch] {
				channels = append(channels, string(ch))
			}
		}
		fmt.Fprintf(w, "  elevation %2d: %4d scans  %s\n", g.ElevationNumber, len(g.Scans), strings.Join(channels, " "))
	}

	if len(ar2.LegacyRadials) > 0 {
		fmt.Fprintf(w, "  %d legacy radials\n", len(ar2.LegacyRadials))
	}
	if ar2.ChunkBoundaries != nil {
		fmt.Fprintf(w, "  %d LDM records\n", len(ar2.ChunkBoundaries))
	}
	if ar2.HasGaps {
		fmt.Fprintln(w, color.YellowString("  gaps in radials"))
	}
	if ar2.Truncated {
		fmt.Fprintln(w, color.YellowString("  truncated"))
	}
}
