package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/nexrad-level2/archive2"
)

type server struct {
	store   Store
	metrics *Metrics
	log     logrus.Ext1FieldLogger
}

func newServer(store Store, metrics *Metrics, log logrus.Ext1FieldLogger) *server {
	return &server{store: store, metrics: metrics, log: log}
}

func (s *server) routes(gatherer prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/l2", s.siteListHandler)
	r.HandleFunc("/l2/{site}", s.listFilesHandler)
	r.HandleFunc("/l2/{site}/{fn}", s.metaHandler)
	r.HandleFunc("/l2/{site}/{fn}/{elv}/{product}", s.momentHandler)

	r.HandleFunc("/l2-chunks/{site}/{volume:[0-9]+}.json", s.chunksMetaHandler)
	r.HandleFunc("/l2-chunks/{site}/{volume}/{elv}/{product}", s.chunksMomentHandler)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	j, _ := json.Marshal(v)
	w.Write(j)
}

func (s *server) siteListHandler(w http.ResponseWriter, req *http.Request) {
	sites, err := s.store.Sites(req.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, sites)
}

func (s *server) listFilesHandler(w http.ResponseWriter, req *http.Request) {
	site := mux.Vars(req)["site"]
	files, err := s.store.Files(req.Context(), site)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, files)
}

// decode reads a whole archive or chunk and decodes it, recording how long each step took
func (s *server) decode(body io.ReadCloser, name string) (*archive2.Archive2, error) {
	defer body.Close()

	start := time.Now()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		s.metrics.observeDecode(false, err)
		return nil, err
	}
	s.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	s.metrics.ArchiveBytes.Observe(float64(buf.Len()))

	start = time.Now()
	ar2 := archive2.Decode(archive2.NewCursor(buf.Bytes()), archive2.Options{Logger: s.log.WithField("archive", name)})
	s.metrics.DecodeDuration.Observe(time.Since(start).Seconds())
	s.metrics.observeDecode(ar2.Truncated, nil)
	return ar2, nil
}

func (s *server) loadArchive2(ctx context.Context, fn string) (*archive2.Archive2, error) {
	body, err := s.store.Archive(ctx, fn)
	if err != nil {
		s.metrics.observeDecode(false, err)
		return nil, err
	}
	return s.decode(body, fn)
}

type elevationMeta struct {
	Elevation int                       `json:"elevation"`
	Scans     int                       `json:"scans"`
	Channels  []archive2.Channel        `json:"channels"`
	Header    *archive2.Message31Header `json:"header"`
}

type archiveMeta struct {
	Site       string          `json:"site"`
	Date       time.Time       `json:"date"`
	VCP        int             `json:"vcp,omitempty"`
	Build      float32         `json:"build,omitempty"`
	Truncated  bool            `json:"truncated"`
	HasGaps    bool            `json:"has_gaps"`
	Elevations []elevationMeta `json:"elevations"`
}

func newArchiveMeta(ar2 *archive2.Archive2) archiveMeta {
	meta := archiveMeta{
		Site:       ar2.VolumeHeader.ICAO,
		Date:       ar2.VolumeHeader.Date(),
		Truncated:  ar2.Truncated,
		HasGaps:    ar2.HasGaps,
		Elevations: []elevationMeta{},
	}
	if ar2.VCP != nil {
		meta.VCP = int(ar2.VCP.PatternNumber)
	}
	if ar2.Status != nil {
		meta.Build = ar2.Status.GetBuildNumber()
	}
	for _, g := range ar2.Groups() {
		seen := map[archive2.Channel]bool{}
		for _, m31 := range g.Scans {
			for _, ch := range m31.Channels() {
				seen[ch] = true
			}
		}
		channels := []archive2.Channel{}
		for _, ch := range archive2.AllChannels {
			if seen[ch] {
				channels = append(channels, ch)
			}
		}
		meta.Elevations = append(meta.Elevations, elevationMeta{
			Elevation: g.ElevationNumber,
			Scans:     len(g.Scans),
			Channels:  channels,
			Header:    &g.Scans[0].Header,
		})
	}
	return meta
}

type momentData struct {
	Elevation      int          `json:"elevation"`
	Product        string       `json:"product"`
	FirstGateKm    float32      `json:"first_gate_km"`
	GateIntervalKm float32      `json:"gate_interval_km"`
	Azimuths       []float32    `json:"azimuths"`
	Radials        [][]*float32 `json:"radials"` // null gates are below threshold or range folded
}

// newMomentData returns the status code to use along with the error when the selection doesn't exist
func newMomentData(ar2 *archive2.Archive2, elv int, product string) (*momentData, int, error) {
	ch, ok := archive2.ParseChannel(strings.ToUpper(product))
	if !ok {
		return nil, http.StatusBadRequest, errors.New("invalid product")
	}

	ar2.SetElevation(elv)
	moments, err := ar2.MomentAll(ch)
	if err != nil {
		if errors.Is(err, archive2.ErrInvalidSelector) || errors.Is(err, archive2.ErrEmptyVolume) {
			return nil, http.StatusNotFound, err
		}
		return nil, http.StatusInternalServerError, err
	}
	azimuths, err := ar2.Azimuths()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	data := &momentData{
		Elevation: elv,
		Product:   string(ch),
		Azimuths:  azimuths,
		Radials:   make([][]*float32, len(moments)),
	}
	for i, m := range moments {
		if m == nil {
			continue
		}
		if data.GateIntervalKm == 0 {
			data.FirstGateKm = m.FirstGateKm()
			data.GateIntervalKm = m.GateIntervalKm()
		}
		gates := m.Gates()
		radial := make([]*float32, len(gates))
		for j := range gates {
			if gates[j].Valid() {
				radial[j] = &gates[j].Value
			}
		}
		data.Radials[i] = radial
	}
	return data, http.StatusOK, nil
}

func (s *server) metaHandler(w http.ResponseWriter, req *http.Request) {
	fn := mux.Vars(req)["fn"]

	ar2, err := s.loadArchive2(req.Context(), fn)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, newArchiveMeta(ar2))
}

func (s *server) writeMoment(w http.ResponseWriter, ar2 *archive2.Archive2, vars map[string]string) {
	elv, err := strconv.Atoi(vars["elv"])
	if err != nil {
		http.Error(w, "Invalid elv", http.StatusBadRequest)
		return
	}

	data, status, err := newMomentData(ar2, elv, vars["product"])
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, data)
}

func (s *server) momentHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	if _, err := strconv.Atoi(vars["elv"]); err != nil {
		http.Error(w, "Invalid elv", http.StatusBadRequest)
		return
	}

	ar2, err := s.loadArchive2(req.Context(), vars["fn"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeMoment(w, ar2, vars)
}
