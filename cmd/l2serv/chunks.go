package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/jddeal/nexrad-level2/archive2"
)

// loadChunkedVolume rebuilds a volume stored as separately compressed chunks. The first chunk carries the volume
// header and metadata records, the rest are headerless LDM records. Chunks are decoded in parallel and combined in
// key order.
func (s *server) loadChunkedVolume(ctx context.Context, site string, volume int) (*archive2.Archive2, error) {
	keys, err := s.store.Chunks(ctx, site, volume)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errors.New("No such volume number")
	}
	s.metrics.ChunksPerVolume.Observe(float64(len(keys)))

	archives := make([]*archive2.Archive2, len(keys))
	errs := make([]error, len(keys))
	wg := sync.WaitGroup{}
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()

			body, err := s.store.Chunk(ctx, key)
			if err != nil {
				s.metrics.observeDecode(false, err)
				errs[i] = err
				return
			}
			archives[i], errs[i] = s.decode(body, key)
		}(i, key)
	}
	wg.Wait()

	// the header chunk is required, a missing chunk after it is passed on as nil and flags the volume with gaps
	if errs[0] != nil {
		return nil, fmt.Errorf("chunk %s: %w", keys[0], errs[0])
	}
	for i, err := range errs[1:] {
		if err != nil {
			s.log.Warnf("chunk %s skipped: %v", keys[i+1], err)
			archives[i+1] = nil
		}
	}

	return archive2.Combine(archives...), nil
}

func (s *server) chunkVolume(w http.ResponseWriter, req *http.Request) (*archive2.Archive2, bool) {
	vars := mux.Vars(req)
	volume, err := strconv.Atoi(vars["volume"])
	if err != nil {
		http.Error(w, "Invalid volume number", http.StatusBadRequest)
		return nil, false
	}

	ar2, err := s.loadChunkedVolume(req.Context(), vars["site"], volume)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return ar2, true
}

func (s *server) chunksMetaHandler(w http.ResponseWriter, req *http.Request) {
	ar2, ok := s.chunkVolume(w, req)
	if !ok {
		return
	}
	writeJSON(w, newArchiveMeta(ar2))
}

func (s *server) chunksMomentHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	if _, err := strconv.Atoi(vars["elv"]); err != nil {
		http.Error(w, "Invalid elv", http.StatusBadRequest)
		return
	}

	ar2, ok := s.chunkVolume(w, req)
	if !ok {
		return
	}
	s.writeMoment(w, ar2, vars)
}
