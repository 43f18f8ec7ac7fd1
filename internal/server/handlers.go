// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LyMot/geogee/internal/query"
)

const etagCap = 64

// HandleIndex serves the embedded viewer application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleLayers serves the JSON manifest of prepared layers.
func (s *ServerContext) HandleLayers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Manifest)
}

// HandleVector serves a prepared vector layer as GeoJSON.
// Path: /layers/{name}.geojson
func (s *ServerContext) HandleVector(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/layers/")
	name = strings.TrimSuffix(name, ".geojson")

	data, ok := s.vectors[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(data))
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(data)
}

// HandleQuery answers inspector lookups.
// Query: /api/query?lat=..&lon=..
func (s *ServerContext) HandleQuery(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "lat and lon query parameters are required", http.StatusBadRequest)
		return
	}

	results := s.Index.At(lon, lat)
	if results == nil {
		results = []query.Result{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}

// HandleTiles serves prefetched basemap tiles from the local cache,
// falling back to a transparent tile for gaps.
// Path: /tiles/{basemap}/{z}/{x}/{y}.webp
func (s *ServerContext) HandleTiles(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	// parts: tiles, basemap, z, x, y.webp
	if len(parts) != 5 {
		http.NotFound(w, r)
		return
	}

	name, z, x, y := parts[1], parts[2], parts[3], parts[4]

	// allow only known basemaps to prevent path probing
	if !s.tileNames[name] {
		http.NotFound(w, r)
		return
	}
	if !validTilePath(z, x, y) {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.Config.CacheDir, "tiles", name, z, x, y)
	if s.serveFile(w, r, path, "image/webp") {
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.TransparentTile)
}

func validTilePath(z, x, y string) bool {
	if !strings.HasSuffix(y, ".webp") {
		return false
	}
	for _, part := range []string{z, x, strings.TrimSuffix(y, ".webp")} {
		if _, err := strconv.Atoi(part); err != nil {
			return false
		}
	}
	return true
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
