package server

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/LyMot/geogee"
	"github.com/LyMot/geogee/assets"
	"github.com/LyMot/geogee/internal/config"
	"github.com/LyMot/geogee/internal/query"
	"github.com/LyMot/geogee/internal/tiles"
)

// Manifest is the layer listing served to the browser viewer.
type Manifest struct {
	Attribution string             `json:"attribution,omitempty"`
	Basemaps    []geogee.TileLayer `json:"basemaps"`
	Vectors     []VectorLayer      `json:"vectors"`
}

// VectorLayer points the viewer at a prepared vector layer and its style.
type VectorLayer struct {
	Name  string       `json:"name"`
	URL   string       `json:"url"`
	Style geogee.Style `json:"style"`
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config          *config.Config
	Manifest        Manifest
	Index           *query.Index
	IndexHTML       []byte
	TransparentTile []byte

	// marshaled feature collections keyed by layer name
	vectors map[string][]byte
	// known basemap names allowed under /tiles/
	tileNames map[string]bool
}

// registry implements geogee.Widget by recording prepared layers instead
// of drawing them; the browser viewer does the actual rendering.
type registry struct {
	tiles   []geogee.TileLayer
	vectors []vectorEntry
}

type vectorEntry struct {
	name  string
	style geogee.Style
	fc    *geojson.FeatureCollection
}

func (r *registry) AddVectorLayer(fc *geojson.FeatureCollection, style geogee.Style, name string) error {
	r.vectors = append(r.vectors, vectorEntry{name: name, style: style, fc: fc})
	return nil
}

func (r *registry) AddTileLayer(layer geogee.TileLayer) error {
	r.tiles = append(r.tiles, layer)
	return nil
}

// the viewer ships a fixed control set, nothing to register
func (r *registry) AddControl(geogee.Control) error { return nil }

// NewServerContext prepares every configured layer and builds the
// inspector index. Vector sources that fail to load are skipped with an
// error log rather than aborting startup.
func NewServerContext(cfg *config.Config) (*ServerContext, error) {
	log.Info().
		Int("basemaps", len(cfg.Basemaps)).
		Int("vectors", len(cfg.Vectors)).
		Msg("Initializing server context")

	reg := &registry{}
	m, err := geogee.NewMap(reg)
	if err != nil {
		return nil, err
	}

	tileNames := make(map[string]bool, len(cfg.Basemaps))
	for _, b := range cfg.Basemaps {
		layer := b.TileLayer(cfg.Attribution)
		tileNames[b.Name] = true

		// prefer the local cache when tiles were prefetched
		tileDir := filepath.Join(cfg.CacheDir, "tiles", b.Name)
		if _, err := os.Stat(tileDir); err == nil {
			layer.URL = "/tiles/" + url.PathEscape(b.Name) + "/{z}/{x}/{y}.webp"
			log.Debug().
				Str("basemap", b.Name).
				Str("path", tileDir).
				Msg("Serving basemap from local tile cache")
		}

		if err := m.AddTileLayer(layer); err != nil {
			return nil, err
		}
	}

	for _, v := range cfg.Vectors {
		var err error
		if strings.EqualFold(filepath.Ext(v.Source), ".shp") {
			base := strings.TrimSuffix(filepath.Base(v.Source), filepath.Ext(v.Source))
			cached := filepath.Join(cfg.CacheDir, "vectors", base+".geojson")

			var fc *geojson.FeatureCollection
			fc, err = geogee.ShapefileToGeoJSON(v.Source, cached)
			if err == nil {
				err = m.AddGeoJSON(geogee.VectorCollection(fc), v.Style, v.Name)
			}
		} else {
			err = m.AddGeoJSON(geogee.VectorFile(v.Source), v.Style, v.Name)
		}

		if err != nil {
			log.Error().
				Err(err).
				Str("source", v.Source).
				Msg("Skipping vector layer")
		}
	}

	idx := query.New()
	vectors := make(map[string][]byte, len(reg.vectors))
	manifestVectors := make([]VectorLayer, 0, len(reg.vectors))

	for _, e := range reg.vectors {
		idx.Add(e.name, e.fc)

		data, err := json.Marshal(e.fc)
		if err != nil {
			return nil, err
		}
		vectors[e.name] = data

		manifestVectors = append(manifestVectors, VectorLayer{
			Name:  e.name,
			URL:   "/layers/" + url.PathEscape(e.name) + ".geojson",
			Style: e.style,
		})
	}

	transparent, err := tiles.Transparent(256)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("tile_layers", len(reg.tiles)).
		Int("vector_layers", len(manifestVectors)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config: cfg,
		Manifest: Manifest{
			Attribution: cfg.Attribution,
			Basemaps:    reg.tiles,
			Vectors:     manifestVectors,
		},
		Index:           idx,
		IndexHTML:       assets.Index,
		TransparentTile: transparent,
		vectors:         vectors,
		tileNames:       tileNames,
	}, nil
}
