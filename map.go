// Package geogee prepares geospatial layers for an interactive map:
// shapefile to GeoJSON conversion, vector styling, and tile layer
// descriptors for remote imagery such as Google Earth Engine. Rendering
// itself is delegated to a Widget implementation.
package geogee

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"github.com/LyMot/geogee/utils"
)

// UntitledLayer is the sentinel name for layers added without one. It is
// suffixed with a random string so unnamed layers do not collide in the
// widget's layer registry.
const UntitledLayer = "Untitled"

// TileLayer describes a raster layer rendered from a slippy-map URL
// template parameterized by {z}, {x} and {y}.
type TileLayer struct {
	URL         string  `json:"url" yaml:"url"`
	Name        string  `json:"name" yaml:"name"`
	Attribution string  `json:"attribution,omitempty" yaml:"attribution,omitempty"`
	Opacity     float64 `json:"opacity" yaml:"opacity"`
	Visible     bool    `json:"visible" yaml:"visible"`
	MaxZoom     int     `json:"maxZoom,omitempty" yaml:"max_zoom,omitempty"`
}

// ControlKind enumerates the map controls registered on a new map.
type ControlKind string

const (
	FullScreenControl ControlKind = "fullscreen"
	LayersControl     ControlKind = "layers"
	DrawControl       ControlKind = "draw"
	MeasureControl    ControlKind = "measure"
	ScaleControl      ControlKind = "scale"
)

// Control is a UI control placed on the map widget.
type Control struct {
	Kind     ControlKind `json:"kind"`
	Position string      `json:"position,omitempty"`
}

// Widget is the rendering collaborator a Map drives. Implementations draw
// the prepared layers; the Map never reaches into their internal state.
type Widget interface {
	AddVectorLayer(fc *geojson.FeatureCollection, style Style, name string) error
	AddTileLayer(layer TileLayer) error
	AddControl(ctl Control) error
}

// Basemap selects the Google basemap added to a new map.
type Basemap string

const (
	Roadmap Basemap = "ROADMAP"
	Hybrid  Basemap = "HYBRID"
)

// Map composes a rendering widget with the layer preparation helpers.
type Map struct {
	widget Widget

	centerLat       float64
	centerLon       float64
	zoom            int
	height          string
	scrollWheelZoom bool
	basemap         Basemap
}

// MapOption adjusts the initial map state before controls and the basemap
// are registered.
type MapOption func(*Map)

// WithCenter sets the initial view center.
func WithCenter(lat, lon float64) MapOption {
	return func(m *Map) { m.centerLat, m.centerLon = lat, lon }
}

// WithZoom sets the initial zoom level.
func WithZoom(zoom int) MapOption {
	return func(m *Map) { m.zoom = zoom }
}

// WithHeight sets the widget height, e.g. "600px".
func WithHeight(height string) MapOption {
	return func(m *Map) { m.height = height }
}

// WithBasemap selects the Google basemap variant.
func WithBasemap(b Basemap) MapOption {
	return func(m *Map) { m.basemap = b }
}

// NewMap wraps the widget and applies the standard setup: view over North
// America at zoom 4, the usual controls, and a Google basemap.
func NewMap(w Widget, opts ...MapOption) (*Map, error) {
	m := &Map{
		widget:          w,
		centerLat:       40,
		centerLon:       -100,
		zoom:            4,
		height:          "500px",
		scrollWheelZoom: true,
		basemap:         Roadmap,
	}

	for _, opt := range opts {
		opt(m)
	}

	controls := []Control{
		{Kind: FullScreenControl},
		{Kind: LayersControl, Position: "topright"},
		{Kind: DrawControl, Position: "topleft"},
		{Kind: MeasureControl},
		{Kind: ScaleControl, Position: "bottomleft"},
	}
	for _, ctl := range controls {
		if err := w.AddControl(ctl); err != nil {
			return nil, err
		}
	}

	url := "https://mt1.google.com/vt/lyrs=m&x={x}&y={y}&z={z}"
	name := "Google Maps"
	if m.basemap == Hybrid {
		url = "https://mt1.google.com/vt/lyrs=y&x={x}&y={y}&z={z}"
		name = "Google Satellite"
	}

	err := w.AddTileLayer(TileLayer{
		URL:         url,
		Name:        name,
		Attribution: "Google",
		Opacity:     1,
		Visible:     true,
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Center returns the initial view center as lat, lon.
func (m *Map) Center() (float64, float64) { return m.centerLat, m.centerLon }

// Zoom returns the initial zoom level.
func (m *Map) Zoom() int { return m.zoom }

// Height returns the widget height.
func (m *Map) Height() string { return m.height }

// VectorData is vector layer input: either a path to a GeoJSON file or an
// in-memory feature collection. The zero value is invalid.
type VectorData struct {
	path string
	fc   *geojson.FeatureCollection
}

// VectorFile references a GeoJSON file on disk.
func VectorFile(path string) VectorData {
	return VectorData{path: path}
}

// VectorCollection wraps an in-memory feature collection.
func VectorCollection(fc *geojson.FeatureCollection) VectorData {
	return VectorData{fc: fc}
}

func (d VectorData) resolve() (*geojson.FeatureCollection, error) {
	switch {
	case d.fc != nil:
		return d.fc, nil

	case d.path != "":
		path, err := filepath.Abs(d.path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return geojson.UnmarshalFeatureCollection(data)

	default:
		return nil, ErrInvalidVectorData
	}
}

// AddGeoJSON renders vector data on the widget. A nil style means the
// default style; a supplied style is used verbatim. The Untitled sentinel
// (or an empty name) is replaced with a randomly suffixed unique name.
func (m *Map) AddGeoJSON(data VectorData, style *Style, layerName string) error {
	fc, err := data.resolve()
	if err != nil {
		return err
	}

	s := DefaultStyle()
	if style != nil {
		s = *style
	}

	if layerName == "" || layerName == UntitledLayer {
		layerName = UntitledLayer + "_" + utils.RandomString(0)
	}

	return m.widget.AddVectorLayer(fc, s, layerName)
}

// AddShapefile converts a shapefile and renders it as a vector layer.
func (m *Map) AddShapefile(inShp string, style *Style, layerName string) error {
	fc, err := ShapefileToGeoJSON(inShp, "")
	if err != nil {
		return err
	}
	return m.AddGeoJSON(VectorCollection(fc), style, layerName)
}

// AddEELayer renders an Earth Engine object as a tile layer.
func (m *Map) AddEELayer(obj TileSource, vis VisParams, name string, shown bool, opacity float64) error {
	layer, err := EETileLayer(obj, vis, name, shown, opacity)
	if err != nil {
		return err
	}
	return m.widget.AddTileLayer(layer)
}

// AddTileLayer forwards a prepared tile layer descriptor to the widget.
func (m *Map) AddTileLayer(layer TileLayer) error {
	return m.widget.AddTileLayer(layer)
}
