package geogee

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/LyMot/geogee/utils"
)

type fakeWidget struct {
	controls []Control
	tiles    []TileLayer
	vectors  []renderedVector
}

type renderedVector struct {
	name  string
	style Style
	fc    *geojson.FeatureCollection
}

func (w *fakeWidget) AddVectorLayer(fc *geojson.FeatureCollection, style Style, name string) error {
	w.vectors = append(w.vectors, renderedVector{name: name, style: style, fc: fc})
	return nil
}

func (w *fakeWidget) AddTileLayer(layer TileLayer) error {
	w.tiles = append(w.tiles, layer)
	return nil
}

func (w *fakeWidget) AddControl(ctl Control) error {
	w.controls = append(w.controls, ctl)
	return nil
}

func newTestMap(t *testing.T, opts ...MapOption) (*Map, *fakeWidget) {
	t.Helper()

	w := &fakeWidget{}
	m, err := NewMap(w, opts...)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m, w
}

func TestNewMapDefaults(t *testing.T) {
	m, w := newTestMap(t)

	lat, lon := m.Center()
	if lat != 40 || lon != -100 {
		t.Errorf("Center() = %v, %v, want 40, -100", lat, lon)
	}
	if m.Zoom() != 4 {
		t.Errorf("Zoom() = %d, want 4", m.Zoom())
	}
	if m.Height() != "500px" {
		t.Errorf("Height() = %q, want 500px", m.Height())
	}

	if len(w.controls) != 5 {
		t.Fatalf("registered %d controls, want 5", len(w.controls))
	}

	if len(w.tiles) != 1 {
		t.Fatalf("registered %d tile layers, want 1", len(w.tiles))
	}
	basemap := w.tiles[0]
	if basemap.Name != "Google Maps" {
		t.Errorf("basemap name = %q, want Google Maps", basemap.Name)
	}
	if !strings.Contains(basemap.URL, "lyrs=m") {
		t.Errorf("basemap URL = %q, want roadmap tiles", basemap.URL)
	}
	if basemap.Attribution != "Google" {
		t.Errorf("basemap attribution = %q, want Google", basemap.Attribution)
	}
}

func TestNewMapHybridBasemap(t *testing.T) {
	_, w := newTestMap(t, WithBasemap(Hybrid), WithCenter(0, 0), WithZoom(8))

	basemap := w.tiles[0]
	if basemap.Name != "Google Satellite" {
		t.Errorf("basemap name = %q, want Google Satellite", basemap.Name)
	}
	if !strings.Contains(basemap.URL, "lyrs=y") {
		t.Errorf("basemap URL = %q, want hybrid tiles", basemap.URL)
	}
}

func testCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{1, 2})
	f.Properties["name"] = "somewhere"
	fc.Append(f)
	return fc
}

func TestAddGeoJSONDefaultStyle(t *testing.T) {
	m, w := newTestMap(t)

	if err := m.AddGeoJSON(VectorCollection(testCollection()), nil, "places"); err != nil {
		t.Fatalf("AddGeoJSON: %v", err)
	}

	if len(w.vectors) != 1 {
		t.Fatalf("rendered %d vector layers, want 1", len(w.vectors))
	}
	if w.vectors[0].style != DefaultStyle() {
		t.Errorf("style = %+v, want defaults", w.vectors[0].style)
	}
	if w.vectors[0].name != "places" {
		t.Errorf("name = %q, want places", w.vectors[0].name)
	}
}

func TestAddGeoJSONStyleOverrideReplacesEntirely(t *testing.T) {
	m, w := newTestMap(t)

	// a sparse override must be used as-is, not merged with defaults
	override := Style{Color: "#ff0000", Weight: 5}
	if err := m.AddGeoJSON(VectorCollection(testCollection()), &override, "styled"); err != nil {
		t.Fatal(err)
	}

	got := w.vectors[0].style
	if got != override {
		t.Errorf("style = %+v, want override %+v", got, override)
	}
	if got.Fill || got.FillColor != "" {
		t.Error("override was merged with default fill settings")
	}
}

func TestAddGeoJSONUntitledGetsRandomSuffix(t *testing.T) {
	m, w := newTestMap(t)

	if err := m.AddGeoJSON(VectorCollection(testCollection()), nil, UntitledLayer); err != nil {
		t.Fatal(err)
	}
	if err := m.AddGeoJSON(VectorCollection(testCollection()), nil, ""); err != nil {
		t.Fatal(err)
	}

	for _, v := range w.vectors {
		if !strings.HasPrefix(v.name, UntitledLayer+"_") {
			t.Errorf("name = %q, want Untitled_ prefix", v.name)
		}
		if len(v.name) != len(UntitledLayer)+1+utils.DefaultStringLength {
			t.Errorf("name = %q, want a %d character suffix", v.name, utils.DefaultStringLength)
		}
	}
}

func TestAddGeoJSONInvalidData(t *testing.T) {
	m, _ := newTestMap(t)

	if err := m.AddGeoJSON(VectorData{}, nil, "x"); !errors.Is(err, ErrInvalidVectorData) {
		t.Errorf("err = %v, want ErrInvalidVectorData", err)
	}
}

func TestAddGeoJSONFromFile(t *testing.T) {
	m, w := newTestMap(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "places.geojson")
	data := []byte(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"somewhere"}}]}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if err := m.AddGeoJSON(VectorFile(path), nil, "fromfile"); err != nil {
		t.Fatalf("AddGeoJSON: %v", err)
	}
	if len(w.vectors[0].fc.Features) != 1 {
		t.Errorf("loaded %d features, want 1", len(w.vectors[0].fc.Features))
	}

	missing := filepath.Join(dir, "missing.geojson")
	if err := m.AddGeoJSON(VectorFile(missing), nil, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAddShapefile(t *testing.T) {
	m, w := newTestMap(t)

	in := filepath.Join(t.TempDir(), "countries.shp")
	writePolygonShapefile(t, in)

	if err := m.AddShapefile(in, nil, "countries"); err != nil {
		t.Fatalf("AddShapefile: %v", err)
	}

	if len(w.vectors) != 1 {
		t.Fatalf("rendered %d vector layers, want 1", len(w.vectors))
	}
	if len(w.vectors[0].fc.Features) != 3 {
		t.Errorf("rendered %d features, want 3", len(w.vectors[0].fc.Features))
	}

	if err := m.AddShapefile(filepath.Join(t.TempDir(), "missing.shp"), nil, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAddEELayer(t *testing.T) {
	m, w := newTestMap(t)

	src := &fakeSource{kind: KindImage, url: "https://earthengine.example/{z}/{x}/{y}"}
	if err := m.AddEELayer(src, VisParams{"min": 0}, "DEM", true, 1); err != nil {
		t.Fatalf("AddEELayer: %v", err)
	}

	// basemap plus the EE layer
	if len(w.tiles) != 2 {
		t.Fatalf("registered %d tile layers, want 2", len(w.tiles))
	}
	if w.tiles[1].Attribution != EEAttribution {
		t.Errorf("attribution = %q, want %q", w.tiles[1].Attribution, EEAttribution)
	}

	bad := &fakeSource{kind: KindUnknown}
	if err := m.AddEELayer(bad, nil, "", true, 1); !errors.Is(err, ErrUnsupportedObject) {
		t.Errorf("err = %v, want ErrUnsupportedObject", err)
	}
}
