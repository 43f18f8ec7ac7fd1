// Package config handles configuration loading and shared data structures.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LyMot/geogee"
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	CacheDir    string `yaml:"cache_dir,omitempty" json:"-"`

	Basemaps []Basemap `yaml:"basemaps,omitempty" json:"basemaps,omitempty"`
	Vectors  []Vector  `yaml:"vectors,omitempty" json:"vectors,omitempty"`
}

// Basemap configures a raster tile layer served from a URL template.
type Basemap struct {
	Name        string  `yaml:"name" json:"name"`
	URL         string  `yaml:"url" json:"url"`
	Attribution string  `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	MaxZoom     int     `yaml:"max_zoom,omitempty" json:"maxZoom,omitempty"`
	Opacity     float64 `yaml:"opacity,omitempty" json:"opacity"`
	Hidden      bool    `yaml:"hidden,omitempty" json:"-"`
}

// Vector configures a vector layer sourced from a shapefile or GeoJSON
// file. A missing style means the default style, a present style replaces
// it entirely.
type Vector struct {
	Name   string        `yaml:"name,omitempty" json:"name,omitempty"`
	Source string        `yaml:"source" json:"-"`
	Style  *geogee.Style `yaml:"style,omitempty" json:"style,omitempty"`
}

// TileLayer converts the basemap entry to a layer descriptor.
func (b Basemap) TileLayer(defaultAttribution string) geogee.TileLayer {
	attribution := b.Attribution
	if attribution == "" {
		attribution = defaultAttribution
	}

	opacity := b.Opacity
	if opacity <= 0 {
		opacity = 1
	}

	return geogee.TileLayer{
		URL:         b.URL,
		Name:        b.Name,
		Attribution: attribution,
		MaxZoom:     b.MaxZoom,
		Opacity:     opacity,
		Visible:     !b.Hidden,
	}
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = "cache"
	}

	return &cfg, nil
}
