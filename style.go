package geogee

// Style describes how a vector layer is drawn. The field set matches the
// Leaflet path options understood by the viewer.
type Style struct {
	Stroke      bool    `json:"stroke" yaml:"stroke"`
	Color       string  `json:"color" yaml:"color"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Opacity     float64 `json:"opacity" yaml:"opacity"`
	Fill        bool    `json:"fill" yaml:"fill"`
	FillColor   string  `json:"fillColor" yaml:"fill_color"`
	FillOpacity float64 `json:"fillOpacity" yaml:"fill_opacity"`
}

// DefaultStyle returns the styling used for vector layers when the caller
// does not supply one. A fresh value is returned on every call; a supplied
// style always replaces the default wholesale, fields are never merged.
func DefaultStyle() Style {
	return Style{
		Stroke:      true,
		Color:       "#000000",
		Weight:      2,
		Opacity:     1,
		Fill:        true,
		FillColor:   "#0000ff",
		FillOpacity: 0.4,
	}
}
