package geogee

import "fmt"

// EEAttribution is the attribution text attached to every Earth Engine
// tile layer.
const EEAttribution = "Google Earth Engine"

// DefaultEELayerName names Earth Engine layers added without one.
const DefaultEELayerName = "Layer untitled"

// ObjectKind identifies the kind of remote Earth Engine object behind a
// TileSource handle.
type ObjectKind int

const (
	KindUnknown ObjectKind = iota
	KindImage
	KindImageCollection
	KindFeature
	KindFeatureCollection
	KindGeometry
)

func (k ObjectKind) String() string {
	switch k {
	case KindImage:
		return "Image"
	case KindImageCollection:
		return "ImageCollection"
	case KindFeature:
		return "Feature"
	case KindFeatureCollection:
		return "FeatureCollection"
	case KindGeometry:
		return "Geometry"
	default:
		return "Unknown"
	}
}

// VisParams holds visualization parameters forwarded to the imagery
// service (bands, min/max, palette and so on).
type VisParams map[string]any

// clone returns an independent shallow copy so a params map shared across
// calls can never be mutated by the tile source.
func (p VisParams) clone() VisParams {
	out := make(VisParams, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// TileSource is a handle to a remote Earth Engine object. MapID asks the
// service to publish the object with the given visualization parameters
// and returns a tile URL template parameterized by {z}/{x}/{y}.
type TileSource interface {
	Kind() ObjectKind
	MapID(vis VisParams) (string, error)
}

// Mosaicker is implemented by image collection handles that can reduce
// themselves to a single image before rendering.
type Mosaicker interface {
	Mosaic() TileSource
}

// EETileLayer converts an Earth Engine object into a tile layer descriptor
// carrying the service's tile URL template and the standard attribution.
//
// Image collections are flattened with Mosaic before the map ID is
// fetched. Objects of an unrecognized kind yield ErrUnsupportedObject.
func EETileLayer(obj TileSource, vis VisParams, name string, shown bool, opacity float64) (TileLayer, error) {
	if obj == nil {
		return TileLayer{}, ErrUnsupportedObject
	}

	switch obj.Kind() {
	case KindImage, KindFeature, KindFeatureCollection, KindGeometry:
	case KindImageCollection:
		if m, ok := obj.(Mosaicker); ok {
			obj = m.Mosaic()
		}
	default:
		return TileLayer{}, fmt.Errorf("%w, got %s", ErrUnsupportedObject, obj.Kind())
	}

	if name == "" {
		name = DefaultEELayerName
	}

	url, err := obj.MapID(vis.clone())
	if err != nil {
		return TileLayer{}, err
	}

	return TileLayer{
		URL:         url,
		Name:        name,
		Attribution: EEAttribution,
		Opacity:     opacity,
		Visible:     shown,
	}, nil
}
