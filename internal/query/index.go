// Package query provides point lookup over vector layers, backing the
// viewer's click-to-inspect feature.
package query

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// pointPadding widens degenerate bounds (points, vertical/horizontal
// lines) so they are representable as R-tree rectangles and clickable.
const pointPadding = 1e-4

// Result is a single feature matched at a query point.
type Result struct {
	Layer      string             `json:"layer"`
	Properties geojson.Properties `json:"properties"`
}

type entry struct {
	layer   string
	feature *geojson.Feature
	rect    rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index is an R-tree over vector features keyed by geometry bound.
type Index struct {
	tree *rtreego.Rtree
}

// New returns an empty feature index.
func New() *Index {
	return &Index{tree: rtreego.NewTree(2, 25, 50)}
}

// Add indexes every feature of the collection under the given layer name.
func (i *Index) Add(layer string, fc *geojson.FeatureCollection) {
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}

		bound := f.Geometry.Bound()
		width := bound.Max[0] - bound.Min[0]
		height := bound.Max[1] - bound.Min[1]
		if width <= 0 {
			width = pointPadding
		}
		if height <= 0 {
			height = pointPadding
		}

		rect, err := rtreego.NewRect(
			rtreego.Point{bound.Min[0], bound.Min[1]},
			[]float64{width, height},
		)
		if err != nil {
			continue
		}

		i.tree.Insert(&entry{layer: layer, feature: f, rect: rect})
	}
}

// At returns the features covering the given point. Polygons are tested
// with planar containment, other geometries match on their padded bound.
func (i *Index) At(lon, lat float64) []Result {
	probe, err := rtreego.NewRect(
		rtreego.Point{lon, lat},
		[]float64{pointPadding, pointPadding},
	)
	if err != nil {
		return nil
	}

	point := orb.Point{lon, lat}

	var results []Result
	for _, hit := range i.tree.SearchIntersect(probe) {
		e := hit.(*entry)

		if !contains(e.feature.Geometry, point) {
			continue
		}

		results = append(results, Result{
			Layer:      e.layer,
			Properties: e.feature.Properties,
		})
	}

	return results
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	case orb.Collection:
		for _, sub := range geom {
			if contains(sub, p) {
				return true
			}
		}
		return false
	default:
		// bound hit is good enough for points and lines
		return true
	}
}
