package geogee

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ShapefileToGeoJSON converts a shapefile dataset into a GeoJSON feature
// collection. The sibling .dbf and .shx files are located by the reader
// using the shapefile naming convention.
//
// Feature order follows the on-disk record order, so repeated calls on the
// same input produce identical output. When outGeoJSON is not empty the
// collection is also written there as compact JSON, creating any missing
// parent directories and overwriting an existing file.
//
// Returns ErrNotFound when inShp does not resolve to an existing file.
// Errors raised by the shapefile reader on malformed input are returned
// as-is.
func ShapefileToGeoJSON(inShp, outGeoJSON string) (*geojson.FeatureCollection, error) {
	inShp, err := filepath.Abs(inShp)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(inShp); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, inShp)
	}

	reader, err := shp.Open(inShp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	fields := reader.Fields()

	fc := geojson.NewFeatureCollection()
	for reader.Next() {
		row, shape := reader.Shape()

		geometry, ok := shapeGeometry(shape)
		if !ok {
			continue
		}

		feature := geojson.NewFeature(geometry)
		for i, field := range fields {
			feature.Properties[field.String()] = attributeValue(field.Fieldtype, reader.ReadAttribute(row, i))
		}

		fc.Append(feature)
	}

	if err := reader.Err(); err != nil {
		return nil, err
	}

	if outGeoJSON == "" {
		return fc, nil
	}

	outGeoJSON, err = filepath.Abs(outGeoJSON)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outGeoJSON), 0755); err != nil {
		return nil, err
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outGeoJSON, data, 0644); err != nil {
		return nil, err
	}

	return fc, nil
}

// shapeGeometry maps a shapefile record to an orb geometry.
// Z and M values are dropped, only the XY plane is kept.
func shapeGeometry(shape shp.Shape) (orb.Geometry, bool) {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}, true
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}, true
	case *shp.PointM:
		return orb.Point{s.X, s.Y}, true
	case *shp.MultiPoint:
		return multiPoint(s.Points), true
	case *shp.MultiPointZ:
		return multiPoint(s.Points), true
	case *shp.MultiPointM:
		return multiPoint(s.Points), true
	case *shp.PolyLine:
		return lineGeometry(s.Points, s.Parts), true
	case *shp.PolyLineZ:
		return lineGeometry(s.Points, s.Parts), true
	case *shp.PolyLineM:
		return lineGeometry(s.Points, s.Parts), true
	case *shp.Polygon:
		return polygonGeometry(s.Points, s.Parts), true
	case *shp.PolygonZ:
		return polygonGeometry(s.Points, s.Parts), true
	case *shp.PolygonM:
		return polygonGeometry(s.Points, s.Parts), true
	default:
		// Null shapes and exotic types (MultiPatch) carry no geometry we can render
		return nil, false
	}
}

func multiPoint(points []shp.Point) orb.MultiPoint {
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.X, p.Y})
	}
	return mp
}

// lineGeometry returns a LineString for single-part records and a
// MultiLineString otherwise, matching the usual GeoJSON projection of
// shapefile polylines.
func lineGeometry(points []shp.Point, parts []int32) orb.Geometry {
	lines := splitParts(points, parts)
	if len(lines) == 1 {
		return lines[0]
	}

	ml := make(orb.MultiLineString, 0, len(lines))
	for _, line := range lines {
		ml = append(ml, line)
	}
	return ml
}

// polygonGeometry treats every part as a ring of a single polygon.
func polygonGeometry(points []shp.Point, parts []int32) orb.Polygon {
	poly := make(orb.Polygon, 0, len(parts))
	for _, line := range splitParts(points, parts) {
		poly = append(poly, orb.Ring(line))
	}
	return poly
}

func splitParts(points []shp.Point, parts []int32) []orb.LineString {
	if len(parts) == 0 {
		parts = []int32{0}
	}

	out := make([]orb.LineString, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i < len(parts)-1 {
			end = parts[i+1]
		}

		line := make(orb.LineString, 0, end-start)
		for j := start; j < end && int(j) < len(points); j++ {
			line = append(line, orb.Point{points[j].X, points[j].Y})
		}
		out = append(out, line)
	}
	return out
}

// attributeValue converts a raw DBF attribute into a typed property value
// based on the field type: numerics become float64, logicals become bool,
// everything else stays a string.
func attributeValue(fieldType byte, raw string) interface{} {
	raw = strings.TrimSpace(strings.Trim(raw, "\x00"))

	switch fieldType {
	case 'N', 'F':
		if raw == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	case 'L':
		switch raw {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		}
	}

	return raw
}
