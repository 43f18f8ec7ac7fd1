package geogee

import "errors"

// Sentinel errors returned by the layer preparation API.
// Errors coming out of the shapefile parser itself are passed
// through untouched and are not matchable against these.
var (
	// ErrNotFound indicates an input path that does not resolve to a file.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidVectorData indicates vector data that is neither a file
	// path nor an in-memory feature collection.
	ErrInvalidVectorData = errors.New("vector data must be a file path or a feature collection")

	// ErrUnsupportedObject indicates a tile source that is not one of the
	// recognized Earth Engine object kinds.
	ErrUnsupportedObject = errors.New("object must be an Earth Engine image, feature, collection or geometry")
)
