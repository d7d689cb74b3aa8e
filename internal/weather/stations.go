package weather

import (
	"fmt"

	"github.com/i474232898/todays-weather/internal/document"
	"github.com/i474232898/todays-weather/internal/geo"
)

// NearestStation returns the site-list entry closest to target under dist
// (geo.Euclidean when nil). On a tie the entry listed first wins. Any entry
// with an unparsable coordinate fails the whole search.
func NearestStation(doc any, target geo.Coordinate, dist geo.DistanceFunc) (Station, error) {
	if dist == nil {
		dist = geo.Euclidean
	}

	locations, err := document.Sequence(doc, "Locations", "Location")
	if err != nil {
		return Station{}, fmt.Errorf("stations: %w", err)
	}
	if len(locations) == 0 {
		return Station{}, ErrNotFound
	}

	var (
		best    Station
		minDist float64
	)
	for i, loc := range locations {
		st, err := parseStation(loc, i)
		if err != nil {
			return Station{}, err
		}

		d := dist(target, st.Coordinate)
		if i == 0 || d < minDist {
			best = st
			minDist = d
		}
	}

	return best, nil
}

func parseStation(loc any, i int) (Station, error) {
	record, err := document.Object(loc)
	if err != nil {
		return Station{}, &TransformError{Op: "stations", Where: fmt.Sprintf("location %d", i), Err: err}
	}

	where := fmt.Sprintf("location %d", i)
	if id, ok := record["id"].(string); ok {
		where = fmt.Sprintf("location %d (%s)", i, id)
	}

	lat, err := coordinateField(record, "latitude", where)
	if err != nil {
		return Station{}, err
	}
	lon, err := coordinateField(record, "longitude", where)
	if err != nil {
		return Station{}, err
	}

	return Station{Coordinate: geo.Coordinate{Lat: lat, Lon: lon}, Record: record}, nil
}

func coordinateField(record map[string]any, field, where string) (float64, error) {
	raw, err := document.String(record, field)
	if err != nil {
		return 0, &TransformError{Op: "stations", Where: where, Field: field, Err: err}
	}
	f, err := parseFinite(raw)
	if err != nil {
		return 0, &TransformError{Op: "stations", Where: where, Field: field, Err: err}
	}
	return f, nil
}
