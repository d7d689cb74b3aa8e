package weather

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/todays-weather/internal/document"
)

// maxRepOffset bounds a rep's minute offset from its period's midnight.
const maxRepOffset = 7 * 24 * 60

var errNotFinite = errors.New("not a finite number")

// offsetDate is an ISO 8601 date with a zone designator, e.g. "2024-03-01Z"
// or "2024-03-01+01:00".
const offsetDate = "2006-01-02Z07:00"

// ParseForecast flattens a three-hourly site forecast into readings, in
// period order and then rep order. A single malformed rep fails the whole
// call; no readings are returned in that case.
func ParseForecast(doc any) ([]Reading, error) {
	locations, err := document.Sequence(doc, "SiteRep", "DV", "Location")
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("forecast: %w", &document.NavigationError{
			Path:    []string{"SiteRep", "DV", "Location"},
			Segment: "Location",
			Reason:  "empty location list",
		})
	}

	// The endpoint is requested for one site, so only the first location counts.
	periods, err := document.Sequence(locations[0], "Period")
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	readings := []Reading{}
	for i, period := range periods {
		rawDate, err := document.String(period, "value")
		if err != nil {
			return nil, &TransformError{Op: "forecast", Where: fmt.Sprintf("period %d", i), Field: "value", Err: err}
		}
		where := fmt.Sprintf("period %d (%s)", i, rawDate)

		midnight, err := parseOffsetDate(rawDate)
		if err != nil {
			return nil, &TransformError{Op: "forecast", Where: where, Field: "value", Err: err}
		}

		reps, err := document.Sequence(period, "Rep")
		if err != nil {
			return nil, &TransformError{Op: "forecast", Where: where, Field: "Rep", Err: err}
		}

		for j, rep := range reps {
			r, err := parseRep(rep, midnight)
			if err != nil {
				err.Where = fmt.Sprintf("%s rep %d", where, j)
				return nil, err
			}
			readings = append(readings, r)
		}
	}

	return readings, nil
}

// parseOffsetDate returns midnight of the given date in its declared offset.
func parseOffsetDate(s string) (time.Time, error) {
	d, err := time.Parse(offsetDate, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()), nil
}

func parseRep(rep any, midnight time.Time) (Reading, *TransformError) {
	rawOffset, err := document.String(rep, "$")
	if err != nil {
		return Reading{}, &TransformError{Op: "forecast", Field: "$", Err: err}
	}
	minutes, err := strconv.ParseInt(strings.TrimSpace(rawOffset), 10, 64)
	if err != nil {
		return Reading{}, &TransformError{Op: "forecast", Field: "$", Err: err}
	}
	if minutes < 0 || minutes > maxRepOffset {
		return Reading{}, &TransformError{
			Op:    "forecast",
			Field: "$",
			Err:   fmt.Errorf("offset %d outside 0..%d minutes", minutes, maxRepOffset),
		}
	}

	temp, terr := numberField(rep, "T")
	if terr != nil {
		return Reading{}, terr
	}
	precip, terr := numberField(rep, "Pp")
	if terr != nil {
		return Reading{}, terr
	}

	return Reading{
		Time:                     midnight.Add(time.Duration(minutes) * time.Minute),
		Temperature:              temp,
		PrecipitationProbability: precip,
	}, nil
}

func numberField(v any, field string) (float64, *TransformError) {
	raw, err := document.String(v, field)
	if err != nil {
		return 0, &TransformError{Op: "forecast", Field: field, Err: err}
	}
	f, err := parseFinite(raw)
	if err != nil {
		return 0, &TransformError{Op: "forecast", Field: field, Err: err}
	}
	return f, nil
}

// parseFinite parses a decimal number, rejecting NaN and infinities.
func parseFinite(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q: %w", raw, errNotFinite)
	}
	return f, nil
}
