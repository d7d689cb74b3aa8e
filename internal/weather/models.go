package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/i474232898/todays-weather/internal/geo"
)

// Reading is one forecast sample.
type Reading struct {
	Time                     time.Time `json:"time"`
	Temperature              float64   `json:"temperatureC"`
	PrecipitationProbability float64   `json:"precipitationPct"`
}

// String renders the reading as a single line, e.g.
// "2024-03-01T12:00 Temp 10C, Rain 20".
func (r Reading) String() string {
	return fmt.Sprintf("%s Temp %sC, Rain %s",
		r.Time.Format("2006-01-02T15:04"),
		strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		strconv.FormatFloat(r.PrecipitationProbability, 'f', -1, 64),
	)
}

// Paragraph is one titled block of the regional narrative.
type Paragraph struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (p Paragraph) String() string {
	return p.Title + " " + p.Body
}

// Station is an observation site as listed by the upstream site list. Record
// holds the source entry unchanged; Coordinate is parsed from it.
type Station struct {
	Coordinate geo.Coordinate
	Record     map[string]any
}

// Name returns the station's name field, or "" if the record has none.
func (s Station) Name() string {
	name, _ := s.Record["name"].(string)
	return name
}

// MarshalJSON emits the source record as is.
func (s Station) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record)
}
