package weather

import (
	"fmt"

	"github.com/i474232898/todays-weather/internal/document"
)

// ParseNarrative flattens a regional forecast into paragraphs, in period
// order and then paragraph order. A period's Paragraph node may be a lone
// object or an array; both are handled the same way.
func ParseNarrative(doc any) ([]Paragraph, error) {
	periods, err := document.Sequence(doc, "RegionalFcst", "FcstPeriods", "Period")
	if err != nil {
		return nil, fmt.Errorf("narrative: %w", err)
	}

	out := []Paragraph{}
	for i, period := range periods {
		paragraphs, err := document.Sequence(period, "Paragraph")
		if err != nil {
			return nil, &TransformError{Op: "narrative", Where: periodName(period, i), Field: "Paragraph", Err: err}
		}

		for j, p := range paragraphs {
			title, err := document.String(p, "title")
			if err != nil {
				return nil, &TransformError{Op: "narrative", Where: fmt.Sprintf("%s paragraph %d", periodName(period, i), j), Field: "title", Err: err}
			}
			body, err := document.String(p, "$")
			if err != nil {
				return nil, &TransformError{Op: "narrative", Where: fmt.Sprintf("%s paragraph %d", periodName(period, i), j), Field: "$", Err: err}
			}
			out = append(out, Paragraph{Title: title, Body: body})
		}
	}

	return out, nil
}

// periodName labels a period for diagnostics, using its id when present.
func periodName(period any, i int) string {
	if id, err := document.String(period, "id"); err == nil {
		return fmt.Sprintf("period %d (%s)", i, id)
	}
	return fmt.Sprintf("period %d", i)
}
