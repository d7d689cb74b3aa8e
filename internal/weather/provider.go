package weather

import (
	"context"

	"github.com/i474232898/todays-weather/internal/datapoint"
)

// Fetcher abstracts the upstream document source (datapoint.Client in
// production, a stub in tests).
type Fetcher interface {
	Fetch(ctx context.Context, ep datapoint.Endpoint) (any, error)
}
