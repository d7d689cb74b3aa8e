package weather

import (
	"context"
	"errors"
	"log/slog"

	"github.com/i474232898/todays-weather/internal/datapoint"
	"github.com/i474232898/todays-weather/internal/geo"
	"github.com/i474232898/todays-weather/internal/observability"
)

// Service turns upstream documents into simplified values. Every call does
// one fresh fetch and one transform; nothing is shared between calls.
type Service struct {
	fetcher   Fetcher
	endpoints datapoint.Endpoints
	distance  geo.DistanceFunc
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDistance sets the metric used by NearestStation.
func WithDistance(d geo.DistanceFunc) Option {
	return func(s *Service) { s.distance = d }
}

// WithMetrics records transform failures.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, endpoints datapoint.Endpoints, opts ...Option) *Service {
	s := &Service{
		fetcher:   fetcher,
		endpoints: endpoints,
		distance:  geo.Euclidean,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forecast fetches the five-day forecast and returns its readings.
func (s *Service) Forecast(ctx context.Context) ([]Reading, error) {
	doc, err := s.fetcher.Fetch(ctx, s.endpoints.Forecast)
	if err != nil {
		return nil, err
	}
	readings, err := ParseForecast(doc)
	if err != nil {
		s.transformFailed("forecast", err)
		return nil, err
	}
	s.logger.Debug("forecast transformed", "readings", len(readings))
	return readings, nil
}

// Observations fetches the hourly observations and returns the decoded
// document unchanged.
func (s *Service) Observations(ctx context.Context) (any, error) {
	return s.fetcher.Fetch(ctx, s.endpoints.Observations)
}

// Narrative fetches the regional forecast and returns its paragraphs.
func (s *Service) Narrative(ctx context.Context) ([]Paragraph, error) {
	doc, err := s.fetcher.Fetch(ctx, s.endpoints.Narrative)
	if err != nil {
		return nil, err
	}
	paragraphs, err := ParseNarrative(doc)
	if err != nil {
		s.transformFailed("narrative", err)
		return nil, err
	}
	s.logger.Debug("narrative transformed", "paragraphs", len(paragraphs))
	return paragraphs, nil
}

// NearestStation fetches the observation site list and returns the entry
// closest to target.
func (s *Service) NearestStation(ctx context.Context, target geo.Coordinate) (Station, error) {
	doc, err := s.fetcher.Fetch(ctx, s.endpoints.Sites)
	if err != nil {
		return Station{}, err
	}
	st, err := NearestStation(doc, target, s.distance)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.transformFailed("station", err)
		}
		return Station{}, err
	}
	s.logger.Debug("nearest station", "name", st.Name(), "lat", st.Coordinate.Lat, "lon", st.Coordinate.Lon)
	return st, nil
}

func (s *Service) transformFailed(op string, err error) {
	if s.metrics != nil {
		s.metrics.TransformError.WithLabelValues(op).Inc()
	}
	s.logger.Warn("transform failed", "operation", op, "error", err)
}
