package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/todays-weather/internal/datapoint"
	"github.com/i474232898/todays-weather/internal/geo"
	"github.com/i474232898/todays-weather/internal/weather"
)

var (
	validate = validator.New()

	errUnknownType = errors.New("unknown type")
)

// WeatherService is implemented by *weather.Service.
type WeatherService interface {
	Forecast(ctx context.Context) ([]weather.Reading, error)
	Observations(ctx context.Context) (any, error)
	Narrative(ctx context.Context) ([]weather.Paragraph, error)
	NearestStation(ctx context.Context, target geo.Coordinate) (weather.Station, error)
}

// Geocoder resolves a place to a coordinate. It may be nil.
type Geocoder interface {
	Locate(ctx context.Context, city, country string) (geo.Coordinate, error)
}

// envelope is the response body: exactly one of Success or Error is set.
type envelope struct {
	Success   any    `json:"success,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. The same
// handler is served at /backend, the path the browser client uses, and at
// /api/v1/weather.
func RegisterRoutes(app *fiber.App, service WeatherService, geocoder Geocoder, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{service: service, geocoder: geocoder, logger: logger}

	app.Get("/backend", h.dispatch)

	v1 := app.Group("/api/v1")
	v1.Get("/weather", h.dispatch)
}

type handler struct {
	service  WeatherService
	geocoder Geocoder
	logger   *slog.Logger
}

// weatherQuery holds the dispatch query parameters.
type weatherQuery struct {
	Type    string `query:"t" validate:"oneof=forecast observation narative narrative station"`
	Format  string `query:"format" validate:"oneof=json text"`
	Lat     string `query:"lat" validate:"omitempty,latitude"`
	Lon     string `query:"lon" validate:"omitempty,longitude"`
	City    string `query:"city" validate:"required_with=Country"`
	Country string `query:"country" validate:"required_with=City"`
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery
	if err := c.QueryParser(&q); err != nil {
		return q, err
	}
	if q.Type == "" {
		q.Type = "forecast"
	}
	if q.Format == "" {
		q.Format = "json"
	}
	q.Type = strings.ToLower(q.Type)
	q.Format = strings.ToLower(q.Format)

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Type" {
			return q, errUnknownType
		}
		return q, err
	}
	return q, nil
}

func (h *handler) dispatch(c *fiber.Ctx) error {
	q, err := parseWeatherQuery(c)
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}

	ctx := c.UserContext()

	switch q.Type {
	case "forecast":
		readings, err := h.service.Forecast(ctx)
		if err != nil {
			return h.upstreamError(c, err)
		}
		if q.Format == "text" {
			return sendLines(c, readings)
		}
		return h.ok(c, readings)

	case "observation":
		doc, err := h.service.Observations(ctx)
		if err != nil {
			return h.upstreamError(c, err)
		}
		return h.ok(c, doc)

	case "narative", "narrative":
		paragraphs, err := h.service.Narrative(ctx)
		if err != nil {
			return h.upstreamError(c, err)
		}
		if q.Format == "text" {
			return sendLines(c, paragraphs)
		}
		return h.ok(c, paragraphs)

	case "station":
		target, status, err := h.target(ctx, q)
		if err != nil {
			return h.fail(c, status, err)
		}
		st, err := h.service.NearestStation(ctx, target)
		if err != nil {
			return h.upstreamError(c, err)
		}
		return h.ok(c, st)
	}

	// Unreachable while the validator's oneof list matches the switch.
	return h.fail(c, fiber.StatusBadRequest, errUnknownType)
}

// target resolves the coordinate for a station lookup.
func (h *handler) target(ctx context.Context, q weatherQuery) (geo.Coordinate, int, error) {
	if q.Lat != "" || q.Lon != "" {
		if q.Lat == "" || q.Lon == "" {
			return geo.Coordinate{}, fiber.StatusBadRequest, errors.New("lat and lon must be given together")
		}
		lat, err := strconv.ParseFloat(q.Lat, 64)
		if err != nil {
			return geo.Coordinate{}, fiber.StatusBadRequest, err
		}
		lon, err := strconv.ParseFloat(q.Lon, 64)
		if err != nil {
			return geo.Coordinate{}, fiber.StatusBadRequest, err
		}
		return geo.Coordinate{Lat: lat, Lon: lon}, 0, nil
	}

	if q.City == "" {
		return geo.Coordinate{}, fiber.StatusBadRequest, errors.New("station lookup needs lat and lon, or city and country")
	}
	if h.geocoder == nil {
		return geo.Coordinate{}, fiber.StatusBadRequest, errors.New("place lookup is not available; use lat and lon")
	}
	c, err := h.geocoder.Locate(ctx, q.City, q.Country)
	if err != nil {
		h.logger.Warn("geocode failed", "city", q.City, "country", q.Country, "error", err)
		return geo.Coordinate{}, fiber.StatusBadGateway, err
	}
	return c, 0, nil
}

// upstreamError maps core failures to HTTP statuses. Bad statuses, bad
// bodies and unexpected document shapes all surface as 502.
func (h *handler) upstreamError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	switch {
	case errors.Is(err, weather.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, datapoint.ErrConnectionFailed):
		status = fiber.StatusGatewayTimeout
	}
	return h.fail(c, status, err)
}

func (h *handler) ok(c *fiber.Ctx, v any) error {
	return c.JSON(envelope{Success: v})
}

func (h *handler) fail(c *fiber.Ctx, status int, err error) error {
	reqID, _ := c.Locals("requestid").(string)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Path(), "status", status, "error", err, "request_id", reqID)
	}
	return c.Status(status).JSON(envelope{Error: err.Error(), RequestID: reqID})
}

func sendLines[T interface{ String() string }](c *fiber.Ctx, items []T) error {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.String())
		b.WriteByte('\n')
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(b.String())
}
