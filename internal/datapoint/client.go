package datapoint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/todays-weather/internal/document"
	"github.com/i474232898/todays-weather/internal/observability"
)

var errNoHTTPClient = errors.New("http client not configured")

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Client fetches DataPoint documents. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	metrics    *observability.Metrics
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates a DataPoint client. The http.Client should carry a
// timeout; a request that exceeds it is reported as ErrConnectionFailed.
func NewClient(httpClient *http.Client, apiKey string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
	}
}

// Fetch performs one GET against ep and decodes the body. On failure the
// returned document is always nil and the error is a *FetchError.
func (c *Client) Fetch(ctx context.Context, ep Endpoint) (any, error) {
	start := c.clock.Now()

	doc, err := c.fetch(ctx, ep)

	elapsed := c.clock.Since(start)
	if c.metrics != nil {
		c.metrics.FetchRequests.WithLabelValues(ep.Name, outcome(err)).Inc()
		c.metrics.FetchDuration.WithLabelValues(ep.Name).Observe(elapsed.Seconds())
	}
	if err != nil {
		c.logger.Warn("datapoint fetch failed", "endpoint", ep.Name, "error", err, "duration", elapsed)
		return nil, err
	}
	c.logger.Debug("datapoint fetch complete", "endpoint", ep.Name, "duration", elapsed)
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, ep Endpoint) (any, error) {
	if c.httpClient == nil {
		return nil, &FetchError{Endpoint: ep.Name, Kind: ErrConnectionFailed, Err: errNoHTTPClient}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.WithKey(c.apiKey), nil)
	if err != nil {
		return nil, &FetchError{Endpoint: ep.Name, Kind: ErrConnectionFailed, Err: redact(err, ep.URL)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: ep.Name, Kind: ErrConnectionFailed, Err: redact(err, ep.URL)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var detail error
		if len(body) > 0 {
			detail = errors.New(string(body))
		}
		return nil, &FetchError{
			Endpoint:   ep.Name,
			Kind:       ErrNonSuccessStatus,
			StatusCode: resp.StatusCode,
			Err:        detail,
		}
	}

	doc, err := document.Decode(resp.Body)
	if err != nil {
		// A body cut off by a timeout or cancellation is a transport problem.
		if ctx.Err() != nil {
			return nil, &FetchError{Endpoint: ep.Name, Kind: ErrConnectionFailed, Err: ctx.Err()}
		}
		var terr interface{ Timeout() bool }
		if errors.As(err, &terr) && terr.Timeout() {
			return nil, &FetchError{Endpoint: ep.Name, Kind: ErrConnectionFailed, Err: err}
		}
		return nil, &FetchError{Endpoint: ep.Name, Kind: ErrDecodeFailed, Err: err}
	}
	return doc, nil
}

// redact replaces the keyed URL inside a *url.Error with the bare endpoint URL.
func redact(err error, bare string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: bare, Err: uerr.Err}
	}
	return err
}
