package datapoint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/todays-weather/internal/document"
	"github.com/i474232898/todays-weather/internal/observability"
)

const testKey = "secret-key"

func testClient(timeout time.Duration) (*Client, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     testKey,
		metrics:    m,
		clock:      clockwork.NewFakeClock(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, m
}

func TestDefaultEndpoints(t *testing.T) {
	eps := DefaultEndpoints("http://example.test/public/data/", "352790", "3238", "508")

	assert.Equal(t,
		"http://example.test/public/data/val/wxfcs/all/json/352790?res=3hourly&key=abc",
		eps.Forecast.WithKey("abc"))
	assert.Equal(t,
		"http://example.test/public/data/val/wxobs/all/json/3238?res=hourly&key=abc",
		eps.Observations.WithKey("abc"))
	assert.Equal(t,
		"http://example.test/public/data/txt/wxfcs/regionalforecast/json/508?key=abc",
		eps.Narrative.WithKey("abc"))
	assert.Equal(t,
		"http://example.test/public/data/val/wxobs/all/json/sitelist?key=abc",
		eps.Sites.WithKey("abc"))
}

func TestEndpoint_WithKeyEscapes(t *testing.T) {
	ep := Endpoint{Name: "x", URL: "http://h/p", Join: "?"}
	assert.Equal(t, "http://h/p?key=a%2Bb%26c", ep.WithKey("a+b&c"))
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		assert.Equal(t, "3hourly", r.URL.Query().Get("res"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"SiteRep":{"DV":{"type":"Forecast"}}}`)
	}))
	defer srv.Close()

	c, m := testClient(5 * time.Second)
	ep := Endpoint{Name: "forecast", URL: srv.URL + "/val?res=3hourly", Join: "&"}

	doc, err := c.Fetch(context.Background(), ep)
	require.NoError(t, err)

	kind, err := document.String(doc, "SiteRep", "DV", "type")
	require.NoError(t, err)
	assert.Equal(t, "Forecast", kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchRequests.WithLabelValues("forecast", "success")))
}

func TestClient_Fetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "invalid key")
	}))
	defer srv.Close()

	c, m := testClient(5 * time.Second)
	doc, err := c.Fetch(context.Background(), Endpoint{Name: "narrative", URL: srv.URL, Join: "?"})

	assert.Nil(t, doc)
	require.ErrorIs(t, err, ErrNonSuccessStatus)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, http.StatusForbidden, ferr.StatusCode)
	assert.Equal(t, "narrative", ferr.Endpoint)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchRequests.WithLabelValues("narrative", "non_success_status")))
}

func TestClient_Fetch_DecodeFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	c, m := testClient(5 * time.Second)
	doc, err := c.Fetch(context.Background(), Endpoint{Name: "sitelist", URL: srv.URL, Join: "?"})

	assert.Nil(t, doc)
	require.ErrorIs(t, err, ErrDecodeFailed)
	assert.NotErrorIs(t, err, ErrConnectionFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchRequests.WithLabelValues("sitelist", "decode_failed")))
}

func TestClient_Fetch_ConnectionFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := testClient(5 * time.Second)
	doc, err := c.Fetch(context.Background(), Endpoint{Name: "forecast", URL: url, Join: "?"})

	assert.Nil(t, doc)
	require.ErrorIs(t, err, ErrConnectionFailed)
	assert.NotContains(t, err.Error(), testKey)
}

func TestClient_Fetch_TimeoutIsConnectionFailed(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := testClient(50 * time.Millisecond)
	doc, err := c.Fetch(context.Background(), Endpoint{Name: "observations", URL: srv.URL, Join: "?"})

	assert.Nil(t, doc)
	require.ErrorIs(t, err, ErrConnectionFailed)
	assert.NotContains(t, err.Error(), testKey)
}

func TestClient_Fetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := testClient(5 * time.Second)
	_, err := c.Fetch(ctx, Endpoint{Name: "forecast", URL: srv.URL, Join: "?"})
	require.ErrorIs(t, err, ErrConnectionFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Fetch_FailureDoesNotAffectNextCall(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"ok":"yes"}`)
	}))
	defer srv.Close()

	c, _ := testClient(5 * time.Second)
	ep := Endpoint{Name: "forecast", URL: srv.URL, Join: "?"}

	_, err := c.Fetch(context.Background(), ep)
	require.ErrorIs(t, err, ErrNonSuccessStatus)

	fail.Store(false)
	doc, err := c.Fetch(context.Background(), ep)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": "yes"}, doc)
}

func TestClient_Fetch_NoHTTPClient(t *testing.T) {
	c := NewClient(nil, testKey, nil, nil)
	_, err := c.Fetch(context.Background(), Endpoint{Name: "forecast", URL: "http://unused", Join: "?"})
	require.ErrorIs(t, err, ErrConnectionFailed)
}
