package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/todays-weather/internal/datapoint"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATAPOINT_API_KEY", "abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "abc", cfg.APIKey)
	assert.Equal(t, datapoint.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "352790", cfg.ForecastLocation)
	assert.Equal(t, "3238", cfg.ObservationSite)
	assert.Equal(t, "508", cfg.Region)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "planar", cfg.StationDistance)
	assert.Zero(t, cfg.ProbeInterval)
	assert.Empty(t, cfg.GeocoderAPIKey)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATAPOINT_API_KEY", "abc")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("PROBE_INTERVAL", "15m")
	t.Setenv("STATION_DISTANCE", "haversine")
	t.Setenv("REGION", "513")
	t.Setenv("DATAPOINT_BASE_URL", "http://localhost:9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ProbeInterval)
	assert.Equal(t, "haversine", cfg.StationDistance)
	assert.Equal(t,
		"http://localhost:9999/txt/wxfcs/regionalforecast/json/513",
		cfg.Endpoints().Narrative.URL)
}

func TestLoad_KeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiKey.txt")
	require.NoError(t, os.WriteFile(path, []byte("from-file\nignored\n"), 0o600))

	t.Setenv("DATAPOINT_API_KEY", "")
	t.Setenv("DATAPOINT_API_KEY_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)
}

func TestLoad_EnvKeyBeatsFile(t *testing.T) {
	t.Setenv("DATAPOINT_API_KEY", "from-env")
	t.Setenv("DATAPOINT_API_KEY_FILE", "/does/not/exist")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"missing key", map[string]string{"DATAPOINT_API_KEY": ""}, "DATAPOINT_API_KEY"},
		{"missing key file", map[string]string{"DATAPOINT_API_KEY": "", "DATAPOINT_API_KEY_FILE": "/does/not/exist"}, "DATAPOINT_API_KEY_FILE"},
		{"bad timeout", map[string]string{"DATAPOINT_API_KEY": "k", "HTTP_TIMEOUT": "soon"}, "HTTP_TIMEOUT"},
		{"zero timeout", map[string]string{"DATAPOINT_API_KEY": "k", "HTTP_TIMEOUT": "0s"}, "HTTP_TIMEOUT"},
		{"bad interval", map[string]string{"DATAPOINT_API_KEY": "k", "PROBE_INTERVAL": "hourly"}, "PROBE_INTERVAL"},
		{"bad metric", map[string]string{"DATAPOINT_API_KEY": "k", "STATION_DISTANCE": "manhattan"}, "STATION_DISTANCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &AppConfig{StationDistance: "planar"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATAPOINT_API_KEY")
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
	assert.Contains(t, err.Error(), "PORT")
}
