package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/todays-weather/internal/datapoint"
	"github.com/i474232898/todays-weather/internal/geo"
)

type AppConfig struct {
	Port string

	// DataPoint access.
	APIKey           string
	BaseURL          string
	ForecastLocation string
	ObservationSite  string
	Region           string
	HTTPTimeout      time.Duration

	// StationDistance selects the nearest-station metric: "planar" or "haversine".
	StationDistance string

	// ProbeInterval controls the upstream probe (0 = disabled).
	ProbeInterval time.Duration

	GeocoderAPIKey string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from .env, an optional config.yaml and the
// environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // OK if missing

	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATAPOINT_API_KEY", "")
	v.SetDefault("DATAPOINT_API_KEY_FILE", "")
	v.SetDefault("DATAPOINT_BASE_URL", datapoint.DefaultBaseURL)
	v.SetDefault("FORECAST_LOCATION", "352790")
	v.SetDefault("OBSERVATION_SITE", "3238")
	v.SetDefault("REGION", "508")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("STATION_DISTANCE", "planar")
	v.SetDefault("PROBE_INTERVAL", "0")
	v.SetDefault("GEOCODER_API_KEY", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:             v.GetString("PORT"),
		APIKey:           strings.TrimSpace(v.GetString("DATAPOINT_API_KEY")),
		BaseURL:          v.GetString("DATAPOINT_BASE_URL"),
		ForecastLocation: v.GetString("FORECAST_LOCATION"),
		ObservationSite:  v.GetString("OBSERVATION_SITE"),
		Region:           v.GetString("REGION"),
		StationDistance:  v.GetString("STATION_DISTANCE"),
		GeocoderAPIKey:   v.GetString("GEOCODER_API_KEY"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}

	timeout, err := time.ParseDuration(v.GetString("HTTP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	interval, err := parseInterval(v.GetString("PROBE_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: %w", err)
	}
	cfg.ProbeInterval = interval

	if cfg.APIKey == "" {
		if path := v.GetString("DATAPOINT_API_KEY_FILE"); path != "" {
			key, err := readKeyFile(path)
			if err != nil {
				return nil, fmt.Errorf("read DATAPOINT_API_KEY_FILE: %w", err)
			}
			cfg.APIKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and sane.
func (c *AppConfig) Validate() error {
	var errs []string

	if c.APIKey == "" {
		errs = append(errs, "DATAPOINT_API_KEY or DATAPOINT_API_KEY_FILE is required")
	}
	if c.BaseURL == "" {
		errs = append(errs, "DATAPOINT_BASE_URL must not be empty")
	}
	if c.ForecastLocation == "" || c.ObservationSite == "" || c.Region == "" {
		errs = append(errs, "FORECAST_LOCATION, OBSERVATION_SITE and REGION must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, "HTTP_TIMEOUT must be positive")
	}
	if c.ProbeInterval < 0 {
		errs = append(errs, "PROBE_INTERVAL must not be negative")
	}
	if _, err := geo.ParseMetric(c.StationDistance); err != nil {
		errs = append(errs, "STATION_DISTANCE: "+err.Error())
	}
	if c.Port == "" {
		errs = append(errs, "PORT must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Endpoints builds the DataPoint endpoint table for this configuration.
func (c *AppConfig) Endpoints() datapoint.Endpoints {
	return datapoint.DefaultEndpoints(c.BaseURL, c.ForecastLocation, c.ObservationSite, c.Region)
}

// parseInterval accepts a Go duration; a bare "0" disables the probe.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// readKeyFile returns the first line of path.
func readKeyFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s is empty", path)
	}
	key := strings.TrimSpace(sc.Text())
	if key == "" {
		return "", fmt.Errorf("%s: first line is empty", path)
	}
	return key, nil
}
