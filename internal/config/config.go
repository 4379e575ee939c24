// Package config provides configuration loading and management for the application.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Cadences is the set of accepted automatic-refresh periods in seconds.
// Zero disables the timer entirely; only manual triggers run a cycle then.
var Cadences = []int{0, 30, 60, 120, 300}

// DefaultCadence is used when the configured cadence is not in Cadences.
const DefaultCadence = 60

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string `yaml:"port"`

	// Base URL of the upstream store's REST surface
	StoreURL string `yaml:"store_url"`

	// Credential sent as both the apikey header and the bearer token
	StoreKey string `yaml:"store_key"`

	// Per-resource fetch timeout
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Automatic refresh period in seconds; 0 disables the timer
	RefreshCadence int `yaml:"refresh_cadence"`

	// Compound projection horizon in whole years, clamped to 1..5
	ProjectionYears int `yaml:"projection_years"`

	// IANA timezone name for display timestamps
	DisplayTimezone string `yaml:"display_timezone"`

	// OpenTelemetry endpoint for observability; empty disables tracing
	OtelEndpoint string `yaml:"otel_endpoint"`

	// Whether to expose prometheus metrics
	EnableMetrics bool `yaml:"enable_metrics"`

	// Whether to sign the published state
	EnableSigning bool `yaml:"enable_signing"`

	// Manual-refresh rate limit
	RefreshRPS   float64 `yaml:"refresh_rps"`
	RefreshBurst int     `yaml:"refresh_burst"`
}

// Load creates a new Config from environment variables, overlaid on an
// optional YAML file named by CONFIG_FILE.
func Load() Config {
	cfg := Config{
		Port:            "8080",
		RequestTimeout:  5 * time.Second,
		RefreshCadence:  DefaultCadence,
		ProjectionYears: 1,
		DisplayTimezone: "Asia/Taipei",
		EnableMetrics:   true,
		RefreshRPS:      1.0,
		RefreshBurst:    3,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			logrus.Warnf("Config file %s not loaded: %v", path, err)
		}
	}

	cfg.Port = GetEnvOrDefault("PORT", cfg.Port)
	cfg.StoreURL = GetEnvOrDefault("STORE_URL", cfg.StoreURL)
	cfg.StoreKey = GetEnvOrDefault("STORE_KEY", cfg.StoreKey)
	cfg.RequestTimeout = GetEnvAsDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RefreshCadence = GetEnvAsInt("REFRESH_CADENCE", cfg.RefreshCadence)
	cfg.ProjectionYears = GetEnvAsInt("PROJECTION_YEARS", cfg.ProjectionYears)
	cfg.DisplayTimezone = GetEnvOrDefault("DISPLAY_TZ", cfg.DisplayTimezone)
	cfg.OtelEndpoint = GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OtelEndpoint)
	cfg.EnableMetrics = GetEnvAsBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableSigning = GetEnvAsBool("ENABLE_STATE_SIGNING", cfg.EnableSigning)
	cfg.RefreshRPS = GetEnvAsFloat("REFRESH_RPS", cfg.RefreshRPS)
	cfg.RefreshBurst = GetEnvAsInt("REFRESH_BURST", cfg.RefreshBurst)

	if !ValidCadence(cfg.RefreshCadence) {
		logrus.Warnf("Refresh cadence %ds not in allowed set, using %ds",
			cfg.RefreshCadence, DefaultCadence)
		cfg.RefreshCadence = DefaultCadence
	}

	return cfg
}

// Configured reports whether the upstream store credentials are present.
// Without them the layer performs no fetch attempts at all.
func (c Config) Configured() bool {
	return c.StoreURL != "" && c.StoreKey != ""
}

// ValidCadence reports whether the given period is in the accepted set.
func ValidCadence(seconds int) bool {
	for _, c := range Cadences {
		if seconds == c {
			return true
		}
	}
	return false
}

// loadFile parses a YAML config file over the defaults.
func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsBool retrieves an environment variable as a boolean with a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := GetEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
