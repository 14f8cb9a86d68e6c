package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// Output formats.
const (
	FormatNetCDF4 = "netcdf4"
	FormatCDF     = "cdf"
)

// Config holds all run settings. Defaults reproduce the operational AODN
// gridding setup; environment variables override individual values.
type Config struct {
	DataDir      string
	GridFile     string
	OutputDir    string
	OutputFormat string

	DateWindow  domain.DateWindow
	BufferPower int

	TimeWindow      float64 // seconds
	InfluenceRadius float64 // metres
	Neighbours      int
	Workers         int

	LogLevel  string
	LogFormat string
	LogFile   string

	// Optional surfaces, disabled when empty.
	HTTPAddr        string
	MetricsTextfile string
	KafkaBrokers    []string
	KafkaTopic      string

	GCSBucket          string
	GCSPrefix          string
	// GCSCredentialsFile is a service account key; empty uses application default credentials.
	GCSCredentialsFile string

	ShutdownTimeout time.Duration
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		DataDir:      "/data/satellite/AODN_altm",
		GridFile:     "gridInfo.nc",
		OutputDir:    ".",
		OutputFormat: FormatNetCDF4,
		DateWindow: domain.DateWindow{
			Start: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2021, time.December, 31, 23, 0, 0, 0, time.UTC),
		},
		BufferPower:     10,
		TimeWindow:      1800,
		InfluenceRadius: 25000,
		Neighbours:      8,
		Workers:         5,
		LogLevel:        "info",
		LogFormat:       "json",
		KafkaTopic:      "altimeter-grid-runs",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load overlays environment variables on the defaults.
func Load() (*Config, error) {
	cfg := Default()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdownTimeout

	cfg.DataDir = sharedcfg.EnvOrDefault("DATA_DIR", cfg.DataDir)
	cfg.GridFile = sharedcfg.EnvOrDefault("GRID_FILE", cfg.GridFile)
	cfg.OutputDir = sharedcfg.EnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.OutputFormat = sharedcfg.EnvOrDefault("OUTPUT_FORMAT", cfg.OutputFormat)
	cfg.LogLevel = sharedcfg.EnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = sharedcfg.EnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	cfg.MetricsTextfile = os.Getenv("METRICS_TEXTFILE")
	cfg.KafkaBrokers = sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = sharedcfg.EnvOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.GCSBucket = os.Getenv("GCS_BUCKET")
	cfg.GCSPrefix = os.Getenv("GCS_PREFIX")
	cfg.GCSCredentialsFile = os.Getenv("GCS_CREDENTIALS_FILE")

	if cfg.DateWindow.Start, err = parseDate("DATE_MIN", cfg.DateWindow.Start); err != nil {
		return nil, err
	}
	if cfg.DateWindow.End, err = parseDate("DATE_MAX", cfg.DateWindow.End); err != nil {
		return nil, err
	}
	if cfg.BufferPower, err = parseInt("BUFFER_POWER", cfg.BufferPower, 1, 12); err != nil {
		return nil, err
	}
	if cfg.Neighbours, err = parseInt("NEIGHBOURS", cfg.Neighbours, 1, 1000); err != nil {
		return nil, err
	}
	if cfg.Workers, err = parseInt("RESAMPLE_WORKERS", cfg.Workers, 1, 256); err != nil {
		return nil, err
	}
	if cfg.TimeWindow, err = parsePositive("TIME_WINDOW", cfg.TimeWindow); err != nil {
		return nil, err
	}
	if cfg.InfluenceRadius, err = parsePositive("INFLUENCE_RADIUS_M", cfg.InfluenceRadius); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.OutputFormat != FormatNetCDF4 && c.OutputFormat != FormatCDF {
		return fmt.Errorf("invalid OUTPUT_FORMAT %q: must be %s or %s", c.OutputFormat, FormatNetCDF4, FormatCDF)
	}
	if c.DateWindow.End.Before(c.DateWindow.Start) {
		return errors.New("DATE_MAX is before DATE_MIN")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// BufferCapacity is the raw accumulation capacity, 10^BufferPower records.
func (c *Config) BufferCapacity() int {
	return domain.CapacityForPower(c.BufferPower)
}

func parseDate(key string, def time.Time) (time.Time, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

func parseInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be %d-%d", key, lo, hi)
	}
	return n, nil
}

func parsePositive(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return v, nil
}
