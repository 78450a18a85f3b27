// Package config loads the csvviewer configuration from defaults, an
// optional csvviewer.yaml file, CSVVIEWER_ environment variables, and CLI
// flags, in ascending precedence.
package config

import "github.com/maximuthking/csv-viewer/pkg/core"

// Default configuration values.
const (
	DefaultDataDir     = "data"
	DefaultAPIAddr     = "127.0.0.1:8400"
	DefaultUIAddr      = "127.0.0.1:8401"
	DefaultSampleSize  = 20480
	DefaultPageSize    = 50
	DefaultRecentLimit = 5
)

// APIConfig configures the analytic HTTP service.
type APIConfig struct {
	Addr string `koanf:"addr"`
}

// UIConfig configures the dashboard web server.
type UIConfig struct {
	Addr string `koanf:"addr"`

	// APIBaseURL is the base URL of the analytic service the dashboard
	// fetches through. Empty means an API server is run in-process and the
	// UI talks to it over loopback.
	APIBaseURL string `koanf:"api_base_url"`

	// SessionSecret keys the browser session cookie. A random secret is
	// generated per process when empty.
	SessionSecret string `koanf:"session_secret"`

	// Watch reloads the dataset catalog when files change in the data
	// directory.
	Watch bool `koanf:"watch"`
}

// ChartConfig holds chart session defaults.
type ChartConfig struct {
	TimeBucket    string `koanf:"time_bucket"`
	Interpolation string `koanf:"interpolation"`
}

// Config is the full csvviewer configuration.
type Config struct {
	// DataDir is the directory holding the CSV and Parquet datasets.
	DataDir string `koanf:"data_dir"`

	// SampleSize is the number of rows DuckDB samples for CSV type
	// inference.
	SampleSize int `koanf:"sample_size"`

	// ParquetRowGroupSize is the row group size used when converting CSV
	// files to Parquet.
	ParquetRowGroupSize int `koanf:"parquet_row_group_size"`

	// SummaryRespectsFilters computes column statistics over the filtered
	// rows instead of the whole dataset.
	SummaryRespectsFilters bool `koanf:"summary_respects_filters"`

	PageSize    int  `koanf:"page_size"`
	RecentLimit int  `koanf:"recent_limit"`
	Verbose     bool `koanf:"verbose"`

	API   APIConfig   `koanf:"api"`
	UI    UIConfig    `koanf:"ui"`
	Chart ChartConfig `koanf:"chart"`
}

// ApplyDefaults fills unset fields with default values.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.SampleSize <= 0 {
		c.SampleSize = DefaultSampleSize
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = DefaultRecentLimit
	}
	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	if c.UI.Addr == "" {
		c.UI.Addr = DefaultUIAddr
	}
	if c.Chart.TimeBucket == "" {
		c.Chart.TimeBucket = core.DefaultTimeBucket
	}
	if c.Chart.Interpolation == "" {
		c.Chart.Interpolation = string(core.InterpolationNone)
	}
}
