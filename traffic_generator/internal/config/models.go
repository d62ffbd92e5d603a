package config

import "errors"

// ErrConfiguration is returned for missing or unusable run parameters.
var ErrConfiguration = errors.New("configuration error")

const (
	ENV_PREFIX = "FLOWGEN"

	DEFAULT_LOAD      = 0.3
	DEFAULT_BANDWIDTH = "10G"
	DEFAULT_TIME      = 10.0
	DEFAULT_CDF       = "uniform_distribution.txt"
	DEFAULT_OUTPUT    = "tmp_traffic.txt"
	DEFAULT_BASE_TIME = 2.0
	DEFAULT_PORT      = 100
	DEFAULT_LOG_LEVEL = "info"

	// MAX_SECONDS keeps base time plus run time, in nanoseconds, well inside
	// int64.
	MAX_SECONDS = 9e9
)

// Options holds every run parameter, as read from flags, FLOWGEN_*
// environment variables or a config file.
type Options struct {
	Hosts     int     `mapstructure:"hosts"`
	Load      float64 `mapstructure:"load"`
	Bandwidth string  `mapstructure:"bandwidth"` // bits per second, K/M/G suffixes
	Time      float64 `mapstructure:"time"`      // seconds
	CDF       string  `mapstructure:"cdf"`
	Output    string  `mapstructure:"output"`
	BaseTime  float64 `mapstructure:"base-time"` // seconds
	Port      uint16  `mapstructure:"port"`
	Seed      uint64  `mapstructure:"seed"`
	Manifest  string  `mapstructure:"manifest"`
	LogLevel  string  `mapstructure:"log-level"`
}
