package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/internal/generator"
	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// SetDefaults registers the default of every key and enables FLOWGEN_*
// environment overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("hosts", 0)
	v.SetDefault("load", DEFAULT_LOAD)
	v.SetDefault("bandwidth", DEFAULT_BANDWIDTH)
	v.SetDefault("time", DEFAULT_TIME)
	v.SetDefault("cdf", DEFAULT_CDF)
	v.SetDefault("output", DEFAULT_OUTPUT)
	v.SetDefault("base-time", DEFAULT_BASE_TIME)
	v.SetDefault("port", DEFAULT_PORT)
	v.SetDefault("seed", 0)
	v.SetDefault("manifest", "")
	v.SetDefault("log-level", DEFAULT_LOG_LEVEL)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the options held by v.
func Load(v *viper.Viper) (*Options, error) {
	var options Options

	if err := v.Unmarshal(&options); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	return &options, nil
}

func (o *Options) Validate() error {
	if o.Hosts <= 0 {
		return fmt.Errorf("%w: number of hosts is required (--hosts)", ErrConfiguration)
	}

	if !(o.Load > 0) || math.IsInf(o.Load, 0) {
		return fmt.Errorf("%w: load must be a positive number, got %v", ErrConfiguration, o.Load)
	}

	if _, err := ParseBandwidth(o.Bandwidth); err != nil {
		return err
	}

	if !(o.Time >= 0) || math.IsInf(o.Time, 0) {
		return fmt.Errorf("%w: run time must be a non-negative number of seconds, got %v", ErrConfiguration, o.Time)
	}

	if !(o.BaseTime >= 0) || math.IsInf(o.BaseTime, 0) {
		return fmt.Errorf("%w: base time must be a non-negative number of seconds, got %v", ErrConfiguration, o.BaseTime)
	}

	if o.Time+o.BaseTime >= MAX_SECONDS {
		return fmt.Errorf("%w: base time plus run time must stay below %v seconds, got %v", ErrConfiguration, MAX_SECONDS, o.Time+o.BaseTime)
	}

	if o.CDF == "" {
		return fmt.Errorf("%w: a flow size distribution file is required (--cdf)", ErrConfiguration)
	}

	if o.Output == "" {
		return fmt.Errorf("%w: an output destination is required (--output)", ErrConfiguration)
	}

	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return nil
}

// ParseBandwidth converts a bandwidth such as "10G", "100M", "1.5K", "400",
// "0.5" or "1e9" into bits per second. Unsuffixed values are raw bits per
// second; K/M/G/T/P suffixes are decimal and may end in "b". Binary ("Gi")
// and space separated ("10 G") forms are rejected.
func ParseBandwidth(bandwidth string) (float64, error) {
	trimmed := strings.TrimSpace(bandwidth)

	if trimmed == "" || strings.ContainsAny(trimmed, " \t\r\n") || strings.ContainsAny(trimmed, "iI") {
		return 0, fmt.Errorf("%w: bandwidth format incorrect: %q", ErrConfiguration, bandwidth)
	}

	bps, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		suffixed, err := units.FromHumanSize(trimmed)
		if err != nil {
			return 0, fmt.Errorf("%w: bandwidth format incorrect: %q", ErrConfiguration, bandwidth)
		}

		bps = float64(suffixed)
	}

	if !(bps > 0) || math.IsInf(bps, 0) {
		return 0, fmt.Errorf("%w: bandwidth must be a positive number of bits per second: %q", ErrConfiguration, bandwidth)
	}

	return bps, nil
}

// GeneratorOptions converts the run parameters to the generator's units.
func (o *Options) GeneratorOptions() (*generator.GlobalOptions, error) {
	bandwidth, err := ParseBandwidth(o.Bandwidth)
	if err != nil {
		return nil, err
	}

	return &generator.GlobalOptions{
		NumHosts:  o.Hosts,
		Load:      o.Load,
		Bandwidth: bandwidth,
		Duration:  int64(math.Round(o.Time * generator.NANOSECONDS)),
		BaseTime:  int64(math.Round(o.BaseTime * generator.NANOSECONDS)),
	}, nil
}

// ResolveSeed returns the configured seed, or a time based one when unset.
func (o *Options) ResolveSeed() uint64 {
	if o.Seed != 0 {
		return o.Seed
	}
	return uint64(time.Now().UnixNano())
}

func (o *Options) LogLevelValue() logrus.Level {
	level, err := logrus.ParseLevel(o.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
