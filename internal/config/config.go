// Package config loads the settings of the dbscan command from defaults,
// an optional config file, DBSCAN_* environment variables and flags, in
// increasing order of precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/TrevorS/dbscan"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "DBSCAN"

// Config is the complete configuration of one command invocation.
type Config struct {
	Radius      float64 `mapstructure:"radius"`
	MinPts      int     `mapstructure:"min_pts"`
	Index       string  `mapstructure:"index"`
	Workers     int     `mapstructure:"workers"`
	Metric      string  `mapstructure:"metric"`
	InputFormat string  `mapstructure:"input_format"`
	Format      string  `mapstructure:"format"`
	JSONLogs    bool    `mapstructure:"json_logs"`
	Verbose     bool    `mapstructure:"verbose"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	d := dbscan.DefaultConfig()
	v.SetDefault("radius", d.Radius)
	v.SetDefault("min_pts", d.MinPts)
	v.SetDefault("index", string(d.Index))
	v.SetDefault("workers", d.Workers)
	v.SetDefault("metric", "euclidean")
	v.SetDefault("input_format", "auto")
	v.SetDefault("format", "json")
	v.SetDefault("json_logs", false)
	v.SetDefault("verbose", false)
}

// NewViper returns a viper instance with defaults and environment binding.
// If configFile is non-empty it is read as well; its type follows the file
// extension (toml, yaml, json).
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the engine parameters and the names of the metric,
// index and formats.
func (c *Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return err
	}
	if _, err := c.DistanceFunc(); err != nil {
		return err
	}
	switch c.InputFormat {
	case "auto", "csv", "json":
	default:
		return errors.Wrapf(dbscan.ErrInvalidConfiguration, "unknown input format %q", c.InputFormat)
	}
	switch c.Format {
	case "json", "yaml", "table":
	default:
		return errors.Wrapf(dbscan.ErrInvalidConfiguration, "unknown output format %q", c.Format)
	}
	return nil
}

// Engine returns the library configuration.
func (c *Config) Engine() dbscan.Config {
	return dbscan.Config{
		Radius:  c.Radius,
		MinPts:  c.MinPts,
		Index:   dbscan.IndexKind(c.Index),
		Workers: c.Workers,
	}
}

// DistanceFunc resolves the configured metric name.
func (c *Config) DistanceFunc() (dbscan.DistanceFunc[[]float64], error) {
	switch strings.ToLower(c.Metric) {
	case "euclidean", "l2":
		return dbscan.Euclidean, nil
	case "manhattan", "l1":
		return dbscan.Manhattan, nil
	case "chebyshev", "linf":
		return dbscan.Chebyshev, nil
	case "cosine":
		if c.Index != "" && dbscan.IndexKind(c.Index) != dbscan.IndexBruteForce {
			return nil, errors.Wrapf(dbscan.ErrInvalidConfiguration,
				"metric cosine requires index %q, got %q", dbscan.IndexBruteForce, c.Index)
		}
		return dbscan.Cosine, nil
	default:
		return nil, errors.Wrapf(dbscan.ErrInvalidConfiguration, "unknown metric %q", c.Metric)
	}
}
