package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/dbscan"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 60.0, cfg.Radius)
	assert.Equal(t, 8, cfg.MinPts)
	assert.Equal(t, "brute", cfg.Index)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "euclidean", cfg.Metric)
	assert.Equal(t, "auto", cfg.InputFormat)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "dbscan.toml", "radius = 1.5\nmin_pts = 3\nindex = \"kdtree\"\nworkers = 4\nformat = \"yaml\"\n"},
		{"yaml", "dbscan.yaml", "radius: 1.5\nmin_pts: 3\nindex: kdtree\nworkers: 4\nformat: yaml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			v, err := NewViper(path)
			require.NoError(t, err)
			cfg, err := Load(v)
			require.NoError(t, err)

			assert.Equal(t, 1.5, cfg.Radius)
			assert.Equal(t, 3, cfg.MinPts)
			assert.Equal(t, "kdtree", cfg.Index)
			assert.Equal(t, 4, cfg.Engine().Workers)
			assert.Equal(t, "yaml", cfg.Format)
			assert.Equal(t, "euclidean", cfg.Metric, "unset keys keep their defaults")
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbscan.toml")
	require.NoError(t, os.WriteFile(path, []byte("min_pts = 3\n"), 0o644))
	t.Setenv("DBSCAN_MIN_PTS", "5")

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MinPts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero radius", func(c *Config) { c.Radius = 0 }},
		{"zero min_pts", func(c *Config) { c.MinPts = 0 }},
		{"unknown index", func(c *Config) { c.Index = "rtree" }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"unknown metric", func(c *Config) { c.Metric = "hamming" }},
		{"cosine with grid", func(c *Config) { c.Metric = "cosine"; c.Index = "grid" }},
		{"unknown input format", func(c *Config) { c.InputFormat = "xml" }},
		{"unknown output format", func(c *Config) { c.Format = "html" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewViper("")
			require.NoError(t, err)
			cfg, err := Load(v)
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			assert.True(t, errors.Is(err, dbscan.ErrInvalidConfiguration), "error = %v", err)
		})
	}
}

func TestDistanceFunc_Aliases(t *testing.T) {
	a := dbscan.Point[[]float64]{ID: "a", Payload: []float64{0, 0}}
	b := dbscan.Point[[]float64]{ID: "b", Payload: []float64{3, 4}}
	for metric, want := range map[string]float64{
		"euclidean": 5, "L2": 5,
		"manhattan": 7, "l1": 7,
		"chebyshev": 4, "linf": 4,
	} {
		c := &Config{Metric: metric}
		dist, err := c.DistanceFunc()
		require.NoError(t, err, metric)
		assert.InDelta(t, want, dist(a, b), 1e-12, metric)
	}
}
