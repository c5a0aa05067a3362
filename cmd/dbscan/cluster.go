package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TrevorS/dbscan"
	"github.com/TrevorS/dbscan/internal/config"
	"github.com/TrevorS/dbscan/internal/logging"
	"github.com/TrevorS/dbscan/internal/pointio"
	"github.com/TrevorS/dbscan/internal/report"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"radius":       "radius",
	"min-pts":      "min_pts",
	"index":        "index",
	"workers":      "workers",
	"metric":       "metric",
	"input-format": "input_format",
	"format":       "format",
	"json-logs":    "json_logs",
	"verbose":      "verbose",
}

func newClusterCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "cluster [file|-]",
		Short: "Cluster points from a file or standard input",
		Long: `Read points and print the clusters found by DBSCAN.

CSV input has one point per line: id,x,y[,z...]. An optional header line is
skipped. JSON input is an array of {"id": "...", "coords": [...]} objects.

Settings come from flags, DBSCAN_* environment variables (DBSCAN_RADIUS,
DBSCAN_MIN_PTS, ...) and an optional --config file, in that order of
precedence.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(configFile)
			if err != nil {
				return err
			}
			for flag, key := range flagKeys {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return errors.Wrapf(err, "failed to bind flag --%s", flag)
				}
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			in, closeInput, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeInput()

			return runCluster(cmd, cfg, in)
		},
	}

	d := dbscan.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "config file (toml, yaml or json)")
	f.Float64P("radius", "r", d.Radius, "neighborhood radius")
	f.IntP("min-pts", "m", d.MinPts, "minimum neighborhood size of a core point, itself included")
	f.String("index", string(d.Index), "neighbor search: brute, grid or kdtree")
	f.IntP("workers", "w", d.Workers, "goroutines answering region queries; the metric must be safe for concurrent use")
	f.String("metric", "euclidean", "distance: euclidean, manhattan, chebyshev or cosine")
	f.String("input-format", pointio.FormatAuto, "input format: auto, csv or json")
	f.StringP("format", "o", "json", "output format: json, yaml or table")
	f.Bool("json-logs", false, "write logs as JSON")
	f.BoolP("verbose", "v", false, "log debug details")
	return cmd
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open input")
	}
	return f, func() { _ = f.Close() }, nil
}

func runCluster(cmd *cobra.Command, cfg *config.Config, in io.Reader) error {
	logger := logging.New(cmd.ErrOrStderr(), cfg.JSONLogs, cfg.Verbose)
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	points, err := pointio.Read(in, cfg.InputFormat)
	if err != nil {
		return err
	}
	logger.Debug("points loaded", zap.Int("count", len(points)))

	dist, err := cfg.DistanceFunc()
	if err != nil {
		return err
	}
	engine, err := dbscan.NewFromConfig(cfg.Engine(), dist, dbscan.VectorCoords,
		dbscan.WithLogger[[]float64](logger),
		dbscan.WithPointValidator(dbscan.ValidVector),
	)
	if err != nil {
		return err
	}

	res, err := engine.ClusterContext(cmd.Context(), points)
	if err != nil {
		return err
	}
	logger.Info("clustering complete",
		zap.Int("points", len(points)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Int("noise", len(res.Noise)),
		zap.Duration("elapsed", res.Stats.Elapsed),
	)

	r := report.New(report.Params{RunID: runID, Config: cfg.Engine(), Metric: cfg.Metric}, res)
	return report.Write(cmd.OutOrStdout(), r, cfg.Format)
}
