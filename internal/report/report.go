// Package report renders the outcome of a clustering run as JSON, YAML or a
// terminal table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/dbscan"
)

// Report is the serializable summary of one run.
type Report struct {
	RunID    string    `json:"run_id" yaml:"run_id"`
	Radius   float64   `json:"radius" yaml:"radius"`
	MinPts   int       `json:"min_pts" yaml:"min_pts"`
	Index    string    `json:"index" yaml:"index"`
	Metric   string    `json:"metric" yaml:"metric"`
	Points   int       `json:"points" yaml:"points"`
	Clusters []Cluster `json:"clusters" yaml:"clusters"`
	Noise    []string  `json:"noise" yaml:"noise"`
	Stats    Stats     `json:"stats" yaml:"stats"`
}

// Cluster lists one cluster's members by point ID.
type Cluster struct {
	ID       int       `json:"id" yaml:"id"`
	Size     int       `json:"size" yaml:"size"`
	Centroid []float64 `json:"centroid" yaml:"centroid,flow"`
	Points   []string  `json:"points" yaml:"points,flow"`
}

// Stats mirrors dbscan.Stats with the elapsed time in milliseconds.
type Stats struct {
	RegionQueries int     `json:"region_queries" yaml:"region_queries"`
	DistanceCalls int     `json:"distance_calls" yaml:"distance_calls"`
	ElapsedMS     float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Params describes the run that produced a result.
type Params struct {
	RunID  string
	Config dbscan.Config
	Metric string
}

// New builds a Report from a vector clustering result.
func New(p Params, res *dbscan.Result[[]float64]) *Report {
	r := &Report{
		RunID:    p.RunID,
		Radius:   p.Config.Radius,
		MinPts:   p.Config.MinPts,
		Index:    string(p.Config.Index),
		Metric:   p.Metric,
		Points:   len(res.Labels),
		Clusters: make([]Cluster, 0, len(res.Clusters)),
		Noise:    ids(res.Noise),
		Stats: Stats{
			RegionQueries: res.Stats.RegionQueries,
			DistanceCalls: res.Stats.DistanceCalls,
			ElapsedMS:     float64(res.Stats.Elapsed.Microseconds()) / 1000,
		},
	}
	for _, c := range res.Clusters {
		r.Clusters = append(r.Clusters, Cluster{
			ID:       c.ID,
			Size:     len(c.Points),
			Centroid: dbscan.Centroid(c.Points),
			Points:   ids(c.Points),
		})
	}
	return r
}

func ids(points []dbscan.Point[[]float64]) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.ID
	}
	return out
}

// Write renders r to w in the named format: json, yaml or table.
func Write(w io.Writer, r *Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(r), "failed to encode JSON report")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "failed to encode YAML report")
		}
		return errors.Wrap(enc.Close(), "failed to flush YAML report")
	case "table":
		return writeTable(w, r)
	default:
		return errors.Newf("unknown output format %q", format)
	}
}

// maxListedIDs bounds the member column of the table view.
const maxListedIDs = 8

func writeTable(w io.Writer, r *Report) error {
	rows := [][]string{{"Cluster", "Size", "Centroid", "Points"}}
	for _, c := range r.Clusters {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			strconv.Itoa(c.Size),
			formatVector(c.Centroid),
			abbreviate(c.Points),
		})
	}
	if len(r.Noise) > 0 {
		rows = append(rows, []string{"noise", strconv.Itoa(len(r.Noise)), "", abbreviate(r.Noise)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintf(w, "run %s: %d points, %d clusters, %d noise (radius=%g min_pts=%d index=%s metric=%s)\n%s\n",
		r.RunID, r.Points, len(r.Clusters), len(r.Noise), r.Radius, r.MinPts, r.Index, r.Metric, table)
	return errors.Wrap(err, "failed to write table")
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', 4, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func abbreviate(ids []string) string {
	if len(ids) <= maxListedIDs {
		return strings.Join(ids, " ")
	}
	return fmt.Sprintf("%s … +%d", strings.Join(ids[:maxListedIDs], " "), len(ids)-maxListedIDs)
}
