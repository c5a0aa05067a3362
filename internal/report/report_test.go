package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/dbscan"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	e, err := dbscan.New(1.5, 3, dbscan.Euclidean)
	require.NoError(t, err)
	res, err := e.Cluster(dbscan.Vectors(
		[]float64{0, 0}, []float64{0, 1}, []float64{1, 0}, []float64{1, 1},
		[]float64{10, 10},
	))
	require.NoError(t, err)
	return New(Params{RunID: "run-1", Config: dbscan.Config{Radius: 1.5, MinPts: 3, Index: dbscan.IndexBruteForce}, Metric: "euclidean"}, res)
}

func TestNew(t *testing.T) {
	r := sampleReport(t)
	assert.Equal(t, 5, r.Points)
	require.Len(t, r.Clusters, 1)
	assert.Equal(t, Cluster{ID: 0, Size: 4, Centroid: []float64{0.5, 0.5}, Points: []string{"0", "1", "2", "3"}}, r.Clusters[0])
	assert.Equal(t, []string{"4"}, r.Noise)
	assert.Equal(t, 5, r.Stats.RegionQueries)
	assert.Equal(t, 25, r.Stats.DistanceCalls)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(t), "json"))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 3, got.MinPts)
	assert.Equal(t, []string{"4"}, got.Noise)
	assert.Contains(t, buf.String(), `"min_pts": 3`)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(t), "yaml"))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Clusters, 1)
	assert.Equal(t, []string{"0", "1", "2", "3"}, got.Clusters[0].Points)
	assert.Contains(t, buf.String(), "run_id: run-1")
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(t), "table"))

	out := buf.String()
	assert.Contains(t, out, "run run-1: 5 points, 1 clusters, 1 noise")
	assert.Contains(t, out, "Centroid")
	assert.Contains(t, out, "(0.5, 0.5)")
	assert.Contains(t, out, "noise")
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, sampleReport(t), "xml"))
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "a b", abbreviate([]string{"a", "b"}))

	many := strings.Fields("a b c d e f g h i j")
	assert.Equal(t, "a b c d e f g h … +2", abbreviate(many))
}
