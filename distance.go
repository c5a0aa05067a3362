package dbscan

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// Vector metrics over Point[[]float64]. Points of different dimensionality
// are at NaN distance from each other, which Engine.Cluster reports as
// ErrInvalidInput.
var (
	// Euclidean is the L2 distance.
	Euclidean DistanceFunc[[]float64] = lNorm(2)
	// Manhattan is the L1 (city-block) distance.
	Manhattan DistanceFunc[[]float64] = lNorm(1)
	// Chebyshev is the L-infinity distance.
	Chebyshev DistanceFunc[[]float64] = lNorm(math.Inf(1))
)

// Minkowski returns the Minkowski distance of order p. Panics if p < 1.
func Minkowski(p float64) DistanceFunc[[]float64] {
	if p < 1 || math.IsNaN(p) {
		panic("dbscan: Minkowski order must be >= 1")
	}
	return lNorm(p)
}

func lNorm(l float64) DistanceFunc[[]float64] {
	return func(a, b Point[[]float64]) float64 {
		if len(a.Payload) != len(b.Payload) {
			return math.NaN()
		}
		return floats.Distance(a.Payload, b.Payload, l)
	}
}

// Cosine is the cosine distance, 1 - cosine similarity. The distance from a
// zero vector is NaN (0/0).
func Cosine(a, b Point[[]float64]) float64 {
	if len(a.Payload) != len(b.Payload) {
		return math.NaN()
	}
	dot := floats.Dot(a.Payload, b.Payload)
	norms := floats.Norm(a.Payload, 2) * floats.Norm(b.Payload, 2)
	d := 1 - dot/norms
	// Identical directions can round to a tiny negative value.
	if d < 0 {
		return 0
	}
	return d
}

// Vectors wraps coordinate slices as points with IDs "0", "1", ... in order.
// The slices are not copied.
func Vectors(coords ...[]float64) []Point[[]float64] {
	points := make([]Point[[]float64], len(coords))
	for i, c := range coords {
		points[i] = Point[[]float64]{ID: strconv.Itoa(i), Payload: c}
	}
	return points
}

// VectorCoords is the CoordsFunc for vector payloads.
func VectorCoords(v []float64) []float64 { return v }

// ValidVector rejects empty vectors and vectors with NaN or infinite
// components. Use it with WithPointValidator.
func ValidVector(p Point[[]float64]) error {
	if len(p.Payload) == 0 {
		return invalidInputf("point %q has no coordinates", p.ID)
	}
	if !allFinite(p.Payload) {
		return invalidInputf("point %q has non-finite coordinates", p.ID)
	}
	return nil
}

// Centroid returns the mean of the points' coordinates, or nil for an empty
// slice. All points must have the same dimensionality.
func Centroid(points []Point[[]float64]) []float64 {
	if len(points) == 0 {
		return nil
	}
	c := make([]float64, len(points[0].Payload))
	for _, p := range points {
		floats.Add(c, p.Payload)
	}
	floats.Scale(1/float64(len(points)), c)
	return c
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
