package dbscan

import "context"

// NeighborIndex answers region queries over the point set of a single run.
type NeighborIndex interface {
	// RegionQuery returns the indices of every point within the run's radius
	// of point i, including i itself, in ascending index order.
	RegionQuery(i int) ([]int, error)
}

// NeighborFinder builds a NeighborIndex for one run. Implementations may
// accelerate the search with a spatial structure, but must return exactly the
// neighbor sets the brute-force search would, in the same order.
type NeighborFinder[T any] interface {
	Index(points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error)
}

// ContextFinder is implemented by finders whose Index does enough work to be
// worth cancelling. The engine calls IndexContext instead of Index when a
// finder provides it.
type ContextFinder[T any] interface {
	IndexContext(ctx context.Context, points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error)
}

func buildIndex[T any](ctx context.Context, f NeighborFinder[T], points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error) {
	if cf, ok := f.(ContextFinder[T]); ok {
		return cf.IndexContext(ctx, points, dist, radius)
	}
	return f.Index(points, dist, radius)
}

// within evaluates dist(a, b) and reports whether it is <= radius.
func within[T any](dist DistanceFunc[T], a, b Point[T], radius float64) (bool, error) {
	d := dist(a, b)
	if err := checkDistance(d, a, b); err != nil {
		return false, err
	}
	return d <= radius, nil
}

type bruteForceFinder[T any] struct{}

// BruteForce returns the exhaustive NeighborFinder: each region query
// evaluates the distance from the query point to every point, O(n) per query
// and O(n²) per run. It works with any distance function.
func BruteForce[T any]() NeighborFinder[T] {
	return bruteForceFinder[T]{}
}

func (bruteForceFinder[T]) Index(points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error) {
	return &bruteForceIndex[T]{points: points, dist: dist, radius: radius}, nil
}

type bruteForceIndex[T any] struct {
	points []Point[T]
	dist   DistanceFunc[T]
	radius float64
}

func (idx *bruteForceIndex[T]) RegionQuery(i int) ([]int, error) {
	p := idx.points[i]
	var neighbors []int
	for j, q := range idx.points {
		ok, err := within(idx.dist, p, q, idx.radius)
		if err != nil {
			return nil, err
		}
		if ok {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors, nil
}

// CoordsFunc extracts the coordinates that a spatial NeighborFinder indexes a
// payload by. All payloads of one run must yield the same number of finite
// coordinates.
type CoordsFunc[T any] func(payload T) []float64

// extractCoords runs coords over every point and validates the result.
func extractCoords[T any](points []Point[T], coords CoordsFunc[T], minDims int) ([][]float64, error) {
	if coords == nil {
		return nil, invalidConfigf("spatial neighbor finder requires a coordinate function")
	}
	out := make([][]float64, len(points))
	dims := -1
	for i, p := range points {
		c := coords(p.Payload)
		if len(c) < minDims {
			return nil, invalidInputf("point %q has %d coordinates, need at least %d", p.ID, len(c), minDims)
		}
		if dims == -1 {
			dims = len(c)
		} else if len(c) != dims {
			return nil, invalidInputf("point %q has %d coordinates, expected %d", p.ID, len(c), dims)
		}
		if !allFinite(c) {
			return nil, invalidInputf("point %q has non-finite coordinates", p.ID)
		}
		out[i] = c
	}
	return out, nil
}
