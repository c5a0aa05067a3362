package dbscan

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// kdRandoms is the number of elements sampled when choosing a split median.
const kdRandoms = 100

// kdSlack widens the squared search radius so that rounding in the squared
// distance can never drop a point the caller's metric places on the boundary.
// Candidates are always confirmed with the distance function.
const kdSlack = 1e-9

type kdTreeFinder[T any] struct {
	coords CoordsFunc[T]
}

// KDTree returns a NeighborFinder backed by a k-d tree over the coordinates
// returned by coords. A region query collects every point inside the
// Euclidean ball of the run's radius and confirms each candidate with the
// distance function.
//
// The neighbor sets are exact whenever dist(a, b) is at least the Euclidean
// distance between the coordinates of a and b: the Euclidean metric itself,
// Manhattan, and Minkowski with p <= 2.
func KDTree[T any](coords CoordsFunc[T]) NeighborFinder[T] {
	return kdTreeFinder[T]{coords: coords}
}

type kdTreeIndex[T any] struct {
	points []Point[T]
	at     []kdPoint // by input index
	tree   *kdtree.Tree
	dist   DistanceFunc[T]
	radius float64
	r2     float64
}

func (f kdTreeFinder[T]) Index(points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error) {
	coords, err := extractCoords(points, f.coords, 1)
	if err != nil {
		return nil, err
	}
	at := make([]kdPoint, len(points))
	for i, c := range coords {
		at[i] = kdPoint{idx: i, at: c}
	}
	// kdtree.New reorders its input, so build from a copy.
	build := make(kdPoints, len(at))
	copy(build, at)

	idx := &kdTreeIndex[T]{
		points: points,
		at:     at,
		dist:   dist,
		radius: radius,
		r2:     radius * radius * (1 + kdSlack),
	}
	if len(build) > 0 {
		idx.tree = kdtree.New(build, false)
	}
	return idx, nil
}

func (idx *kdTreeIndex[T]) RegionQuery(i int) ([]int, error) {
	if idx.tree == nil {
		return nil, nil
	}
	keeper := kdtree.NewDistKeeper(idx.r2)
	idx.tree.NearestSet(keeper, idx.at[i])

	candidates := make([]int, 0, keeper.Len())
	for _, c := range keeper.Heap {
		candidates = append(candidates, c.Comparable.(kdPoint).idx)
	}
	// The keeper orders by distance; restore input order.
	sort.Ints(candidates)

	p := idx.points[i]
	neighbors := candidates[:0]
	for _, j := range candidates {
		ok, err := within(idx.dist, p, idx.points[j], idx.radius)
		if err != nil {
			return nil, err
		}
		if ok {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors, nil
}

// kdPoint is a point in the tree that remembers its input index.
type kdPoint struct {
	idx int
	at  []float64
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	return p.at[d] - q.at[d]
}

func (p kdPoint) Dims() int { return len(p.at) }

// Distance returns the squared Euclidean distance, as kdtree requires.
func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	var sum float64
	for d, v := range p.at {
		delta := v - q.at[d]
		sum += delta * delta
	}
	return sum
}

type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p kdPoints) Len() int                              { return len(p) }
func (p kdPoints) Pivot(d kdtree.Dim) int                { return kdPlane{kdPoints: p, Dim: d}.Pivot() }
func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// kdPlane lets kdPoints be partitioned along one dimension.
type kdPlane struct {
	kdtree.Dim
	kdPoints
}

func (p kdPlane) Less(i, j int) bool { return p.kdPoints[i].at[p.Dim] < p.kdPoints[j].at[p.Dim] }
func (p kdPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfRandoms(p, kdRandoms))
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}
func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}
