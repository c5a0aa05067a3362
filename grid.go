package dbscan

import (
	"math"
	"sort"
)

const (
	// estimatedPointsPerCell sizes the grid map up front.
	estimatedPointsPerCell = 4
	// gridSlack keeps cells strictly wider than the radius, so rounding in
	// x/cellSize cannot push a neighbor two cells away.
	gridSlack = 1e-9
)

type gridFinder[T any] struct {
	coords CoordsFunc[T]
}

// Grid returns a NeighborFinder that buckets points into a uniform grid over
// the first two coordinates returned by coords, with cells as wide as the
// run's radius. A region query inspects the 3x3 block of cells around the
// query point and confirms every candidate with the distance function.
//
// The neighbor sets are exact whenever dist(a, b) >= max(|ax-bx|, |ay-by|),
// which holds for the Euclidean, Manhattan, Chebyshev and Minkowski metrics
// over any coordinate set that includes those two axes.
func Grid[T any](coords CoordsFunc[T]) NeighborFinder[T] {
	return gridFinder[T]{coords: coords}
}

type cellKey struct{ x, y int64 }

type gridIndex[T any] struct {
	points   []Point[T]
	xy       [][]float64
	dist     DistanceFunc[T]
	radius   float64
	cellSize float64
	cells    map[cellKey][]int // cell → point indices, ascending
}

func (g gridFinder[T]) Index(points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error) {
	xy, err := extractCoords(points, g.coords, 2)
	if err != nil {
		return nil, err
	}
	idx := &gridIndex[T]{
		points:   points,
		xy:       xy,
		dist:     dist,
		radius:   radius,
		cellSize: radius * (1 + gridSlack),
		cells:    make(map[cellKey][]int, len(points)/estimatedPointsPerCell+1),
	}
	for i, c := range xy {
		k := idx.cellOf(c[0], c[1])
		idx.cells[k] = append(idx.cells[k], i)
	}
	return idx, nil
}

func (idx *gridIndex[T]) cellOf(x, y float64) cellKey {
	return cellKey{
		x: int64(math.Floor(x / idx.cellSize)),
		y: int64(math.Floor(y / idx.cellSize)),
	}
}

func (idx *gridIndex[T]) RegionQuery(i int) ([]int, error) {
	p := idx.points[i]
	base := idx.cellOf(idx.xy[i][0], idx.xy[i][1])

	var candidates []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			candidates = append(candidates, idx.cells[cellKey{base.x + dx, base.y + dy}]...)
		}
	}
	// Cells are visited in grid order; restore input order.
	sort.Ints(candidates)

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
