package dbscan

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

type parallelFinder[T any] struct {
	inner   NeighborFinder[T]
	workers int
}

// Parallel wraps f so that Index answers every region query up front,
// splitting the points into contiguous ranges across workers goroutines.
// RegionQuery then returns the stored neighbor lists. Every point is queried
// exactly once per run anyway, so the total work is unchanged; the results
// are identical to those of f.
//
// The distance function, and f's index, must be safe for concurrent use.
// Workers check for cancellation before each query when the engine runs
// with ClusterContext. If workers <= 1, f is returned unchanged.
func Parallel[T any](f NeighborFinder[T], workers int) NeighborFinder[T] {
	if workers <= 1 || f == nil {
		return f
	}
	return parallelFinder[T]{inner: f, workers: workers}
}

type precomputedIndex struct {
	neighbors [][]int
}

func (p *precomputedIndex) RegionQuery(i int) ([]int, error) {
	return p.neighbors[i], nil
}

func (f parallelFinder[T]) Index(points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error) {
	return f.IndexContext(context.Background(), points, dist, radius)
}

func (f parallelFinder[T]) IndexContext(ctx context.Context, points []Point[T], dist DistanceFunc[T], radius float64) (NeighborIndex, error) {
	idx, err := buildIndex(ctx, f.inner, points, dist, radius)
	if err != nil {
		return nil, err
	}
	n := len(points)
	out := &precomputedIndex{neighbors: make([][]int, n)}

	// errs[w] is the error hit by worker w at the lowest index of its range.
	errs := make([]error, f.workers)
	rowsPerWorker := (n + f.workers - 1) / f.workers

	var wg sync.WaitGroup
	for w := 0; w < f.workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= n {
			break
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				nb, err := idx.RegionQuery(i)
				if err != nil {
					errs[w] = err
					return
				}
				out.neighbors[i] = nb
			}
		}(w, start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "dbscan: cancelled while indexing %d points", n)
	}
	// Ranges are ordered, so the first error is the one a sequential scan
	// of the whole input would hit first.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
