package dbscan

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// run carries the state of a single Cluster call.
type run[T any] struct {
	engine   *Engine[T]
	points   []Point[T]
	index    NeighborIndex
	labels   *labelState
	core     []bool
	clusters [][]int // member indices in assignment order
	stats    Stats

	// Parallel indexes call the distance function from several goroutines.
	distanceCalls atomic.Int64
}

func (r *run[T]) regionQuery(i int) ([]int, error) {
	r.stats.RegionQueries++
	return r.index.RegionQuery(i)
}

// scan is the outer loop: every unvisited point is visited once in input
// order and either seeds a new cluster or is left as tentative noise.
func (r *run[T]) scan(ctx context.Context) error {
	for p := range r.points {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "dbscan: cancelled after %d of %d points", p, len(r.points))
		}
		if r.labels.label(p) != labelUnvisited {
			continue
		}
		r.labels.markVisited(p)
		neighbors, err := r.regionQuery(p)
		if err != nil {
			return err
		}
		if len(neighbors) < r.engine.minPts {
			// Tentative noise; a later cluster may still claim p as a border point.
			continue
		}
		r.core[p] = true
		if err := r.expand(p, neighbors); err != nil {
			return err
		}
	}
	return nil
}

// expand grows a new cluster breadth-first from core point p and its
// neighbors. Unvisited points are region-queried; those that are core points
// extend the queue. Every dequeued point not yet in a cluster joins this one,
// which is how tentative noise becomes a border point.
func (r *run[T]) expand(p int, neighbors []int) error {
	c := len(r.clusters)
	r.clusters = append(r.clusters, nil)
	r.join(p, c)

	queue := make([]int, 0, len(neighbors))
	push := func(ids []int) {
		for _, q := range ids {
			if !r.labels.isAssigned(q) && r.labels.enqueue(q, c) {
				queue = append(queue, q)
			}
		}
	}
	push(neighbors)

	for head := 0; head < len(queue); head++ {
		q := queue[head]
		if r.labels.label(q) == labelUnvisited {
			r.labels.markVisited(q)
			qNeighbors, err := r.regionQuery(q)
			if err != nil {
				return err
			}
			if len(qNeighbors) >= r.engine.minPts {
				r.core[q] = true
				push(qNeighbors)
			}
		}
		r.join(q, c)
	}
	return nil
}

func (r *run[T]) join(i, c int) {
	if r.labels.assign(i, c) {
		r.clusters[c] = append(r.clusters[c], i)
	}
}

// result assembles the partition. Points still unassigned are final noise.
func (r *run[T]) result() *Result[T] {
	res := &Result[T]{
		Clusters: make([]Cluster[T], len(r.clusters)),
		Noise:    []Point[T]{},
		Labels:   r.labels.labels(),
		Core:     r.core,
		Stats:    r.stats,
	}
	res.Stats.DistanceCalls = int(r.distanceCalls.Load())
	for c, members := range r.clusters {
		pts := make([]Point[T], len(members))
		for k, i := range members {
			pts[k] = r.points[i]
		}
		res.Clusters[c] = Cluster[T]{ID: c, Points: pts}
	}
	for i, label := range res.Labels {
		if label == Noise {
			res.Noise = append(res.Noise, r.points[i])
		}
	}
	return res
}
