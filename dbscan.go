package dbscan

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Point is one element of a clustering run: an identifier plus a
// caller-owned payload. The engine never inspects Payload; it only hands
// points to the distance function. IDs must be non-empty and unique within
// a run.
type Point[T any] struct {
	ID      string
	Payload T
}

// DistanceFunc is a pairwise distance over points. It must be symmetric,
// non-negative and free of side effects; the engine calls it many times per
// point. A NaN or negative result aborts the run with ErrInvalidInput.
type DistanceFunc[T any] func(a, b Point[T]) float64

// IndexKind names a built-in NeighborFinder.
type IndexKind string

const (
	IndexBruteForce IndexKind = "brute"
	IndexGrid       IndexKind = "grid"
	IndexKDTree     IndexKind = "kdtree"
)

// Config holds the parameters of a clustering run.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Radius is the neighborhood radius. Two points are neighbors when their
	// distance is <= Radius. Must be > 0 and finite.
	Radius float64

	// MinPts is the number of points (the point itself included) a
	// neighborhood must hold for its center to be a core point. Must be >= 1.
	// With MinPts = 1 every point is a core point and there is no noise.
	MinPts int

	// Index selects the neighbor search used by NewFromConfig.
	// "brute" works with any distance function; "grid" and "kdtree" need a
	// coordinate function and a metric compatible with it (see Grid and
	// KDTree). Default: "brute".
	Index IndexKind

	// Workers > 1 answers all region queries up front on that many
	// goroutines (see Parallel). The distance function must then be safe for
	// concurrent use. 0 or 1 runs sequentially.
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults for clustering
// 2-D screen-space points.
func DefaultConfig() Config {
	return Config{
		Radius: 60,
		MinPts: 8,
		Index:  IndexBruteForce,
	}
}

// Validate checks that cfg describes a valid run. The returned error wraps
// ErrInvalidConfiguration.
func (cfg Config) Validate() error {
	if math.IsNaN(cfg.Radius) || cfg.Radius <= 0 {
		return invalidConfigf("Radius must be > 0, got %f", cfg.Radius)
	}
	if math.IsInf(cfg.Radius, 1) {
		return invalidConfigf("Radius must be finite")
	}
	if cfg.MinPts < 1 {
		return invalidConfigf("MinPts must be >= 1, got %d", cfg.MinPts)
	}
	switch cfg.Index {
	case "", IndexBruteForce, IndexGrid, IndexKDTree:
	default:
		return invalidConfigf("invalid Index %q", cfg.Index)
	}
	if cfg.Workers < 0 {
		return invalidConfigf("Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// Cluster is a non-empty group of density-connected points.
type Cluster[T any] struct {
	// ID is the cluster's position in Result.Clusters.
	ID int
	// Points are the members in the order they were assigned.
	Points []Point[T]
}

// Stats describes the work done by a run.
type Stats struct {
	RegionQueries int
	DistanceCalls int
	Elapsed       time.Duration
}

// Result is the partition produced by one run. Every input point appears in
// exactly one cluster or in Noise.
type Result[T any] struct {
	// Clusters in creation order; cluster IDs are 0..len(Clusters)-1.
	Clusters []Cluster[T]

	// Noise holds the points that belong to no cluster, in input order.
	Noise []Point[T]

	// Labels[i] is the cluster ID of input point i, or Noise (-1).
	Labels []int

	// Core[i] reports whether input point i is a core point.
	Core []bool

	Stats Stats
}

// Engine runs DBSCAN with a fixed configuration and distance function.
//
// All per-run state lives in the call to Cluster, so one Engine may be used
// from several goroutines. The snapshot exposed by NoisePoints and
// LastResult belongs to whichever run finished last.
type Engine[T any] struct {
	radius   float64
	minPts   int
	dist     DistanceFunc[T]
	finder   NeighborFinder[T]
	validate func(Point[T]) error
	logger   *zap.Logger

	mu   sync.RWMutex
	last *Result[T]
}

// Option customizes an Engine.
type Option[T any] func(*Engine[T])

// WithNeighborFinder replaces the brute-force neighbor search.
func WithNeighborFinder[T any](f NeighborFinder[T]) Option[T] {
	return func(e *Engine[T]) {
		if f != nil {
			e.finder = f
		}
	}
}

// WithLogger sets the logger used for per-run debug output.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(e *Engine[T]) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPointValidator installs a check that runs on every point before
// clustering. Its errors are reported as ErrInvalidInput.
func WithPointValidator[T any](fn func(Point[T]) error) Option[T] {
	return func(e *Engine[T]) { e.validate = fn }
}

// New returns an Engine that clusters with the given radius, minimum
// neighborhood size and distance function. It fails with
// ErrInvalidConfiguration if radius is not a positive finite number,
// minPts < 1 or dist is nil. An infinite radius is rejected even though it
// would put every point in every neighborhood; use a radius larger than any
// distance in the data instead.
func New[T any](radius float64, minPts int, dist DistanceFunc[T], opts ...Option[T]) (*Engine[T], error) {
	cfg := Config{Radius: radius, MinPts: minPts, Index: IndexBruteForce}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dist == nil {
		return nil, invalidConfigf("distance function must not be nil")
	}
	e := &Engine[T]{
		radius: radius,
		minPts: minPts,
		dist:   dist,
		finder: BruteForce[T](),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewFromConfig is like New but also builds the neighbor finder named by
// cfg.Index. coords is required for the grid and kdtree indexes and ignored
// otherwise. Options are applied after the finder, so WithNeighborFinder
// takes precedence over cfg.Index.
func NewFromConfig[T any](cfg Config, dist DistanceFunc[T], coords CoordsFunc[T], opts ...Option[T]) (*Engine[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var finder NeighborFinder[T]
	switch cfg.Index {
	case IndexGrid:
		if coords == nil {
			return nil, invalidConfigf("Index %q requires a coordinate function", cfg.Index)
		}
		finder = Grid(coords)
	case IndexKDTree:
		if coords == nil {
			return nil, invalidConfigf("Index %q requires a coordinate function", cfg.Index)
		}
		finder = KDTree(coords)
	default:
		finder = BruteForce[T]()
	}
	if cfg.Workers > 1 {
		finder = Parallel(finder, cfg.Workers)
	}
	all := append([]Option[T]{WithNeighborFinder(finder)}, opts...)
	return New(cfg.Radius, cfg.MinPts, dist, all...)
}

// Radius returns the engine's neighborhood radius.
func (e *Engine[T]) Radius() float64 { return e.radius }

// MinPts returns the engine's core-point threshold.
func (e *Engine[T]) MinPts() int { return e.minPts }

// Cluster partitions points into clusters and noise.
//
// Points are scanned in slice order. A border point that lies within the
// radius of core points from two different clusters joins whichever cluster
// reaches it first in that scan, so reordering the input can move border
// points between clusters. Core points and noise do not depend on order.
//
// On error no result is produced and the last-run snapshot is unchanged.
func (e *Engine[T]) Cluster(points []Point[T]) (*Result[T], error) {
	return e.ClusterContext(context.Background(), points)
}

// ClusterContext is Cluster with cancellation. ctx is checked before the
// neighbor index is built and once per point of the outer scan, never in the
// middle of expanding a cluster. A Parallel index also stops its workers when
// ctx is done. A cancelled run returns the context error wrapped and no
// result.
func (e *Engine[T]) ClusterContext(ctx context.Context, points []Point[T]) (*Result[T], error) {
	start := time.Now()
	if err := e.validatePoints(points); err != nil {
		return nil, err
	}

	r := &run[T]{
		engine: e,
		points: points,
		labels: newLabelState(len(points)),
		core:   make([]bool, len(points)),
	}
	dist := func(a, b Point[T]) float64 {
		r.distanceCalls.Add(1)
		return e.dist(a, b)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "dbscan: cancelled before indexing %d points", len(points))
	}
	idx, err := buildIndex(ctx, e.finder, points, dist, e.radius)
	if err != nil {
		return nil, err
	}
	r.index = idx

	if err := r.scan(ctx); err != nil {
		return nil, err
	}

	res := r.result()
	res.Stats.Elapsed = time.Since(start)

	e.mu.Lock()
	e.last = res
	e.mu.Unlock()

	e.logger.Debug("dbscan run complete",
		zap.Int("points", len(points)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Int("noise", len(res.Noise)),
		zap.Int("region_queries", res.Stats.RegionQueries),
		zap.Int("distance_calls", res.Stats.DistanceCalls),
		zap.Duration("elapsed", res.Stats.Elapsed),
	)
	return res, nil
}

// NoisePoints returns a copy of the noise set of the last completed run, or
// nil if no run has completed.
func (e *Engine[T]) NoisePoints() []Point[T] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		return nil
	}
	out := make([]Point[T], len(e.last.Noise))
	copy(out, e.last.Noise)
	return out
}

// LastResult returns the result of the last completed run, or nil. The
// result is shared with the caller of that run and must not be modified.
func (e *Engine[T]) LastResult() *Result[T] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

func (e *Engine[T]) validatePoints(points []Point[T]) error {
	seen := make(map[string]int, len(points))
	for i, p := range points {
		if p.ID == "" {
			return invalidInputf("point %d has an empty ID", i)
		}
		if j, dup := seen[p.ID]; dup {
			return invalidInputf("points %d and %d share ID %q", j, i, p.ID)
		}
		seen[p.ID] = i
		if e.validate != nil {
			if err := e.validate(p); err != nil {
				if isInvalidInput(err) {
					return err
				}
				return wrapInvalidInput(err, p.ID)
			}
		}
	}
	return nil
}
