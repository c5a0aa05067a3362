// Package dbscan implements Density-Based Spatial Clustering of Applications
// with Noise (DBSCAN) over caller-defined points and distance functions.
//
// A point is a core point when at least MinPts points (itself included) lie
// within Radius of it. Core points within Radius of each other share a
// cluster; non-core points within Radius of a core point join that core's
// cluster as border points; everything else is noise. Clusters can take any
// shape and every input point ends up in exactly one cluster or in the noise
// set.
//
// Basic usage with vector points:
//
//	engine, err := dbscan.New(1.5, 3, dbscan.Euclidean)
//	result, err := engine.Cluster(dbscan.Vectors(
//		[]float64{0, 0}, []float64{0, 1}, []float64{1, 0}, []float64{1, 1},
//		[]float64{10, 10},
//	))
//	// result.Clusters[0] holds the four corner points
//	// result.Noise holds (10, 10)
//	// result.Labels[i] is the cluster ID for point i (-1 = noise)
//
// Any payload type works as long as a DistanceFunc is supplied:
//
//	type place struct{ lat, lon float64 }
//	engine, err := dbscan.New(500, 4, func(a, b dbscan.Point[place]) float64 {
//		return haversineMeters(a.Payload, b.Payload)
//	})
//
// # Neighbor search
//
// Region queries default to exhaustive search, O(n²) distance evaluations
// per run. When payloads have coordinates, [Grid] and [KDTree] prune the
// candidates before the distance function confirms them; both return the
// same neighbor sets as the exhaustive search for compatible metrics:
//
//	engine, err := dbscan.New(0.6, 12, dbscan.Euclidean,
//		dbscan.WithNeighborFinder(dbscan.KDTree(dbscan.VectorCoords)))
//
// # Border points
//
// A border point within Radius of core points from two clusters is assigned
// to the cluster whose expansion reaches it first, which depends on the
// order of the input. This is inherent to DBSCAN; core points and noise are
// order independent.
package dbscan
