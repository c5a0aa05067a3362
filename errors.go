package dbscan

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Sentinel errors. Every error returned by this package wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	// ErrInvalidConfiguration is returned by New and Config.Validate for a
	// non-positive radius, minPts < 1, or a missing distance function.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput is returned by Engine.Cluster for malformed points and
	// for distance functions that return NaN or a negative value.
	ErrInvalidInput = errors.New("invalid input")
)

func invalidConfigf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, "dbscan: "+format, args...)
}

func invalidInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, "dbscan: "+format, args...)
}

// checkDistance rejects distances that violate the metric contract.
// +Inf is allowed and simply never falls within the radius.
func checkDistance[T any](d float64, a, b Point[T]) error {
	if math.IsNaN(d) {
		return errors.WithDetailf(
			invalidInputf("distance between %q and %q is NaN", a.ID, b.ID),
			"points %q and %q", a.ID, b.ID)
	}
	if d < 0 {
		return errors.WithDetailf(
			invalidInputf("distance between %q and %q is negative (%g)", a.ID, b.ID, d),
			"points %q and %q", a.ID, b.ID)
	}
	return nil
}

func isInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// wrapInvalidInput marks a caller-supplied validation error as invalid input
// while keeping it as the cause.
func wrapInvalidInput(err error, id string) error {
	return errors.Mark(errors.Wrapf(err, "dbscan: point %q", id), ErrInvalidInput)
}
