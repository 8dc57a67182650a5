package iklink

import "github.com/pkg/errors"

var (
	// ErrNoFeasiblePath is returned when no chain of candidates reaches the last waypoint.
	ErrNoFeasiblePath = errors.New("no feasible path through the trajectory")
	// ErrSamplingExhausted marks a waypoint whose reach attempts hit Options.MaxReachFailures
	// before filling the candidate quota.
	ErrSamplingExhausted = errors.New("candidate sampling exhausted")
	// ErrEmptyTrajectory is returned for a trajectory with no waypoints.
	ErrEmptyTrajectory = errors.New("trajectory has no waypoints")
)

func newTableShapeError(columns, waypoints int) error {
	return errors.Errorf("candidate table has %d columns for %d waypoints", columns, waypoints)
}
