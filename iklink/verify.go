package iklink

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/iklink/trajectory"
)

// Verify checks a solution against the trajectory it was solved for: one step per waypoint at the
// waypoint's time, every step reaching its waypoint's pose, continuous steps within velocity
// limits, and each reconfiguration adding exactly one to the cost. All violations are returned.
func Verify(kin Kinematics, waypoints []trajectory.Waypoint, sol *Solution) error {
	steps := sol.Motion.Steps
	if len(steps) != len(waypoints) {
		return errors.Errorf("motion has %d steps for %d waypoints", len(steps), len(waypoints))
	}
	if len(sol.Edges) != len(steps) || len(sol.Costs) != len(steps) {
		return errors.Errorf("solution describes %d edges and %d costs for %d steps", len(sol.Edges), len(sol.Costs), len(steps))
	}

	var errs error
	for i, step := range steps {
		if step.Time != waypoints[i].Time {
			errs = multierr.Append(errs, errors.Errorf("step %d is at time %g, waypoint at %g", i, step.Time, waypoints[i].Time))
		}
		if i > 0 && step.Time <= steps[i-1].Time {
			errs = multierr.Append(errs, errors.Errorf("step %d does not advance time", i))
		}
		if !kin.PoseMatches(step.Configuration, waypoints[i].Pose()) {
			errs = multierr.Append(errs, errors.Errorf("step %d does not reach its waypoint", i))
		}
		if !sol.Costs[i].Reached() {
			errs = multierr.Append(errs, errors.Errorf("step %d is unreached", i))
			continue
		}
		if i == 0 {
			if sol.Edges[0] != EdgeStart {
				errs = multierr.Append(errs, errors.Errorf("first step has edge %v", sol.Edges[0]))
			}
			continue
		}

		delta := sol.Costs[i].Reconfigurations - sol.Costs[i-1].Reconfigurations
		switch sol.Edges[i] {
		case EdgeContinuous:
			ok, err := kin.VelocityFeasibleErr(step.Configuration, steps[i-1].Configuration, step.Time-steps[i-1].Time)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "step %d", i))
			} else if !ok {
				errs = multierr.Append(errs, errors.Errorf("continuous step %d exceeds velocity limits", i))
			}
			if delta != 0 {
				errs = multierr.Append(errs, errors.Errorf("continuous step %d changes reconfigurations by %d", i, delta))
			}
		case EdgeReconfiguration:
			if delta != 1 {
				errs = multierr.Append(errs, errors.Errorf("reconfiguration at step %d changes reconfigurations by %d", i, delta))
			}
		case EdgeNone, EdgeStart:
			errs = multierr.Append(errs, errors.Errorf("step %d has edge %v", i, sol.Edges[i]))
		}
	}
	return errs
}

// VerifyMotion checks a motion read back from a file, where edge kinds are not recorded: every
// step must reach its waypoint at the waypoint's time. It returns the indices of steps that
// exceed velocity limits, which are the reconfigurations.
func VerifyMotion(kin Kinematics, waypoints []trajectory.Waypoint, m *trajectory.Motion) ([]int, error) {
	if len(m.Steps) != len(waypoints) {
		return nil, errors.Errorf("motion has %d steps for %d waypoints", len(m.Steps), len(waypoints))
	}
	var jumps []int
	var errs error
	for i, step := range m.Steps {
		if step.Time != waypoints[i].Time {
			errs = multierr.Append(errs, errors.Errorf("step %d is at time %g, waypoint at %g", i, step.Time, waypoints[i].Time))
		}
		if !kin.PoseMatches(step.Configuration, waypoints[i].Pose()) {
			errs = multierr.Append(errs, errors.Errorf("step %d does not reach its waypoint", i))
		}
		if i == 0 {
			continue
		}
		ok, err := kin.VelocityFeasibleErr(step.Configuration, m.Steps[i-1].Configuration, step.Time-m.Steps[i-1].Time)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "step %d", i))
			continue
		}
		if !ok {
			jumps = append(jumps, i)
		}
	}
	return jumps, errs
}
