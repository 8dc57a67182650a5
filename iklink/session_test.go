package iklink

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

func TestSessionReach(t *testing.T) {
	k := slider(t)
	solver := exactSlider()
	session := NewSession(k, solver, 1, nil)
	test.That(t, session.State(), test.ShouldResemble, inputs(0))

	config, ok, err := session.TryReach(context.Background(), sliderWaypoint(0, 0.25).Pose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, config, test.ShouldResemble, inputs(0.25))
	test.That(t, session.State(), test.ShouldResemble, inputs(0.25))

	// Reach starts from a random seed inside the rail, never from the current state.
	test.That(t, len(solver.calls), test.ShouldEqual, 1)
	test.That(t, solver.calls[0].constrain, test.ShouldBeFalse)
	seed := solver.calls[0].seed[0]
	test.That(t, seed, test.ShouldBeBetweenOrEqual, -1., 1.)
	test.That(t, seed, test.ShouldNotEqual, 0.)

	// Off the rail the clamped answer misses the goal.
	config, ok, err = session.TryReach(context.Background(), sliderWaypoint(0, 3).Pose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, config, test.ShouldBeNil)
}

func TestSessionTrack(t *testing.T) {
	k := slider(t)
	solver := exactSlider()
	session := NewSession(k, solver, 1, inputs(0.5))

	config, ok, err := session.TryTrack(context.Background(), sliderWaypoint(0, 0.6).Pose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, config, test.ShouldResemble, inputs(0.6))
	test.That(t, solver.calls[0].seed, test.ShouldResemble, inputs(0.5))
	test.That(t, solver.calls[0].constrain, test.ShouldBeTrue)

	// Mutating a returned configuration does not touch the state.
	config[0] = 42
	test.That(t, session.State(), test.ShouldResemble, inputs(0.6))

	// A NaN answer is a failure and leaves the state where it was.
	solver.fn = func([]referenceframe.Input, spatialmath.Pose, bool) []referenceframe.Input {
		return inputs(math.NaN())
	}
	config, ok, err = session.TryTrack(context.Background(), sliderWaypoint(0, 0.7).Pose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, config, test.ShouldBeNil)
	test.That(t, session.State(), test.ShouldResemble, inputs(0.6))

	// So does an answer that misses the pose.
	solver.fn = func([]referenceframe.Input, spatialmath.Pose, bool) []referenceframe.Input {
		return inputs(0.2)
	}
	_, ok, err = session.TryTrack(context.Background(), sliderWaypoint(0, 0.7).Pose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, session.State(), test.ShouldResemble, inputs(0.6))
}

func TestSessionRejectsOutOfLimits(t *testing.T) {
	// The tool reaches x=1.5 only with the carriage past the end of its rail.
	solver := &fakeSolver{fn: func(_ []referenceframe.Input, goal spatialmath.Pose, _ bool) []referenceframe.Input {
		return []referenceframe.Input{goal.Point().X}
	}}
	session := NewSession(slider(t), solver, 1, inputs(0.9))
	_, ok, err := session.TryTrack(context.Background(), sliderWaypoint(0, 1.5).Pose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, session.State(), test.ShouldResemble, inputs(0.9))

	config, ok, err := session.TryTrack(context.Background(), sliderWaypoint(0, 1).Pose())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, config, test.ShouldResemble, inputs(1))
}

func TestSessionSolverError(t *testing.T) {
	solver := exactSlider()
	solver.err = errors.New("bad seed")
	session := NewSession(slider(t), solver, 1, nil)
	_, ok, err := session.TryTrack(context.Background(), sliderWaypoint(0, 0.1).Pose())
	test.That(t, err, test.ShouldBeError, solver.err)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestSessionSeeded(t *testing.T) {
	reach := func() float64 {
		solver := exactSlider()
		session := NewSession(slider(t), solver, 7, nil)
		_, _, err := session.TryReach(context.Background(), sliderWaypoint(0, 0.1).Pose())
		test.That(t, err, test.ShouldBeNil)
		return solver.calls[0].seed[0]
	}
	test.That(t, reach(), test.ShouldEqual, reach())
}
