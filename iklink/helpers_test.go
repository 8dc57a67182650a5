package iklink

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/iklink/kinematics"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
	"go.viam.com/iklink/trajectory"
	"go.viam.com/iklink/utils"
)

func loadRobot(t *testing.T, file string) *kinematics.RobotKinematics {
	t.Helper()
	cfg, err := referenceframe.ParseURDFFile(utils.ResolveFile("configs/urdfs/" + file))
	test.That(t, err, test.ShouldBeNil)
	k, err := kinematics.NewFromURDF("", cfg, kinematics.URDFOptions{
		BaseLinks: []string{"base_link"},
		EELinks:   []string{"tool0"},
	}, nil)
	test.That(t, err, test.ShouldBeNil)
	return k
}

// slider is a single prismatic joint along x with a velocity limit of 0.5; its tool sits at
// (q, 0, 0.1).
func slider(t *testing.T) *kinematics.RobotKinematics {
	t.Helper()
	return loadRobot(t, "slider.urdf")
}

func sliderWaypoint(time, x float64) trajectory.Waypoint {
	return trajectory.Waypoint{Time: time, Position: r3.Vector{X: x, Z: 0.1}, Orientation: quat.Number{Real: 1}}
}

type solveCall struct {
	seed      []referenceframe.Input
	goal      spatialmath.Pose
	constrain bool
}

// fakeSolver answers every query with fn and records the queries.
type fakeSolver struct {
	fn    func(seed []referenceframe.Input, goal spatialmath.Pose, constrain bool) []referenceframe.Input
	err   error
	calls []solveCall
}

func (f *fakeSolver) Solve(
	ctx context.Context,
	seed []referenceframe.Input,
	goal spatialmath.Pose,
	constrain bool,
) ([]referenceframe.Input, error) {
	f.calls = append(f.calls, solveCall{append([]referenceframe.Input(nil), seed...), goal, constrain})
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.fn(seed, goal, constrain), nil
}

func (f *fakeSolver) count(constrain bool) int {
	n := 0
	for _, c := range f.calls {
		if c.constrain == constrain {
			n++
		}
	}
	return n
}

// exactSlider solves the slider exactly, clamped to its rail.
func exactSlider() *fakeSolver {
	return &fakeSolver{fn: func(_ []referenceframe.Input, goal spatialmath.Pose, _ bool) []referenceframe.Input {
		return []referenceframe.Input{utils.Clamp(goal.Point().X, -1, 1)}
	}}
}

func inputs(values ...float64) []referenceframe.Input {
	return referenceframe.FloatsToInputs(values)
}

// handTable builds a table from per-column slider positions.
func handTable(times []float64, columns ...[]float64) *Table {
	table := NewTable(times)
	for i, col := range columns {
		for _, v := range col {
			table.Add(i, inputs(v))
		}
	}
	return table
}
