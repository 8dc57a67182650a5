package iklink

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/iklink/kinematics"
	"go.viam.com/iklink/referenceframe"
)

func TestLinkSingleWaypoint(t *testing.T) {
	table := handTable([]float64{0}, []float64{0.2, -0.3})
	best, cost, err := NewLinker(slider(t), false).Link(context.Background(), table)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, best, test.ShouldEqual, 0)
	test.That(t, cost, test.ShouldResemble, Cost{})
	for _, node := range table.Columns[0] {
		test.That(t, node.Edge, test.ShouldEqual, EdgeStart)
	}
}

func TestLinkContinuousTieBreak(t *testing.T) {
	// The slider moves at most 0.5 in one second.
	table := handTable([]float64{0, 1}, []float64{0, 0.3}, []float64{0.4, -0.9})
	best, cost, err := NewLinker(slider(t), false).Link(context.Background(), table)
	test.That(t, err, test.ShouldBeNil)

	// 0.4 is reachable from both; 0.3 is the shorter step.
	nearby := table.Columns[1][0]
	test.That(t, nearby.Edge, test.ShouldEqual, EdgeContinuous)
	test.That(t, nearby.Predecessor, test.ShouldEqual, 1)
	test.That(t, nearby.Cost.Reconfigurations, test.ShouldEqual, 0)
	test.That(t, nearby.Cost.Travel, test.ShouldAlmostEqual, 0.1)

	// -0.9 is too far from both and takes the first of the equal reconfiguration floors.
	far := table.Columns[1][1]
	test.That(t, far.Edge, test.ShouldEqual, EdgeReconfiguration)
	test.That(t, far.Predecessor, test.ShouldEqual, 0)
	test.That(t, far.Cost, test.ShouldResemble, Cost{Reconfigurations: 1})

	test.That(t, best, test.ShouldEqual, 0)
	test.That(t, cost.Reconfigurations, test.ShouldEqual, 0)
}

func TestLinkVelocityInfeasible(t *testing.T) {
	table := handTable([]float64{0, 1}, []float64{0, 0.1}, []float64{0.9, -0.8})
	best, cost, err := NewLinker(slider(t), false).Link(context.Background(), table)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cost, test.ShouldResemble, Cost{Reconfigurations: 1})
	test.That(t, best, test.ShouldEqual, 0)
	test.That(t, table.Columns[1][0].Edge, test.ShouldEqual, EdgeReconfiguration)
	test.That(t, backtrace(table, best), test.ShouldResemble, []int{0, 0})
}

func TestLinkFloorWinsOnEqualReconfigurations(t *testing.T) {
	table := handTable([]float64{0, 1, 2},
		[]float64{0},
		[]float64{0, 1}, // 1 is too far from 0: one reconfiguration
		[]float64{1.2},  // only reachable continuously from 1
	)
	_, cost, err := NewLinker(slider(t), false).Link(context.Background(), table)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, table.Columns[1][1].Cost, test.ShouldResemble, Cost{Reconfigurations: 1})
	// The continuous step from 1 would cost (1, 0.2); the floor through 0 costs (1, 0) and a
	// continuous edge only wins with strictly fewer reconfigurations.
	node := table.Columns[2][0]
	test.That(t, node.Edge, test.ShouldEqual, EdgeReconfiguration)
	test.That(t, node.Predecessor, test.ShouldEqual, 0)
	test.That(t, cost, test.ShouldResemble, Cost{Reconfigurations: 1})
}

func TestLinkNoFeasiblePath(t *testing.T) {
	table := handTable([]float64{0, 1, 2}, []float64{0}, nil, []float64{0.1})
	_, cost, err := NewLinker(slider(t), false).Link(context.Background(), table)
	test.That(t, errors.Is(err, ErrNoFeasiblePath), test.ShouldBeTrue)
	test.That(t, cost.Reached(), test.ShouldBeFalse)
	test.That(t, table.Columns[2][0].Edge, test.ShouldEqual, EdgeNone)

	_, _, err = NewLinker(slider(t), false).Link(context.Background(), handTable([]float64{0}, nil))
	test.That(t, errors.Is(err, ErrNoFeasiblePath), test.ShouldBeTrue)

	_, _, err = NewLinker(slider(t), false).Link(context.Background(), NewTable(nil))
	test.That(t, errors.Is(err, ErrEmptyTrajectory), test.ShouldBeTrue)
}

func TestLinkValidation(t *testing.T) {
	linker := NewLinker(slider(t), false)

	table := handTable([]float64{0, 1}, []float64{0}, []float64{0})
	table.Columns[1][0].Configuration = inputs(0, 0)
	_, _, err := linker.Link(context.Background(), table)
	test.That(t, err, test.ShouldBeError, kinematics.NewConfigurationLengthError(2, 1))

	_, _, err = linker.Link(context.Background(), handTable([]float64{1, 0}, []float64{0}, []float64{0}))
	test.That(t, err, test.ShouldBeError, kinematics.NewNegativeDeltaTError(-1))

	_, _, err = linker.Link(context.Background(), &Table{Times: []float64{0}, Columns: make([][]Node, 2)})
	test.That(t, err, test.ShouldNotBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = linker.Link(ctx, handTable([]float64{0, 1}, []float64{0}, []float64{0}))
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func randomTable(seed int64, columns, size int) *Table {
	//nolint:gosec
	r := rand.New(rand.NewSource(seed))
	times := make([]float64, columns)
	for i := range times {
		times[i] = 0.5 * float64(i)
	}
	table := NewTable(times)
	for i := 0; i < columns; i++ {
		for j := 0; j < size; j++ {
			table.Add(i, inputs(r.Float64()*2-1))
		}
	}
	return table
}

func TestLinkDeterministic(t *testing.T) {
	k := slider(t)
	table := randomTable(3, 12, 40)

	best, cost, err := NewLinker(k, false).Link(context.Background(), table)
	test.That(t, err, test.ShouldBeNil)
	snapshot := make([][]Node, table.Len())
	for i, col := range table.Columns {
		snapshot[i] = append([]Node(nil), col...)
	}

	// Relinking the frozen table from scratch, sequentially or in parallel, changes nothing.
	for _, parallel := range []bool{false, true} {
		again, againCost, err := NewLinker(k, parallel).Link(context.Background(), table)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again, test.ShouldEqual, best)
		test.That(t, againCost, test.ShouldResemble, cost)
		test.That(t, cmp.Diff(snapshot, table.Columns, cmp.AllowUnexported(Cost{})), test.ShouldBeEmpty)
	}
}

// brokenVelocity panics on any step that ends at 0.5.
type brokenVelocity struct {
	*kinematics.RobotKinematics
}

func (k brokenVelocity) VelocityFeasibleErr(a, b []referenceframe.Input, deltaT float64) (bool, error) {
	if a[0] == 0.5 {
		panic("velocity model failed")
	}
	return k.RobotKinematics.VelocityFeasibleErr(a, b, deltaT)
}

func TestLinkParallelPanic(t *testing.T) {
	var column []float64
	for i := 0; i <= 60; i++ {
		column = append(column, float64(i)/100)
	}
	table := handTable([]float64{0, 1}, []float64{0.1, 0.2}, column)
	_, _, err := NewLinker(brokenVelocity{slider(t)}, true).Link(context.Background(), table)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "velocity model failed")
}
