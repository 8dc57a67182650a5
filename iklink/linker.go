package iklink

import (
	"context"
	"math"

	"go.opencensus.io/trace"

	"go.viam.com/iklink/kinematics"
	"go.viam.com/iklink/utils"
)

// Linker picks the path through a candidate table with the fewest reconfigurations and, among
// those, the least joint travel.
type Linker struct {
	kin      Kinematics
	parallel bool
}

// NewLinker returns a linker over kin. With parallel set each waypoint's candidates are linked
// concurrently; the result does not change.
func NewLinker(kin Kinematics, parallel bool) *Linker {
	return &Linker{kin: kin, parallel: parallel}
}

// Link computes the cost and predecessor of every node in table, overwriting any previous
// linking, and returns the index of the best node of the last waypoint with its cost. It returns
// ErrNoFeasiblePath if no node of the last waypoint is reached.
func (l *Linker) Link(ctx context.Context, table *Table) (int, Cost, error) {
	ctx, span := trace.StartSpan(ctx, "iklink::link")
	defer span.End()

	if err := l.validate(table); err != nil {
		return 0, Unreached(), err
	}
	if table.Len() == 0 {
		return 0, Unreached(), ErrEmptyTrajectory
	}
	table.reset()

	for y := range table.Columns[0] {
		table.Columns[0][y].Cost = Cost{}
		table.Columns[0][y].Predecessor = 0
		table.Columns[0][y].Edge = EdgeStart
	}

	for x := 1; x < table.Len(); x++ {
		if err := ctx.Err(); err != nil {
			return 0, Unreached(), err
		}
		if err := l.linkColumn(ctx, table, x); err != nil {
			return 0, Unreached(), err
		}
	}

	best, cost := bestNode(table.Columns[table.Len()-1])
	if best < 0 {
		return 0, Unreached(), ErrNoFeasiblePath
	}
	return best, cost, nil
}

func (l *Linker) validate(table *Table) error {
	if len(table.Times) != table.Len() {
		return newTableShapeError(table.Len(), len(table.Times))
	}
	for x := 1; x < len(table.Times); x++ {
		if dt := table.Times[x] - table.Times[x-1]; dt < 0 || math.IsNaN(dt) {
			return kinematics.NewNegativeDeltaTError(dt)
		}
	}
	dof := l.kin.DoF()
	for _, col := range table.Columns {
		for _, node := range col {
			if len(node.Configuration) != dof {
				return kinematics.NewConfigurationLengthError(len(node.Configuration), dof)
			}
		}
	}
	return nil
}

// bestNode returns the index and cost of the lowest-cost reached node, or -1.
func bestNode(col []Node) (int, Cost) {
	best, cost := -1, Unreached()
	for y := range col {
		if col[y].Cost.Less(cost) {
			best, cost = y, col[y].Cost
		}
	}
	return best, cost
}

func (l *Linker) linkColumn(ctx context.Context, table *Table, x int) error {
	prev, cur := table.Columns[x-1], table.Columns[x]
	dt := table.Times[x] - table.Times[x-1]

	// A reconfiguration may follow any predecessor, so every node shares the same best one.
	floorIdx, floor := 0, Unreached()
	for y2 := range prev {
		if c := prev[y2].Cost.WithReconfiguration(); c.Less(floor) {
			floorIdx, floor = y2, c
		}
	}

	if !l.parallel {
		for y1 := range cur {
			l.linkNode(prev, &cur[y1], dt, floorIdx, floor)
		}
		return nil
	}
	return utils.GroupWorkParallel(ctx, len(cur), nil, func(_, _, _, _ int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
		return func(_, y1 int) {
			l.linkNode(prev, &cur[y1], dt, floorIdx, floor)
		}, nil
	})
}

// linkNode takes the reconfiguration floor unless a velocity-feasible predecessor has strictly
// fewer reconfigurations.
func (l *Linker) linkNode(prev []Node, node *Node, dt float64, floorIdx int, floor Cost) {
	contIdx, cont := -1, Unreached()
	for y2 := range prev {
		if !prev[y2].Cost.Reached() {
			continue
		}
		// Lengths and dt were validated before linking.
		if ok, err := l.kin.VelocityFeasibleErr(node.Configuration, prev[y2].Configuration, dt); err != nil || !ok {
			continue
		}
		c := prev[y2].Cost.WithTravel(l.kin.JointDistance(node.Configuration, prev[y2].Configuration))
		if c.Less(cont) {
			contIdx, cont = y2, c
		}
	}

	switch {
	case contIdx >= 0 && (!floor.Reached() || cont.Reconfigurations < floor.Reconfigurations):
		node.Cost, node.Predecessor, node.Edge = cont, contIdx, EdgeContinuous
	case floor.Reached():
		node.Cost, node.Predecessor, node.Edge = floor, floorIdx, EdgeReconfiguration
	default:
		node.Cost, node.Predecessor, node.Edge = Unreached(), 0, EdgeNone
	}
}

// backtrace follows predecessors from node best of the last waypoint back to the first and
// returns the node index chosen at every waypoint, first waypoint first.
func backtrace(table *Table, best int) []int {
	path := make([]int, table.Len())
	idx := best
	for x := table.Len() - 1; x >= 0; x-- {
		path[x] = idx
		idx = table.Columns[x][idx].Predecessor
	}
	return path
}
