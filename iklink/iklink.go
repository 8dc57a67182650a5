// Package iklink retargets a Cartesian end-effector trajectory onto a robot arm. It samples a
// pool of distinct inverse kinematics solutions at every waypoint and links them into the joint
// motion with the fewest arm reconfigurations and, among those, the least joint travel.
package iklink

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/motionplan/ik"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
	"go.viam.com/iklink/trajectory"
)

// Solution is a linked motion and how it was linked.
type Solution struct {
	Motion *trajectory.Motion
	// Cost is the cost of the whole motion.
	Cost Cost
	// Costs and Edges describe the node chosen at each step.
	Costs []Cost
	Edges []EdgeKind
	// Candidates is the number of candidates sampled per waypoint.
	Candidates []int
	// Exhausted lists waypoints whose sampling stopped at Options.MaxReachFailures.
	Exhausted []int
}

// Reconfigurations returns the indices of the steps reached by a reconfiguration.
func (s *Solution) Reconfigurations() []int {
	var out []int
	for i, e := range s.Edges {
		if e == EdgeReconfiguration {
			out = append(out, i)
		}
	}
	return out
}

// IKLink solves trajectories for one robot. It is not safe for concurrent use; build one per
// goroutine.
type IKLink struct {
	kin     Kinematics
	solver  ik.Solver
	opts    Options
	session *Session
	linker  *Linker
	logger  logging.Logger
}

// New returns an IKLink for kin. start, if not nil, is the configuration the solver session
// starts from.
func New(kin Kinematics, solver ik.Solver, opts Options, start []referenceframe.Input, logger logging.Logger) (*IKLink, error) {
	if err := kin.RequireSingleChain(); err != nil {
		return nil, err
	}
	if solver == nil {
		return nil, errors.New("iklink needs a pose solver")
	}
	if start != nil && len(start) != kin.DoF() {
		return nil, errors.Errorf("starting configuration has %d values for %d joints", len(start), kin.DoF())
	}
	if logger == nil {
		logger = logging.NewBlankLogger("iklink")
	}
	opts = opts.withDefaults()
	return &IKLink{
		kin:     kin,
		solver:  solver,
		opts:    opts,
		session: NewSession(kin, solver, opts.RandomSeed, start),
		linker:  NewLinker(kin, opts.Parallel),
		logger:  logger,
	}, nil
}

// Options returns the options in effect, defaults filled in.
func (l *IKLink) Options() Options {
	return l.opts
}

// Sample builds the candidate table for waypoints. It also returns the waypoints whose sampling
// was exhausted.
func (l *IKLink) Sample(ctx context.Context, waypoints []trajectory.Waypoint) (*Table, []int, error) {
	if len(waypoints) == 0 {
		return nil, nil, ErrEmptyTrajectory
	}
	times, goals := splitWaypoints(waypoints)
	s := &sampler{session: l.session, opts: l.opts, logger: l.logger}
	return s.sample(ctx, times, goals)
}

// Link links a sampled table into the motion of robotName. The table is relinked from scratch, so
// linking the same table twice gives the same solution.
func (l *IKLink) Link(ctx context.Context, robotName string, table *Table) (*Solution, error) {
	best, cost, err := l.linker.Link(ctx, table)
	if err != nil {
		return nil, err
	}
	if robotName == "" {
		robotName = l.kin.Name()
	}
	path := backtrace(table, best)
	sol := &Solution{
		Motion: &trajectory.Motion{
			RobotName:  robotName,
			JointNames: l.kin.JointNames(),
			Steps:      make([]trajectory.MotionStep, len(path)),
		},
		Cost:       cost,
		Costs:      make([]Cost, len(path)),
		Edges:      make([]EdgeKind, len(path)),
		Candidates: table.Sizes(),
	}
	for x, y := range path {
		node := table.Columns[x][y]
		sol.Motion.Steps[x] = trajectory.MotionStep{
			Time:          table.Times[x],
			Configuration: append([]referenceframe.Input(nil), node.Configuration...),
		}
		sol.Costs[x] = node.Cost
		sol.Edges[x] = node.Edge
	}
	l.logger.CDebugw(ctx, "linked trajectory", "robot", robotName, "travel", cost.Travel)
	l.logger.Infof("min num of reconfig: %d", cost.Reconfigurations)
	return sol, nil
}

// Solve samples and links waypoints into the motion of robotName. An empty robotName uses the
// robot model's name.
func (l *IKLink) Solve(ctx context.Context, robotName string, waypoints []trajectory.Waypoint) (*Solution, error) {
	ctx, span := trace.StartSpan(ctx, "iklink::Solve")
	defer span.End()

	table, exhausted, err := l.Sample(ctx, waypoints)
	if err != nil {
		return nil, err
	}
	sol, err := l.Link(ctx, robotName, table)
	if err != nil {
		if errors.Is(err, ErrNoFeasiblePath) && len(exhausted) > 0 {
			return nil, errors.Wrapf(err, "sampling exhausted at waypoints %v", exhausted)
		}
		return nil, err
	}
	sol.Exhausted = exhausted
	return sol, nil
}

func splitWaypoints(waypoints []trajectory.Waypoint) ([]float64, []spatialmath.Pose) {
	times := make([]float64, len(waypoints))
	goals := make([]spatialmath.Pose, len(waypoints))
	for i, wp := range waypoints {
		times[i] = wp.Time
		goals[i] = wp.Pose()
	}
	return times, goals
}
