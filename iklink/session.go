package iklink

import (
	"context"
	"math/rand"

	"go.viam.com/iklink/motionplan/ik"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
	"go.viam.com/iklink/utils"
)

// Kinematics is what the sampler and linker ask of a robot model. *kinematics.RobotKinematics
// implements it.
type Kinematics interface {
	Name() string
	DoF() int
	JointNames() []string
	RequireSingleChain() error
	RandomConfiguration(r *rand.Rand) []referenceframe.Input
	PoseMatches(config []referenceframe.Input, target spatialmath.Pose) bool
	WithinLimits(config []referenceframe.Input) bool
	VelocityFeasibleErr(a, b []referenceframe.Input, deltaT float64) (bool, error)
	JointDistance(a, b []referenceframe.Input) float64
}

// Session wraps a Solver with the state that carries one query's answer into the next. A
// Session must not be used from more than one goroutine.
type Session struct {
	kin    Kinematics
	solver ik.Solver
	rand   *rand.Rand
	state  []referenceframe.Input
}

// NewSession returns a session whose state starts at start, or at all zeros when start is nil.
func NewSession(kin Kinematics, solver ik.Solver, seed int64, start []referenceframe.Input) *Session {
	state := make([]referenceframe.Input, kin.DoF())
	copy(state, start)
	return &Session{
		kin:    kin,
		solver: solver,
		//nolint:gosec
		rand:  rand.New(rand.NewSource(seed)),
		state: state,
	}
}

// State returns a copy of the configuration the next track query starts from.
func (s *Session) State() []referenceframe.Input {
	return append([]referenceframe.Input(nil), s.state...)
}

// TryReach reseeds the state to a random configuration and solves for goal without a continuity
// constraint. The result is returned only if it matches goal within the joint limits; otherwise
// ok is false. A match becomes the new state.
func (s *Session) TryReach(ctx context.Context, goal spatialmath.Pose) ([]referenceframe.Input, bool, error) {
	s.state = s.kin.RandomConfiguration(s.rand)
	return s.solve(ctx, goal, false)
}

// TryTrack solves for goal close to the current state. On a match the state advances to the
// result; on failure the state is unchanged.
func (s *Session) TryTrack(ctx context.Context, goal spatialmath.Pose) ([]referenceframe.Input, bool, error) {
	return s.solve(ctx, goal, true)
}

func (s *Session) solve(ctx context.Context, goal spatialmath.Pose, constrain bool) ([]referenceframe.Input, bool, error) {
	config, err := s.solver.Solve(ctx, s.State(), goal, constrain)
	if err != nil {
		return nil, false, err
	}
	if len(config) != len(s.state) || utils.AnyNaN(config) || !s.kin.WithinLimits(config) || !s.kin.PoseMatches(config, goal) {
		return nil, false, nil
	}
	s.state = append(s.state[:0], config...)
	return append([]referenceframe.Input(nil), config...), true, nil
}
