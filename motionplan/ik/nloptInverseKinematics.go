//go:build nlopt

package ik

import (
	"context"
	"math"
	"math/rand"

	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
	"go.viam.com/iklink/utils"
)

var errBadBounds = errors.New("cannot set upper or lower bounds for nlopt, slice is empty")

const defaultJump = 1e-8

// NloptIK runs SLSQP from libnlopt on the pose metric. Bounds are enforced by nlopt itself rather
// than by a penalty, so continuous joints get ±Inf bounds.
type NloptIK struct {
	kin        Kinematics
	cfg        Config
	lowerBound []float64
	upperBound []float64
	epsilon    float64
	randSeed   *rand.Rand
	logger     logging.Logger
}

// NewNloptIK creates an nlopt-backed solver. Zero fields of cfg take their DefaultConfig values.
func NewNloptIK(kin Kinematics, cfg Config, logger logging.Logger) (Solver, error) {
	if kin == nil || kin.DoF() == 0 {
		return nil, errBadBounds
	}
	cfg = cfg.withDefaults()
	lower, upper := limitsToArrays(kin.Limits())
	return &NloptIK{
		kin:        kin,
		cfg:        cfg,
		lowerBound: lower,
		upperBound: upper,
		epsilon:    successThreshold,
		//nolint:gosec
		randSeed: rand.New(rand.NewSource(cfg.Seed)),
		logger:   logger,
	}, nil
}

// Solve runs SLSQP from seed. See Solver.
func (ik *NloptIK) Solve(
	ctx context.Context,
	seed []referenceframe.Input,
	goal spatialmath.Pose,
	constrain bool,
) ([]referenceframe.Input, error) {
	dof := ik.kin.DoF()
	if len(seed) != dof {
		return nil, referenceframe.NewIncorrectDoFError(len(seed), dof)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	poseMetric := NewSquaredNormMetric(goal)
	metric := poseMetric
	iterations := ik.cfg.ReachIterations
	tries := 1 + ik.cfg.Restarts
	if constrain {
		metric = CombineMetrics(poseMetric, NewContinuityMetric(seed, ik.cfg.ContinuityWeight))
		iterations = ik.cfg.TrackIterations
		tries = 1
	}

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(dof))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	state := &State{}
	eval := func(x []float64) float64 {
		pose, err := ik.kin.EndEffectorPose(x)
		if err != nil {
			return math.Inf(1)
		}
		state.Position = pose
		state.Configuration = x
		return metric(state)
	}
	// Gradient is, under the hood, a C array that nlopt expects us to mutate in place.
	nloptMinFunc := func(x, gradient []float64) float64 {
		dist := eval(x)
		if len(gradient) == 0 {
			return dist
		}
		shifted := append([]float64(nil), x...)
		for i := range gradient {
			jump := defaultJump
			flip := false
			shifted[i] += jump
			if shifted[i] >= ik.upperBound[i] {
				flip = true
				shifted[i] -= 2 * jump
			}
			gradient[i] = (eval(shifted) - dist) / jump
			if flip {
				shifted[i] += jump
				gradient[i] *= -1
			} else {
				shifted[i] -= jump
			}
		}
		return dist
	}

	err = multierr.Combine(
		opt.SetFtolRel(ik.epsilon),
		opt.SetFtolAbs(ik.epsilon),
		opt.SetLowerBounds(ik.lowerBound),
		opt.SetUpperBounds(ik.upperBound),
		opt.SetStopVal(ik.epsilon*ik.epsilon),
		opt.SetXtolRel(ik.epsilon),
		opt.SetMinObjective(nloptMinFunc),
		opt.SetMaxEval(iterations),
	)
	if err != nil {
		return nil, err
	}

	best := NaNConfiguration(dof)
	bestScore := math.Inf(1)
	start := referenceframe.InputsToFloats(seed)
	for try := 0; try < tries; try++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if try > 0 {
			start = referenceframe.RandomFrameInputs(limitFrame(ik.kin.Limits()), ik.randSeed)
		}
		for i := range start {
			start[i] = utils.Clamp(start[i], ik.lowerBound[i], ik.upperBound[i])
		}
		solution, _, nloptErr := opt.Optimize(start)
		if nloptErr != nil && ik.logger != nil {
			// This just *happens* sometimes due to weirdnesses in nonlinear randomized problems.
			ik.logger.CDebugw(ctx, "nlopt returned an error", "error", nloptErr)
		}
		if solution == nil || utils.AnyNaN(solution) {
			continue
		}
		pose, err := ik.kin.EndEffectorPose(solution)
		if err != nil {
			continue
		}
		if score := poseMetric(&State{Position: pose, Configuration: solution}); score < bestScore {
			best, bestScore = referenceframe.FloatsToInputs(solution), score
		}
		if bestScore < successThreshold {
			break
		}
	}
	return best, nil
}
