package ik

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
	"go.viam.com/iklink/utils"
)

// GradientIK minimizes the pose metric with BFGS over central finite-difference gradients.
type GradientIK struct {
	kin        Kinematics
	cfg        Config
	lowerBound []float64
	upperBound []float64
	randSeed   *rand.Rand
	logger     logging.Logger
}

// NewGradientIK creates a gradient descent solver over the given kinematics. Zero fields of cfg
// take their DefaultConfig values.
func NewGradientIK(kin Kinematics, cfg Config, logger logging.Logger) (*GradientIK, error) {
	if kin == nil || kin.DoF() == 0 {
		return nil, errors.New("gradient solver needs a model with at least one joint")
	}
	cfg = cfg.withDefaults()
	lower, upper := limitsToArrays(kin.Limits())
	return &GradientIK{
		kin:        kin,
		cfg:        cfg,
		lowerBound: lower,
		upperBound: upper,
		//nolint:gosec
		randSeed: rand.New(rand.NewSource(cfg.Seed)),
		logger:   logger,
	}, nil
}

// Solve runs the optimizer from seed. See Solver.
func (ik *GradientIK) Solve(
	ctx context.Context,
	seed []referenceframe.Input,
	goal spatialmath.Pose,
	constrain bool,
) ([]referenceframe.Input, error) {
	if len(seed) != ik.kin.DoF() {
		return nil, referenceframe.NewIncorrectDoFError(len(seed), ik.kin.DoF())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	poseMetric := NewSquaredNormMetric(goal)
	metrics := []StateMetric{poseMetric, NewJointLimitMetric(ik.kin.Limits(), jointLimitWeight)}
	iterations := ik.cfg.ReachIterations
	tries := 1 + ik.cfg.Restarts
	if constrain {
		metrics = append(metrics, NewContinuityMetric(seed, ik.cfg.ContinuityWeight))
		iterations = ik.cfg.TrackIterations
		tries = 1
	}
	objective := CombineMetrics(metrics...)

	start := referenceframe.InputsToFloats(seed)
	best := NaNConfiguration(len(seed))
	bestScore := math.Inf(1)
	for try := 0; try < tries; try++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if try > 0 {
			start = referenceframe.RandomFrameInputs(limitFrame(ik.kin.Limits()), ik.randSeed)
		}
		solution, ok := ik.minimize(objective, start, iterations)
		if !ok {
			continue
		}
		score := ik.score(poseMetric, solution)
		if score < bestScore {
			best, bestScore = solution, score
		}
		if bestScore < successThreshold {
			break
		}
	}
	if ik.logger != nil {
		ik.logger.CDebugw(ctx, "gradient solve", "constrain", constrain, "score", bestScore)
	}
	return best, nil
}

// minimize returns the optimizer's final point, clamped into the joint limits.
func (ik *GradientIK) minimize(objective StateMetric, start []float64, iterations int) ([]referenceframe.Input, bool) {
	state := &State{}
	f := func(x []float64) float64 {
		pose, err := ik.kin.EndEffectorPose(x)
		if err != nil {
			return math.Inf(1)
		}
		state.Position = pose
		state.Configuration = x
		return objective(state)
	}
	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   iterations,
		GradientThreshold: 1e-12,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Iterations: 20,
		},
	}

	result, err := optimize.Minimize(problem, start, settings, &optimize.BFGS{})
	if result == nil {
		if ik.logger != nil {
			ik.logger.Debugw("optimizer returned no result", "error", err)
		}
		return nil, false
	}
	x := result.X
	if utils.AnyNaN(x) {
		return nil, false
	}
	out := make([]referenceframe.Input, len(x))
	for i, v := range x {
		out[i] = utils.Clamp(v, ik.lowerBound[i], ik.upperBound[i])
	}
	return out, true
}

func (ik *GradientIK) score(metric StateMetric, config []referenceframe.Input) float64 {
	pose, err := ik.kin.EndEffectorPose(config)
	if err != nil {
		return math.Inf(1)
	}
	return metric(&State{Position: pose, Configuration: config})
}

// limitFrame exposes a list of limits as a Frame so RandomFrameInputs can sample it.
type limitFrame []referenceframe.Limit

func (lf limitFrame) Name() string { return "limits" }

func (lf limitFrame) DoF() []referenceframe.Limit { return lf }

func (lf limitFrame) Transform([]referenceframe.Input) (spatialmath.Pose, error) {
	return spatialmath.NewZeroPose(), nil
}

func (lf limitFrame) AlmostEquals(referenceframe.Frame) bool { return false }
