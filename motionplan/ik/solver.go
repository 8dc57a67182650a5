// Package ik contains the pose solvers that map a target end-effector pose and a seed
// configuration to a joint configuration reaching it.
package ik

import (
	"context"
	"math"

	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

// Kinematics is the forward model a solver optimizes over.
type Kinematics interface {
	DoF() int
	Limits() []referenceframe.Limit
	EndEffectorPose([]referenceframe.Input) (spatialmath.Pose, error)
}

// Solver finds a configuration reaching goal.
//
// With constrain false the search starts from seed with the larger iteration budget and is free
// to wander; with constrain true it must stay close to seed and uses the smaller budget.
// Not finding a solution is not an error: the returned configuration then contains NaN. Errors
// are reserved for bad arguments and cancellation. Solvers are not safe for concurrent use.
type Solver interface {
	Solve(ctx context.Context, seed []referenceframe.Input, goal spatialmath.Pose, constrain bool) ([]referenceframe.Input, error)
}

// Config tunes a solver.
type Config struct {
	// ReachIterations bounds the optimizer loop of unconstrained queries.
	ReachIterations int `yaml:"reach_iterations"`
	// TrackIterations bounds the optimizer loop of constrained queries.
	TrackIterations int `yaml:"track_iterations"`
	// ContinuityWeight scales the penalty on distance from the seed in constrained queries.
	ContinuityWeight float64 `yaml:"continuity_weight"`
	// Restarts is how many extra random seeds an unconstrained query may try after the first fails.
	Restarts int `yaml:"restarts"`
	// Seed seeds the solver's random restarts.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the solver settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		ReachIterations:  1000,
		TrackIterations:  100,
		ContinuityWeight: 1e-5,
		Restarts:         0,
		Seed:             1,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ReachIterations <= 0 {
		c.ReachIterations = def.ReachIterations
	}
	if c.TrackIterations <= 0 {
		c.TrackIterations = def.TrackIterations
	}
	if c.ContinuityWeight <= 0 {
		c.ContinuityWeight = def.ContinuityWeight
	}
	if c.Restarts < 0 {
		c.Restarts = 0
	}
	return c
}

// NaNConfiguration returns the failure result of a solver for a robot with dof joints.
func NaNConfiguration(dof int) []referenceframe.Input {
	out := make([]referenceframe.Input, dof)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// successThreshold is the squared-norm metric value under which a solve needs no restart.
const successThreshold = 1e-8

const jointLimitWeight = 100.

func limitsToArrays(limits []referenceframe.Limit) ([]float64, []float64) {
	var min, max []float64
	for _, limit := range limits {
		min = append(min, limit.Min)
		max = append(max, limit.Max)
	}
	return min, max
}
