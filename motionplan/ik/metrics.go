package ik

import (
	"gonum.org/v1/gonum/floats"

	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

const orientationDistanceScaling = 10.

// State contains the information a metric needs to score a candidate configuration: the
// configuration itself and the end-effector pose it produces.
type State struct {
	Position      spatialmath.Pose
	Configuration []referenceframe.Input
}

// StateMetric are functions which, given a State, produces some score. Lower is better.
// This is used for gradient descent to converge upon a goal pose, for example.
type StateMetric func(*State) float64

// NewZeroMetric always returns zero as the distance between two points.
func NewZeroMetric() StateMetric {
	return func(from *State) float64 { return 0 }
}

type combinableStateMetric struct {
	metrics []StateMetric
}

func (m *combinableStateMetric) combinedDist(input *State) float64 {
	dist := 0.
	for _, metric := range m.metrics {
		dist += metric(input)
	}
	return dist
}

// CombineMetrics will take a variable number of Metrics and return a new Metric which will combine all given metrics into one, summing
// their distances.
func CombineMetrics(metrics ...StateMetric) StateMetric {
	cm := &combinableStateMetric{metrics: metrics}
	return cm.combinedDist
}

// NewSquaredNormMetric is the default distance function between two poses to be used for gradient descent.
func NewSquaredNormMetric(goal spatialmath.Pose) StateMetric {
	return func(query *State) float64 {
		dPos, dRot := spatialmath.PoseDelta(goal, query.Position)
		// Increase weight for orientation since it's a small number
		return dPos.Norm2() + dRot.Mul(orientationDistanceScaling).Norm2()
	}
}

// NewContinuityMetric penalizes the squared joint-space distance from seed, scaled by weight.
// Tracking queries use it to stay on the branch of solutions the seed lies on.
func NewContinuityMetric(seed []referenceframe.Input, weight float64) StateMetric {
	anchor := referenceframe.InputsToFloats(seed)
	return func(query *State) float64 {
		d := floats.Distance(query.Configuration, anchor, 2)
		return weight * d * d
	}
}

// NewJointLimitMetric penalizes the squared distance by which each input lies outside its limit.
// Continuous limits never contribute.
func NewJointLimitMetric(limits []referenceframe.Limit, weight float64) StateMetric {
	return func(query *State) float64 {
		penalty := 0.
		for i, lim := range limits {
			v := query.Configuration[i]
			switch {
			case v < lim.Min:
				penalty += (lim.Min - v) * (lim.Min - v)
			case v > lim.Max:
				penalty += (v - lim.Max) * (v - lim.Max)
			}
		}
		return weight * penalty
	}
}
