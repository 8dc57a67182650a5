package ik

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

func TestSquaredNormMetric(t *testing.T) {
	goal := spatialmath.NewPoseFromPoint(r3.Vector{X: 1})
	metric := NewSquaredNormMetric(goal)
	test.That(t, metric(&State{Position: goal}), test.ShouldEqual, 0.)

	moved := spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 2})
	test.That(t, metric(&State{Position: moved}), test.ShouldAlmostEqual, 4.)

	// Orientation error is scaled by 10 before squaring.
	turned := spatialmath.NewPose(r3.Vector{X: 1}, &spatialmath.R4AA{Theta: 0.1, RZ: 1})
	test.That(t, metric(&State{Position: turned}), test.ShouldAlmostEqual, 1., 1e-9)
}

func TestConfigurationMetrics(t *testing.T) {
	continuity := NewContinuityMetric([]referenceframe.Input{0, 0}, 0.5)
	test.That(t, continuity(&State{Configuration: []referenceframe.Input{3, 4}}), test.ShouldAlmostEqual, 12.5)

	limits := []referenceframe.Limit{{Min: -1, Max: 1}, {Min: math.Inf(-1), Max: math.Inf(1)}}
	limit := NewJointLimitMetric(limits, 2)
	test.That(t, limit(&State{Configuration: []referenceframe.Input{0.5, 100}}), test.ShouldEqual, 0.)
	test.That(t, limit(&State{Configuration: []referenceframe.Input{3, 0}}), test.ShouldAlmostEqual, 8.)
	test.That(t, limit(&State{Configuration: []referenceframe.Input{-2, 0}}), test.ShouldAlmostEqual, 2.)

	combined := CombineMetrics(continuity, limit, NewZeroMetric())
	test.That(t, combined(&State{Configuration: []referenceframe.Input{3, 4}}), test.ShouldAlmostEqual, 20.5)
}
