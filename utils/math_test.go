package utils

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1, 1.0005, 1e-3), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.01, 1e-3), test.ShouldBeFalse)
}

func TestClampAndNaN(t *testing.T) {
	test.That(t, Clamp(5, -1, 1), test.ShouldEqual, 1.)
	test.That(t, Clamp(-5, -1, 1), test.ShouldEqual, -1.)
	test.That(t, Clamp(0.5, -1, 1), test.ShouldEqual, 0.5)
	test.That(t, AnyNaN([]float64{1, 2}), test.ShouldBeFalse)
	test.That(t, AnyNaN([]float64{1, math.NaN()}), test.ShouldBeTrue)
	test.That(t, AnyNaN(nil), test.ShouldBeFalse)
}

func TestSampleUniform(t *testing.T) {
	//nolint:gosec
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		v := SampleUniform(-math.Pi, math.Pi, r)
		test.That(t, v, test.ShouldBeGreaterThanOrEqualTo, -math.Pi)
		test.That(t, v, test.ShouldBeLessThan, math.Pi)
	}
}

func TestPaths(t *testing.T) {
	test.That(t, filepath.Base(ResolveFile("utils/math.go")), test.ShouldEqual, "math.go")
	test.That(t, ResolveRelative("/a/b", "c.urdf"), test.ShouldEqual, "/a/b/c.urdf")
	test.That(t, ResolveRelative("/a/b", "/c.urdf"), test.ShouldEqual, "/c.urdf")
	_, err := SafeJoinDir("/a", "../b")
	test.That(t, err, test.ShouldNotBeNil)
}
