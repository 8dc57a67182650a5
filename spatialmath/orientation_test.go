package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestEulerRoundTrip(t *testing.T) {
	for _, ea := range []EulerAngles{
		{},
		{Roll: 0.4},
		{Pitch: -0.7},
		{Yaw: 2.9},
		{Roll: 0.1, Pitch: 0.2, Yaw: 0.3},
		{Roll: -2.1, Pitch: 1.2, Yaw: -0.9},
	} {
		back := QuatToEulerAngles(ea.Quaternion())
		test.That(t, back.Roll, test.ShouldAlmostEqual, ea.Roll)
		test.That(t, back.Pitch, test.ShouldAlmostEqual, ea.Pitch)
		test.That(t, back.Yaw, test.ShouldAlmostEqual, ea.Yaw)
	}
}

func TestEulerMatchesAxisAngle(t *testing.T) {
	yaw := &EulerAngles{Yaw: math.Pi / 3}
	aa := &R4AA{Theta: math.Pi / 3, RZ: 1}
	test.That(t, OrientationAlmostEqual(yaw, aa), test.ShouldBeTrue)

	// A pitch of π/2 sends +X to -Z.
	pitch := NewPoseFromOrientation(&EulerAngles{Pitch: math.Pi / 2})
	moved := Compose(pitch, NewPoseFromPoint(r3.Vector{X: 1}))
	test.That(t, R3VectorAlmostEqual(moved.Point(), r3.Vector{Z: -1}, 1e-9), test.ShouldBeTrue)
}

func TestQuaternionAngle(t *testing.T) {
	q := (&R4AA{Theta: 0.3, RX: 1}).ToQuat()
	test.That(t, QuaternionAngle(q), test.ShouldAlmostEqual, 0.3)
	test.That(t, QuaternionAngle(Flip(q)), test.ShouldAlmostEqual, 0.3)
	test.That(t, QuaternionAngle(quat.Number{Real: 1}), test.ShouldEqual, 0.)
}

func TestAxisAngleConversions(t *testing.T) {
	aa := QuatToR4AA((&R4AA{Theta: 1.2, RX: 0, RY: 2, RZ: 0}).ToQuat())
	test.That(t, aa.Theta, test.ShouldAlmostEqual, 1.2)
	test.That(t, aa.RY, test.ShouldAlmostEqual, 1.)

	r3aa := QuatToR3AA(quat.Number{Real: 1})
	test.That(t, r3aa, test.ShouldResemble, r3.Vector{})

	back := R3ToR4(r3.Vector{Z: 0.25})
	test.That(t, back.Theta, test.ShouldAlmostEqual, 0.25)
	test.That(t, back.RZ, test.ShouldAlmostEqual, 1.)
	test.That(t, R3ToR4(r3.Vector{}).Theta, test.ShouldEqual, 0.)

	test.That(t, (&R4AA{Theta: 1}).ToQuat(), test.ShouldResemble, quat.Number{Real: 1})
}

func TestNewQuaternionNormalizes(t *testing.T) {
	o := NewQuaternion(2, 0, 0, 0)
	test.That(t, o.Quaternion(), test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, NewQuaternion(0, 0, 0, 0).Quaternion(), test.ShouldResemble, quat.Number{Real: 1})

	between := OrientationBetween(NewZeroOrientation(), &R4AA{Theta: 0.2, RZ: 1})
	test.That(t, between.AxisAngles().Theta, test.ShouldAlmostEqual, 0.2)
}
