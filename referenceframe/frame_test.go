package referenceframe

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/iklink/spatialmath"
)

func TestStaticFrame(t *testing.T) {
	pose := spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	frame, err := NewStaticFrame("offset", pose)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.DoF(), test.ShouldHaveLength, 0)
	got, err := frame.Transform(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(got, pose), test.ShouldBeTrue)
	_, err = frame.Transform([]Input{1})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewStaticFrame("nil", nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, NewZeroStaticFrame("zero").AlmostEquals(NewZeroStaticFrame("zero")), test.ShouldBeTrue)
}

func TestRotationalFrame(t *testing.T) {
	frame, err := NewRotationalFrame("joint", r3.Vector{Z: 2}, Limit{Min: -1, Max: 1})
	test.That(t, err, test.ShouldBeNil)
	pose, err := frame.Transform([]Input{0.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Orientation().AxisAngles().Theta, test.ShouldAlmostEqual, 0.5)
	test.That(t, pose.Orientation().AxisAngles().RZ, test.ShouldAlmostEqual, 1.)

	_, err = frame.Transform([]Input{1.5})
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)

	_, err = NewRotationalFrame("bad", r3.Vector{}, Limit{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTranslationalFrame(t *testing.T) {
	frame, err := NewTranslationalFrame("rail", r3.Vector{Y: 3}, Limit{Min: 0, Max: 2})
	test.That(t, err, test.ShouldBeNil)
	pose, err := frame.Transform([]Input{1.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{Y: 1.5}, 1e-12), test.ShouldBeTrue)

	_, err = frame.Transform([]Input{1, 2})
	test.That(t, err, test.ShouldBeError, NewIncorrectDoFError(2, 1))
}

func TestRandomFrameInputs(t *testing.T) {
	continuous := Limit{Min: math.Inf(-1), Max: math.Inf(1)}
	test.That(t, continuous.IsContinuous(), test.ShouldBeTrue)
	test.That(t, Limit{Min: -1, Max: 1}.IsContinuous(), test.ShouldBeFalse)

	bounded, err := NewRotationalFrame("bounded", r3.Vector{Z: 1}, Limit{Min: 0.2, Max: 0.3})
	test.That(t, err, test.ShouldBeNil)
	free, err := NewRotationalFrame("free", r3.Vector{Z: 1}, continuous)
	test.That(t, err, test.ShouldBeNil)
	model := NewSerialModel("m", []Frame{bounded, free})

	//nolint:gosec
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		inputs := RandomFrameInputs(model, r)
		test.That(t, inputs, test.ShouldHaveLength, 2)
		test.That(t, inputs[0], test.ShouldBeBetweenOrEqual, 0.2, 0.3)
		test.That(t, inputs[1], test.ShouldBeGreaterThanOrEqualTo, -math.Pi)
		test.That(t, inputs[1], test.ShouldBeLessThan, math.Pi)
	}
	test.That(t, RandomFrameInputs(model, nil), test.ShouldHaveLength, 2)
}

func TestInputsL2Distance(t *testing.T) {
	test.That(t, InputsL2Distance([]Input{0, 0}, []Input{3, 4}), test.ShouldAlmostEqual, 25.)
	test.That(t, func() { InputsL2Distance([]Input{0}, []Input{1, 2}) }, test.ShouldPanic)
	test.That(t, InputsToFloats(FloatsToInputs([]float64{1, 2})), test.ShouldResemble, []float64{1, 2})
}
