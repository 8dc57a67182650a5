package trajectory

import (
	"bytes"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize(testMotion())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Steps, test.ShouldEqual, 3)
	test.That(t, s.Duration, test.ShouldEqual, 1.)
	test.That(t, s.JointTravel, test.ShouldAlmostEqual, 1.75)
	test.That(t, len(s.Joints), test.ShouldEqual, 2)

	shoulder := s.Joints[0]
	test.That(t, shoulder.Name, test.ShouldEqual, "shoulder")
	test.That(t, shoulder.Travel, test.ShouldAlmostEqual, 0.25)
	test.That(t, shoulder.Min, test.ShouldEqual, 0.)
	test.That(t, shoulder.Max, test.ShouldEqual, 0.25)
	test.That(t, shoulder.MaxSpeed, test.ShouldAlmostEqual, 0.5)
	test.That(t, shoulder.MeanSpeed, test.ShouldAlmostEqual, 0.25)

	elbow := s.Joints[1]
	test.That(t, elbow.Travel, test.ShouldAlmostEqual, 1.5)
	test.That(t, elbow.MaxSpeed, test.ShouldAlmostEqual, 3.)
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(&Motion{RobotName: "planar2"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Steps, test.ShouldEqual, 0)
	test.That(t, s.Joints, test.ShouldBeEmpty)
}

func TestStepHistogram(t *testing.T) {
	test.That(t, StepDistances(testMotion()), test.ShouldResemble, []float64{0.25, 1.5})

	hist, err := StepHistogram(testMotion(), 2)
	test.That(t, err, test.ShouldBeNil)
	total := 0
	for _, b := range hist.Buckets {
		total += b.Count
	}
	test.That(t, total, test.ShouldEqual, 2)

	var buf bytes.Buffer
	test.That(t, PrintStepHistogram(&buf, testMotion(), 2, 20), test.ShouldBeNil)
	test.That(t, buf.Len(), test.ShouldBeGreaterThan, 0)

	_, err = StepHistogram(&Motion{}, 2)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSaveJointPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planar2.png")
	test.That(t, SaveJointPlot(path, testMotion()), test.ShouldBeNil)

	_, err := NewJointPlot(&Motion{})
	test.That(t, err, test.ShouldNotBeNil)
}
