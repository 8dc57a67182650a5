package trajectory

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

const circle = `t,x,y,z,qx,qy,qz,qw
0,1,0,0,0,0,0,2
0.5, 0.5, 0.5, 0, 0, 0, 0.7071068, 0.7071068
`

func TestReadWaypoints(t *testing.T) {
	waypoints, err := ReadWaypointsCSV(strings.NewReader(circle), "planar2_circle.csv")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(waypoints), test.ShouldEqual, 2)

	test.That(t, waypoints[0].Time, test.ShouldEqual, 0.)
	test.That(t, waypoints[0].Position, test.ShouldResemble, r3.Vector{X: 1})
	// qw of 2 is normalized to the identity.
	test.That(t, waypoints[0].Orientation, test.ShouldResemble, quat.Number{Real: 1})

	test.That(t, waypoints[1].Time, test.ShouldEqual, 0.5)
	test.That(t, waypoints[1].Orientation.Kmag, test.ShouldAlmostEqual, math.Sqrt2/2, 1e-6)
	test.That(t, waypoints[1].Orientation.Real, test.ShouldAlmostEqual, math.Sqrt2/2, 1e-6)

	pose := waypoints[1].Pose()
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, pose.Orientation().Quaternion().Kmag, test.ShouldAlmostEqual, math.Sqrt2/2, 1e-6)
}

func TestReadWaypointsErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ReadWaypointsCSV(strings.NewReader(""), "a.csv")
		test.That(t, errors.Is(err, ErrMissingHeader), test.ShouldBeTrue)
	})
	t.Run("header only", func(t *testing.T) {
		waypoints, err := ReadWaypointsCSV(strings.NewReader("t,x,y,z,qx,qy,qz,qw\n"), "a.csv")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, waypoints, test.ShouldBeEmpty)
	})
	t.Run("malformed number", func(t *testing.T) {
		_, err := ReadWaypointsCSV(strings.NewReader("t,x,y,z,qx,qy,qz,qw\n0,1,oops,0,0,0,0,1\n"), "a.csv")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "a.csv: malformed record at row 2 column 3")
	})
	t.Run("non-finite numbers", func(t *testing.T) {
		for _, tc := range []struct {
			data string
			want string
		}{
			{"t,x,y,z,qx,qy,qz,qw\n0,NaN,0,0,0,0,0,1\n", "row 2 column 2"},
			{"t,x,y,z,qx,qy,qz,qw\n0,0,0,0,0,0,0,1\n1,0,Inf,0,0,0,0,1\n", "row 3 column 3"},
			{"t,x,y,z,qx,qy,qz,qw\n+Inf,0,0,0,0,0,0,1\n", "row 2 column 1"},
			{"t,x,y,z,qx,qy,qz,qw\n0,0,0,0,0,0,0,-inf\n", "row 2 column 8"},
		} {
			_, err := ReadWaypointsCSV(strings.NewReader(tc.data), "a.csv")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, "a.csv: malformed record at "+tc.want)
			test.That(t, err.Error(), test.ShouldContainSubstring, "is not a finite number")
		}
	})
	t.Run("short row", func(t *testing.T) {
		_, err := ReadWaypointsCSV(strings.NewReader("t,x,y,z,qx,qy,qz,qw\n0,1,0,0\n"), "a.csv")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "row 2 has 4 fields, expected 8")
	})
	t.Run("zero quaternion", func(t *testing.T) {
		_, err := ReadWaypointsCSV(strings.NewReader("t,x,y,z,qx,qy,qz,qw\n0,1,0,0,0,0,0,0\n"), "a.csv")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "quaternion is zero")
	})
}

func TestWaypointsRoundTrip(t *testing.T) {
	waypoints, err := ReadWaypointsCSV(strings.NewReader(circle), "in")
	test.That(t, err, test.ShouldBeNil)
	var buf bytes.Buffer
	test.That(t, WriteWaypointsCSV(&buf, waypoints), test.ShouldBeNil)
	again, err := ReadWaypointsCSV(&buf, "out")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(again), test.ShouldEqual, len(waypoints))
	for i := range waypoints {
		test.That(t, again[i].Time, test.ShouldEqual, waypoints[i].Time)
		test.That(t, again[i].Position, test.ShouldResemble, waypoints[i].Position)
		test.That(t, spatialmath.QuaternionAlmostEqual(again[i].Orientation, waypoints[i].Orientation, 1e-12), test.ShouldBeTrue)
	}
}

func testMotion() *Motion {
	return &Motion{
		RobotName:  "planar2",
		JointNames: []string{"shoulder", "elbow"},
		Steps: []MotionStep{
			{Time: 0, Configuration: []referenceframe.Input{0, 0.5}},
			{Time: 0.5, Configuration: []referenceframe.Input{0.25, 0.5}},
			{Time: 1, Configuration: []referenceframe.Input{0.25, -1}},
		},
	}
}

func TestWriteMotion(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, WriteMotionCSV(&buf, testMotion()), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual,
		"time,planar2-shoulder,planar2-elbow\n0,0,0.5\n0.5,0.25,0.5\n1,0.25,-1\n")

	m, err := ReadMotionCSV(&buf, "planar2_out.csv", "planar2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m, test.ShouldResemble, testMotion())
}

func TestWriteMotionMismatch(t *testing.T) {
	m := testMotion()
	m.Steps[1].Configuration = []referenceframe.Input{1}
	var buf bytes.Buffer
	err := WriteMotionCSV(&buf, m)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "step 1 has 1 joint values for 2 joints")
}

func TestReadMotionNonFinite(t *testing.T) {
	_, err := ReadMotionCSV(strings.NewReader("time,planar2-shoulder\n0,NaN\n"), "m.csv", "planar2")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "m.csv: malformed record at row 2 column 2")
}

func TestReadMotionWrongRobot(t *testing.T) {
	_, err := ReadMotionCSV(strings.NewReader("time,ur5-shoulder\n0,1\n"), "x.csv", "planar2")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `does not belong to robot "planar2"`)
}

func TestMotionFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_motions", "planar2_circle.csv")
	test.That(t, WriteMotionFile(path, testMotion()), test.ShouldBeNil)
	m, err := ReadMotionFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m, test.ShouldResemble, testMotion())
}

func TestRobotNameFromPath(t *testing.T) {
	test.That(t, RobotNameFromPath("/data/input_trajectories/ur5_circle_fast.csv"), test.ShouldEqual, "ur5")
	test.That(t, RobotNameFromPath("planar2.csv"), test.ShouldEqual, "planar2")
	test.That(t, RobotNameFromPath("_odd.csv"), test.ShouldEqual, "")
}
