package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) meters and the Orientation() method
// returns an Orientation object.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(point r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(point)
	}

	q := newDualQuaternion()
	q.Real = Normalize(o.Quaternion())
	q.SetTranslation(point)
	return q
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.SetTranslation(point)
	return q
}

// NewPoseFromOrientation returns a pose with the given orientation at the origin.
func NewPoseFromOrientation(o Orientation) Pose {
	return NewPose(r3.Vector{}, o)
}

// Compose takes in two poses and returns a new pose representing a followed by b: b is expressed
// in the frame that a places.
func Compose(a, b Pose) Pose {
	aq := newDualQuaternionFromPose(a)
	bq := newDualQuaternionFromPose(b)
	return &dualQuaternion{aq.Transformation(bq.Number)}
}

// PoseInverse returns the pose that undoes p.
func PoseInverse(p Pose) Pose {
	return newDualQuaternionFromPose(p).inverse()
}

// PoseBetween returns the difference between two dualQuaternions, that is, the dq which if
// multiplied by `a` will give `b`.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseDelta returns the position difference b-a and the R3 axis angle of the rotation taking a's
// orientation to b's, expressed in the world frame.
func PoseDelta(a, b Pose) (r3.Vector, r3.Vector) {
	between := quat.Mul(b.Orientation().Quaternion(), quat.Conj(a.Orientation().Quaternion()))
	return b.Point().Sub(a.Point()), QuatToR3AA(between)
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps checks position to within epsilon and rotation to within epsilon radians.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	between := quat.Mul(a.Orientation().Quaternion(), quat.Conj(b.Orientation().Quaternion()))
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) && QuaternionAngle(between) < epsilon
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// PrettyPrint returns a human readable string of a pose.
func PrettyPrint(p Pose) string {
	pt := p.Point()
	q := p.Orientation().Quaternion()
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f QW:%.4f QX:%.4f QY:%.4f QZ:%.4f}",
		pt.X, pt.Y, pt.Z, q.Real, q.Imag, q.Jmag, q.Kmag)
}
