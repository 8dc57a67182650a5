// Package trajectory reads Cartesian waypoint files and reads and writes joint-space motions.
package trajectory

import (
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

// Waypoint is one timestamped end-effector target. Orientation is a unit quaternion.
type Waypoint struct {
	Time        float64
	Position    r3.Vector
	Orientation quat.Number
}

// Pose returns the waypoint target as a pose relative to the robot base.
func (w Waypoint) Pose() spatialmath.Pose {
	o := spatialmath.NewQuaternion(w.Orientation.Real, w.Orientation.Imag, w.Orientation.Jmag, w.Orientation.Kmag)
	return spatialmath.NewPose(w.Position, o)
}

// MotionStep is one timestamped joint configuration.
type MotionStep struct {
	Time          float64
	Configuration []referenceframe.Input
}

// Motion is the joint-space result for one robot, in increasing time order.
type Motion struct {
	RobotName  string
	JointNames []string
	Steps      []MotionStep
}

// Len returns the number of steps.
func (m *Motion) Len() int {
	return len(m.Steps)
}

// Times returns the step timestamps.
func (m *Motion) Times() []float64 {
	times := make([]float64, len(m.Steps))
	for i, s := range m.Steps {
		times[i] = s.Time
	}
	return times
}

// Joint returns the trajectory of joint i over all steps.
func (m *Motion) Joint(i int) []float64 {
	values := make([]float64, len(m.Steps))
	for s, step := range m.Steps {
		values[s] = step.Configuration[i]
	}
	return values
}

// RobotNameFromPath returns the part of the file name before the first underscore, e.g.
// "ur5_circle.csv" is robot "ur5". A name without an underscore is used whole, minus its extension.
func RobotNameFromPath(path string) string {
	base := filepath.Base(path)
	if idx := strings.Index(base, "_"); idx >= 0 {
		return base[:idx]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
