package kinematics

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/iklink/referenceframe"
)

// JointType says whether a joint wraps around or stops at its limits.
type JointType string

const (
	// Continuous joints have no position limits.
	Continuous JointType = "continuous"
	// Bounded joints live in [Lower, Upper].
	Bounded JointType = "bounded"
)

// Joint is one controllable degree of freedom of the robot.
type Joint struct {
	Name string
	Type JointType
	// Lower and Upper are infinite for continuous joints.
	Lower float64
	Upper float64
	// Velocity is the largest change per second, in radians or meters.
	Velocity float64
}

// Limit returns the joint's position limits in referenceframe form.
func (j Joint) Limit() referenceframe.Limit {
	return referenceframe.Limit{Min: j.Lower, Max: j.Upper}
}

func (j Joint) validate() error {
	if j.Name == "" {
		return errors.New("joint has no name")
	}
	switch j.Type {
	case Continuous:
	case Bounded:
		if math.IsNaN(j.Lower) || math.IsNaN(j.Upper) || j.Lower > j.Upper {
			return errors.Errorf("joint %q has invalid limits [%f, %f]", j.Name, j.Lower, j.Upper)
		}
	default:
		return errors.Errorf("joint %q has unknown type %q", j.Name, j.Type)
	}
	if !(j.Velocity > 0) || math.IsInf(j.Velocity, 0) {
		return errors.Errorf("joint %q needs a positive finite velocity limit, got %f", j.Name, j.Velocity)
	}
	return nil
}

// JointFromConfig converts a parsed URDF joint. Revolute and prismatic joints are bounded.
func JointFromConfig(jc referenceframe.JointConfig) Joint {
	j := Joint{Name: jc.ID, Type: Bounded, Lower: jc.Min, Upper: jc.Max, Velocity: jc.Velocity}
	if jc.Type == referenceframe.ContinuousJoint {
		j.Type = Continuous
		j.Lower, j.Upper = math.Inf(-1), math.Inf(1)
	}
	return j
}
