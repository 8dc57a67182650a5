// Package kinematics holds the kinematic model of one robot: its joint table, the chains that map
// joints to end-effector poses, and the feasibility queries the linker asks of them.
package kinematics

import (
	"math"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
	"go.viam.com/iklink/utils"
)

const (
	// PositionTolerance is the largest end-effector position error, in meters, a configuration may
	// have and still match a target.
	PositionTolerance = 0.001
	// OrientationTolerance is the largest end-effector rotation error, in radians.
	OrientationTolerance = 0.01
)

// Chain is one serial chain of the robot, from a base link to an end effector.
type Chain struct {
	BaseLink string
	EELink   string
	Model    *referenceframe.SimpleModel
	// JointIndices maps the chain's inputs, base first, to positions in the robot configuration.
	JointIndices []int
}

// RobotKinematics is immutable once built and safe for concurrent use.
type RobotKinematics struct {
	name   string
	joints []Joint
	chains []Chain
}

// NewRobotKinematics validates the joint table and chains and logs a summary of the robot.
func NewRobotKinematics(name string, joints []Joint, chains []Chain, logger logging.Logger) (*RobotKinematics, error) {
	if len(chains) == 0 {
		return nil, ErrNoChains
	}
	seen := map[string]bool{}
	for _, j := range joints {
		if err := j.validate(); err != nil {
			return nil, err
		}
		if seen[j.Name] {
			return nil, errors.Errorf("joint %q appears twice", j.Name)
		}
		seen[j.Name] = true
	}
	for _, c := range chains {
		if c.Model == nil {
			return nil, errors.Errorf("chain %s->%s has no model", c.BaseLink, c.EELink)
		}
		if dof := len(c.Model.DoF()); dof != len(c.JointIndices) {
			return nil, errors.Errorf("chain %s->%s has %d dof but maps %d joints", c.BaseLink, c.EELink, dof, len(c.JointIndices))
		}
		for _, idx := range c.JointIndices {
			if idx < 0 || idx >= len(joints) {
				return nil, errors.Errorf("chain %s->%s maps joint index %d outside [0, %d)", c.BaseLink, c.EELink, idx, len(joints))
			}
		}
	}

	k := &RobotKinematics{
		name:   name,
		joints: append([]Joint(nil), joints...),
		chains: append([]Chain(nil), chains...),
	}
	if logger != nil {
		k.logSummary(logger)
	}
	return k, nil
}

func (k *RobotKinematics) logSummary(logger logging.Logger) {
	lower := make([]float64, len(k.joints))
	upper := make([]float64, len(k.joints))
	velocity := make([]float64, len(k.joints))
	for i, j := range k.joints {
		lower[i], upper[i], velocity[i] = j.Lower, j.Upper, j.Velocity
	}
	chains := make([]string, len(k.chains))
	for i, c := range k.chains {
		chains[i] = c.BaseLink + "->" + c.EELink
	}
	logger.Debugw("loaded robot",
		"robot", k.name,
		"dof", len(k.joints),
		"joints", k.JointNames(),
		"lower_limits", lower,
		"upper_limits", upper,
		"velocity_limits", velocity,
		"chains", strings.Join(chains, ","),
	)
}

// Name returns the robot name.
func (k *RobotKinematics) Name() string {
	return k.name
}

// DoF returns the number of controllable joints.
func (k *RobotKinematics) DoF() int {
	return len(k.joints)
}

// Joints returns a copy of the joint table in configuration order.
func (k *RobotKinematics) Joints() []Joint {
	return append([]Joint(nil), k.joints...)
}

// JointNames returns the joint names in configuration order.
func (k *RobotKinematics) JointNames() []string {
	names := make([]string, len(k.joints))
	for i, j := range k.joints {
		names[i] = j.Name
	}
	return names
}

// Limits returns every joint's position limit in configuration order.
func (k *RobotKinematics) Limits() []referenceframe.Limit {
	limits := make([]referenceframe.Limit, len(k.joints))
	for i, j := range k.joints {
		limits[i] = j.Limit()
	}
	return limits
}

// Chains returns the kinematic chains.
func (k *RobotKinematics) Chains() []Chain {
	return append([]Chain(nil), k.chains...)
}

// RequireSingleChain returns ErrMultipleChains unless the robot has exactly one chain.
func (k *RobotKinematics) RequireSingleChain() error {
	if len(k.chains) != 1 {
		return errors.Wrapf(ErrMultipleChains, "robot %q has %d chains", k.name, len(k.chains))
	}
	return nil
}

func (k *RobotKinematics) checkLength(config []referenceframe.Input) error {
	if len(config) != len(k.joints) {
		return NewConfigurationLengthError(len(config), len(k.joints))
	}
	return nil
}

func (c *Chain) inputs(config []referenceframe.Input) []referenceframe.Input {
	inputs := make([]referenceframe.Input, len(c.JointIndices))
	for i, idx := range c.JointIndices {
		inputs[i] = config[idx]
	}
	return inputs
}

// ForwardKinematics returns the end-effector pose of every chain relative to its base. Inputs
// outside the joint limits are still evaluated.
func (k *RobotKinematics) ForwardKinematics(config []referenceframe.Input) ([]spatialmath.Pose, error) {
	if err := k.checkLength(config); err != nil {
		return nil, err
	}
	poses := make([]spatialmath.Pose, len(k.chains))
	for i := range k.chains {
		pose, err := k.chains[i].Model.Transform(k.chains[i].inputs(config))
		if pose == nil {
			return nil, err
		}
		poses[i] = pose
	}
	return poses, nil
}

// EndEffectorPose returns the pose of the first chain's end effector.
func (k *RobotKinematics) EndEffectorPose(config []referenceframe.Input) (spatialmath.Pose, error) {
	poses, err := k.ForwardKinematics(config)
	if err != nil {
		return nil, err
	}
	return poses[0], nil
}

// PoseError returns the position error norm and the rotation angle of actual*inverse(target)
// for the first chain.
func (k *RobotKinematics) PoseError(config []referenceframe.Input, target spatialmath.Pose) (float64, float64, error) {
	actual, err := k.EndEffectorPose(config)
	if err != nil {
		return 0, 0, err
	}
	posErr := actual.Point().Sub(target.Point()).Norm()
	between := quat.Mul(actual.Orientation().Quaternion(), quat.Conj(target.Orientation().Quaternion()))
	return posErr, spatialmath.QuaternionAngle(between), nil
}

// PoseMatches reports whether the configuration puts the end effector within PositionTolerance
// and OrientationTolerance of target. A NaN or mis-sized configuration never matches.
func (k *RobotKinematics) PoseMatches(config []referenceframe.Input, target spatialmath.Pose) bool {
	if utils.AnyNaN(config) {
		return false
	}
	posErr, rotErr, err := k.PoseError(config, target)
	if err != nil {
		return false
	}
	return posErr < PositionTolerance && rotErr < OrientationTolerance
}

// VelocityFeasibleErr reports whether every joint moves at most velocity*deltaT between a and b.
func (k *RobotKinematics) VelocityFeasibleErr(a, b []referenceframe.Input, deltaT float64) (bool, error) {
	if err := k.checkLength(a); err != nil {
		return false, err
	}
	if err := k.checkLength(b); err != nil {
		return false, err
	}
	if deltaT < 0 || math.IsNaN(deltaT) {
		return false, NewNegativeDeltaTError(deltaT)
	}
	for i, j := range k.joints {
		if math.Abs(a[i]-b[i]) > j.Velocity*deltaT {
			return false, nil
		}
	}
	return true, nil
}

// VelocityFeasible is VelocityFeasibleErr for callers that have already validated lengths. It
// panics on mismatched configurations or a negative time step.
func (k *RobotKinematics) VelocityFeasible(a, b []referenceframe.Input, deltaT float64) bool {
	ok, err := k.VelocityFeasibleErr(a, b, deltaT)
	if err != nil {
		panic(err)
	}
	return ok
}

// JointDistance is the Euclidean distance between two configurations.
func (k *RobotKinematics) JointDistance(a, b []referenceframe.Input) float64 {
	return floats.Distance(a, b, 2)
}

// RandomConfiguration draws a configuration: continuous joints uniformly from [-π, π), bounded
// joints uniformly from [Lower, Upper].
func (k *RobotKinematics) RandomConfiguration(r *rand.Rand) []referenceframe.Input {
	config := make([]referenceframe.Input, len(k.joints))
	for i, j := range k.joints {
		if j.Type == Continuous {
			config[i] = utils.SampleUniform(-math.Pi, math.Pi, r)
		} else {
			config[i] = utils.SampleUniform(j.Lower, j.Upper, r)
		}
	}
	return config
}

// WithinLimits reports whether every bounded joint is inside its limits.
func (k *RobotKinematics) WithinLimits(config []referenceframe.Input) bool {
	if len(config) != len(k.joints) {
		return false
	}
	for i, j := range k.joints {
		if j.Type == Bounded && !j.Limit().Contains(config[i]) {
			return false
		}
	}
	return true
}
