package kinematics

import (
	"github.com/pkg/errors"
)

// ErrMultipleChains is returned when a single chain is required but the robot defines several.
var ErrMultipleChains = errors.New("robot must have exactly one kinematic chain")

// ErrNoChains is returned when a robot is built without any kinematic chain.
var ErrNoChains = errors.New("robot has no kinematic chain")

// NewConfigurationLengthError is returned when a joint vector does not have one value per joint.
func NewConfigurationLengthError(actual, expected int) error {
	return errors.Errorf("configuration has %d values but the robot has %d joints", actual, expected)
}

// NewNegativeDeltaTError is returned by velocity checks given a negative time step.
func NewNegativeDeltaTError(deltaT float64) error {
	return errors.Errorf("time step must be non-negative, got %f", deltaT)
}

// NewJointNotFoundError is returned when a joint name does not belong to any chain.
func NewJointNotFoundError(name string) error {
	return errors.Errorf("joint %q is not part of any chain", name)
}
