package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// ErrNeedOneEndEffector is used when a chain is requested without naming exactly one end effector.
var ErrNeedOneEndEffector = errors.New("need exactly one end effector")

// ErrCircularReference is returned when walking parent links revisits a link.
var ErrCircularReference = errors.New("infinite loop finding path from end effector to base")

// NewIncorrectDoFError returns an error indicating that the length of the input does not match the degrees of freedom.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of dof does not match, expected %d but got %d", expected, actual)
}

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported by current model parsing.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}

// NewFrameMissingError returns an error indicating that the given frame is missing from the description.
func NewFrameMissingError(frameName string) error {
	return errors.Errorf("frame with name %q not in description", frameName)
}

// NewReservedWordError is used when a link or joint is named with a word reserved by the parser.
func NewReservedWordError(configType, reservedWord string) error {
	return fmt.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewMissingLimitError is returned when a bounded joint has no <limit> element.
func NewMissingLimitError(jointName string) error {
	return errors.Errorf("joint %q requires a limit element", jointName)
}
