package referenceframe

import (
	"sync"

	"go.uber.org/multierr"

	"go.viam.com/iklink/spatialmath"
)

// A Model is a frame with a name, a set of movable joints, and the ability to report them.
type Model interface {
	Frame
	// MoveableFrameNames returns the names of the frames that have degrees of freedom, in input order.
	MoveableFrameNames() []string
}

// SimpleModel is a serial kinematic chain. Generally speaking, a joint frame attaches a link
// to its parent, and a static frame encodes the fixed offset the URDF stores on each joint.
type SimpleModel struct {
	name string
	// OrdTransforms is the list of transforms ordered from base to end effector
	OrdTransforms []Frame

	limitsOnce sync.Once
	limits     []Limit
}

// NewSerialModel constructs a model from frames ordered base first.
func NewSerialModel(name string, frames []Frame) *SimpleModel {
	return &SimpleModel{name: name, OrdTransforms: frames}
}

// Name returns the name of this model.
func (m *SimpleModel) Name() string {
	return m.name
}

// Transform takes a model and a list of joint angles in radians and computes the pose of the
// end effector relative to the base. Out of bounds inputs are evaluated but reported in the error.
func (m *SimpleModel) Transform(inputs []Input) (spatialmath.Pose, error) {
	poses, err := m.chainPoses(inputs, false)
	if poses == nil {
		return nil, err
	}
	return poses[len(poses)-1], err
}

// LinkPoses returns the pose of every frame in the chain relative to the base, in chain order.
func (m *SimpleModel) LinkPoses(inputs []Input) ([]spatialmath.Pose, error) {
	return m.chainPoses(inputs, true)
}

// chainPoses composes transforms from the base outwards. With collectAll false only the final
// pose is returned.
func (m *SimpleModel) chainPoses(inputs []Input, collectAll bool) ([]spatialmath.Pose, error) {
	if dof := len(m.DoF()); len(inputs) != dof {
		return nil, NewIncorrectDoFError(len(inputs), dof)
	}
	var err error
	poses := make([]spatialmath.Pose, 0, len(m.OrdTransforms))
	composed := spatialmath.NewZeroPose()
	posIdx := 0
	for _, transform := range m.OrdTransforms {
		dof := len(transform.DoF()) + posIdx
		input := inputs[posIdx:dof]
		posIdx = dof

		pose, errNew := transform.Transform(input)
		// Fail if inputs are incorrect and pose is nil, but allow querying out-of-bounds positions
		if pose == nil {
			return nil, errNew
		}
		multierr.AppendInto(&err, errNew)
		composed = spatialmath.Compose(composed, pose)
		if collectAll {
			poses = append(poses, composed)
		}
	}
	if !collectAll {
		poses = append(poses, composed)
	}
	return poses, err
}

// DoF returns the limits of every degree of freedom in the chain, base first.
func (m *SimpleModel) DoF() []Limit {
	m.limitsOnce.Do(func() {
		limits := make([]Limit, 0, len(m.OrdTransforms))
		for _, transform := range m.OrdTransforms {
			limits = append(limits, transform.DoF()...)
		}
		m.limits = limits
	})
	return m.limits
}

// MoveableFrameNames returns the names of the frames that have degrees of freedom, in input order.
func (m *SimpleModel) MoveableFrameNames() []string {
	names := make([]string, 0, len(m.DoF()))
	for _, transform := range m.OrdTransforms {
		if len(transform.DoF()) > 0 {
			names = append(names, transform.Name())
		}
	}
	return names
}

// AreJointPositionsValid checks whether the given array of joint positions violates any joint limits.
func (m *SimpleModel) AreJointPositionsValid(pos []Input) bool {
	limits := m.DoF()
	if len(pos) != len(limits) {
		return false
	}
	for i, limit := range limits {
		if !limit.Contains(pos[i]) {
			return false
		}
	}
	return true
}

// AlmostEquals returns true if the only difference between this model and another is floating point inprecision.
func (m *SimpleModel) AlmostEquals(otherFrame Frame) bool {
	other, ok := otherFrame.(*SimpleModel)
	if !ok {
		return false
	}

	if m.name != other.name {
		return false
	}

	if len(m.OrdTransforms) != len(other.OrdTransforms) {
		return false
	}

	for idx, f := range m.OrdTransforms {
		if !f.AlmostEquals(other.OrdTransforms[idx]) {
			return false
		}
	}

	return true
}
