package kinematics

import (
	"github.com/pkg/errors"

	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/referenceframe"
)

// URDFOptions selects the chains of a URDF and tunes the resulting joint table.
type URDFOptions struct {
	// BaseLinks and EELinks pair up: chain i runs from BaseLinks[i] to EELinks[i].
	BaseLinks []string
	EELinks   []string
	// JointOrdering, if set, is the configuration order of the movable joints and must name
	// each of them exactly once.
	JointOrdering []string
	// VelocityLimits, if set, replaces the URDF velocity of each joint in configuration order.
	VelocityLimits []float64
}

// NewFromURDF builds a RobotKinematics from parsed URDF data. Chains may share joints; a shared
// joint occupies one slot of the configuration. An empty name uses the URDF robot name.
func NewFromURDF(name string, urdf *referenceframe.URDFConfig, opts URDFOptions, logger logging.Logger) (*RobotKinematics, error) {
	if name == "" {
		name = urdf.Name
	}
	if len(opts.BaseLinks) == 0 || len(opts.BaseLinks) != len(opts.EELinks) {
		return nil, errors.Wrapf(referenceframe.ErrNeedOneEndEffector,
			"%d base links for %d end effectors", len(opts.BaseLinks), len(opts.EELinks))
	}

	type parsedChain struct {
		model  *referenceframe.SimpleModel
		joints []referenceframe.JointConfig
	}
	parsed := make([]parsedChain, 0, len(opts.BaseLinks))
	var joints []Joint
	index := map[string]int{}
	for i := range opts.BaseLinks {
		model, jcs, err := urdf.SerialModel(name, opts.BaseLinks[i], opts.EELinks[i])
		if err != nil {
			return nil, errors.Wrapf(err, "chain %s->%s", opts.BaseLinks[i], opts.EELinks[i])
		}
		parsed = append(parsed, parsedChain{model, jcs})
		for _, jc := range jcs {
			if _, ok := index[jc.ID]; !ok {
				index[jc.ID] = len(joints)
				joints = append(joints, JointFromConfig(jc))
			}
		}
	}

	if len(opts.JointOrdering) > 0 {
		ordered, err := reorderJoints(joints, index, opts.JointOrdering)
		if err != nil {
			return nil, err
		}
		joints = ordered
		for i, j := range joints {
			index[j.Name] = i
		}
	}

	if opts.VelocityLimits != nil {
		if len(opts.VelocityLimits) != len(joints) {
			return nil, errors.Errorf("%d velocity limits given for %d joints", len(opts.VelocityLimits), len(joints))
		}
		for i := range joints {
			joints[i].Velocity = opts.VelocityLimits[i]
		}
	}

	chains := make([]Chain, len(parsed))
	for i, pc := range parsed {
		indices := make([]int, len(pc.joints))
		for j, jc := range pc.joints {
			indices[j] = index[jc.ID]
		}
		chains[i] = Chain{
			BaseLink:     opts.BaseLinks[i],
			EELink:       opts.EELinks[i],
			Model:        pc.model,
			JointIndices: indices,
		}
	}
	return NewRobotKinematics(name, joints, chains, logger)
}

func reorderJoints(joints []Joint, index map[string]int, ordering []string) ([]Joint, error) {
	if len(ordering) != len(joints) {
		return nil, errors.Errorf("joint ordering names %d joints but the chains have %d", len(ordering), len(joints))
	}
	ordered := make([]Joint, 0, len(joints))
	used := map[string]bool{}
	for _, jointName := range ordering {
		idx, ok := index[jointName]
		if !ok {
			return nil, NewJointNotFoundError(jointName)
		}
		if used[jointName] {
			return nil, errors.Errorf("joint ordering repeats %q", jointName)
		}
		used[jointName] = true
		ordered = append(ordered, joints[idx])
	}
	return ordered, nil
}
