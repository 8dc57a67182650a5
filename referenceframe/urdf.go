package referenceframe

import (
	"encoding/xml"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// The joint types found in URDF files.
const (
	FixedJoint      = "fixed"
	RevoluteJoint   = "revolute"
	ContinuousJoint = "continuous"
	PrismaticJoint  = "prismatic"
)

// World is a reserved name for the root of a frame tree.
const World = "world"

// URDFConfig represents all supported fields in a Universal Robot Description Format (URDF) file.
type URDFConfig struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []URDFLink  `xml:"link"`
	Joints  []URDFJoint `xml:"joint"`
}

// URDFLink is a struct which details the XML used in a URDF link element.
type URDFLink struct {
	XMLName xml.Name `xml:"link"`
	Name    string   `xml:"name,attr"`
}

// URDFJoint is a struct which details the XML used in a URDF joint element.
type URDFJoint struct {
	XMLName xml.Name `xml:"joint"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Parent  frame    `xml:"parent"`
	Child   frame    `xml:"child"`
	Origin  *pose    `xml:"origin,omitempty"`
	Axis    *axis    `xml:"axis,omitempty"`
	Limit   *limit   `xml:"limit,omitempty"`
}

// JointConfig is a movable joint of a chain after its URDF element has been evaluated.
// Continuous joints carry infinite limits. Velocity is zero when the URDF does not give one.
type JointConfig struct {
	ID       string
	Type     string
	Parent   string
	Child    string
	Axis     r3.Vector
	Min      float64
	Max      float64
	Velocity float64
}

// Limit returns the position limit of the joint.
func (jc JointConfig) Limit() Limit {
	return Limit{Min: jc.Min, Max: jc.Max}
}

// ParseURDFFile will read a given file and parse the contained URDF XML data.
func ParseURDFFile(filename string) (*URDFConfig, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read URDF file")
	}
	return ParseURDF(xmlData)
}

// ParseURDF unmarshals URDF XML data and checks it for reserved names.
func ParseURDF(xmlData []byte) (*URDFConfig, error) {
	// empty data probably means that the read URDF has no actionable information
	if len(xmlData) == 0 {
		return nil, ErrNoModelInformation
	}

	urdf := &URDFConfig{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, errors.Wrap(err, "Failed to convert URDF data to equivalent URDFConfig struct")
	}
	for _, jointElem := range urdf.Joints {
		if jointElem.Name == World {
			return nil, NewReservedWordError("joint", World)
		}
	}
	return urdf, nil
}

// chainJoints returns the joints connecting baseLink to eeLink, ordered from the base outwards.
func (cfg *URDFConfig) chainJoints(baseLink, eeLink string) ([]URDFJoint, error) {
	links := map[string]bool{}
	for _, link := range cfg.Links {
		links[link.Name] = true
	}
	jointByChild := map[string]URDFJoint{}
	for _, joint := range cfg.Joints {
		links[joint.Parent.Link] = true
		links[joint.Child.Link] = true
		jointByChild[joint.Child.Link] = joint
	}
	if !links[baseLink] {
		return nil, NewFrameMissingError(baseLink)
	}
	if !links[eeLink] {
		return nil, NewFrameMissingError(eeLink)
	}

	var reversed []URDFJoint
	seen := map[string]bool{}
	for current := eeLink; current != baseLink; {
		if seen[current] {
			return nil, ErrCircularReference
		}
		seen[current] = true
		joint, ok := jointByChild[current]
		if !ok {
			return nil, errors.Errorf("link %q is not a descendant of base link %q", eeLink, baseLink)
		}
		reversed = append(reversed, joint)
		current = joint.Parent.Link
	}

	chain := make([]URDFJoint, len(reversed))
	for i, joint := range reversed {
		chain[len(reversed)-1-i] = joint
	}
	return chain, nil
}

// SerialModel builds the kinematic chain from baseLink to eeLink. Every joint contributes a static
// frame for its origin, and movable joints add a rotational or translational frame after it. The
// returned joint configs are the movable joints in input order.
func (cfg *URDFConfig) SerialModel(name, baseLink, eeLink string) (*SimpleModel, []JointConfig, error) {
	chain, err := cfg.chainJoints(baseLink, eeLink)
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		name = cfg.Name
	}

	frames := make([]Frame, 0, 2*len(chain))
	joints := make([]JointConfig, 0, len(chain))
	for _, jointElem := range chain {
		origin, err := jointElem.Origin.Parse()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "joint %q", jointElem.Name)
		}
		originFrame, err := NewStaticFrame(jointElem.Name+"_origin", origin)
		if err != nil {
			return nil, nil, err
		}
		frames = append(frames, originFrame)

		if jointElem.Type == FixedJoint {
			continue
		}
		jc, err := newJointConfig(jointElem)
		if err != nil {
			return nil, nil, err
		}

		var jointFrame Frame
		switch jc.Type {
		case RevoluteJoint, ContinuousJoint:
			jointFrame, err = NewRotationalFrame(jc.ID, jc.Axis, jc.Limit())
		case PrismaticJoint:
			jointFrame, err = NewTranslationalFrame(jc.ID, jc.Axis, jc.Limit())
		}
		if err != nil {
			return nil, nil, err
		}
		frames = append(frames, jointFrame)
		joints = append(joints, jc)
	}
	return NewSerialModel(name, frames), joints, nil
}

func newJointConfig(jointElem URDFJoint) (JointConfig, error) {
	jc := JointConfig{
		ID:     jointElem.Name,
		Type:   jointElem.Type,
		Parent: jointElem.Parent.Link,
		Child:  jointElem.Child.Link,
	}
	ax, err := jointElem.Axis.Parse()
	if err != nil {
		return jc, errors.Wrapf(err, "joint %q", jointElem.Name)
	}
	jc.Axis = ax
	if jointElem.Limit != nil {
		jc.Velocity = jointElem.Limit.Velocity
	}

	switch jointElem.Type {
	case ContinuousJoint:
		jc.Min, jc.Max = math.Inf(-1), math.Inf(1)
	case RevoluteJoint, PrismaticJoint:
		if jointElem.Limit == nil {
			return jc, NewMissingLimitError(jointElem.Name)
		}
		jc.Min, jc.Max = jointElem.Limit.Lower, jointElem.Limit.Upper
		if jc.Min > jc.Max {
			return jc, errors.Errorf("joint %q has lower limit %f above upper limit %f", jc.ID, jc.Min, jc.Max)
		}
	default:
		return jc, NewUnsupportedJointTypeError(jointElem.Type)
	}
	return jc, nil
}
