// Package config reads the per-robot settings files that say where a robot's URDF lives, which
// chain of it to use and how to solve for it.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.viam.com/iklink/iklink"
	"go.viam.com/iklink/kinematics"
	"go.viam.com/iklink/logging"
	"go.viam.com/iklink/motionplan/ik"
	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/utils"
)

// SettingsExt is the extension of settings files.
const SettingsExt = ".yaml"

// SolverConfig selects and tunes the pose solver.
type SolverConfig struct {
	// Kind is "gradient" (the default) or "nlopt".
	Kind      string `yaml:"kind"`
	ik.Config `yaml:",inline"`
}

// Settings describes one robot.
type Settings struct {
	// URDF is the robot description, relative to the settings file unless absolute.
	URDF      string   `yaml:"urdf"`
	BaseLinks []string `yaml:"base_links"`
	EELinks   []string `yaml:"ee_links"`
	// JointOrdering optionally fixes the configuration order of the joints.
	JointOrdering []string `yaml:"joint_ordering"`
	// StartingConfig is where the solver session starts.
	StartingConfig []float64 `yaml:"starting_config"`
	// VelocityLimits optionally overrides the URDF joint velocities, in configuration order.
	VelocityLimits []float64      `yaml:"velocity_limits"`
	Solver         SolverConfig   `yaml:"solver"`
	IKLink         iklink.Options `yaml:"iklink"`

	dir string
}

// SettingsPath returns the settings file of robot in dir.
func SettingsPath(dir, robot string) string {
	return filepath.Join(dir, robot+SettingsExt)
}

// ReadSettings reads and validates the settings file at path.
func ReadSettings(path string) (*Settings, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseSettings(data, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

// ParseSettings parses settings data. Relative paths in it resolve against dir.
func ParseSettings(data []byte, dir string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.dir = dir
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for missing or inconsistent fields.
func (s *Settings) Validate() error {
	if s.URDF == "" {
		return errors.New("settings must name a urdf")
	}
	if len(s.BaseLinks) == 0 {
		return errors.New("settings must name at least one base link")
	}
	if len(s.BaseLinks) != len(s.EELinks) {
		return errors.Errorf("%d base links for %d ee links", len(s.BaseLinks), len(s.EELinks))
	}
	switch s.Solver.Kind {
	case "", ik.GradientSolver, ik.NloptSolver:
	default:
		return errors.Errorf("unknown solver kind %q", s.Solver.Kind)
	}
	for i, v := range s.VelocityLimits {
		if v <= 0 {
			return errors.Errorf("velocity limit %d must be positive, got %v", i, v)
		}
	}
	return nil
}

// URDFPath returns the resolved path of the URDF.
func (s *Settings) URDFPath() string {
	return utils.ResolveRelative(s.dir, s.URDF)
}

// Robot loads the kinematic model the settings describe.
func (s *Settings) Robot(name string, logger logging.Logger) (*kinematics.RobotKinematics, error) {
	urdf, err := referenceframe.ParseURDFFile(s.URDFPath())
	if err != nil {
		return nil, err
	}
	return kinematics.NewFromURDF(name, urdf, kinematics.URDFOptions{
		BaseLinks:      s.BaseLinks,
		EELinks:        s.EELinks,
		JointOrdering:  s.JointOrdering,
		VelocityLimits: s.VelocityLimits,
	}, logger)
}

// NewSolver builds the configured pose solver for kin.
func (s *Settings) NewSolver(kin ik.Kinematics, logger logging.Logger) (ik.Solver, error) {
	return ik.NewSolver(s.Solver.Kind, kin, s.Solver.Config, logger)
}

// NewIKLink loads the robot and its solver and returns an IKLink for them.
func (s *Settings) NewIKLink(name string, logger logging.Logger) (*iklink.IKLink, *kinematics.RobotKinematics, error) {
	kin, err := s.Robot(name, logger)
	if err != nil {
		return nil, nil, err
	}
	solver, err := s.NewSolver(kin, logger)
	if err != nil {
		return nil, nil, err
	}
	var start []referenceframe.Input
	if s.StartingConfig != nil {
		start = referenceframe.FloatsToInputs(s.StartingConfig)
	}
	link, err := iklink.New(kin, solver, s.IKLink, start, logger)
	if err != nil {
		return nil, nil, err
	}
	return link, kin, nil
}
