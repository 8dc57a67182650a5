package ik

import (
	"github.com/pkg/errors"

	"go.viam.com/iklink/logging"
)

// The solver kinds selectable in robot settings.
const (
	GradientSolver = "gradient"
	NloptSolver    = "nlopt"
)

// NewSolver builds the named solver. The empty name selects the gradient solver.
func NewSolver(kind string, kin Kinematics, cfg Config, logger logging.Logger) (Solver, error) {
	switch kind {
	case "", GradientSolver:
		solver, err := NewGradientIK(kin, cfg, logger)
		if err != nil {
			return nil, err
		}
		return solver, nil
	case NloptSolver:
		return NewNloptIK(kin, cfg, logger)
	default:
		return nil, errors.Errorf("unknown solver %q", kind)
	}
}
