//go:build !nlopt

package ik

import (
	"github.com/pkg/errors"

	"go.viam.com/iklink/logging"
)

// ErrNloptUnavailable is returned by NewNloptIK in builds without the nlopt tag.
var ErrNloptUnavailable = errors.New("nlopt solver requires building with -tags nlopt")

// NewNloptIK is unavailable without the nlopt build tag.
func NewNloptIK(kin Kinematics, cfg Config, logger logging.Logger) (Solver, error) {
	return nil, ErrNloptUnavailable
}
