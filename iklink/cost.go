package iklink

import "fmt"

// Cost is the two-level objective of a path: reconfigurations first, then joint-space travel.
// The zero value is a reached cost of no reconfigurations and no travel. Unreached costs compare
// greater than every reached cost and are equal to each other.
type Cost struct {
	Reconfigurations int
	Travel           float64
	unreached        bool
}

// Unreached returns the cost of a node no feasible path leads to.
func Unreached() Cost {
	return Cost{unreached: true}
}

// Reached reports whether c is the cost of a real path.
func (c Cost) Reached() bool {
	return !c.unreached
}

// Less orders costs lexicographically by (Reconfigurations, Travel).
func (c Cost) Less(o Cost) bool {
	switch {
	case c.unreached:
		return false
	case o.unreached:
		return true
	case c.Reconfigurations != o.Reconfigurations:
		return c.Reconfigurations < o.Reconfigurations
	default:
		return c.Travel < o.Travel
	}
}

// WithReconfiguration returns c plus one reconfiguration. Unreached stays unreached.
func (c Cost) WithReconfiguration() Cost {
	if c.unreached {
		return c
	}
	c.Reconfigurations++
	return c
}

// WithTravel returns c with d added to its travel. Unreached stays unreached.
func (c Cost) WithTravel(d float64) Cost {
	if c.unreached {
		return c
	}
	c.Travel += d
	return c
}

func (c Cost) String() string {
	if c.unreached {
		return "unreached"
	}
	return fmt.Sprintf("(%d, %.6g)", c.Reconfigurations, c.Travel)
}
