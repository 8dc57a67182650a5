package iklink

import (
	"go.viam.com/iklink/referenceframe"
)

// EdgeKind is how the linker reached a node from the previous waypoint.
type EdgeKind int

const (
	// EdgeNone marks a node the linker has not reached.
	EdgeNone EdgeKind = iota
	// EdgeStart marks a node of the first waypoint.
	EdgeStart
	// EdgeContinuous is a velocity-feasible step with no reconfiguration.
	EdgeContinuous
	// EdgeReconfiguration is a jump that ignores velocity limits and costs one reconfiguration.
	EdgeReconfiguration
)

func (e EdgeKind) String() string {
	switch e {
	case EdgeStart:
		return "start"
	case EdgeContinuous:
		return "continuous"
	case EdgeReconfiguration:
		return "reconfiguration"
	case EdgeNone:
		fallthrough
	default:
		return "none"
	}
}

// Node is one candidate configuration of one waypoint.
type Node struct {
	Configuration []referenceframe.Input
	Cost          Cost
	// Predecessor indexes the previous waypoint's column. Meaningless for EdgeStart and EdgeNone.
	Predecessor int
	Edge        EdgeKind
}

// NewNode returns an unreached node for config.
func NewNode(config []referenceframe.Input) Node {
	return Node{Configuration: config, Cost: Unreached()}
}

// Table holds the candidates of every waypoint. Column i belongs to the waypoint at Times[i].
type Table struct {
	Times   []float64
	Columns [][]Node
}

// NewTable returns a table with one empty column per timestamp.
func NewTable(times []float64) *Table {
	return &Table{
		Times:   append([]float64(nil), times...),
		Columns: make([][]Node, len(times)),
	}
}

// Add appends an unreached candidate to column i.
func (t *Table) Add(i int, config []referenceframe.Input) {
	t.Columns[i] = append(t.Columns[i], NewNode(config))
}

// Len returns the number of waypoints.
func (t *Table) Len() int {
	return len(t.Columns)
}

// Sizes returns the number of candidates per waypoint.
func (t *Table) Sizes() []int {
	sizes := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		sizes[i] = len(col)
	}
	return sizes
}

// reset clears every cost and link so the table can be linked again.
func (t *Table) reset() {
	for _, col := range t.Columns {
		for j := range col {
			col[j].Cost = Unreached()
			col[j].Predecessor = 0
			col[j].Edge = EdgeNone
		}
	}
}
