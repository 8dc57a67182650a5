package trajectory

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// NewJointPlot plots every joint of m against time.
func NewJointPlot(m *Motion) (*plot.Plot, error) {
	if m.Len() == 0 {
		return nil, errors.New("cannot plot an empty motion")
	}
	p := plot.New()
	p.Title.Text = m.RobotName + " joint motion"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "position"

	times := m.Times()
	lines := make([]interface{}, 0, 2*len(m.JointNames))
	for j, name := range m.JointNames {
		pts := make(plotter.XYs, m.Len())
		for i, v := range m.Joint(j) {
			pts[i].X = times[i]
			pts[i].Y = v
		}
		lines = append(lines, name, pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveJointPlot writes the joint plot of m to path. The image format follows the extension.
func SaveJointPlot(path string, m *Motion) error {
	p, err := NewJointPlot(m)
	if err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
