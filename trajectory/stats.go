package trajectory

import (
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// JointStats summarizes how far and how fast one joint moves over a motion.
type JointStats struct {
	Name string
	// Travel is the summed absolute displacement.
	Travel    float64
	Min       float64
	Max       float64
	MaxSpeed  float64
	MeanSpeed float64
}

// Summary describes a whole motion.
type Summary struct {
	Duration float64
	Steps    int
	// JointTravel is the summed joint-space Euclidean length of all steps.
	JointTravel float64
	Joints      []JointStats
}

// Summarize computes per-joint travel and speed statistics. A motion with fewer than two steps
// has zero travel and speed.
func Summarize(m *Motion) (*Summary, error) {
	s := &Summary{Steps: m.Len()}
	if m.Len() == 0 {
		return s, nil
	}
	s.Duration = m.Steps[m.Len()-1].Time - m.Steps[0].Time
	for i := 1; i < m.Len(); i++ {
		s.JointTravel += floats.Distance(m.Steps[i].Configuration, m.Steps[i-1].Configuration, 2)
	}

	times := m.Times()
	for j, name := range m.JointNames {
		values := m.Joint(j)
		js := JointStats{Name: name}
		var err error
		if js.Min, err = stats.Min(values); err != nil {
			return nil, errors.Wrapf(err, "joint %s", name)
		}
		if js.Max, err = stats.Max(values); err != nil {
			return nil, errors.Wrapf(err, "joint %s", name)
		}
		if len(values) > 1 {
			deltas := make(stats.Float64Data, len(values)-1)
			speeds := make(stats.Float64Data, 0, len(values)-1)
			for i := 1; i < len(values); i++ {
				deltas[i-1] = math.Abs(values[i] - values[i-1])
				if dt := times[i] - times[i-1]; dt > 0 {
					speeds = append(speeds, deltas[i-1]/dt)
				}
			}
			if js.Travel, err = deltas.Sum(); err != nil {
				return nil, errors.Wrapf(err, "joint %s", name)
			}
			if len(speeds) > 0 {
				if js.MaxSpeed, err = speeds.Max(); err != nil {
					return nil, errors.Wrapf(err, "joint %s", name)
				}
				if js.MeanSpeed, err = speeds.Mean(); err != nil {
					return nil, errors.Wrapf(err, "joint %s", name)
				}
			}
		}
		s.Joints = append(s.Joints, js)
	}
	return s, nil
}

// StepDistances returns the joint-space distance covered by each step of m.
func StepDistances(m *Motion) []float64 {
	if m.Len() < 2 {
		return nil
	}
	out := make([]float64, m.Len()-1)
	for i := 1; i < m.Len(); i++ {
		out[i-1] = floats.Distance(m.Steps[i].Configuration, m.Steps[i-1].Configuration, 2)
	}
	return out
}

// StepHistogram buckets the step distances of m. Reconfigurations show up as outliers in the top
// buckets.
func StepHistogram(m *Motion, bins int) (histogram.Histogram, error) {
	distances := StepDistances(m)
	if len(distances) == 0 {
		return histogram.Histogram{}, errors.New("motion has no steps to bucket")
	}
	if bins < 1 {
		bins = 1
	}
	return histogram.Hist(bins, distances), nil
}

// PrintStepHistogram writes a text histogram of the step distances of m.
func PrintStepHistogram(w io.Writer, m *Motion, bins, width int) error {
	hist, err := StepHistogram(m, bins)
	if err != nil {
		return err
	}
	return histogram.Fprint(w, hist, histogram.Linear(width))
}
