package trajectory

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/iklink/referenceframe"
	"go.viam.com/iklink/spatialmath"
)

// WaypointColumns is the header of a trajectory file.
var WaypointColumns = []string{"t", "x", "y", "z", "qx", "qy", "qz", "qw"}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	return reader
}

func parseFloats(source string, row int, record []string, dst []float64) error {
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return NewMalformedRecordError(source, row, i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewMalformedRecordError(source, row, i+1, errors.Errorf("%q is not a finite number", field))
		}
		dst[i] = v
	}
	return nil
}

// ReadWaypointsCSV reads a trajectory: a header row, then one t,x,y,z,qx,qy,qz,qw row per waypoint.
// Quaternions are normalized; a zero quaternion is a malformed record. source names the input in
// errors.
func ReadWaypointsCSV(r io.Reader, source string) ([]Waypoint, error) {
	reader := newReader(r)
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(ErrMissingHeader, source)
		}
		return nil, errors.Wrap(err, source)
	}

	var waypoints []Waypoint
	values := make([]float64, len(WaypointColumns))
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, source)
		}
		if len(record) != len(WaypointColumns) {
			return nil, NewRecordLengthError(source, row, len(record), len(WaypointColumns))
		}
		if err := parseFloats(source, row, record, values); err != nil {
			return nil, err
		}
		q := quat.Number{Real: values[7], Imag: values[4], Jmag: values[5], Kmag: values[6]}
		if quat.Abs(q) == 0 {
			return nil, NewMalformedRecordError(source, row, 5, errors.New("orientation quaternion is zero"))
		}
		waypoints = append(waypoints, Waypoint{
			Time:        values[0],
			Position:    r3.Vector{X: values[1], Y: values[2], Z: values[3]},
			Orientation: spatialmath.Normalize(q),
		})
	}
	return waypoints, nil
}

// ReadWaypointsFile reads the trajectory file at path.
func ReadWaypointsFile(path string) (waypoints []Waypoint, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return ReadWaypointsCSV(f, path)
}

// WriteWaypointsCSV writes waypoints in the format ReadWaypointsCSV reads.
func WriteWaypointsCSV(w io.Writer, waypoints []Waypoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(WaypointColumns); err != nil {
		return err
	}
	for _, wp := range waypoints {
		q := wp.Orientation
		record := lo.Map([]float64{
			wp.Time, wp.Position.X, wp.Position.Y, wp.Position.Z, q.Imag, q.Jmag, q.Kmag, q.Real,
		}, formatFloat)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64, _ int) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// MotionHeader returns the header row of a motion file: time, then <robot>-<joint> per joint.
func MotionHeader(m *Motion) []string {
	return append([]string{"time"}, lo.Map(m.JointNames, func(name string, _ int) string {
		return m.RobotName + "-" + name
	})...)
}

// WriteMotionCSV writes m as a header row followed by one time,joint values row per step.
func WriteMotionCSV(w io.Writer, m *Motion) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(MotionHeader(m)); err != nil {
		return err
	}
	for i, step := range m.Steps {
		if len(step.Configuration) != len(m.JointNames) {
			return errors.Errorf("motion step %d has %d joint values for %d joints", i, len(step.Configuration), len(m.JointNames))
		}
		record := append([]string{formatFloat(step.Time, 0)}, lo.Map(step.Configuration, formatFloat)...)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMotionFile writes m to path, creating parent directories as needed.
func WriteMotionFile(path string, m *Motion) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return WriteMotionCSV(f, m)
}

// ReadMotionCSV reads a motion file written by WriteMotionCSV. Header columns must carry the
// "<robotName>-" prefix; the remainder is taken as the joint name.
func ReadMotionCSV(r io.Reader, source, robotName string) (*Motion, error) {
	reader := newReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(ErrMissingHeader, source)
		}
		return nil, errors.Wrap(err, source)
	}
	if len(header) < 1 || strings.TrimSpace(header[0]) != "time" {
		return nil, errors.Errorf("%s: first column must be time", source)
	}
	prefix := robotName + "-"
	m := &Motion{RobotName: robotName}
	for i, col := range header[1:] {
		col = strings.TrimSpace(col)
		if !strings.HasPrefix(col, prefix) {
			return nil, errors.Errorf("%s: column %d %q does not belong to robot %q", source, i+2, col, robotName)
		}
		m.JointNames = append(m.JointNames, strings.TrimPrefix(col, prefix))
	}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, source)
		}
		if len(record) != len(header) {
			return nil, NewRecordLengthError(source, row, len(record), len(header))
		}
		values := make([]float64, len(record))
		if err := parseFloats(source, row, record, values); err != nil {
			return nil, err
		}
		m.Steps = append(m.Steps, MotionStep{
			Time:          values[0],
			Configuration: referenceframe.FloatsToInputs(values[1:]),
		})
	}
	return m, nil
}

// ReadMotionFile reads the motion file at path, taking the robot name from the file name.
func ReadMotionFile(path string) (m *Motion, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return ReadMotionCSV(f, path, RobotNameFromPath(path))
}
