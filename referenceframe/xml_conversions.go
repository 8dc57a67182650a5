package referenceframe

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/iklink/spatialmath"
)

type frame struct {
	Link string `xml:"link,attr"`
}

type limit struct {
	XMLName  xml.Name `xml:"limit"`
	Lower    float64  `xml:"lower,attr"` // translation limits are in meters, revolute limits are in radians
	Upper    float64  `xml:"upper,attr"` // translation limits are in meters, revolute limits are in radians
	Velocity float64  `xml:"velocity,attr"`
	Effort   float64  `xml:"effort,attr"`
}

type axis struct {
	XMLName xml.Name `xml:"axis"`
	XYZ     string   `xml:"xyz,attr"`
}

// Parse returns the joint axis. A missing axis element means (1, 0, 0).
func (a *axis) Parse() (r3.Vector, error) {
	if a == nil {
		return r3.Vector{X: 1}, nil
	}
	xyz, err := parseTriple(a.XYZ, "axis xyz")
	if err != nil {
		return r3.Vector{}, err
	}
	return r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

type pose struct {
	XMLName xml.Name `xml:"origin"`
	RPY     string   `xml:"rpy,attr"` // Fixed frame angle "r p y" format, in radians
	XYZ     string   `xml:"xyz,attr"` // "x y z" format, in meters
}

// Parse returns the offset of the child link from its parent. A missing origin or attribute is zero.
func (p *pose) Parse() (spatialmath.Pose, error) {
	if p == nil {
		return spatialmath.NewZeroPose(), nil
	}
	xyz, err := parseTriple(p.XYZ, "origin xyz")
	if err != nil {
		return nil, err
	}
	rpy, err := parseTriple(p.RPY, "origin rpy")
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPose(
		r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		&spatialmath.EulerAngles{Roll: rpy[0], Pitch: rpy[1], Yaw: rpy[2]},
	), nil
}

// parseTriple reads a space-delimited "a b c" attribute. The empty string is three zeros.
func parseTriple(s, what string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return []float64{0, 0, 0}, nil
	}
	values := spaceDelimitedStringToFloatSlice(s)
	if len(values) != 3 {
		return nil, errors.Errorf("%s must have 3 values, got %q", what, s)
	}
	for _, v := range values {
		if math.IsNaN(v) {
			return nil, errors.Errorf("%s has a non-numeric value: %q", what, s)
		}
	}
	return values, nil
}

// spaceDelimitedStringToFloatSlice is a helper method to split up space-delimited fields in a string and converts them to floats.
func spaceDelimitedStringToFloatSlice(s string) []float64 {
	var converted []float64
	slice := strings.Fields(s)
	for _, value := range slice {
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			value = math.NaN()
		}
		converted = append(converted, value)
	}
	return converted
}
