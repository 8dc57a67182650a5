package referenceframe

import (
	"gonum.org/v1/gonum/floats"
)

// Input is the position of a single degree of freedom.
//   - revolute inputs are in radians.
//   - prismatic inputs are in meters.
type Input = float64

// FloatsToInputs copies a slice of floats into Inputs.
func FloatsToInputs(values []float64) []Input {
	inputs := make([]Input, len(values))
	copy(inputs, values)
	return inputs
}

// InputsToFloats copies Inputs into raw floats.
func InputsToFloats(inputs []Input) []float64 {
	values := make([]float64, len(inputs))
	copy(values, inputs)
	return values
}

// InputsL2Distance returns the square of the two-norm between the from and to vectors.
func InputsL2Distance(from, to []Input) float64 {
	if len(from) != len(to) {
		panic(NewIncorrectDoFError(len(to), len(from)))
	}
	d := floats.Distance(from, to, 2)
	return d * d
}
