package impedance

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Impedance is a resistive + reactive pair in ohms. The zero value is a short.
type Impedance struct {
	Real float64 `json:"real" yaml:"real"`
	Imag float64 `json:"imag" yaml:"imag"`
}

func New(real, imag float64) Impedance {
	return Impedance{Real: real, Imag: imag}
}

func Resistive(ohms float64) Impedance {
	return Impedance{Real: ohms}
}

func FromComplex(z complex128) Impedance {
	return Impedance{Real: real(z), Imag: imag(z)}
}

func (z Impedance) Complex() complex128 {
	return complex(z.Real, z.Imag)
}

func (z Impedance) Add(other Impedance) Impedance {
	return Impedance{Real: z.Real + other.Real, Imag: z.Imag + other.Imag}
}

// Reciprocal returns 1/z. A zero-magnitude input yields (0,0) so an open
// circuit is represented as zero admittance instead of a division fault.
func (z Impedance) Reciprocal() Impedance {
	if z.IsZero() {
		return Impedance{}
	}
	return FromComplex(1 / z.Complex())
}

func (z Impedance) Magnitude() float64 {
	return math.Hypot(z.Real, z.Imag)
}

// Phase in degrees.
func (z Impedance) Phase() float64 {
	return cmplx.Phase(z.Complex()) * 180.0 / math.Pi
}

func (z Impedance) IsZero() bool {
	return z.Real == 0 && z.Imag == 0
}

func (z Impedance) String() string {
	if z.Imag < 0 {
		return fmt.Sprintf("%g - j%g", z.Real, -z.Imag)
	}
	return fmt.Sprintf("%g + j%g", z.Real, z.Imag)
}

// Add, Reciprocal and Magnitude are also provided as free functions for
// call sites that read better in prefix form.

func Add(a, b Impedance) Impedance { return a.Add(b) }

func Reciprocal(a Impedance) Impedance { return a.Reciprocal() }

func Magnitude(a Impedance) float64 { return a.Magnitude() }

// Parallel combines legs by summing their admittances. By the Reciprocal
// convention a zero leg adds no admittance, and no admittance at all gives (0,0).
func Parallel(legs ...Impedance) Impedance {
	var y Impedance
	for _, leg := range legs {
		y = y.Add(leg.Reciprocal())
	}
	return y.Reciprocal()
}
