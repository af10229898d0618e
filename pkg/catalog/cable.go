package catalog

import (
	"math"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/impedance"
)

// InductancePerMeter returns the datasheet inductance or the default (uH/m).
func (c *Cable) InductancePerMeter() float64 {
	if c.Inductance == nil {
		return consts.DefaultInductance
	}
	return *c.Inductance
}

// ThermalResistance derates a 20 °C resistance to the given ambient temperature.
func ThermalResistance(ohms, ambientC float64) float64 {
	return ohms * (1 + consts.CopperTempCoeff*(ambientC-consts.ReferenceTempC))
}

// CableImpedance returns the loop impedance of a cable run. A nil cable or a
// non-positive length contributes nothing.
func CableImpedance(c *Cable, lengthM, freqHz, ambientC float64) impedance.Impedance {
	if c == nil || lengthM <= 0 {
		return impedance.Impedance{}
	}

	r := c.Resistance * lengthM * consts.LoopFactor / consts.MetersPerKm
	rHot := ThermalResistance(r, ambientC)

	xl := 2 * math.Pi * freqHz * CableInductance(c, lengthM)

	return impedance.New(rHot, xl)
}

// CableInductance returns the loop inductance of a cable run in henries.
func CableInductance(c *Cable, lengthM float64) float64 {
	if c == nil || lengthM <= 0 {
		return 0
	}
	return c.InductancePerMeter() * lengthM * consts.LoopFactor / consts.MicroHenryPerHenry
}

// Run is one cable reference and its length as stored on a wiring node.
type Run struct {
	CableID string
	Length  float64
}

// SegmentImpedance sums the impedance of every run whose cable is found in
// the database. Unknown cables and zero-length runs are skipped.
func (db *Database) SegmentImpedance(freqHz, ambientC float64, runs ...Run) impedance.Impedance {
	var z impedance.Impedance
	for _, run := range runs {
		c, ok := db.Cable(run.CableID)
		if !ok {
			continue
		}
		z = z.Add(CableImpedance(c, run.Length, freqHz, ambientC))
	}
	return z
}

// SegmentInductance sums the loop inductance of every known run, in henries.
func (db *Database) SegmentInductance(runs ...Run) float64 {
	var l float64
	for _, run := range runs {
		if c, ok := db.Cable(run.CableID); ok {
			l += CableInductance(c, run.Length)
		}
	}
	return l
}
