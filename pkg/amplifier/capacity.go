package amplifier

import (
	"math"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/catalog"
)

// Capacity is the rated output selected for a load, and the load
// impedance the rating refers to.
type Capacity struct {
	Watts     float64
	RatedOhms float64
	Bridged   bool
}

// Voltage is the RMS drive voltage implied by the rating.
func (c Capacity) Voltage() float64 {
	if c.Watts <= 0 || c.RatedOhms <= 0 {
		return 0
	}
	return math.Sqrt(c.Watts * c.RatedOhms)
}

// SelectCapacity picks the power rating bracket for a nominal load.
// Normal mode: below 3 ohm the 2 ohm rating, below 6 ohm the 4 ohm rating,
// else the 8 ohm rating; missing ratings fall back toward 8 ohm. Bridged
// mode switches between the bridged 4 and 8 ohm ratings at 6 ohm.
func SelectCapacity(a *catalog.Amplifier, loadOhms float64, bridged bool) Capacity {
	if a == nil {
		return Capacity{}
	}
	if bridged {
		c := Capacity{Watts: a.WattBridge8, RatedOhms: 8, Bridged: true}
		if loadOhms < 6 && a.WattBridge4 > 0 {
			c = Capacity{Watts: a.WattBridge4, RatedOhms: 4, Bridged: true}
		}
		return c
	}

	var c Capacity
	switch {
	case loadOhms < 3:
		c = Capacity{Watts: a.Watt2, RatedOhms: 2}
	case loadOhms < 6:
		c = Capacity{Watts: a.Watt4, RatedOhms: 4}
	default:
		c = Capacity{Watts: a.Watt8, RatedOhms: 8}
	}
	if c.Watts > 0 {
		return c
	}
	if loadOhms < 6 && a.Watt4 > 0 {
		return Capacity{Watts: a.Watt4, RatedOhms: 4}
	}
	return Capacity{Watts: a.Watt8, RatedOhms: 8}
}

// CVCapacity is the constant-voltage line rating, or the 8 ohm rating for
// models that do not publish one.
func CVCapacity(a *catalog.Amplifier) float64 {
	if a == nil {
		return 0
	}
	if a.Watt100V > 0 {
		return a.Watt100V
	}
	return a.Watt8
}

// Headroom returns the required power as a percentage of capacity.
func Headroom(requiredWatts, capacityWatts float64) float64 {
	if capacityWatts <= 0 {
		return 0
	}
	return requiredWatts / capacityWatts * 100
}

// OutputImpedance derives the source impedance from the damping factor
// rating. An unrated amplifier is treated as an ideal source.
func OutputImpedance(a *catalog.Amplifier) float64 {
	if a == nil || a.DF <= 0 {
		return 0
	}
	ratedAt := a.DFRatedAt
	if ratedAt <= 0 {
		ratedAt = consts.DefaultRatedOhms
	}
	return ratedAt / a.DF
}

// BelowMinLoad reports whether the load is under the amplifier's minimum
// safe impedance for the mode.
func BelowMinLoad(a *catalog.Amplifier, loadOhms float64, bridged bool) bool {
	if a == nil {
		return false
	}
	limit := a.MinLoad
	if bridged {
		limit = a.MinLoadBridge
	}
	return limit > 0 && loadOhms < limit
}
