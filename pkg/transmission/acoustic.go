package transmission

import "math"

// SpeedOfSound in m/s at the given air temperature.
func SpeedOfSound(tempC float64) float64 {
	return 331.3 + 0.606*tempC
}

// DelayMs is the propagation time over distanceM, used for time alignment.
func DelayMs(distanceM, tempC float64) float64 {
	if distanceM <= 0 {
		return 0
	}
	return distanceM / SpeedOfSound(tempC) * 1000
}

// AcousticSPL estimates the level at a listener from a single source: the
// speaker's max SPL at 1 m, reduced by the electrical loss and by inverse
// square spreading beyond 1 m.
func AcousticSPL(maxSPL1m, elecLossDB, distanceM float64) float64 {
	if maxSPL1m == 0 {
		return 0
	}
	spl := maxSPL1m + elecLossDB
	if distanceM > 1 {
		spl -= 20 * math.Log10(distanceM)
	}
	return spl
}
