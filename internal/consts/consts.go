package consts

import "math"

const (
	CopperTempCoeff   = 0.00393 // Copper resistance temperature coefficient (1/°C)
	ReferenceTempC    = 20.0    // Datasheet reference temperature (°C)
	DefaultAmbientC   = 25.0    // Ambient temperature when none is configured (°C)
	DefaultInductance = 0.6     // Cable inductance when the datasheet omits it (uH/m)

	LoopFactor         = 2.0 // Out-and-back conductor
	MetersPerKm        = 1000.0
	MicroHenryPerHenry = 1e6

	BaseFrequency    = 1000.0  // Transmission check frequency (Hz)
	DefaultHFCheckHz = 10000.0 // HF check frequency when no profile sets one (Hz)
	HFAudibleDB      = 0.5     // HF loss above this is considered audible (dB)

	DefaultLineVoltage = 100.0 // Constant-voltage bus reference (V)
	DefaultRMSWatts    = 100.0 // Program power used when a root has no amplifier (W)
	DefaultRatedOhms   = 8.0   // Amplifier rating impedance when none is given (ohm)
	DefaultDF          = 100.0 // Amplifier damping factor when none is given

	MinBranchResistance = 1e-9 // Floor for zero-impedance branches in nodal solves (ohm)
)

// DefaultLowZSourceVoltage drives low-Z roots that have no amplifier assigned.
var DefaultLowZSourceVoltage = math.Sqrt(DefaultRMSWatts * DefaultRatedOhms)
