package catalog

const (
	DefaultSpeakerID   = "Default Speaker"
	DefaultCableID     = "Default Cable 1.5mm²"
	DefaultAmplifierID = "Default Amplifier"
)

func inductance(v float64) *float64 { return &v }

// Default returns the starter database shipped with the tool. Every call
// returns a fresh copy.
func Default() *Database {
	db := NewDatabase()

	db.PutSpeaker(&Speaker{
		ID:          DefaultSpeakerID,
		Brand:       "Generic",
		Model:       "Standard 8Ω",
		Impedance:   8,
		ZMin:        6.4,
		WattageRMS:  100,
		WattagePeak: 200,
		MaxSPL:      100,
		Taps:        []float64{30, 15, 7.5},
		Type:        SpeakerBoth,
		Category:    "small_fullrange",
	})

	db.PutCable(&Cable{ID: "Default Cable 1.5mm²", Brand: "Generic", Model: "OFC Standard 1.5mm²", Resistance: 12.1, Capacitance: 120, Inductance: inductance(0.70)})
	db.PutCable(&Cable{ID: "Default Cable 2.5mm²", Brand: "Generic", Model: "OFC Pro 2.5mm²", Resistance: 7.41, Capacitance: 110, Inductance: inductance(0.65)})
	db.PutCable(&Cable{ID: "Default Cable 4.0mm²", Brand: "Generic", Model: "OFC Heavy 4.0mm²", Resistance: 4.61, Capacitance: 100, Inductance: inductance(0.60)})

	db.PutAmplifier(&Amplifier{
		ID:             DefaultAmplifierID,
		Brand:          "Generic",
		Model:          "PowerAmp 500",
		DF:             100,
		DFRatedAt:      8,
		MinLoad:        2,
		MinLoadBridge:  4,
		Watt8:          250,
		Watt4:          500,
		Watt2:          0,
		Watt100V:       500,
		WattBridge8:    1000,
		WattBridge4:    0,
		MaxVoltagePeak: 63.2,
		ChannelsLowZ:   2,
		ChannelsCV:     2,
	})

	return db
}
