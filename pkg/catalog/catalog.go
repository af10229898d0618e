// Package catalog holds the speaker, cable and amplifier specifications the
// calculators read. Records are never mutated during a calculation.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidRecord = errors.New("invalid device record")

type SpeakerType string

const (
	SpeakerLowZ SpeakerType = "Lo-Z"
	Speaker100V SpeakerType = "100V"
	SpeakerBoth SpeakerType = "Both"
)

type Speaker struct {
	ID    string `json:"id" yaml:"id"`
	Brand string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// Nominal and minimum impedance in ohms; ZMin 0 means unknown.
	Impedance float64 `json:"impedance" yaml:"impedance"`
	ZMin      float64 `json:"z_min,omitempty" yaml:"z_min,omitempty"`
	// Power handling in watts, SPL in dB @ 1 m.
	WattageRMS  float64 `json:"wattage_rms" yaml:"wattage_rms"`
	WattagePeak float64 `json:"wattage_peak,omitempty" yaml:"wattage_peak,omitempty"`
	MaxSPL      float64 `json:"max_spl,omitempty" yaml:"max_spl,omitempty"`
	// Transformer taps in watts for constant-voltage lines.
	Taps     []float64   `json:"taps,omitempty" yaml:"taps,omitempty"`
	Type     SpeakerType `json:"type,omitempty" yaml:"type,omitempty"`
	Category string      `json:"category,omitempty" yaml:"category,omitempty"`
}

// LoadImpedance is the rating used for load sizing: ZMin when asked for and
// known, otherwise the nominal impedance.
func (s *Speaker) LoadImpedance(useMin bool) float64 {
	if useMin && s.ZMin > 0 {
		return s.ZMin
	}
	return s.Impedance
}

func (s *Speaker) HasTap(watts float64) bool {
	for _, t := range s.Taps {
		if t == watts {
			return true
		}
	}
	return false
}

// Suits reports whether the speaker is usable on the given kind of line.
func (s *Speaker) Suits(t SpeakerType) bool {
	return s.Type == "" || s.Type == SpeakerBoth || s.Type == t
}

type Cable struct {
	ID    string `json:"id" yaml:"id"`
	Brand string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// Per-conductor resistance in ohm/km at 20 °C.
	Resistance  float64 `json:"resistance" yaml:"resistance"`
	Capacitance float64 `json:"capacitance,omitempty" yaml:"capacitance,omitempty"`
	// Inductance in uH/m; nil selects consts.DefaultInductance.
	Inductance *float64 `json:"inductance,omitempty" yaml:"inductance,omitempty"`
}

type Amplifier struct {
	ID             string  `json:"id" yaml:"id"`
	Brand          string  `json:"brand,omitempty" yaml:"brand,omitempty"`
	Model          string  `json:"model,omitempty" yaml:"model,omitempty"`
	DF             float64 `json:"df" yaml:"df"`
	DFRatedAt      float64 `json:"df_rated_at" yaml:"df_rated_at"`
	MinLoad        float64 `json:"min_load" yaml:"min_load"`
	MinLoadBridge  float64 `json:"min_load_bridge" yaml:"min_load_bridge"`
	Watt8          float64 `json:"watt_8" yaml:"watt_8"`
	Watt4          float64 `json:"watt_4" yaml:"watt_4"`
	Watt2          float64 `json:"watt_2" yaml:"watt_2"`
	WattBridge8    float64 `json:"watt_bridge_8" yaml:"watt_bridge_8"`
	WattBridge4    float64 `json:"watt_bridge_4" yaml:"watt_bridge_4"`
	Watt100V       float64 `json:"watt_100v" yaml:"watt_100v"`
	MaxVoltagePeak float64 `json:"max_voltage_peak,omitempty" yaml:"max_voltage_peak,omitempty"`
	ChannelsLowZ   int     `json:"channels_lowz" yaml:"channels_lowz"`
	ChannelsCV     int     `json:"channels_100v" yaml:"channels_100v"`
}

// Database is the set of device tables, each keyed by a stable device id.
type Database struct {
	Speakers   map[string]*Speaker   `json:"speakers" yaml:"speakers"`
	Cables     map[string]*Cable     `json:"cables" yaml:"cables"`
	Amplifiers map[string]*Amplifier `json:"amplifiers" yaml:"amplifiers"`
}

func NewDatabase() *Database {
	return &Database{
		Speakers:   make(map[string]*Speaker),
		Cables:     make(map[string]*Cable),
		Amplifiers: make(map[string]*Amplifier),
	}
}

// Lookups are nil-safe so a calculation against an empty or missing database
// reports missing devices instead of crashing.

func (db *Database) Speaker(id string) (*Speaker, bool) {
	if db == nil || id == "" {
		return nil, false
	}
	s, ok := db.Speakers[id]
	return s, ok && s != nil
}

func (db *Database) Cable(id string) (*Cable, bool) {
	if db == nil || id == "" {
		return nil, false
	}
	c, ok := db.Cables[id]
	return c, ok && c != nil
}

func (db *Database) Amplifier(id string) (*Amplifier, bool) {
	if db == nil || id == "" {
		return nil, false
	}
	a, ok := db.Amplifiers[id]
	return a, ok && a != nil
}

func (db *Database) PutSpeaker(s *Speaker) {
	db.ensure()
	db.Speakers[s.ID] = s
}

func (db *Database) PutCable(c *Cable) {
	db.ensure()
	db.Cables[c.ID] = c
}

func (db *Database) PutAmplifier(a *Amplifier) {
	db.ensure()
	db.Amplifiers[a.ID] = a
}

func (db *Database) ensure() {
	if db.Speakers == nil {
		db.Speakers = make(map[string]*Speaker)
	}
	if db.Cables == nil {
		db.Cables = make(map[string]*Cable)
	}
	if db.Amplifiers == nil {
		db.Amplifiers = make(map[string]*Amplifier)
	}
}

// Merge copies every record of other into db, replacing records with the
// same id.
func (db *Database) Merge(other *Database) {
	if other == nil {
		return
	}
	db.ensure()
	for id, s := range other.Speakers {
		db.Speakers[id] = s
	}
	for id, c := range other.Cables {
		db.Cables[id] = c
	}
	for id, a := range other.Amplifiers {
		db.Amplifiers[id] = a
	}
}

// CableIDs returns cable ids in sorted order.
func (db *Database) CableIDs() []string {
	if db == nil {
		return nil
	}
	ids := make([]string, 0, len(db.Cables))
	for id := range db.Cables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks every record against the canonical shape and returns all
// problems joined into one error.
func (db *Database) Validate() error {
	if db == nil {
		return nil
	}
	var errs []error
	for id, s := range db.Speakers {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("speaker %q: %w", id, err))
		}
	}
	for id, c := range db.Cables {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("cable %q: %w", id, err))
		}
	}
	for id, a := range db.Amplifiers {
		if err := a.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("amplifier %q: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Speaker) Validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil speaker", ErrInvalidRecord)
	case s.Impedance <= 0:
		return fmt.Errorf("%w: impedance must be positive", ErrInvalidRecord)
	case s.ZMin < 0:
		return fmt.Errorf("%w: z_min must not be negative", ErrInvalidRecord)
	case s.WattageRMS < 0:
		return fmt.Errorf("%w: wattage_rms must not be negative", ErrInvalidRecord)
	}
	for _, t := range s.Taps {
		if t <= 0 {
			return fmt.Errorf("%w: tap %g must be positive", ErrInvalidRecord, t)
		}
	}
	return nil
}

func (c *Cable) Validate() error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil cable", ErrInvalidRecord)
	case c.Resistance < 0:
		return fmt.Errorf("%w: resistance must not be negative", ErrInvalidRecord)
	case c.Inductance != nil && *c.Inductance < 0:
		return fmt.Errorf("%w: inductance must not be negative", ErrInvalidRecord)
	}
	return nil
}

func (a *Amplifier) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil amplifier", ErrInvalidRecord)
	}
	ratings := []float64{a.Watt8, a.Watt4, a.Watt2, a.WattBridge8, a.WattBridge4, a.Watt100V}
	for _, w := range ratings {
		if w < 0 {
			return fmt.Errorf("%w: power ratings must not be negative", ErrInvalidRecord)
		}
	}
	if a.DF < 0 || a.DFRatedAt < 0 {
		return fmt.Errorf("%w: damping factor must not be negative", ErrInvalidRecord)
	}
	if a.ChannelsLowZ < 0 || a.ChannelsCV < 0 {
		return fmt.Errorf("%w: channel count must not be negative", ErrInvalidRecord)
	}
	return nil
}
