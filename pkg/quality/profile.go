// Package quality defines the acceptance thresholds a design is judged
// against and the classifier that turns computed figures into a verdict.
package quality

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownProfile = errors.New("unknown quality profile")

const (
	HighEnd = "high-end"
	Average = "average"
	Speech  = "speech"

	DefaultProfile = HighEnd
)

// Profile is a named bundle of thresholds. Drop limits are percentages,
// HeadroomWarn is a fraction of amplifier capacity.
type Profile struct {
	Name         string  `json:"name" yaml:"name" mapstructure:"name"`
	Label        string  `json:"label" yaml:"label" mapstructure:"label"`
	LowZDropWarn float64 `json:"lowz_drop_warn" yaml:"lowz_drop_warn" mapstructure:"lowz_drop_warn"`
	LowZDropErr  float64 `json:"lowz_drop_err" yaml:"lowz_drop_err" mapstructure:"lowz_drop_err"`
	CVDropWarn   float64 `json:"cv_drop_warn" yaml:"cv_drop_warn" mapstructure:"cv_drop_warn"`
	CVDropErr    float64 `json:"cv_drop_err" yaml:"cv_drop_err" mapstructure:"cv_drop_err"`
	DFWarn       float64 `json:"df_warn" yaml:"df_warn" mapstructure:"df_warn"`
	DFErr        float64 `json:"df_err" yaml:"df_err" mapstructure:"df_err"`
	HeadroomWarn float64 `json:"headroom_warn" yaml:"headroom_warn" mapstructure:"headroom_warn"`
	HFCheckHz    float64 `json:"hf_check_hz" yaml:"hf_check_hz" mapstructure:"hf_check_hz"`
}

// DropLimits returns the warning and error drop thresholds for a topology.
func (p Profile) DropLimits(constantVoltage bool) (warn, err float64) {
	if constantVoltage {
		return p.CVDropWarn, p.CVDropErr
	}
	return p.LowZDropWarn, p.LowZDropErr
}

var builtin = map[string]Profile{
	HighEnd: {
		Name: HighEnd, Label: "Hi-End",
		LowZDropWarn: 5, LowZDropErr: 7.5,
		CVDropWarn: 5, CVDropErr: 10,
		DFWarn: 20, DFErr: 10,
		HeadroomWarn: 0.80,
		HFCheckHz:    10000,
	},
	Average: {
		Name: Average, Label: "BGM",
		LowZDropWarn: 10, LowZDropErr: 15,
		CVDropWarn: 10, CVDropErr: 15,
		DFWarn: 15, DFErr: 8,
		HeadroomWarn: 0.80,
		HFCheckHz:    6000,
	},
	Speech: {
		Name: Speech, Label: "Speech",
		LowZDropWarn: 15, LowZDropErr: 22.5,
		CVDropWarn: 15, CVDropErr: 22.5,
		DFWarn: 10, DFErr: 5,
		HeadroomWarn: 0.80,
		HFCheckHz:    4000,
	},
}

// Set is a closed collection of profiles keyed by name. The zero value is
// not usable; start from Builtin.
type Set struct {
	profiles map[string]Profile
}

// Builtin returns a fresh Set holding the shipped profiles.
func Builtin() *Set {
	s := &Set{profiles: make(map[string]Profile, len(builtin))}
	for name, p := range builtin {
		s.profiles[name] = p
	}
	return s
}

func (s *Set) Get(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Override replaces the non-zero thresholds of an existing profile. New
// names cannot be introduced.
func (s *Set) Override(name string, o Profile) error {
	p, ok := s.profiles[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	if o.Label != "" {
		p.Label = o.Label
	}
	overrideIfSet(&p.LowZDropWarn, o.LowZDropWarn)
	overrideIfSet(&p.LowZDropErr, o.LowZDropErr)
	overrideIfSet(&p.CVDropWarn, o.CVDropWarn)
	overrideIfSet(&p.CVDropErr, o.CVDropErr)
	overrideIfSet(&p.DFWarn, o.DFWarn)
	overrideIfSet(&p.DFErr, o.DFErr)
	overrideIfSet(&p.HeadroomWarn, o.HeadroomWarn)
	overrideIfSet(&p.HFCheckHz, o.HFCheckHz)
	s.profiles[name] = p
	return nil
}

func overrideIfSet(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// Names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Set) All() []Profile {
	names := s.Names()
	out := make([]Profile, 0, len(names))
	for _, name := range names {
		out = append(out, s.profiles[name])
	}
	return out
}
