package analysis

import (
	"fmt"
	"time"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/internal/logger"
	"github.com/edp1096/spkline/pkg/amplifier"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/quality"
)

// Settings are the project-wide calculation inputs.
type Settings struct {
	AmbientC       float64 `json:"ambient_temp_c" yaml:"ambient_temp_c" mapstructure:"ambient_temp_c"`
	QualityProfile string  `json:"quality_profile" yaml:"quality_profile" mapstructure:"quality_profile"`
	LineVoltage    float64 `json:"line_voltage,omitempty" yaml:"line_voltage,omitempty" mapstructure:"line_voltage"`
}

func DefaultSettings() Settings {
	return Settings{
		AmbientC:       consts.DefaultAmbientC,
		QualityProfile: quality.DefaultProfile,
		LineVoltage:    consts.DefaultLineVoltage,
	}
}

// Input is the full state a recompute reads. Forests are written in place.
type Input struct {
	LowZ            *network.Forest
	ConstantVoltage *network.Forest
	DB              *catalog.Database
	Rack            *amplifier.Rack
	Settings        Settings
}

type Summary struct {
	Nodes        int     `json:"nodes"`
	OK           int     `json:"ok"`
	Warnings     int     `json:"warnings"`
	Errors       int     `json:"errors"`
	Faults       int     `json:"faults"`
	TotalRMS     float64 `json:"total_rms"`
	TotalCVWatts float64 `json:"total_cv_watts"`
}

func (s *Summary) add(f *network.Forest) {
	f.Walk(func(n *network.Node) bool {
		s.Nodes++
		if n.Results == nil {
			return true
		}
		switch n.Results.Status {
		case quality.StatusOK:
			s.OK++
		case quality.StatusWarning:
			s.Warnings++
		case quality.StatusError:
			s.Errors++
		}
		return true
	})
}

type Output struct {
	Profile quality.Profile `json:"profile"`
	Summary Summary         `json:"summary"`
}

// Observer receives one call per completed recompute.
type Observer interface {
	ObserveRecompute(elapsed time.Duration, s Summary)
}

type Engine struct {
	profiles *quality.Set
	log      *logger.Logger
	observer Observer
}

type Option func(*Engine)

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func NewEngine(profiles *quality.Set, opts ...Option) *Engine {
	if profiles == nil {
		profiles = quality.Builtin()
	}
	e := &Engine{profiles: profiles, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Profiles() *quality.Set {
	return e.profiles
}

// Recompute recalculates every root of both topologies and overwrites the
// results of every node. Missing devices and per-root faults end up in the
// results; only an unknown quality profile is returned as an error, in
// which case nothing is written.
func (e *Engine) Recompute(in Input) (Output, error) {
	start := time.Now()

	profile, err := e.profiles.Get(in.Settings.QualityProfile)
	if err != nil {
		return Output{}, err
	}
	env := &Environment{
		DB:          in.DB,
		Rack:        in.Rack,
		Profile:     profile,
		AmbientC:    in.Settings.AmbientC,
		LineVoltage: in.Settings.LineVoltage,
		Log:         e.log,
	}

	out := Output{Profile: profile}
	runs := []struct {
		forest *network.Forest
		calc   interface {
			Analysis
			Faults() int
		}
	}{
		{in.LowZ, NewLowZ()},
		{in.ConstantVoltage, NewConstantVoltage()},
	}
	for _, run := range runs {
		if run.forest == nil {
			continue
		}
		if err := run.forest.Validate(); err != nil {
			e.log.Warn("inconsistent parent references", "topology", run.forest.Topology, "error", err)
		}
		if err := run.calc.Setup(run.forest, env); err != nil {
			return out, fmt.Errorf("%s setup: %w", run.forest.Topology, err)
		}
		if err := run.calc.Execute(); err != nil {
			return out, fmt.Errorf("%s calculation: %w", run.forest.Topology, err)
		}
		out.Summary.Faults += run.calc.Faults()
		out.Summary.add(run.forest)
	}

	reducer := network.NewReducer(in.DB, in.Settings.AmbientC)
	for _, root := range rootsOf(in.LowZ) {
		out.Summary.TotalRMS += reducer.TotalRMS(root)
	}
	for _, root := range rootsOf(in.ConstantVoltage) {
		out.Summary.TotalCVWatts += network.TotalTapWatts(root)
	}

	e.log.Debug("recompute finished",
		"profile", profile.Name,
		"nodes", out.Summary.Nodes,
		"warnings", out.Summary.Warnings,
		"errors", out.Summary.Errors,
		"faults", out.Summary.Faults,
	)
	if e.observer != nil {
		e.observer.ObserveRecompute(time.Since(start), out.Summary)
	}
	return out, nil
}

func rootsOf(f *network.Forest) []*network.Node {
	if f == nil {
		return nil
	}
	roots := make([]*network.Node, 0, len(f.Roots))
	for _, r := range f.Roots {
		if r != nil {
			roots = append(roots, r)
		}
	}
	return roots
}
