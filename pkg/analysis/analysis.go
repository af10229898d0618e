// Package analysis runs the branch calculators over every wiring tree of a
// project and writes each node's results in place.
package analysis

import (
	"fmt"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/internal/logger"
	"github.com/edp1096/spkline/pkg/amplifier"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/quality"
)

// Analysis is one topology calculator. Setup binds the forest and shared
// environment, Execute overwrites the results of every node.
type Analysis interface {
	Setup(forest *network.Forest, env *Environment) error
	Execute() error
	GetResults() map[string]*network.Results
}

// Environment is everything a calculator reads besides the tree itself.
type Environment struct {
	DB          *catalog.Database
	Rack        *amplifier.Rack
	Profile     quality.Profile
	AmbientC    float64
	LineVoltage float64
	Log         *logger.Logger
}

func (env *Environment) hfCheckHz() float64 {
	if env.Profile.HFCheckHz > 0 {
		return env.Profile.HFCheckHz
	}
	return consts.DefaultHFCheckHz
}

func (env *Environment) lineVoltage() float64 {
	if env.LineVoltage > 0 {
		return env.LineVoltage
	}
	return consts.DefaultLineVoltage
}

type BaseAnalysis struct {
	Forest  *network.Forest
	Env     *Environment
	Reducer *network.Reducer
	results map[string]*network.Results
	faults  int
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string]*network.Results)}
}

func (a *BaseAnalysis) setup(forest *network.Forest, env *Environment) error {
	if forest == nil {
		return fmt.Errorf("forest not set")
	}
	if env == nil {
		return fmt.Errorf("environment not set")
	}
	if env.Log == nil {
		env.Log = logger.Nop()
	}
	a.Forest = forest
	a.Env = env
	a.Reducer = network.NewReducer(env.DB, env.AmbientC)
	a.results = make(map[string]*network.Results)
	a.faults = 0
	return nil
}

// StoreResult writes res on the node and records it by node id.
func (a *BaseAnalysis) StoreResult(n *network.Node, res *network.Results) {
	n.Results = res
	a.results[n.ID] = res
}

// failDescendants marks every node below n as errored.
func (a *BaseAnalysis) failDescendants(n *network.Node, msg string) {
	for _, c := range n.Children {
		network.Subtree(c, func(d *network.Node) {
			a.StoreResult(d, network.Failed(msg))
		})
	}
}

// guardRoot runs fn for one root and turns a panic into errored results for
// that root's subtree only.
func (a *BaseAnalysis) guardRoot(root *network.Node, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.faults++
			a.Env.Log.Error("root calculation fault",
				"topology", a.Forest.Topology,
				"root", root.ID,
				"panic", fmt.Sprint(r),
			)
			network.Subtree(root, func(n *network.Node) {
				a.StoreResult(n, network.Failed(quality.MsgCalculationFail))
			})
		}
	}()
	fn()
}

// rootAmplifier resolves the amplifier model driving a root, if any.
func (a *BaseAnalysis) rootAmplifier(root *network.Node) (*catalog.Amplifier, bool) {
	if root.AmpInstanceID == "" {
		return nil, false
	}
	amp, ok := a.Env.Rack.Model(a.Env.DB, root.AmpInstanceID)
	if !ok {
		a.Env.Log.Debug("amplifier not resolved", "root", root.ID, "instance", root.AmpInstanceID)
	}
	return amp, ok
}

func (a *BaseAnalysis) GetResults() map[string]*network.Results {
	return a.results
}

// Faults is the number of roots whose traversal panicked.
func (a *BaseAnalysis) Faults() int {
	return a.faults
}

// checkDevices returns the error message for a node whose speaker or
// primary cable cannot be found.
func checkDevices(db *catalog.Database, n *network.Node) (*catalog.Speaker, *catalog.Cable, string) {
	spk, ok := db.Speaker(n.SpeakerID)
	if !ok {
		return nil, nil, quality.MsgNoSpeaker
	}
	cable, ok := db.Cable(n.CableID)
	if !ok {
		return nil, nil, quality.MsgNoCable
	}
	return spk, cable, ""
}
