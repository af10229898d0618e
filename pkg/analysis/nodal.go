package analysis

import (
	"fmt"

	"github.com/edp1096/spkline/pkg/circuit"
	"github.com/edp1096/spkline/pkg/netlist"
	"github.com/edp1096/spkline/pkg/network"
)

// NodalPoint is the solved junction voltages of one tree at one frequency.
type NodalPoint struct {
	Frequency float64
	Voltages  map[string]complex128 // V(<node>)
}

// NodalCheck solves one low-Z tree as a complete nodal system instead of
// the series/parallel reduction, at a fixed list of frequencies.
type NodalCheck struct {
	Circuit     *circuit.Circuit
	Netlist     *netlist.NetlistData
	root        *network.Node
	reducer     *network.Reducer
	source      netlist.Source
	frequencies []float64
	results     []NodalPoint
}

func NewNodalCheck(root *network.Node, reducer *network.Reducer, src netlist.Source, freqs ...float64) *NodalCheck {
	return &NodalCheck{
		root:        root,
		reducer:     reducer,
		source:      src,
		frequencies: freqs,
	}
}

func (nc *NodalCheck) Setup() error {
	if len(nc.frequencies) == 0 {
		return fmt.Errorf("no check frequencies")
	}
	nd, err := netlist.FromTree(nc.root, nc.reducer, nc.source, nc.frequencies...)
	if err != nil {
		return fmt.Errorf("building netlist: %w", err)
	}
	ckt, err := circuit.Build(nd.Title, nd)
	if err != nil {
		return fmt.Errorf("building circuit: %w", err)
	}
	nc.Netlist = nd
	nc.Circuit = ckt
	return nil
}

func (nc *NodalCheck) Execute() error {
	if nc.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	nc.results = nc.results[:0]
	for _, freq := range nc.frequencies {
		if err := nc.Circuit.SolveAt(freq); err != nil {
			return err
		}

		solution := make(map[string]complex128)
		for _, name := range nc.Circuit.NodeNames() {
			solution[fmt.Sprintf("V(%s)", name)] = nc.Circuit.NodeVoltage(name)
		}
		nc.results = append(nc.results, NodalPoint{Frequency: freq, Voltages: solution})
	}
	return nil
}

func (nc *NodalCheck) Results() []NodalPoint {
	return nc.results
}

// JunctionVoltage returns the solved voltage at the speaker end of a wiring
// node for the i-th check frequency.
func (nc *NodalCheck) JunctionVoltage(i int, nodeID string) (complex128, bool) {
	if i < 0 || i >= len(nc.results) {
		return 0, false
	}
	v, ok := nc.results[i].Voltages[fmt.Sprintf("V(%s)", netlist.JunctionNode(nodeID))]
	return v, ok
}

func (nc *NodalCheck) Destroy() {
	if nc.Circuit != nil {
		nc.Circuit.Destroy()
	}
}
