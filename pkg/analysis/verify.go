package analysis

import (
	"math"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/netlist"
	"github.com/edp1096/spkline/pkg/network"
)

// NodeCheck compares the reduced result of one node with the nodal solve.
type NodeCheck struct {
	NodeID           string  `json:"node_id"`
	ReducedVolts     float64 `json:"reduced_volts"`
	NodalVolts       float64 `json:"nodal_volts"`
	DeviationPercent float64 `json:"deviation_percent"`
	ReducedHFLossDB  float64 `json:"reduced_hf_loss_db"`
	NodalHFLossDB    float64 `json:"nodal_hf_loss_db"`
}

type RootCheck struct {
	RootID              string      `json:"root_id"`
	SourceVoltage       float64     `json:"source_voltage"`
	Nodes               []NodeCheck `json:"nodes,omitempty"`
	MaxDeviationPercent float64     `json:"max_deviation_percent"`
	Netlist             string      `json:"netlist,omitempty"`
	Error               string      `json:"error,omitempty"`
}

type VerifyReport struct {
	Output Output      `json:"output"`
	Roots  []RootCheck `json:"roots"`
}

// Verify recomputes the project, then re-solves every low-Z root as a nodal
// system driven by an ideal source at the root's source voltage. Nodes
// without a computed voltage are not compared. Roots that cannot be solved
// carry the error in their check; only a recompute error is returned.
func (e *Engine) Verify(in Input) (VerifyReport, error) {
	out, err := e.Recompute(in)
	if err != nil {
		return VerifyReport{}, err
	}
	report := VerifyReport{Output: out}

	reducer := network.NewReducer(in.DB, in.Settings.AmbientC)
	hfHz := out.Profile.HFCheckHz
	if hfHz <= 0 {
		hfHz = consts.DefaultHFCheckHz
	}

	var roots []*network.Node
	for _, root := range rootsOf(in.LowZ) {
		if root.Results != nil && root.Results.SourceVoltage > 0 {
			roots = append(roots, root)
		}
	}

	// Each root is an independent system; solve them in parallel. Failures
	// are kept in the root's check, so the group only bounds concurrency
	// and every goroutine returns nil.
	report.Roots = make([]RootCheck, len(roots))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, root := range roots {
		g.Go(func() error {
			rc := e.verifyRoot(root, reducer, hfHz)
			if rc.Error != "" {
				e.log.Warn("nodal check failed", "root", root.ID, "error", rc.Error)
			}
			report.Roots[i] = rc
			return nil
		})
	}
	_ = g.Wait() // always nil
	return report, nil
}

func (e *Engine) verifyRoot(root *network.Node, reducer *network.Reducer, hfHz float64) RootCheck {
	rc := RootCheck{RootID: root.ID, SourceVoltage: root.Results.SourceVoltage}

	nc := NewNodalCheck(root, reducer, netlist.Source{Voltage: rc.SourceVoltage}, consts.BaseFrequency, hfHz)
	defer nc.Destroy()

	if err := nc.Setup(); err != nil {
		rc.Error = err.Error()
		return rc
	}
	rc.Netlist = nc.Netlist.String()
	if err := nc.Execute(); err != nil {
		rc.Error = err.Error()
		return rc
	}

	network.Subtree(root, func(n *network.Node) {
		if n.Results == nil || n.Results.VoltageAtSpeaker <= 0 {
			return
		}
		base, ok := nc.JunctionVoltage(0, n.ID)
		if !ok {
			return
		}
		high, _ := nc.JunctionVoltage(1, n.ID)

		check := NodeCheck{
			NodeID:          n.ID,
			ReducedVolts:    n.Results.VoltageAtSpeaker,
			NodalVolts:      cmplx.Abs(base),
			ReducedHFLossDB: n.Results.HFLossDB,
		}
		check.DeviationPercent = (check.NodalVolts - check.ReducedVolts) / check.ReducedVolts * 100
		if check.NodalVolts > 0 && cmplx.Abs(high) > 0 {
			check.NodalHFLossDB = 20 * math.Log10(cmplx.Abs(high)/check.NodalVolts)
		}
		if d := math.Abs(check.DeviationPercent); d > rc.MaxDeviationPercent {
			rc.MaxDeviationPercent = d
		}
		rc.Nodes = append(rc.Nodes, check)
	})
	return rc
}
