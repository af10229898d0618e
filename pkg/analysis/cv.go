package analysis

import (
	"math"

	"github.com/edp1096/spkline/pkg/amplifier"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/quality"
	"github.com/edp1096/spkline/pkg/transmission"
)

// ConstantVoltageAnalysis computes tapped speakers on a constant-voltage
// line. Each node draws its subtree's tap power through its own cable.
type ConstantVoltageAnalysis struct{ BaseAnalysis }

func NewConstantVoltage() *ConstantVoltageAnalysis {
	return &ConstantVoltageAnalysis{BaseAnalysis: *NewBaseAnalysis()}
}

func (cv *ConstantVoltageAnalysis) Setup(forest *network.Forest, env *Environment) error {
	return cv.setup(forest, env)
}

func (cv *ConstantVoltageAnalysis) Execute() error {
	for _, root := range cv.Forest.Roots {
		if root == nil {
			continue
		}
		cv.guardRoot(root, func() { cv.calcRoot(root) })
	}
	return nil
}

func (cv *ConstantVoltageAnalysis) calcRoot(root *network.Node) {
	var rootInfo network.Results
	rootInfo.TotalPower = network.TotalTapWatts(root)
	if amp, ok := cv.rootAmplifier(root); ok {
		rootInfo.CapacityWatts = amplifier.CVCapacity(amp)
		rootInfo.HeadroomPercent = amplifier.Headroom(rootInfo.TotalPower, rootInfo.CapacityWatts)
	}
	cv.calcBranch(root, cv.Env.lineVoltage(), 0, &rootInfo)
}

// calcBranch computes n fed with vIn volts. cumR is the cable resistance
// between the amplifier and n's own cable.
func (cv *ConstantVoltageAnalysis) calcBranch(n *network.Node, vIn, cumR float64, rootInfo *network.Results) {
	spk, _, msg := checkDevices(cv.Env.DB, n)
	if msg != "" {
		cv.StoreResult(n, network.Failed(msg))
		cv.failDescendants(n, quality.MsgUpstreamError)
		return
	}

	lineV := cv.Env.lineVoltage()
	watts := network.TotalTapWatts(n)
	seg := cv.Reducer.SegmentImpedance(n)
	segHF := cv.Reducer.SegmentImpedanceAt(n, cv.Env.hfCheckHz())

	var current float64
	if vIn > 0 {
		current = watts / vIn
	}
	v := math.Max(vIn-current*seg.Magnitude(), 0)
	cumR += seg.Real

	res := &network.Results{
		VoltageAtSpeaker: v,
		Current:          current,
		DropPercent:      (lineV - v) / lineV * 100,
		DropVolts:        lineV - v,
		PowerLoss:        current * current * seg.Real,
		CableResistance:  cumR,
		TotalPower:       watts,
		ElecLossDB:       transmission.ElectricalLossDB(v, lineV),
	}
	if watts > 0 {
		zEff := lineV * lineV / watts
		res.MinLoad = zEff + seg.Real
		res.NomLoad = res.MinLoad
		hf := transmission.HFLoss(vIn, zEff, seg, segHF)
		res.HFLossDB, res.HFAudible = hf.LossDB, hf.Audible
	}
	if rootInfo != nil {
		res.SourceVoltage = vIn
		res.CapacityWatts = rootInfo.CapacityWatts
		res.HeadroomPercent = rootInfo.HeadroomPercent
	}
	setAcoustics(res, spk, n.ListenerDistance, cv.Env.AmbientC)

	verdict := quality.Classify(quality.Input{
		DropPercent:     res.DropPercent,
		HeadroomPercent: res.HeadroomPercent,
		ConstantVoltage: true,
		IsRoot:          rootInfo != nil,
	}, cv.Env.Profile)
	res.Status, res.Message = verdict.Status, verdict.Message
	cv.StoreResult(n, res)

	for _, c := range n.Children {
		cv.calcBranch(c, v, cumR, nil)
	}
}
