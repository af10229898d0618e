package analysis

import (
	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/amplifier"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/quality"
	"github.com/edp1096/spkline/pkg/transmission"
)

// LowZAnalysis computes speakers wired directly behind an amplifier
// channel. Loads are reduced bottom-up, voltages propagate top-down.
type LowZAnalysis struct{ BaseAnalysis }

func NewLowZ() *LowZAnalysis {
	return &LowZAnalysis{BaseAnalysis: *NewBaseAnalysis()}
}

func (lz *LowZAnalysis) Setup(forest *network.Forest, env *Environment) error {
	return lz.setup(forest, env)
}

func (lz *LowZAnalysis) Execute() error {
	for _, root := range lz.Forest.Roots {
		if root == nil {
			continue
		}
		lz.guardRoot(root, func() { lz.calcRoot(root) })
	}
	return nil
}

// lowZSource is the drive seen from one root downward.
type lowZSource struct {
	voltage   float64
	outputOhm float64
}

func (lz *LowZAnalysis) calcRoot(root *network.Node) {
	src := lowZSource{voltage: consts.DefaultLowZSourceVoltage}

	var rootInfo network.Results
	if amp, ok := lz.rootAmplifier(root); ok {
		seg := lz.Reducer.SegmentImpedance(root)
		nomLoad := lz.Reducer.EffectiveImpedance(root, false).Magnitude() + seg.Real
		minLoad := lz.Reducer.EffectiveImpedance(root, true).Magnitude() + seg.Real

		capacity := amplifier.SelectCapacity(amp, nomLoad, root.Bridge)
		if v := capacity.Voltage(); v > 0 {
			src.voltage = v
		}
		src.outputOhm = amplifier.OutputImpedance(amp)
		if root.Bridge {
			src.outputOhm *= 2
		}

		rootInfo.TotalPower = lz.Reducer.TotalRMS(root)
		rootInfo.CapacityWatts = capacity.Watts
		rootInfo.HeadroomPercent = amplifier.Headroom(rootInfo.TotalPower, capacity.Watts)
		rootInfo.AmpMinLoadViolation = amplifier.BelowMinLoad(amp, minLoad, root.Bridge)
	}

	lz.calcBranch(root, src, src.voltage, 0, &rootInfo)
}

// calcBranch computes n fed with vIn volts. cumR is the cable resistance
// between the amplifier and n's own cable. rootInfo is non-nil for roots.
func (lz *LowZAnalysis) calcBranch(n *network.Node, src lowZSource, vIn, cumR float64, rootInfo *network.Results) {
	spk, _, msg := checkDevices(lz.Env.DB, n)
	if msg != "" {
		lz.StoreResult(n, network.Failed(msg))
		lz.failDescendants(n, quality.MsgUpstreamError)
		return
	}

	seg := lz.Reducer.SegmentImpedance(n)
	segHF := lz.Reducer.SegmentImpedanceAt(n, lz.Env.hfCheckHz())
	zMin := lz.Reducer.EffectiveImpedance(n, true).Magnitude()
	zNom := lz.Reducer.EffectiveImpedance(n, false).Magnitude()

	tx := transmission.Solve(vIn, zMin, seg)
	cumR += seg.Real

	var drop float64
	if src.voltage > 0 {
		drop = (src.voltage - tx.VoltageAtLoad) / src.voltage * 100
	}
	df := transmission.DampingFactor(spk.Impedance/float64(n.Parallel()), src.outputOhm, cumR)
	hf := transmission.HFLoss(vIn, zMin, seg, segHF)

	res := &network.Results{
		MinLoad:          zMin + seg.Real,
		NomLoad:          zNom + seg.Real,
		VoltageAtSpeaker: tx.VoltageAtLoad,
		Current:          tx.Current,
		DropPercent:      drop,
		DropVolts:        src.voltage - tx.VoltageAtLoad,
		PowerLoss:        tx.PowerLoss(),
		CableResistance:  cumR,
		DampingFactor:    df,
		HFLossDB:         hf.LossDB,
		HFAudible:        hf.Audible,
		ElecLossDB:       transmission.ElectricalLossDB(tx.VoltageAtLoad, src.voltage),
	}
	if rootInfo != nil {
		res.SourceVoltage = src.voltage
		res.TotalPower = rootInfo.TotalPower
		res.CapacityWatts = rootInfo.CapacityWatts
		res.HeadroomPercent = rootInfo.HeadroomPercent
		res.AmpMinLoadViolation = rootInfo.AmpMinLoadViolation
	}
	setAcoustics(res, spk, n.ListenerDistance, lz.Env.AmbientC)

	v := quality.Classify(quality.Input{
		DropPercent:     res.DropPercent,
		DampingFactor:   df,
		HeadroomPercent: res.HeadroomPercent,
		IsRoot:          rootInfo != nil,
	}, lz.Env.Profile)
	res.Status, res.Message = v.Status, v.Message
	lz.StoreResult(n, res)

	for _, c := range n.Children {
		lz.calcBranch(c, src, tx.VoltageAtLoad, cumR, nil)
	}
}

func setAcoustics(res *network.Results, spk *catalog.Speaker, distanceM, ambientC float64) {
	if distanceM <= 0 {
		return
	}
	res.DelayMs = transmission.DelayMs(distanceM, ambientC)
	if spk.MaxSPL > 0 {
		res.AcousticSPL = transmission.AcousticSPL(spk.MaxSPL, res.ElecLossDB, distanceM)
	}
}
