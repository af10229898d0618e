package network

import (
	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/impedance"
)

// Reducer collapses low-Z subtrees into the load they present upstream.
type Reducer struct {
	DB       *catalog.Database
	AmbientC float64
	FreqHz   float64
}

func NewReducer(db *catalog.Database, ambientC float64) *Reducer {
	return &Reducer{DB: db, AmbientC: ambientC, FreqHz: consts.BaseFrequency}
}

// SegmentImpedance is the impedance of the cable run leading to n.
func (r *Reducer) SegmentImpedance(n *Node) impedance.Impedance {
	return r.SegmentImpedanceAt(n, r.frequency())
}

func (r *Reducer) SegmentImpedanceAt(n *Node, freqHz float64) impedance.Impedance {
	return r.DB.SegmentImpedance(freqHz, r.AmbientC, n.Runs()...)
}

func (r *Reducer) frequency() float64 {
	if r.FreqHz <= 0 {
		return consts.BaseFrequency
	}
	return r.FreqHz
}

// SpeakerImpedance is the resistive load of the speakers at n alone. The
// zero value means the leg is open.
func (r *Reducer) SpeakerImpedance(n *Node, useMin bool) impedance.Impedance {
	spk, ok := r.DB.Speaker(n.SpeakerID)
	if !ok {
		return impedance.Impedance{}
	}
	z := spk.LoadImpedance(useMin)
	if z <= 0 {
		return impedance.Impedance{}
	}
	return impedance.Resistive(z / float64(n.Parallel()))
}

// EffectiveImpedance is the load seen at the far end of n's own cable: its
// speakers in parallel with every child branch, each branch being the
// child's effective load in series with the child's cable.
func (r *Reducer) EffectiveImpedance(n *Node, useMin bool) impedance.Impedance {
	return r.admittance(n, useMin).Reciprocal()
}

// HasSpeaker reports whether n's speaker model is in the database.
func (r *Reducer) HasSpeaker(n *Node) bool {
	_, ok := r.DB.Speaker(n.SpeakerID)
	return ok
}

// admittance is zero for a whole branch whose speaker model is unknown;
// the subtree behind it is reported as failed and draws nothing.
func (r *Reducer) admittance(n *Node, useMin bool) impedance.Impedance {
	if !r.HasSpeaker(n) {
		return impedance.Impedance{}
	}
	y := r.SpeakerImpedance(n, useMin).Reciprocal()
	for _, c := range n.Children {
		childY := r.admittance(c, useMin)
		if childY.IsZero() {
			continue
		}
		branch := childY.Reciprocal().Add(r.SegmentImpedance(c))
		y = y.Add(branch.Reciprocal())
	}
	return y
}

// TotalRMS sums the RMS rating of every speaker in the subtree.
func (r *Reducer) TotalRMS(n *Node) float64 {
	var total float64
	Subtree(n, func(n *Node) {
		if spk, ok := r.DB.Speaker(n.SpeakerID); ok {
			total += spk.WattageRMS * float64(n.Parallel())
		}
	})
	return total
}

// TotalTapWatts sums the tap power drawn by the subtree.
func TotalTapWatts(n *Node) float64 {
	var total float64
	Subtree(n, func(n *Node) {
		if n.TapPower > 0 {
			total += n.TapPower
		}
	})
	return total
}

// SegmentInductance is the loop inductance of the run leading to n.
func (r *Reducer) SegmentInductance(n *Node) float64 {
	return r.DB.SegmentInductance(n.Runs()...)
}
