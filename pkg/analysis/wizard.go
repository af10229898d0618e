package analysis

import (
	"fmt"
	"sort"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/transmission"
)

// Candidates are kept up to this multiple of the profile's warning drop.
const suggestMargin = 1.5

// Reference drive used to rank cables independently of the amplifier.
const suggestVoltage = 100.0

const defaultSuggestTapWatts = 10.0

type Suggestion struct {
	Cable       *catalog.Cable `json:"cable"`
	DropPercent float64        `json:"drop_percent"`
}

// SuggestCables ranks every catalog cable by the single-hop drop it would
// cause on the node's run, keeping those below the profile margin. An
// empty brand accepts all brands.
func (e *Engine) SuggestCables(in Input, topology network.Topology, nodeID, brand string) ([]Suggestion, error) {
	profile, err := e.profiles.Get(in.Settings.QualityProfile)
	if err != nil {
		return nil, err
	}

	forest := in.LowZ
	if topology == network.ConstantVoltage {
		forest = in.ConstantVoltage
	}
	n, ok := forest.Find(nodeID)
	if !ok {
		return nil, fmt.Errorf("suggest for %q: %w", nodeID, network.ErrNodeNotFound)
	}

	load := consts.DefaultRatedOhms
	if topology == network.ConstantVoltage {
		watts := n.TapPower
		if watts <= 0 {
			watts = defaultSuggestTapWatts
		}
		load = suggestVoltage * suggestVoltage / watts
	} else if spk, ok := in.DB.Speaker(n.SpeakerID); ok && spk.LoadImpedance(true) > 0 {
		load = spk.LoadImpedance(true) / float64(n.Parallel())
	}

	warn, _ := profile.DropLimits(topology == network.ConstantVoltage)
	limit := warn * suggestMargin

	var out []Suggestion
	for _, id := range in.DB.CableIDs() {
		c, ok := in.DB.Cable(id)
		if !ok || (brand != "" && c.Brand != brand) {
			continue
		}
		z := catalog.CableImpedance(c, n.Length, consts.BaseFrequency, in.Settings.AmbientC)
		tx := transmission.Solve(suggestVoltage, load, z)
		if tx.DropPercent < limit {
			out = append(out, Suggestion{Cable: c, DropPercent: tx.DropPercent})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DropPercent < out[j].DropPercent
	})
	return out, nil
}
