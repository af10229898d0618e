// Package report flattens computed forests into a line schedule and a bill
// of materials, and writes them as CSV or aligned text.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/edp1096/spkline/pkg/amplifier"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/util"
)

// Row is one node of the line schedule.
type Row struct {
	Topology  network.Topology `json:"topology"`
	ID        string           `json:"id"`
	Label     string           `json:"label,omitempty"`
	Depth     int              `json:"depth"`
	SpeakerID string           `json:"speaker_id"`
	Count     int              `json:"count"`
	TapPower  float64          `json:"tap_power,omitempty"`
	CableID   string           `json:"cable_id"`
	Length    float64          `json:"length"`
	Cable2ID  string           `json:"cable2_id,omitempty"`
	Length2   float64          `json:"length2,omitempty"`
	Amplifier string           `json:"amplifier,omitempty"`

	Results network.Results `json:"results"`
}

// Schedule lists every node depth-first, low-Z trees before CV trees.
func Schedule(forests ...*network.Forest) []Row {
	var rows []Row
	for _, f := range forests {
		if f == nil {
			continue
		}
		for _, root := range f.Roots {
			collect(&rows, f.Topology, root, 0)
		}
	}
	return rows
}

func collect(rows *[]Row, t network.Topology, n *network.Node, depth int) {
	if n == nil {
		return
	}
	r := Row{
		Topology:  t,
		ID:        n.ID,
		Label:     n.Label,
		Depth:     depth,
		SpeakerID: n.SpeakerID,
		Count:     n.Parallel(),
		CableID:   n.CableID,
		Length:    n.Length,
	}
	if t == network.ConstantVoltage {
		r.Count = 1
		r.TapPower = n.TapPower
	}
	if runs := n.Runs(); len(runs) > 1 {
		r.Cable2ID = runs[1].CableID
		r.Length2 = runs[1].Length
	}
	if n.AmpInstanceID != "" {
		r.Amplifier = n.AmpInstanceID
		if n.AmpChannel > 0 {
			r.Amplifier += " ch" + strconv.Itoa(n.AmpChannel)
		}
		if n.Bridge {
			r.Amplifier += " bridged"
		}
	}
	if n.Results != nil {
		r.Results = *n.Results
	}
	*rows = append(*rows, r)

	for _, c := range n.Children {
		collect(rows, t, c, depth+1)
	}
}

var scheduleHeader = []string{
	"topology", "id", "label", "speaker", "count", "tap_w", "cable", "length_m", "cable2", "length2_m",
	"amplifier", "load_ohm", "voltage_v", "drop_pct", "df", "hf_loss_db", "headroom_pct", "status", "message",
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (r Row) record() []string {
	return []string{
		string(r.Topology), r.ID, r.Label, r.SpeakerID, strconv.Itoa(r.Count), f2(r.TapPower),
		r.CableID, f2(r.Length), r.Cable2ID, f2(r.Length2), r.Amplifier,
		f2(r.Results.MinLoad), f2(r.Results.VoltageAtSpeaker), f2(r.Results.DropPercent),
		f2(r.Results.DampingFactor), f2(r.Results.HFLossDB), f2(r.Results.HeadroomPercent),
		string(r.Results.Status), r.Results.Message,
	}
}

func WriteScheduleCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScheduleTable prints the schedule with children indented under their
// parents.
func WriteScheduleTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSPEAKER\tCABLE\tLOAD\tVOLTAGE\tDROP\tDF\tHF\tHEADROOM\tSTATUS")
	for _, r := range rows {
		id := r.ID
		for i := 0; i < r.Depth; i++ {
			id = "  " + id
		}
		headroom := ""
		if r.Results.HeadroomPercent > 0 {
			headroom = util.FormatPercent(r.Results.HeadroomPercent)
		}
		status := string(r.Results.Status)
		if r.Results.Message != "" {
			status += " (" + r.Results.Message + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s %gm\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			id, r.SpeakerID, r.CableID, r.Length,
			util.FormatValueFactor(r.Results.MinLoad, "Ohm"),
			util.FormatValueFactor(r.Results.VoltageAtSpeaker, "V"),
			util.FormatPercent(r.Results.DropPercent),
			util.FormatDF(r.Results.DampingFactor),
			util.FormatDB(r.Results.HFLossDB),
			headroom, status,
		)
	}
	return tw.Flush()
}

// Item is one bill of materials line.
type Item struct {
	Kind     string  `json:"kind"` // speaker, cable, amplifier
	ID       string  `json:"id"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// BOM counts speakers per model, cable metres per type (primary and enabled
// extension runs) and amplifier instances per model.
func BOM(rack *amplifier.Rack, forests ...*network.Forest) []Item {
	speakers := make(map[string]float64)
	cables := make(map[string]float64)
	for _, f := range forests {
		if f == nil {
			continue
		}
		f.Walk(func(n *network.Node) bool {
			if n.SpeakerID != "" {
				if f.Topology == network.ConstantVoltage {
					speakers[n.SpeakerID]++
				} else {
					speakers[n.SpeakerID] += float64(n.Parallel())
				}
			}
			for _, run := range n.Runs() {
				if run.CableID != "" && run.Length > 0 {
					cables[run.CableID] += run.Length
				}
			}
			return true
		})
	}

	amps := make(map[string]float64)
	if rack != nil {
		for _, id := range rack.IDs() {
			if in, ok := rack.Get(id); ok {
				amps[in.ModelID]++
			}
		}
	}

	var items []Item
	items = appendItems(items, "speaker", "pcs", speakers)
	items = appendItems(items, "cable", "m", cables)
	items = appendItems(items, "amplifier", "pcs", amps)
	return items
}

func appendItems(items []Item, kind, unit string, counts map[string]float64) []Item {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		items = append(items, Item{Kind: kind, ID: id, Quantity: counts[id], Unit: unit})
	}
	return items
}

func WriteBOMCSV(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "id", "quantity", "unit"}); err != nil {
		return err
	}
	for _, it := range items {
		q := strconv.FormatFloat(it.Quantity, 'f', -1, 64)
		if err := cw.Write([]string{it.Kind, it.ID, q, it.Unit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
