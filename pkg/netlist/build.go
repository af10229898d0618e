package netlist

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/edp1096/spkline/pkg/network"
)

const (
	sourceName = "VAMP"
	sourceNode = "amp"
	outputNode = "out"
)

// Source describes the amplifier channel driving a tree.
type Source struct {
	Voltage   float64 // RMS
	OutputOhm float64 // 0 for an ideal source
}

// JunctionNode is the netlist node at the speaker end of a wiring node.
func JunctionNode(id string) string {
	return "j_" + sanitize(id)
}

func sanitize(id string) string {
	return strings.Join(strings.Fields(id), "_")
}

// FromTree expands one low-Z root into a netlist: each cable run becomes a
// series resistor and inductor, each speaker tap a resistor to ground.
// Speakers are sized with their minimum impedance, matching the reducer.
func FromTree(root *network.Node, r *network.Reducer, src Source, freqs ...float64) (*NetlistData, error) {
	if root == nil {
		return nil, fmt.Errorf("nil root")
	}
	nd := &NetlistData{
		Title:       "spkline " + root.ID,
		Nodes:       make(map[string]int),
		Frequencies: freqs,
	}

	drive := outputNode
	if src.OutputOhm > 0 {
		drive = sourceNode
	}
	nd.add(Element{
		Type: "V", Name: sourceName, Nodes: []string{drive, "0"}, Value: src.Voltage,
		Params: map[string]string{"type": "ac", "phase": "0"},
	})
	if src.OutputOhm > 0 {
		nd.add(Element{Type: "R", Name: "RAMP", Nodes: []string{sourceNode, outputNode}, Value: src.OutputOhm})
	}

	if err := nd.addBranch(root, outputNode, r); err != nil {
		return nil, err
	}
	return nd, nil
}

func (nd *NetlistData) addBranch(n *network.Node, up string, r *network.Reducer) error {
	if n == nil {
		return fmt.Errorf("nil node below %s", up)
	}
	id := sanitize(n.ID)
	if id == "" {
		return fmt.Errorf("node without id below %s", up)
	}
	if _, dup := nd.Nodes[JunctionNode(n.ID)]; dup {
		return fmt.Errorf("duplicate node id %q", n.ID)
	}
	junction := JunctionNode(n.ID)

	res := r.SegmentImpedanceAt(n, 0).Real
	ind := r.SegmentInductance(n)
	if ind > 0 {
		mid := "m_" + id
		nd.add(Element{Type: "R", Name: "RC_" + id, Nodes: []string{up, mid}, Value: res})
		nd.add(Element{Type: "L", Name: "LC_" + id, Nodes: []string{mid, junction}, Value: ind})
	} else {
		nd.add(Element{Type: "R", Name: "RC_" + id, Nodes: []string{up, junction}, Value: res})
	}

	if z := r.SpeakerImpedance(n, true); z.Real > 0 {
		nd.add(Element{Type: "R", Name: "RS_" + id, Nodes: []string{junction, "0"}, Value: z.Real})
	}
	// Nothing behind an unknown speaker is connected.
	if !r.HasSpeaker(n) {
		return nil
	}

	for _, c := range n.Children {
		if err := nd.addBranch(c, junction, r); err != nil {
			return err
		}
	}
	return nil
}

func (nd *NetlistData) add(e Element) {
	if e.Params == nil {
		e.Params = make(map[string]string)
	}
	nd.Elements = append(nd.Elements, e)
	for _, node := range e.Nodes {
		if _, exists := nd.Nodes[node]; !exists {
			nd.Nodes[node] = len(nd.Nodes)
		}
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTo writes the netlist in the form Parse reads.
func (nd *NetlistData) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "* %s\n", nd.Title)
	for _, e := range nd.Elements {
		fmt.Fprintf(&b, "%s %s %s", e.Name, e.Nodes[0], e.Nodes[1])
		if e.Type == "V" {
			phase := e.Params["phase"]
			if phase == "" {
				phase = "0"
			}
			fmt.Fprintf(&b, " AC %s %s\n", formatValue(e.Value), phase)
			continue
		}
		fmt.Fprintf(&b, " %s\n", formatValue(e.Value))
	}
	if len(nd.Frequencies) > 0 {
		b.WriteString(".freq")
		for _, f := range nd.Frequencies {
			b.WriteString(" " + formatValue(f))
		}
		b.WriteString("\n")
	}
	b.WriteString(".end\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (nd *NetlistData) String() string {
	var b strings.Builder
	nd.WriteTo(&b)
	return b.String()
}
