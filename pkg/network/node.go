// Package network holds the wiring trees of a project and reduces them to
// the loads an amplifier channel sees.
package network

import (
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/quality"
)

// Node is one wiring segment with the speaker tap at its far end.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	ParentID string  `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	SpeakerID     string  `json:"speaker_id" yaml:"speaker_id"`
	ParallelCount int     `json:"parallel_count,omitempty" yaml:"parallel_count,omitempty"`
	TapPower      float64 `json:"tap_power,omitempty" yaml:"tap_power,omitempty"`

	CableID   string  `json:"cable_id" yaml:"cable_id"`
	Length    float64 `json:"length" yaml:"length"`
	UseCable2 bool    `json:"use_cable2,omitempty" yaml:"use_cable2,omitempty"`
	Cable2ID  string  `json:"cable2_id,omitempty" yaml:"cable2_id,omitempty"`
	Length2   float64 `json:"length2,omitempty" yaml:"length2,omitempty"`

	Bridge        bool   `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	AmpInstanceID string `json:"amp_instance_id,omitempty" yaml:"amp_instance_id,omitempty"`
	AmpChannel    int    `json:"amp_channel,omitempty" yaml:"amp_channel,omitempty"`

	ListenerDistance float64 `json:"listener_distance,omitempty" yaml:"listener_distance,omitempty"`

	Results *Results `json:"results,omitempty" yaml:"results,omitempty"`
}

// Results is written by the calculation engine only. When Status is Error,
// only Status and Message are meaningful.
type Results struct {
	Status  quality.Status `json:"status" yaml:"status"`
	Message string         `json:"message,omitempty" yaml:"message,omitempty"`

	MinLoad          float64 `json:"min_load,omitempty" yaml:"min_load,omitempty"`
	NomLoad          float64 `json:"nom_load,omitempty" yaml:"nom_load,omitempty"`
	SourceVoltage    float64 `json:"source_voltage,omitempty" yaml:"source_voltage,omitempty"`
	VoltageAtSpeaker float64 `json:"voltage_at_speaker,omitempty" yaml:"voltage_at_speaker,omitempty"`
	Current          float64 `json:"current,omitempty" yaml:"current,omitempty"`
	DropPercent      float64 `json:"drop_percent" yaml:"drop_percent"`
	DropVolts        float64 `json:"drop_volts,omitempty" yaml:"drop_volts,omitempty"`
	PowerLoss        float64 `json:"power_loss,omitempty" yaml:"power_loss,omitempty"`
	CableResistance  float64 `json:"cable_resistance,omitempty" yaml:"cable_resistance,omitempty"`
	DampingFactor    float64 `json:"damping_factor,omitempty" yaml:"damping_factor,omitempty"`

	HFLossDB   float64 `json:"hf_loss_db" yaml:"hf_loss_db"`
	HFAudible  bool    `json:"hf_audible,omitempty" yaml:"hf_audible,omitempty"`
	ElecLossDB float64 `json:"elec_loss_db" yaml:"elec_loss_db"`

	// Root only.
	HeadroomPercent     float64 `json:"headroom_percent,omitempty" yaml:"headroom_percent,omitempty"`
	TotalPower          float64 `json:"total_power,omitempty" yaml:"total_power,omitempty"`
	CapacityWatts       float64 `json:"capacity_watts,omitempty" yaml:"capacity_watts,omitempty"`
	AmpMinLoadViolation bool    `json:"amp_min_load_violation,omitempty" yaml:"amp_min_load_violation,omitempty"`

	AcousticSPL float64 `json:"acoustic_spl,omitempty" yaml:"acoustic_spl,omitempty"`
	DelayMs     float64 `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty"`
}

// Failed builds an error result carrying only status and message.
func Failed(msg string) *Results {
	return &Results{Status: quality.StatusError, Message: msg}
}

// Parallel returns the number of identical speakers wired at this tap.
func (n *Node) Parallel() int {
	if n.ParallelCount <= 0 {
		return 1
	}
	return n.ParallelCount
}

// IsRoot reports whether the node hangs directly off an amplifier channel.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// Runs returns the cable runs of the segment leading to this node. The
// secondary run is included only when enabled.
func (n *Node) Runs() []catalog.Run {
	runs := []catalog.Run{{CableID: n.CableID, Length: n.Length}}
	if n.UseCable2 && n.Cable2ID != "" && n.Length2 > 0 {
		runs = append(runs, catalog.Run{CableID: n.Cable2ID, Length: n.Length2})
	}
	return runs
}
