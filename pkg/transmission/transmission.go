// Package transmission solves a source driving a resistive load through a
// complex cable impedance, and derives the figures quoted per wiring node.
package transmission

import (
	"math"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/impedance"
)

type Result struct {
	VoltageAtLoad   float64 `json:"voltage_at_load"`
	Current         float64 `json:"current"`
	DropPercent     float64 `json:"drop_percent"`
	PowerAtLoad     float64 `json:"power_at_load"`
	PowerAtSource   float64 `json:"power_at_source"`
	CableResistance float64 `json:"cable_resistance"`
	TotalImpedance  float64 `json:"total_impedance"`
}

// PowerLoss is the power dissipated in the cable.
func (r Result) PowerLoss() float64 {
	return r.PowerAtSource - r.PowerAtLoad
}

// Solve treats the load as a pure resistance of loadOhms in series with the
// cable. Reactance of the load itself is not modelled.
func Solve(sourceV, loadOhms float64, cable impedance.Impedance) Result {
	total := cable.Add(impedance.Resistive(loadOhms)).Magnitude()

	current := 0.0
	if total > 0 {
		current = sourceV / total
	}
	vLoad := current * loadOhms

	drop := 0.0
	if sourceV > 0 {
		drop = (sourceV - vLoad) / sourceV * 100
	}

	return Result{
		VoltageAtLoad:   vLoad,
		Current:         current,
		DropPercent:     drop,
		PowerAtLoad:     current * current * loadOhms,
		PowerAtSource:   current * current * (loadOhms + cable.Real),
		CableResistance: cable.Real,
		TotalImpedance:  total,
	}
}

type HF struct {
	LossDB  float64 `json:"loss_db"`
	Audible bool    `json:"audible"`
}

// HFLoss compares the load voltage with the cable evaluated at the base
// frequency and at the HF check frequency.
func HFLoss(sourceV, loadOhms float64, cableLow, cableHigh impedance.Impedance) HF {
	low := Solve(sourceV, loadOhms, cableLow)
	high := Solve(sourceV, loadOhms, cableHigh)

	db := 0.0
	if low.VoltageAtLoad > 0 && high.VoltageAtLoad > 0 {
		db = 20 * math.Log10(high.VoltageAtLoad/low.VoltageAtLoad)
	}
	return HF{LossDB: db, Audible: math.Abs(db) > consts.HFAudibleDB}
}

// DampingFactor returns 0 when the series resistance is not positive.
func DampingFactor(speakerOhms, ampOutputOhms, cableOhms float64) float64 {
	denom := ampOutputOhms + cableOhms
	if denom <= 0 {
		return 0
	}
	return speakerOhms / denom
}

// ElectricalLossDB is the level change at the load relative to the source.
func ElectricalLossDB(vLoad, vSource float64) float64 {
	if vSource <= 0 || vLoad <= 0 {
		return 0
	}
	return 20 * math.Log10(vLoad/vSource)
}
