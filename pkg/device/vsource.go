package device

import (
	"fmt"
	"math"

	"github.com/edp1096/spkline/pkg/matrix"
)

// VoltageSource is an ideal sinusoidal source; Value is the RMS magnitude.
type VoltageSource struct {
	BaseDevice
	acPhase   float64 // degrees
	branchIdx int
}

func NewACVoltageSource(name string, nodeNames []string, acMag, acPhase float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: NewBaseDevice(name, acMag, nodeNames),
		acPhase:    acPhase,
	}
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(v.Nodes) != 2 {
		return fmt.Errorf("voltage source %s: requires exactly 2 nodes", v.Name)
	}
	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx
	if bIdx <= 0 {
		return fmt.Errorf("voltage source %s: branch index not assigned", v.Name)
	}

	phaseRad := v.acPhase * math.Pi / 180.0
	voltageReal := v.Value * math.Cos(phaseRad)
	voltageImag := v.Value * math.Sin(phaseRad)

	// v1 - v2 = V; the branch unknown flows into the positive terminal
	if n1 != 0 {
		matrix.AddComplexElement(bIdx, n1, 1.0, 0.0)
		matrix.AddComplexElement(n1, bIdx, 1.0, 0.0)
	}
	if n2 != 0 {
		matrix.AddComplexElement(bIdx, n2, -1.0, 0.0)
		matrix.AddComplexElement(n2, bIdx, -1.0, 0.0)
	}

	matrix.AddComplexRHS(bIdx, voltageReal, voltageImag)
	return nil
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}
