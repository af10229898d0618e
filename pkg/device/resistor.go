package device

import (
	"fmt"

	"github.com/edp1096/spkline/internal/consts"
	"github.com/edp1096/spkline/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

// NewResistor floors the value at consts.MinBranchResistance so that
// zero-length cable runs stay solvable.
func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	if value < consts.MinBranchResistance {
		value = consts.MinBranchResistance
	}
	return &Resistor{BaseDevice: NewBaseDevice(name, value, nodeNames)}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}
	stampAdmittance(matrix, r.Nodes[0], r.Nodes[1], 1.0/r.Value, 0)
	return nil
}
