package device

import (
	"fmt"
	"math"

	"github.com/edp1096/spkline/pkg/matrix"
)

// Inductor is the series inductance of a cable run, in henries.
type Inductor struct {
	BaseDevice
}

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{BaseDevice: NewBaseDevice(name, value, nodeNames)}
}

func (l *Inductor) GetType() string { return "L" }

// Stamp loads Y = 1/(jwL) = -j/(wL).
func (l *Inductor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(l.Nodes) != 2 {
		return fmt.Errorf("inductor %s: requires exactly 2 nodes", l.Name)
	}
	if l.Value <= 0 {
		return fmt.Errorf("inductor %s: non-positive inductance %g", l.Name, l.Value)
	}
	if status.Frequency <= 0 {
		return fmt.Errorf("inductor %s: frequency must be positive", l.Name)
	}
	omega := 2 * math.Pi * status.Frequency
	stampAdmittance(matrix, l.Nodes[0], l.Nodes[1], 0, -1/(omega*l.Value))
	return nil
}
