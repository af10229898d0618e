// Package device holds the lumped elements a wiring tree is expanded into
// for nodal analysis, and their small-signal matrix stamps.
package device

import (
	"github.com/edp1096/spkline/pkg/matrix"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error
	GetValue() float64
	SetNodes(nodes []int)
}

// BranchDevice adds an extra current unknown to the system.
type BranchDevice interface {
	Device
	BranchIndex() int
	SetBranchIndex(idx int)
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

type CircuitStatus struct {
	Frequency float64 // Hz
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func NewBaseDevice(name string, value float64, nodeNames []string) BaseDevice {
	return BaseDevice{
		Name:      name,
		Value:     value,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
	}
}

// stampAdmittance loads a two-terminal admittance between n1 and n2.
// Node 0 is ground and is never written.
func stampAdmittance(m matrix.DeviceMatrix, n1, n2 int, g, b float64) {
	if n1 != 0 {
		m.AddComplexElement(n1, n1, g, b)
		if n2 != 0 {
			m.AddComplexElement(n1, n2, -g, -b)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			m.AddComplexElement(n2, n1, -g, -b)
		}
		m.AddComplexElement(n2, n2, g, b)
	}
}
