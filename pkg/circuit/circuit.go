// Package circuit assembles netlist elements into a nodal system and solves
// it at a single frequency.
package circuit

import (
	"fmt"
	"sort"

	"github.com/edp1096/spkline/pkg/device"
	"github.com/edp1096/spkline/pkg/matrix"
	"github.com/edp1096/spkline/pkg/netlist"
)

type Circuit struct {
	name      string
	nodeMap   map[string]int
	branchMap map[string]int
	devices   []device.Device
	numNodes  int
	matrix    *matrix.CircuitMatrix
	Status    *device.CircuitStatus
}

func New(name string) *Circuit {
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		devices:   make([]device.Device, 0),
		Status:    &device.CircuitStatus{},
	}
}

func isGround(name string) bool {
	return name == "0" || name == "gnd"
}

func (c *Circuit) AssignNodeBranchMaps(elements []netlist.Element) error {
	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				continue
			}
			if _, exists := c.nodeMap[nodeName]; !exists {
				idx := len(c.nodeMap) + 1
				c.nodeMap[nodeName] = idx
			}
		}
	}
	if len(c.nodeMap) == 0 {
		return fmt.Errorf("circuit %s: no nodes besides ground", c.name)
	}

	branchStart := len(c.nodeMap) + 1
	for _, elem := range elements {
		if elem.Type == "V" {
			if _, dup := c.branchMap[elem.Name]; dup {
				return fmt.Errorf("duplicate source %s", elem.Name)
			}
			c.branchMap[elem.Name] = branchStart
			branchStart++
		}
	}

	c.numNodes = len(c.nodeMap)
	return nil
}

func (c *Circuit) CreateMatrix() error {
	matrixSize := len(c.nodeMap) + len(c.branchMap)
	m, err := matrix.NewMatrix(matrixSize)
	if err != nil {
		return err
	}
	c.matrix = m
	return nil
}

func (c *Circuit) SetupDevices(elements []netlist.Element) error {
	for _, elem := range elements {
		dev, err := netlist.CreateDevice(elem)
		if err != nil {
			return fmt.Errorf("creating device %s: %w", elem.Name, err)
		}

		// Node index
		nodeIndices := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				nodeIndices[i] = 0
				continue
			}
			nodeIndices[i] = c.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		if b, ok := dev.(device.BranchDevice); ok {
			b.SetBranchIndex(c.branchMap[elem.Name])
		}

		c.devices = append(c.devices, dev)
	}
	return nil
}

func (c *Circuit) Stamp(status *device.CircuitStatus) error {
	for _, dev := range c.devices {
		if err := dev.Stamp(c.matrix, status); err != nil {
			return fmt.Errorf("stamping device %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

// SolveAt restamps every device for freq and solves the system.
func (c *Circuit) SolveAt(freq float64) error {
	if c.matrix == nil {
		return fmt.Errorf("circuit %s: matrix not created", c.name)
	}
	c.Status = &device.CircuitStatus{Frequency: freq}
	c.matrix.Clear()
	if err := c.Stamp(c.Status); err != nil {
		return err
	}
	if err := c.matrix.Solve(); err != nil {
		return fmt.Errorf("solving at %g Hz: %w", freq, err)
	}
	return nil
}

func (c *Circuit) GetMatrix() *matrix.CircuitMatrix {
	return c.matrix
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

// NodeNames returns the non-ground nodes in matrix order.
func (c *Circuit) NodeNames() []string {
	names := make([]string, 0, len(c.nodeMap))
	for name := range c.nodeMap {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return c.nodeMap[names[i]] < c.nodeMap[names[j]]
	})
	return names
}

// NodeVoltage returns the phasor voltage of a node from the last solve.
// Ground and unknown nodes read as zero.
func (c *Circuit) NodeVoltage(name string) complex128 {
	idx, ok := c.nodeMap[name]
	if !ok || c.matrix == nil {
		return 0
	}
	re, im := c.matrix.GetComplexSolution(idx)
	return complex(re, im)
}

// SourceCurrent returns the current delivered by a voltage source.
func (c *Circuit) SourceCurrent(name string) complex128 {
	idx, ok := c.branchMap[name]
	if !ok || c.matrix == nil {
		return 0
	}
	re, im := c.matrix.GetComplexSolution(idx)
	return -complex(re, im)
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
	}
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

// Build runs the node mapping, matrix creation and device setup for a
// parsed netlist.
func Build(name string, nd *netlist.NetlistData) (*Circuit, error) {
	ckt := New(name)
	if err := ckt.AssignNodeBranchMaps(nd.Elements); err != nil {
		return nil, err
	}
	if err := ckt.CreateMatrix(); err != nil {
		return nil, err
	}
	if err := ckt.SetupDevices(nd.Elements); err != nil {
		ckt.Destroy()
		return nil, err
	}
	return ckt, nil
}
