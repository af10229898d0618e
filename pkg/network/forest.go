package network

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edp1096/spkline/pkg/catalog"
)

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrParentMismatch = errors.New("parent reference mismatch")
)

type Topology string

const (
	LowZ            Topology = "low_z"
	ConstantVoltage Topology = "constant_voltage"
)

// Prefix is the root id prefix used by the topology.
func (t Topology) Prefix() string {
	if t == ConstantVoltage {
		return "H"
	}
	return "L"
}

const (
	defaultRootLength  = 20.0
	defaultChildLength = 5.0
)

// Forest is the ordered list of root nodes of one topology.
type Forest struct {
	Topology Topology `json:"topology" yaml:"topology"`
	Roots    []*Node  `json:"roots" yaml:"roots"`
}

func NewForest(t Topology) *Forest {
	return &Forest{Topology: t}
}

// Walk visits every node depth first, parents before children, in daisy
// chain order. Returning false from fn stops descending into that subtree.
func (f *Forest) Walk(fn func(n *Node) bool) {
	if f == nil {
		return
	}
	for _, root := range f.Roots {
		walk(root, fn)
	}
}

func walk(n *Node, fn func(n *Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

// Subtree visits n and all of its descendants.
func Subtree(n *Node, fn func(n *Node)) {
	walk(n, func(n *Node) bool {
		fn(n)
		return true
	})
}

// Index builds an id lookup over the whole forest.
func (f *Forest) Index() map[string]*Node {
	idx := make(map[string]*Node)
	f.Walk(func(n *Node) bool {
		idx[n.ID] = n
		return true
	})
	return idx
}

// Find looks up one node, stopping at the first match. Build an Index when
// many lookups run against an unchanged forest.
func (f *Forest) Find(id string) (*Node, bool) {
	var found *Node
	f.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

func (f *Forest) Len() int {
	count := 0
	f.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// AddNode appends a node built from tmpl under parentID, or as a new root
// when parentID is empty. Empty template fields are inherited from the
// parent, or filled with the catalog defaults for roots.
func (f *Forest) AddNode(parentID string, tmpl Node) (*Node, error) {
	n := tmpl
	n.Children = nil
	n.Results = nil
	n.ParentID = parentID
	if n.ParallelCount <= 0 {
		n.ParallelCount = 1
	}

	if parentID == "" {
		n.ID = fmt.Sprintf("%s-%d", f.Topology.Prefix(), nextNumber(f.Roots)+1)
		if n.SpeakerID == "" {
			n.SpeakerID = catalog.DefaultSpeakerID
		}
		if n.CableID == "" {
			n.CableID = catalog.DefaultCableID
		}
		if n.Length <= 0 {
			n.Length = defaultRootLength
		}
		f.Roots = append(f.Roots, &n)
		return &n, nil
	}

	parent, ok := f.Find(parentID)
	if !ok {
		return nil, fmt.Errorf("add under %q: %w", parentID, ErrNodeNotFound)
	}
	n.ID = fmt.Sprintf("%s.%d", parent.ID, nextNumber(parent.Children)+1)
	if n.SpeakerID == "" {
		n.SpeakerID = parent.SpeakerID
	}
	if n.CableID == "" {
		n.CableID = parent.CableID
	}
	if n.TapPower == 0 {
		n.TapPower = parent.TapPower
	}
	if n.Length <= 0 {
		n.Length = defaultChildLength
	}
	// Amplifier assignment belongs to roots only.
	n.AmpInstanceID = ""
	n.AmpChannel = 0
	n.Bridge = false

	parent.Children = append(parent.Children, &n)
	return &n, nil
}

// nextNumber returns the highest trailing number among sibling ids.
func nextNumber(siblings []*Node) int {
	highest := 0
	for _, s := range siblings {
		if s == nil {
			continue
		}
		seg := s.ID
		if i := strings.LastIndexByte(seg, '.'); i >= 0 {
			seg = seg[i+1:]
		}
		if i := strings.IndexByte(seg, '-'); i >= 0 {
			seg = seg[i+1:]
		}
		if num, err := strconv.Atoi(seg); err == nil && num > highest {
			highest = num
		}
	}
	return highest
}

// DeleteNode removes the node and its entire subtree. It returns the number
// of nodes removed.
func (f *Forest) DeleteNode(id string) (int, error) {
	var removed int
	var remove func(list []*Node) ([]*Node, bool)
	remove = func(list []*Node) ([]*Node, bool) {
		for i, n := range list {
			if n != nil && n.ID == id {
				Subtree(n, func(*Node) { removed++ })
				return append(list[:i:i], list[i+1:]...), true
			}
		}
		for _, n := range list {
			if n == nil {
				continue
			}
			if kids, ok := remove(n.Children); ok {
				n.Children = kids
				return list, true
			}
		}
		return list, false
	}

	roots, ok := remove(f.Roots)
	if !ok {
		return 0, fmt.Errorf("delete %q: %w", id, ErrNodeNotFound)
	}
	f.Roots = roots
	return removed, nil
}

// Validate reports stored parent references that disagree with the actual
// tree structure. Such references are tolerated by the engine.
func (f *Forest) Validate() error {
	idx := f.Index()
	var errs []error
	for _, root := range f.Roots {
		if root == nil {
			continue
		}
		if root.ParentID != "" {
			errs = append(errs, fmt.Errorf("root %q references %q: %w", root.ID, root.ParentID, ErrParentMismatch))
		}
		Subtree(root, func(n *Node) {
			for _, c := range n.Children {
				if c == nil || c.ParentID == n.ID {
					continue
				}
				if _, ok := idx[c.ParentID]; !ok {
					errs = append(errs, fmt.Errorf("node %q references unknown %q, owned by %q: %w", c.ID, c.ParentID, n.ID, ErrParentMismatch))
					continue
				}
				errs = append(errs, fmt.Errorf("node %q references %q, owned by %q: %w", c.ID, c.ParentID, n.ID, ErrParentMismatch))
			}
		})
	}
	return errors.Join(errs...)
}

// ClearResults drops every computed result.
func (f *Forest) ClearResults() {
	f.Walk(func(n *Node) bool {
		n.Results = nil
		return true
	})
}
