// Package amplifier tracks the amplifiers placed in a project rack and
// derives the power and drive voltage each channel delivers into a load.
package amplifier

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/edp1096/spkline/pkg/catalog"
)

var (
	ErrInstanceNotFound  = errors.New("amplifier instance not found")
	ErrChannelInUse      = errors.New("amplifier channel in use")
	ErrChannelOutOfRange = errors.New("amplifier channel out of range")
)

// Instance is one physical amplifier of a catalog model.
type Instance struct {
	ID           string `json:"id" yaml:"id"`
	ModelID      string `json:"model_id" yaml:"model_id"`
	ChannelsUsed []int  `json:"channels_used,omitempty" yaml:"channels_used,omitempty"`
}

func (in *Instance) inUse(ch int) bool {
	for _, used := range in.ChannelsUsed {
		if used == ch {
			return true
		}
	}
	return false
}

// Rack holds the amplifier instances of a project keyed by instance id.
type Rack struct {
	Instances map[string]*Instance `json:"instances" yaml:"instances"`
}

func NewRack() *Rack {
	return &Rack{Instances: make(map[string]*Instance)}
}

// Add places a new instance of modelID in the rack as "A-<n>".
func (r *Rack) Add(modelID string) *Instance {
	if r.Instances == nil {
		r.Instances = make(map[string]*Instance)
	}
	n := len(r.Instances) + 1
	id := "A-" + strconv.Itoa(n)
	for r.Instances[id] != nil {
		n++
		id = "A-" + strconv.Itoa(n)
	}
	in := &Instance{ID: id, ModelID: modelID}
	r.Instances[id] = in
	return in
}

func (r *Rack) Get(id string) (*Instance, bool) {
	if r == nil || id == "" {
		return nil, false
	}
	in, ok := r.Instances[id]
	return in, ok && in != nil
}

// Model resolves an instance to its catalog amplifier.
func (r *Rack) Model(db *catalog.Database, id string) (*catalog.Amplifier, bool) {
	in, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	return db.Amplifier(in.ModelID)
}

// Remove takes an instance out of the rack.
func (r *Rack) Remove(id string) error {
	if _, ok := r.Get(id); !ok {
		return fmt.Errorf("remove %q: %w", id, ErrInstanceNotFound)
	}
	delete(r.Instances, id)
	return nil
}

func slots(ch int, bridge bool) []int {
	if bridge {
		return []int{ch, ch + 1}
	}
	return []int{ch}
}

// Assign marks a channel as used. Bridged outputs take ch and ch+1. A
// limit of zero or less disables the range check.
func (r *Rack) Assign(id string, ch int, bridge bool, limit int) error {
	in, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("assign %s ch%d: %w", id, ch, ErrInstanceNotFound)
	}
	want := slots(ch, bridge)
	for _, s := range want {
		if s < 1 || (limit > 0 && s > limit) {
			return fmt.Errorf("assign %s ch%d (of %d): %w", id, s, limit, ErrChannelOutOfRange)
		}
	}
	for _, s := range want {
		if in.inUse(s) {
			return fmt.Errorf("assign %s ch%d: %w", id, s, ErrChannelInUse)
		}
	}
	in.ChannelsUsed = append(in.ChannelsUsed, want...)
	sort.Ints(in.ChannelsUsed)
	return nil
}

// Release frees the channels taken by a previous Assign.
func (r *Rack) Release(id string, ch int, bridge bool) {
	in, ok := r.Get(id)
	if !ok {
		return
	}
	free := slots(ch, bridge)
	kept := in.ChannelsUsed[:0]
	for _, used := range in.ChannelsUsed {
		if used != free[0] && (len(free) == 1 || used != free[1]) {
			kept = append(kept, used)
		}
	}
	in.ChannelsUsed = kept
}

// ResetChannels forgets every channel assignment.
func (r *Rack) ResetChannels() {
	if r == nil {
		return
	}
	for _, in := range r.Instances {
		in.ChannelsUsed = nil
	}
}

// IDs returns instance ids in rack order (A-1, A-2, ... A-10).
func (r *Rack) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Instances))
	for id := range r.Instances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, ei := strconv.Atoi(strings.TrimPrefix(ids[i], "A-"))
		nj, ej := strconv.Atoi(strings.TrimPrefix(ids[j], "A-"))
		if ei == nil && ej == nil && ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Channels returns the channel count of a model on the given kind of line.
func Channels(a *catalog.Amplifier, constantVoltage bool) int {
	if a == nil {
		return 0
	}
	if constantVoltage {
		return a.ChannelsCV
	}
	return a.ChannelsLowZ
}
