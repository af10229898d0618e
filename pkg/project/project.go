// Package project reads and writes project files: the wiring forests of both
// topologies, the amplifier rack, calculation settings and an optional
// embedded device database.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/spkline/pkg/amplifier"
	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
)

const Version = "3.0"

var ErrUnsupportedFormat = errors.New("unsupported project format")

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

type Info struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Date string `json:"date" yaml:"date"`
}

type Project struct {
	Version         string            `json:"version" yaml:"version"`
	Info            Info              `json:"info" yaml:"info"`
	Settings        analysis.Settings `json:"settings" yaml:"settings"`
	Rack            *amplifier.Rack   `json:"rack" yaml:"rack"`
	LowZ            *network.Forest   `json:"low_z" yaml:"low_z"`
	ConstantVoltage *network.Forest   `json:"constant_voltage" yaml:"constant_voltage"`
	Database        *catalog.Database `json:"database,omitempty" yaml:"database,omitempty"`
}

func New(name string) *Project {
	return &Project{
		Version: Version,
		Info: Info{
			ID:   uuid.NewString(),
			Name: name,
			Date: time.Now().Format(time.DateOnly),
		},
		Settings:        analysis.DefaultSettings(),
		Rack:            amplifier.NewRack(),
		LowZ:            network.NewForest(network.LowZ),
		ConstantVoltage: network.NewForest(network.ConstantVoltage),
	}
}

// normalize fills what older or hand-written files leave out and restores
// parent references from the tree structure.
func (p *Project) normalize() {
	if p.Version == "" {
		p.Version = Version
	}
	if p.Info.ID == "" {
		p.Info.ID = uuid.NewString()
	}
	defaults := analysis.DefaultSettings()
	if p.Settings.QualityProfile == "" {
		p.Settings.QualityProfile = defaults.QualityProfile
	}
	if p.Settings.LineVoltage <= 0 {
		p.Settings.LineVoltage = defaults.LineVoltage
	}
	if p.Rack == nil {
		p.Rack = amplifier.NewRack()
	}
	if p.LowZ == nil {
		p.LowZ = network.NewForest(network.LowZ)
	}
	p.LowZ.Topology = network.LowZ
	if p.ConstantVoltage == nil {
		p.ConstantVoltage = network.NewForest(network.ConstantVoltage)
	}
	p.ConstantVoltage.Topology = network.ConstantVoltage

	for _, f := range []*network.Forest{p.LowZ, p.ConstantVoltage} {
		for _, root := range f.Roots {
			relink(root, "")
		}
	}
}

func relink(n *network.Node, parentID string) {
	if n == nil {
		return
	}
	n.ParentID = parentID
	for _, c := range n.Children {
		relink(c, n.ID)
	}
}

func Decode(r io.Reader, format Format) (*Project, error) {
	p := &Project{}
	var err error
	switch format {
	case YAML:
		err = yaml.NewDecoder(r).Decode(p)
	case JSON:
		err = json.NewDecoder(r).Decode(p)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s project: %w", format, err)
	}
	p.normalize()
	return p, nil
}

func (p *Project) Encode(w io.Writer, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding yaml project: %w", err)
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding json project: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

func Load(path string) (*Project, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening project: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

func (p *Project) Save(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating project file: %w", err)
	}
	if err := p.Encode(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Library returns library with the embedded database merged over it.
// Neither input is modified.
func (p *Project) Library(library *catalog.Database) *catalog.Database {
	db := catalog.NewDatabase()
	db.Merge(library)
	db.Merge(p.Database)
	return db
}

// Input assembles a recompute input over the project's forests.
func (p *Project) Input(library *catalog.Database) analysis.Input {
	p.normalize()
	return analysis.Input{
		LowZ:            p.LowZ,
		ConstantVoltage: p.ConstantVoltage,
		DB:              p.Library(library),
		Rack:            p.Rack,
		Settings:        p.Settings,
	}
}

// SyncRack rebuilds channel usage from the roots' amplifier assignments.
// Conflicting or out-of-range assignments are returned joined; every other
// assignment is still recorded.
func (p *Project) SyncRack(library *catalog.Database) error {
	p.normalize()
	db := p.Library(library)
	p.Rack.ResetChannels()

	var errs []error
	for _, f := range []*network.Forest{p.LowZ, p.ConstantVoltage} {
		cv := f.Topology == network.ConstantVoltage
		for _, root := range f.Roots {
			if root == nil || root.AmpInstanceID == "" || root.AmpChannel <= 0 {
				continue
			}
			limit := 0
			if amp, ok := p.Rack.Model(db, root.AmpInstanceID); ok {
				limit = amplifier.Channels(amp, cv)
			}
			if err := p.Rack.Assign(root.AmpInstanceID, root.AmpChannel, root.Bridge && !cv, limit); err != nil {
				errs = append(errs, fmt.Errorf("root %s: %w", root.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
