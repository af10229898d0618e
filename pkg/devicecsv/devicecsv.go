// Package devicecsv imports and exports device tables as CSV with one
// canonical header row per table. Columns are matched by header name, in
// any order; unknown columns are ignored.
package devicecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/edp1096/spkline/pkg/catalog"
)

var ErrMissingColumn = errors.New("missing required column")

type Kind string

const (
	Speakers   Kind = "speakers"
	Cables     Kind = "cables"
	Amplifiers Kind = "amplifiers"
)

var (
	speakerColumns = []string{"id", "brand", "model", "impedance", "z_min", "wattage_rms", "wattage_peak", "max_spl", "taps", "type", "category"}
	cableColumns   = []string{"id", "brand", "model", "resistance", "capacitance", "inductance"}
	ampColumns     = []string{
		"id", "brand", "model", "df", "df_rated_at", "min_load", "min_load_bridge",
		"watt_8", "watt_4", "watt_2", "watt_bridge_8", "watt_bridge_4", "watt_100v",
		"max_voltage_peak", "channels_lowz", "channels_100v",
	}

	required = map[Kind][]string{
		Speakers:   {"id", "impedance"},
		Cables:     {"id", "resistance"},
		Amplifiers: {"id"},
	}
)

func Columns(kind Kind) []string {
	switch kind {
	case Speakers:
		return speakerColumns
	case Cables:
		return cableColumns
	case Amplifiers:
		return ampColumns
	}
	return nil
}

// row is one CSV record addressed by header name.
type row struct {
	line   int
	cols   map[string]int
	fields []string
	err    error
}

func (r *row) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r *row) num(name string) float64 {
	s := r.str(name)
	if s == "" || r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = fmt.Errorf("line %d column %s: %w", r.line, name, err)
	}
	return v
}

func (r *row) count(name string) int {
	return int(r.num(name))
}

func (r *row) optional(name string) *float64 {
	if r.str(name) == "" {
		return nil
	}
	v := r.num(name)
	return &v
}

// taps are separated by ';' or '/' inside one cell, e.g. "30;15;7.5".
func (r *row) taps(name string) []float64 {
	s := r.str(name)
	if s == "" {
		return nil
	}
	var out []float64
	for _, part := range strings.FieldsFunc(s, func(c rune) bool { return c == ';' || c == '/' }) {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "W"))
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			if r.err == nil {
				r.err = fmt.Errorf("line %d column %s: %w", r.line, name, err)
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

// Import reads one table of the given kind into db, replacing records with
// the same id, and returns the number of records read. Rows without an id
// are skipped. Nothing is written when any row fails to parse.
func Import(r io.Reader, kind Kind, db *catalog.Database) (int, error) {
	if Columns(kind) == nil {
		return 0, fmt.Errorf("unknown device table %q", kind)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required[kind] {
		if _, ok := cols[name]; !ok {
			return 0, fmt.Errorf("%s table: %q: %w", kind, name, ErrMissingColumn)
		}
	}

	staged := catalog.NewDatabase()
	count := 0
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reading line %d: %w", line, err)
		}
		rec := &row{line: line, cols: cols, fields: fields}
		if rec.str("id") == "" {
			continue
		}
		if err := stage(rec, kind, staged); err != nil {
			return 0, err
		}
		count++
	}
	if err := staged.Validate(); err != nil {
		return 0, err
	}

	db.Merge(staged)
	return count, nil
}

func stage(r *row, kind Kind, db *catalog.Database) error {
	switch kind {
	case Speakers:
		db.PutSpeaker(&catalog.Speaker{
			ID:          r.str("id"),
			Brand:       r.str("brand"),
			Model:       r.str("model"),
			Impedance:   r.num("impedance"),
			ZMin:        r.num("z_min"),
			WattageRMS:  r.num("wattage_rms"),
			WattagePeak: r.num("wattage_peak"),
			MaxSPL:      r.num("max_spl"),
			Taps:        r.taps("taps"),
			Type:        catalog.SpeakerType(r.str("type")),
			Category:    r.str("category"),
		})
	case Cables:
		db.PutCable(&catalog.Cable{
			ID:          r.str("id"),
			Brand:       r.str("brand"),
			Model:       r.str("model"),
			Resistance:  r.num("resistance"),
			Capacitance: r.num("capacitance"),
			Inductance:  r.optional("inductance"),
		})
	case Amplifiers:
		db.PutAmplifier(&catalog.Amplifier{
			ID:             r.str("id"),
			Brand:          r.str("brand"),
			Model:          r.str("model"),
			DF:             r.num("df"),
			DFRatedAt:      r.num("df_rated_at"),
			MinLoad:        r.num("min_load"),
			MinLoadBridge:  r.num("min_load_bridge"),
			Watt8:          r.num("watt_8"),
			Watt4:          r.num("watt_4"),
			Watt2:          r.num("watt_2"),
			WattBridge8:    r.num("watt_bridge_8"),
			WattBridge4:    r.num("watt_bridge_4"),
			Watt100V:       r.num("watt_100v"),
			MaxVoltagePeak: r.num("max_voltage_peak"),
			ChannelsLowZ:   r.count("channels_lowz"),
			ChannelsCV:     r.count("channels_100v"),
		})
	}
	return r.err
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Export writes one table of db with the canonical header, sorted by id.
func Export(w io.Writer, kind Kind, db *catalog.Database) error {
	cols := Columns(kind)
	if cols == nil {
		return fmt.Errorf("unknown device table %q", kind)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}

	for _, id := range ids(kind, db) {
		var rec []string
		switch kind {
		case Speakers:
			s, ok := db.Speaker(id)
			if !ok {
				continue
			}
			taps := make([]string, len(s.Taps))
			for i, t := range s.Taps {
				taps[i] = format(t)
			}
			rec = []string{s.ID, s.Brand, s.Model, format(s.Impedance), format(s.ZMin), format(s.WattageRMS),
				format(s.WattagePeak), format(s.MaxSPL), strings.Join(taps, ";"), string(s.Type), s.Category}
		case Cables:
			c, ok := db.Cable(id)
			if !ok {
				continue
			}
			ind := ""
			if c.Inductance != nil {
				ind = format(*c.Inductance)
			}
			rec = []string{c.ID, c.Brand, c.Model, format(c.Resistance), format(c.Capacitance), ind}
		case Amplifiers:
			a, ok := db.Amplifier(id)
			if !ok {
				continue
			}
			rec = []string{a.ID, a.Brand, a.Model, format(a.DF), format(a.DFRatedAt), format(a.MinLoad),
				format(a.MinLoadBridge), format(a.Watt8), format(a.Watt4), format(a.Watt2), format(a.WattBridge8),
				format(a.WattBridge4), format(a.Watt100V), format(a.MaxVoltagePeak),
				strconv.Itoa(a.ChannelsLowZ), strconv.Itoa(a.ChannelsCV)}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ids(kind Kind, db *catalog.Database) []string {
	if db == nil {
		return nil
	}
	var out []string
	switch kind {
	case Speakers:
		for id := range db.Speakers {
			out = append(out, id)
		}
	case Cables:
		return db.CableIDs()
	case Amplifiers:
		for id := range db.Amplifiers {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
