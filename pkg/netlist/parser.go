// Package netlist reads and writes SPICE-style descriptions of a wiring
// tree expanded into resistors, inductors and one AC source.
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/spkline/pkg/device"
)

type NetlistData struct {
	Title       string
	Elements    []Element      // Circuit elements
	Nodes       map[string]int // Node name and first-seen order
	Frequencies []float64      // .freq check points
}

type Element struct {
	Type   string            // Part type (R, L, V)
	Name   string            // Part name
	Nodes  []string          // Node names
	Value  float64           // Part value
	Params map[string]string // Parameter values
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valueRe      = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGKkmunpf])?(?:s|Hz|H|V|Ohm)?$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{Nodes: make(map[string]int)}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var currentLine string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Inline comment
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if len(line) == 0 || strings.HasPrefix(line, "*") {
			continue
		}

		if strings.HasPrefix(line, "+") { // Line continue
			if currentLine != "" {
				currentLine += " " + strings.TrimSpace(line[1:])
			}
			continue
		}

		if currentLine != "" {
			if err := parseLine(netlistData, currentLine); err != nil {
				return nil, err
			}
		}
		currentLine = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}

	if currentLine != "" {
		if err := parseLine(netlistData, currentLine); err != nil {
			return nil, err
		}
	}

	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	line = whitespaceRe.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	netlistData.Elements = append(netlistData.Elements, *element)
	for _, node := range element.Nodes {
		if _, exists := netlistData.Nodes[node]; !exists {
			netlistData.Nodes[node] = len(netlistData.Nodes)
		}
	}
	return nil
}

// Parse .freq and .end
func parseDotOperator(netlistData *NetlistData, line string) error {
	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case ".end":
		return nil

	case ".freq":
		if len(fields) < 2 {
			return fmt.Errorf("insufficient .freq parameters")
		}
		for _, f := range fields[1:] {
			freq, err := ParseValue(f)
			if err != nil {
				return fmt.Errorf("invalid frequency: %w", err)
			}
			if freq <= 0 {
				return fmt.Errorf("frequency must be positive: %s", f)
			}
			netlistData.Frequencies = append(netlistData.Frequencies, freq)
		}
		return nil

	default:
		return fmt.Errorf("unsupported control line: %s", fields[0])
	}
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Nodes:  []string{fields[1], fields[2]},
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "V":
		return parseVoltageSource(elem, fields[3:])

	case "R", "L":
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s: expected two nodes and a value", elem.Name)
		}
		value, err := ParseValue(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		if value < 0 {
			return nil, fmt.Errorf("%s: negative value %g", elem.Name, value)
		}
		elem.Value = value
		return elem, nil

	default:
		return nil, fmt.Errorf("unsupported element type: %s", elem.Name)
	}
}

// V<name> n+ n- AC <magnitude> [phase]
func parseVoltageSource(elem *Element, words []string) (*Element, error) {
	if strings.ToUpper(words[0]) != "AC" {
		return nil, fmt.Errorf("%s: unsupported voltage source type %s", elem.Name, words[0])
	}
	if len(words) < 2 {
		return nil, fmt.Errorf("%s: missing AC magnitude", elem.Name)
	}
	magnitude, err := ParseValue(words[1])
	if err != nil {
		return nil, fmt.Errorf("%s: invalid AC magnitude: %w", elem.Name, err)
	}
	elem.Value = magnitude
	elem.Params["type"] = "ac"
	elem.Params["phase"] = "0"
	if len(words) > 2 {
		elem.Params["phase"] = words[2]
	}
	return elem, nil
}

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	if multiplier, ok := unitMap[matches[2]]; ok {
		num *= multiplier
	}
	return num, nil
}

func CreateDevice(elem Element) (device.Device, error) {
	switch elem.Type {
	case "R":
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value), nil

	case "L":
		return device.NewInductor(elem.Name, elem.Nodes, elem.Value), nil

	case "V":
		var phase float64
		if p, ok := elem.Params["phase"]; ok && p != "" {
			v, err := ParseValue(p)
			if err != nil {
				return nil, fmt.Errorf("invalid AC phase: %w", err)
			}
			phase = v
		}
		return device.NewACVoltageSource(elem.Name, elem.Nodes, elem.Value, phase), nil
	}
	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}
