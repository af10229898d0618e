package main

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/spkline/internal/config"
	"github.com/edp1096/spkline/internal/logger"
	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/project"
	"github.com/edp1096/spkline/pkg/quality"
)

func testApp() *app {
	return &app{
		cfg: &config.Config{Calculation: analysis.DefaultSettings()},
		log: logger.Nop(),
	}
}

func writeProject(t *testing.T) string {
	t.Helper()
	p := project.New("cmd test")
	inst := p.Rack.Add(catalog.DefaultAmplifierID)
	root, err := p.LowZ.AddNode("", network.Node{})
	require.NoError(t, err)
	root.AmpInstanceID = inst.ID
	root.AmpChannel = 1
	_, err = p.LowZ.AddNode(root.ID, network.Node{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hall.yaml")
	require.NoError(t, p.Save(path))
	return path
}

func TestTopologyOf(t *testing.T) {
	assert.Equal(t, network.LowZ, topologyOf("L-1.2"))
	assert.Equal(t, network.ConstantVoltage, topologyOf("H-3"))
	assert.Equal(t, network.LowZ, topologyOf("HALL"))
}

func TestLoadProject_ProfileOverride(t *testing.T) {
	a := testApp()
	a.profile = quality.Speech

	p, in, err := a.loadProject(writeProject(t))
	require.NoError(t, err)
	assert.Equal(t, quality.Speech, p.Settings.QualityProfile)
	assert.Equal(t, quality.Speech, in.Settings.QualityProfile)
	assert.NotNil(t, in.DB)
}

func TestPrintCalc_ScheduleCSV(t *testing.T) {
	a := testApp()
	p, in, err := a.loadProject(writeProject(t))
	require.NoError(t, err)

	engine, err := a.engine()
	require.NoError(t, err)
	out, err := engine.Recompute(in)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printCalc(&buf, &calcOptions{format: "csv"}, p, out))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "L-1", records[1][1])
	assert.Equal(t, "L-1.1", records[2][1])
}

func TestPrintCalc_UnknownFormat(t *testing.T) {
	p := project.New("x")
	err := printCalc(&bytes.Buffer{}, &calcOptions{format: "xml"}, p, analysis.Output{})
	assert.Error(t, err)
}

func TestRunCalc_WritesResults(t *testing.T) {
	a := testApp()
	path := writeProject(t)
	out := filepath.Join(t.TempDir(), "schedule.txt")

	require.NoError(t, runCalc(a, &calcOptions{format: "table", write: true, output: out}, path))

	p, err := project.Load(path)
	require.NoError(t, err)
	root, ok := p.LowZ.Find("L-1")
	require.True(t, ok)
	require.NotNil(t, root.Results)
	assert.Greater(t, root.Results.VoltageAtSpeaker, 0.0)
}
