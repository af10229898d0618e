package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/spkline/pkg/amplifier"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/quality"
)

func forests() (*network.Forest, *network.Forest) {
	lowZ := &network.Forest{Topology: network.LowZ, Roots: []*network.Node{{
		ID: "L-1", SpeakerID: "spk", ParallelCount: 2, CableID: "c15", Length: 20,
		UseCable2: true, Cable2ID: "c25", Length2: 5, AmpInstanceID: "A-1", AmpChannel: 1,
		Results: &network.Results{Status: quality.StatusOK, MinLoad: 3.5, VoltageAtSpeaker: 27.1, DropPercent: 4.2, DampingFactor: 12.5, HeadroomPercent: 40},
		Children: []*network.Node{{
			ID: "L-1.1", ParentID: "L-1", SpeakerID: "spk", CableID: "c15", Length: 10,
			Results: &network.Results{Status: quality.StatusWarning, Message: quality.MsgHighDrop, DropPercent: 6.1},
		}},
	}}}
	cv := &network.Forest{Topology: network.ConstantVoltage, Roots: []*network.Node{
		{ID: "H-1", SpeakerID: "spk", ParallelCount: 4, TapPower: 15, CableID: "c15", Length: 30},
	}}
	return lowZ, cv
}

func TestSchedule(t *testing.T) {
	rows := Schedule(forests())
	require.Len(t, rows, 3)

	assert.Equal(t, "L-1", rows[0].ID)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, "c25", rows[0].Cable2ID)
	assert.Equal(t, "A-1 ch1", rows[0].Amplifier)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Equal(t, quality.MsgHighDrop, rows[1].Results.Message)
	assert.Equal(t, network.ConstantVoltage, rows[2].Topology)
	assert.Equal(t, 1, rows[2].Count, "CV taps count single speakers")
	assert.Equal(t, 15.0, rows[2].TapPower)
	assert.Equal(t, quality.Status(""), rows[2].Results.Status, "never computed")
}

func TestWriteScheduleCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(&buf, Schedule(forests())))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, scheduleHeader, recs[0])
	assert.Equal(t, "4.20", recs[1][13])
	assert.Equal(t, quality.MsgHighDrop, recs[2][18])
}

func TestWriteScheduleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScheduleTable(&buf, Schedule(forests())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "  L-1.1"))
	assert.Contains(t, lines[1], "40.00 %")
	assert.Contains(t, lines[2], "Warning ("+quality.MsgHighDrop+")")
}

func TestBOM(t *testing.T) {
	rack := amplifier.NewRack()
	rack.Add("amp-x")
	rack.Add("amp-x")
	rack.Add("amp-y")

	lowZ, cv := forests()
	items := BOM(rack, lowZ, cv)

	want := []Item{
		{Kind: "speaker", ID: "spk", Quantity: 4, Unit: "pcs"},
		{Kind: "cable", ID: "c15", Quantity: 60, Unit: "m"},
		{Kind: "cable", ID: "c25", Quantity: 5, Unit: "m"},
		{Kind: "amplifier", ID: "amp-x", Quantity: 2, Unit: "pcs"},
		{Kind: "amplifier", ID: "amp-y", Quantity: 1, Unit: "pcs"},
	}
	assert.Equal(t, want, items)

	var buf bytes.Buffer
	require.NoError(t, WriteBOMCSV(&buf, items))
	assert.Contains(t, buf.String(), "cable,c15,60,m\n")
}
