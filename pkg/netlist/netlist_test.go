package netlist

import (
	"testing"

	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1k", 1e3},
		{"4.7", 4.7},
		{"2meg", 2e6},
		{"10u", 10e-6},
		{"12uH", 12e-6},
		{"1e-09", 1e-9},
		{"28.284271247461902", 28.284271247461902},
		{"3mOhm", 3e-3},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, tt.want*1e-12, tt.in)
	}

	_, err := ParseValue("abc")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	input := `* two speakers
VAMP out 0 AC 28.28 0
RC_L-1 out j_L-1 0.25 ; loop resistance
RS_L-1 j_L-1 0 8
RC_L-1.1 j_L-1 m_L-1.1
+ 0.5
LC_L-1.1 m_L-1.1 j_L-1.1 12u
RS_L-1.1 j_L-1.1 0 8
.freq 1k 10k
.end
`
	nd, err := Parse(input)
	require.NoError(t, err)

	assert.Equal(t, "two speakers", nd.Title)
	require.Len(t, nd.Elements, 6)
	assert.Equal(t, []float64{1000, 10000}, nd.Frequencies)

	assert.Equal(t, "V", nd.Elements[0].Type)
	assert.Equal(t, 28.28, nd.Elements[0].Value)
	assert.Equal(t, 0.5, nd.Elements[3].Value)
	assert.Equal(t, []string{"j_L-1", "m_L-1.1"}, nd.Elements[3].Nodes)
	assert.InDelta(t, 12e-6, nd.Elements[4].Value, 1e-18)
	assert.Len(t, nd.Nodes, 5)
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{
		"* t\nC1 a 0 1u\n",
		"* t\nR1 a 0\n",
		"* t\nR1 a 0 -4\n",
		"* t\nV1 a 0 DC 5\n",
		"* t\n.tran 1u 1m\n",
		"* t\n.freq 0\n",
	} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func testTree() (*network.Node, *network.Reducer) {
	db := catalog.NewDatabase()
	db.PutSpeaker(&catalog.Speaker{ID: "spk", Impedance: 8, ZMin: 6.4})
	db.PutCable(&catalog.Cable{ID: "cab", Resistance: 12.1})
	zero := 0.0
	db.PutCable(&catalog.Cable{ID: "flat", Resistance: 10, Inductance: &zero})

	root := &network.Node{ID: "L-1", SpeakerID: "spk", CableID: "flat", Length: 10, Children: []*network.Node{
		{ID: "L-1.1", ParentID: "L-1", SpeakerID: "spk", CableID: "cab", Length: 20},
		{ID: "L-1.2", ParentID: "L-1", SpeakerID: "missing", CableID: "cab", Length: 5, Children: []*network.Node{
			{ID: "L-1.2.1", ParentID: "L-1.2", SpeakerID: "spk", CableID: "cab", Length: 5},
		}},
	}}
	return root, network.NewReducer(db, 20)
}

func TestFromTree(t *testing.T) {
	root, r := testTree()
	nd, err := FromTree(root, r, Source{Voltage: 40, OutputOhm: 0.08}, 1000, 10000)
	require.NoError(t, err)

	byName := make(map[string]Element)
	for _, e := range nd.Elements {
		byName[e.Name] = e
	}

	assert.Equal(t, []string{"amp", "0"}, byName["VAMP"].Nodes)
	assert.Equal(t, 0.08, byName["RAMP"].Value)

	assert.InDelta(t, 0.2, byName["RC_L-1"].Value, 1e-12)
	assert.Equal(t, []string{"out", "j_L-1"}, byName["RC_L-1"].Nodes)
	assert.NotContains(t, byName, "LC_L-1")
	assert.InDelta(t, 6.4, byName["RS_L-1"].Value, 1e-12)

	assert.Equal(t, []string{"j_L-1", "m_L-1.1"}, byName["RC_L-1.1"].Nodes)
	assert.InDelta(t, 0.6*40/1e6, byName["LC_L-1.1"].Value, 1e-15)

	assert.Contains(t, byName, "RC_L-1.2")
	assert.NotContains(t, byName, "RS_L-1.2", "unknown speaker leaves the tap open")
	assert.NotContains(t, byName, "RC_L-1.2.1")
	assert.NotContains(t, byName, "RS_L-1.2.1")
}

func TestFromTree_RoundTrip(t *testing.T) {
	root, r := testTree()
	nd, err := FromTree(root, r, Source{Voltage: 28.284271247461902}, 1000, 10000)
	require.NoError(t, err)

	parsed, err := Parse(nd.String())
	require.NoError(t, err)

	assert.Equal(t, nd.Title, parsed.Title)
	assert.Equal(t, nd.Frequencies, parsed.Frequencies)
	require.Len(t, parsed.Elements, len(nd.Elements))
	for i, e := range nd.Elements {
		assert.Equal(t, e.Name, parsed.Elements[i].Name)
		assert.Equal(t, e.Nodes, parsed.Elements[i].Nodes)
		assert.Equal(t, e.Value, parsed.Elements[i].Value, e.Name)
	}
}

func TestFromTree_RejectsBrokenTrees(t *testing.T) {
	root, r := testTree()
	root.Children = append(root.Children, nil)
	_, err := FromTree(root, r, Source{Voltage: 10})
	assert.Error(t, err)

	root, r = testTree()
	root.Children[1].ID = "L-1.1"
	_, err = FromTree(root, r, Source{Voltage: 10})
	assert.Error(t, err)
}

func TestCreateDevice(t *testing.T) {
	nd, err := Parse("* t\nV1 a 0 AC 10 90\nR1 a b 4\nL1 b 0 1m\n")
	require.NoError(t, err)

	types := []string{"V", "R", "L"}
	for i, e := range nd.Elements {
		dev, err := CreateDevice(e)
		require.NoError(t, err)
		assert.Equal(t, types[i], dev.GetType())
		assert.Equal(t, e.Name, dev.GetName())
	}
}
