package network

import (
	"testing"

	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB() *catalog.Database {
	db := catalog.NewDatabase()
	db.PutSpeaker(&catalog.Speaker{ID: "spk8", Impedance: 8, ZMin: 6.4, WattageRMS: 100})
	db.PutSpeaker(&catalog.Speaker{ID: "spk16", Impedance: 16, WattageRMS: 60})
	db.PutSpeaker(&catalog.Speaker{ID: "broken", Impedance: 0, WattageRMS: 10})
	db.PutCable(&catalog.Cable{ID: "c15", Resistance: 12.1})
	db.PutCable(&catalog.Cable{ID: "c25", Resistance: 7.41})
	return db
}

func TestEffectiveImpedance_TwoSpeakersInParallel(t *testing.T) {
	r := NewReducer(testDB(), 20)

	root := &Node{ID: "L-1", SpeakerID: "spk8", CableID: "c15", Children: []*Node{
		{ID: "L-1.1", ParentID: "L-1", SpeakerID: "spk8", CableID: "c15"},
	}}
	z := r.EffectiveImpedance(root, false)
	assert.InDelta(t, 4.0, z.Real, 1e-12)
	assert.InDelta(t, 0.0, z.Imag, 1e-12)

	doubled := &Node{ID: "L-2", SpeakerID: "spk8", ParallelCount: 2}
	assert.InDelta(t, 4.0, r.EffectiveImpedance(doubled, false).Real, 1e-12)

	assert.InDelta(t, 3.2, r.EffectiveImpedance(doubled, true).Real, 1e-12)
}

func TestEffectiveImpedance_OpenLegs(t *testing.T) {
	r := NewReducer(testDB(), 20)

	hub := &Node{ID: "L-1", SpeakerID: "broken", Children: []*Node{
		{ID: "L-1.1", ParentID: "L-1", SpeakerID: "spk8"},
		{ID: "L-1.2", ParentID: "L-1", SpeakerID: "spk8"},
		{ID: "L-1.3", ParentID: "L-1", SpeakerID: "broken"},
	}}
	assert.InDelta(t, 4.0, r.EffectiveImpedance(hub, false).Real, 1e-12)

	empty := &Node{ID: "L-2", SpeakerID: "missing"}
	assert.True(t, r.EffectiveImpedance(empty, false).IsZero())
}

func TestEffectiveImpedance_UnknownSpeakerOpensBranch(t *testing.T) {
	r := NewReducer(testDB(), 20)

	root := &Node{ID: "L-1", SpeakerID: "spk8", Children: []*Node{
		{ID: "L-1.1", ParentID: "L-1", SpeakerID: "missing", Children: []*Node{
			{ID: "L-1.1.1", ParentID: "L-1.1", SpeakerID: "spk8"},
		}},
		{ID: "L-1.2", ParentID: "L-1", SpeakerID: "spk8"},
	}}
	assert.InDelta(t, 4.0, r.EffectiveImpedance(root, false).Real, 1e-12)
	assert.True(t, r.EffectiveImpedance(root.Children[0], false).IsZero())
	assert.False(t, r.HasSpeaker(root.Children[0]))
	assert.True(t, r.HasSpeaker(root))
}

func TestEffectiveImpedance_OrderIndependent(t *testing.T) {
	r := NewReducer(testDB(), 35)

	a := &Node{ID: "L-1.1", ParentID: "L-1", SpeakerID: "spk8", CableID: "c15", Length: 12}
	b := &Node{ID: "L-1.2", ParentID: "L-1", SpeakerID: "spk16", CableID: "c25", Length: 30, Children: []*Node{
		{ID: "L-1.2.1", ParentID: "L-1.2", SpeakerID: "spk8", CableID: "c15", Length: 4},
	}}
	c := &Node{ID: "L-1.3", ParentID: "L-1", SpeakerID: "spk16", CableID: "c15", Length: 50, UseCable2: true, Cable2ID: "c25", Length2: 10}

	orders := [][]*Node{{a, b, c}, {c, b, a}, {b, a, c}, {b, c, a}}
	root := &Node{ID: "L-1", SpeakerID: "spk8", CableID: "c15", Length: 10}
	root.Children = orders[0]
	want := r.EffectiveImpedance(root, true)

	for _, children := range orders[1:] {
		root.Children = children
		got := r.EffectiveImpedance(root, true)
		assert.InDelta(t, want.Real, got.Real, 1e-12)
		assert.InDelta(t, want.Imag, got.Imag, 1e-12)
	}
	assert.Greater(t, want.Imag, 0.0, "cable inductance shows up in the reduced load")
}

func TestSegmentImpedance_DisabledOrEmptyExtension(t *testing.T) {
	r := NewReducer(testDB(), 25)

	n := &Node{SpeakerID: "spk8", CableID: "c15", Length: 40}
	base := r.SegmentImpedance(n)

	n.UseCable2, n.Cable2ID, n.Length2 = true, "c25", 0
	assert.Equal(t, base, r.SegmentImpedance(n))

	n.Length2 = 10
	n.UseCable2 = false
	assert.Equal(t, base, r.SegmentImpedance(n))

	n.UseCable2 = true
	assert.Greater(t, r.SegmentImpedance(n).Real, base.Real)
}

func TestTotals(t *testing.T) {
	r := NewReducer(testDB(), 25)
	root := &Node{ID: "H-1", SpeakerID: "spk8", ParallelCount: 2, TapPower: 10, Children: []*Node{
		{ID: "H-1.1", SpeakerID: "spk16", TapPower: 5},
		{ID: "H-1.2", SpeakerID: "missing", TapPower: 2.5},
	}}
	assert.Equal(t, 260.0, r.TotalRMS(root))
	assert.Equal(t, 17.5, TotalTapWatts(root))
}

func TestForest_AddNode(t *testing.T) {
	f := NewForest(LowZ)

	r1, err := f.AddNode("", Node{})
	require.NoError(t, err)
	assert.Equal(t, "L-1", r1.ID)
	assert.Equal(t, catalog.DefaultSpeakerID, r1.SpeakerID)
	assert.Equal(t, catalog.DefaultCableID, r1.CableID)
	assert.Equal(t, 20.0, r1.Length)

	r1.SpeakerID = "spk16"
	c1, err := f.AddNode("L-1", Node{})
	require.NoError(t, err)
	assert.Equal(t, "L-1.1", c1.ID)
	assert.Equal(t, "L-1", c1.ParentID)
	assert.Equal(t, "spk16", c1.SpeakerID)
	assert.Equal(t, 5.0, c1.Length)

	c2, err := f.AddNode("L-1", Node{SpeakerID: "spk8", AmpInstanceID: "A-1"})
	require.NoError(t, err)
	assert.Equal(t, "L-1.2", c2.ID)
	assert.Equal(t, "spk8", c2.SpeakerID)
	assert.Empty(t, c2.AmpInstanceID)

	g, err := f.AddNode("L-1.2", Node{})
	require.NoError(t, err)
	assert.Equal(t, "L-1.2.1", g.ID)

	_, err = f.AddNode("L-9", Node{})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	cv := NewForest(ConstantVoltage)
	h, _ := cv.AddNode("", Node{TapPower: 10})
	assert.Equal(t, "H-1", h.ID)
	hc, _ := cv.AddNode("H-1", Node{})
	assert.Equal(t, 10.0, hc.TapPower)
}

func TestForest_IdsSkipPastGaps(t *testing.T) {
	f := NewForest(LowZ)
	f.Roots = []*Node{{ID: "L-1"}, {ID: "L-7", Children: []*Node{{ID: "L-7.3", ParentID: "L-7"}}}}

	n, err := f.AddNode("", Node{})
	require.NoError(t, err)
	assert.Equal(t, "L-8", n.ID)

	c, err := f.AddNode("L-7", Node{})
	require.NoError(t, err)
	assert.Equal(t, "L-7.4", c.ID)
}

func TestForest_DeleteNode(t *testing.T) {
	f := NewForest(LowZ)
	f.AddNode("", Node{})
	f.AddNode("", Node{})
	f.AddNode("L-1", Node{})
	f.AddNode("L-1.1", Node{})
	f.AddNode("L-1", Node{})
	require.Equal(t, 5, f.Len())

	removed, err := f.DeleteNode("L-1.1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, f.Len())

	root, ok := f.Find("L-1")
	require.True(t, ok)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "L-1.2", root.Children[0].ID)

	removed, err = f.DeleteNode("L-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	require.Len(t, f.Roots, 1)
	assert.Equal(t, "L-2", f.Roots[0].ID)

	_, err = f.DeleteNode("L-1")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestForest_IndexAndValidate(t *testing.T) {
	f := NewForest(LowZ)
	f.Roots = []*Node{{ID: "L-1", Children: []*Node{
		{ID: "L-1.1", ParentID: "L-1"},
		{ID: "L-1.2", ParentID: "L-5"},
	}}}

	idx := f.Index()
	assert.Len(t, idx, 3)
	assert.Same(t, f.Roots[0].Children[1], idx["L-1.2"])

	err := f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParentMismatch)
	assert.Contains(t, err.Error(), "L-1.2")
	assert.Contains(t, err.Error(), `unknown "L-5"`)

	f.Roots[0].Children[1].ParentID = "L-1"
	assert.NoError(t, f.Validate())

	var nilForest *Forest
	assert.Equal(t, 0, nilForest.Len())
}
