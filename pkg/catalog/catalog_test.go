package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCableImpedance(t *testing.T) {
	c := &Cable{ID: "c", Resistance: 10, Inductance: inductance(0.5)}

	// 50 m loop = 100 m of conductor: 1 ohm, 50 uH.
	z := CableImpedance(c, 50, 1000, 20)
	assert.InDelta(t, 1.0, z.Real, 1e-12)
	assert.InDelta(t, 2*math.Pi*1000*50e-6, z.Imag, 1e-12)
}

func TestCableImpedance_DefaultInductance(t *testing.T) {
	c := &Cable{ID: "c", Resistance: 10}
	z := CableImpedance(c, 100, 1000, 20)
	assert.InDelta(t, 2*math.Pi*1000*(0.6*200/1e6), z.Imag, 1e-12)
}

func TestCableImpedance_ZeroLength(t *testing.T) {
	c := &Cable{ID: "c", Resistance: 12.1}
	assert.True(t, CableImpedance(c, 0, 1000, 40).IsZero())
	assert.True(t, CableImpedance(c, -3, 1000, 40).IsZero())
	assert.True(t, CableImpedance(nil, 10, 1000, 40).IsZero())
}

func TestCableImpedance_ThermalDeratingIsMonotonic(t *testing.T) {
	c := &Cable{ID: "c", Resistance: 7.41, Inductance: inductance(0.65)}
	base := CableImpedance(c, 30, 10000, 20)

	prev := base
	for temp := -10.0; temp <= 60; temp += 5 {
		z := CableImpedance(c, 30, 10000, temp)
		assert.Equal(t, base.Imag, z.Imag, "reactance must not depend on temperature")
		if temp > -10 {
			assert.Greater(t, z.Real, prev.Real)
		}
		prev = z
	}

	at20 := CableImpedance(c, 30, 10000, 20)
	assert.Equal(t, base.Real, at20.Real)
}

func TestSegmentImpedance(t *testing.T) {
	db := Default()

	primary := CableImpedance(db.Cables["Default Cable 2.5mm²"], 20, 1000, 25)
	both := db.SegmentImpedance(1000, 25,
		Run{CableID: "Default Cable 2.5mm²", Length: 20},
		Run{CableID: "Default Cable 1.5mm²", Length: 3},
	)
	assert.Greater(t, both.Real, primary.Real)

	withMissing := db.SegmentImpedance(1000, 25,
		Run{CableID: "Default Cable 2.5mm²", Length: 20},
		Run{CableID: "nope", Length: 3},
		Run{CableID: "Default Cable 1.5mm²", Length: 0},
	)
	assert.Equal(t, primary, withMissing)
}

func TestSegmentInductance(t *testing.T) {
	db := NewDatabase()
	db.PutCable(&Cable{ID: "a", Resistance: 10, Inductance: inductance(0.5)})
	db.PutCable(&Cable{ID: "b", Resistance: 10})

	l := db.SegmentInductance(Run{CableID: "a", Length: 50}, Run{CableID: "b", Length: 10}, Run{CableID: "x", Length: 10})
	assert.InDelta(t, 50e-6+12e-6, l, 1e-15)
	assert.Zero(t, CableInductance(db.Cables["a"], 0))
}

func TestLookups(t *testing.T) {
	db := Default()

	s, ok := db.Speaker(DefaultSpeakerID)
	require.True(t, ok)
	assert.Equal(t, 6.4, s.LoadImpedance(true))
	assert.Equal(t, 8.0, s.LoadImpedance(false))
	assert.True(t, s.HasTap(15))
	assert.True(t, s.Suits(Speaker100V))

	_, ok = db.Cable("missing")
	assert.False(t, ok)

	var nilDB *Database
	_, ok = nilDB.Amplifier(DefaultAmplifierID)
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	db := NewDatabase()
	db.Merge(Default())
	assert.Len(t, db.Cables, 3)
	assert.Equal(t, []string{"Default Cable 1.5mm²", "Default Cable 2.5mm²", "Default Cable 4.0mm²"}, db.CableIDs())
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	db := Default()
	db.PutSpeaker(&Speaker{ID: "broken", Impedance: 0})
	db.PutCable(&Cable{ID: "neg", Resistance: -1})
	err := db.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), `speaker "broken"`)
	assert.Contains(t, err.Error(), `cable "neg"`)
}
