package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/spkline/pkg/catalog"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedAndLoad(t *testing.T) {
	s := openMemory(t)

	seeded, err := s.Seed()
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.Seed()
	require.NoError(t, err)
	assert.False(t, seeded, "seeding only fills an empty library")

	db, err := s.Load()
	require.NoError(t, err)
	want := catalog.Default()
	assert.Equal(t, want.Speakers, db.Speakers)
	assert.Equal(t, want.Cables, db.Cables)
	assert.Equal(t, want.Amplifiers, db.Amplifiers)
}

func TestSaveUpserts(t *testing.T) {
	s := openMemory(t)

	db := catalog.NewDatabase()
	db.PutCable(&catalog.Cable{ID: "c1", Brand: "Acme", Resistance: 7.41})
	require.NoError(t, s.Save(db))

	db.PutCable(&catalog.Cable{ID: "c1", Brand: "Acme", Resistance: 4.61})
	db.PutSpeaker(&catalog.Speaker{ID: "s1", Impedance: 8})
	require.NoError(t, s.Save(db))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.Load()
	require.NoError(t, err)
	c, ok := got.Cable("c1")
	require.True(t, ok)
	assert.Equal(t, 4.61, c.Resistance)
	assert.Nil(t, c.Inductance)
	sp, _ := got.Speaker("s1")
	assert.Nil(t, sp.Taps)
}

func TestDelete(t *testing.T) {
	s := openMemory(t)
	_, err := s.Seed()
	require.NoError(t, err)

	require.NoError(t, s.Delete("cables", catalog.DefaultCableID))
	assert.ErrorIs(t, s.Delete("cables", catalog.DefaultCableID), ErrNotFound)
	assert.Error(t, s.Delete("racks", "x"))

	db, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, db.Cables, 2)
}
