package modifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreatsNonPositiveDurationAsPermanent(t *testing.T) {
	m := New(KindShield, 1, 0, "src")
	assert.True(t, m.IsPermanent())

	m = New(KindShield, 1, 2, "src")
	assert.False(t, m.IsPermanent())
	assert.Equal(t, 2, m.Duration)
}

func TestAddMergesSameKindAndSource(t *testing.T) {
	var s Set
	s = s.Add(New(KindTrophicShift, 1, 1, "a"))
	s = s.Add(New(KindTrophicShift, 2, 3, "a"))
	s = s.Add(New(KindTrophicShift, 1, 1, "b"))

	require.Len(t, s, 2)
	assert.Equal(t, 3, s[0].Magnitude)
	assert.Equal(t, 3, s[0].Duration)
	assert.Equal(t, 4, s.Total(KindTrophicShift))
}

func TestTickExpiresAtZero(t *testing.T) {
	s := Set{
		New(KindSuppressReady, 1, 1, "a"),
		New(KindShield, 1, 2, "b"),
		New(KindVictoryPoints, 2, Permanent, "c"),
	}

	kept, expired := s.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, KindSuppressReady, expired[0].Kind)
	require.Len(t, kept, 2)
	assert.Equal(t, 1, kept[0].Duration)

	kept, expired = kept.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, KindShield, expired[0].Kind)
	assert.True(t, kept.Has(KindVictoryPoints))
	assert.False(t, kept.Has(KindShield))
}

func TestRemoveAndCopy(t *testing.T) {
	s := Set{New(KindShield, 1, 2, "a"), New(KindTrophicShift, 1, 2, "a")}
	c := s.Copy()

	s, removed := s.Remove(KindShield)
	assert.True(t, removed)
	assert.False(t, s.Has(KindShield))
	assert.True(t, c.Has(KindShield), "copy must not share backing storage")

	_, removed = s.Remove(KindShield)
	assert.False(t, removed)

	s = s.RemoveFromSource("a")
	assert.Nil(t, s)
}
