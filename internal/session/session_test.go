package session

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/shortcut"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func sampleRace() RaceIdentity {
	return RaceIdentity{
		Date:       time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC),
		VenueName:  "桐生",
		RaceNumber: 7,
	}
}

func TestSetRaceClearsStateOnIdentityChange(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())
	s.SetMove(3, taxonomy.MoveMakurizashi)
	s.SetOrder([]int{3, 2, 1, 4, 5, 6})

	next := sampleRace()
	next.RaceNumber = 8
	s.SetRace(next)

	assert.Equal(t, taxonomy.Move(""), s.Entry(3).Move)
	assert.Equal(t, 1, s.Assignment().LaneOf(1), "assignment reset to draw order")
}

func TestSetRaceSameIdentityKeepsState(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())
	s.SetMove(2, taxonomy.MoveSashi)

	s.SetRace(sampleRace())

	assert.Equal(t, taxonomy.MoveSashi, s.Entry(2).Move)
}

func TestReorderKeepsEntriesByBoat(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())
	s.SetPlayerName(4, "田中")
	s.SetMove(4, taxonomy.MoveMakuri)

	// Boat 4 slides in to lane 2; its entry follows the boat, not the lane.
	s.SetOrder([]int{1, 4, 2, 3, 5, 6})

	assert.Equal(t, "田中", s.Entry(4).PlayerName)
	assert.Equal(t, taxonomy.MoveMakuri, s.Entry(4).Move)
	assert.Equal(t, 2, s.Assignment().LaneOf(4))
}

func TestLoadCardDoesNotOverrideOperatorNames(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())
	s.SetPlayerName(1, "手入力")

	s.LoadCard([]models.CompetitorEntry{
		{BoatNumber: 1, Name: "山田"},
		{BoatNumber: 2, Name: "佐藤"},
		{BoatNumber: 9, Name: "範囲外"},
	})

	assert.Equal(t, "手入力", s.Entry(1).PlayerName)
	assert.Equal(t, "佐藤", s.Entry(2).PlayerName)
}

func TestApplyShortcutOverlaysEntries(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())
	s.SetTag(1, taxonomy.TagFlow, 1)

	fired, err := s.ApplyShortcut(shortcut.FamilyEscape, "1-2-4")
	require.NoError(t, err)
	require.True(t, fired)

	assert.Equal(t, taxonomy.MoveEscape, s.Entry(1).Move)
	require.NotNil(t, s.Entry(1).SecondPlace)
	assert.Equal(t, 2, *s.Entry(1).SecondPlace)
	assert.Equal(t, models.Rank2, s.Entry(2).Rank)
	assert.Equal(t, models.Rank3, s.Entry(4).Rank)
	// Fields the shortcut does not name stay put.
	assert.Equal(t, 1, s.Entry(1).Tags[taxonomy.TagFlow])
}

func TestApplyShortcutEdgeTriggered(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())

	fired, err := s.ApplyShortcut(shortcut.FamilyEscape, "1-2-4")
	require.NoError(t, err)
	require.True(t, fired)

	// Manual correction after the expansion.
	s.SetRank(2, models.RankOut)

	// Same key again: no re-fire, the correction survives.
	fired, err = s.ApplyShortcut(shortcut.FamilyEscape, "1-2-4")
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Equal(t, models.RankOut, s.Entry(2).Rank)
}

func TestApplyShortcutResetOnRaceChange(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())

	fired, err := s.ApplyShortcut(shortcut.FamilyMakuri, "4-makuri")
	require.NoError(t, err)
	require.True(t, fired)

	next := sampleRace()
	next.RaceNumber = 9
	s.SetRace(next)

	fired, err = s.ApplyShortcut(shortcut.FamilyMakuri, "4-makuri")
	require.NoError(t, err)
	assert.True(t, fired, "shortcut memory cleared with the race")
}

func TestEntryPanicsOutOfRange(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())
	require.Panics(t, func() { s.Entry(0) })
	require.Panics(t, func() { s.Entry(7) })
}
