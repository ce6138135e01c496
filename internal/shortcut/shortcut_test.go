package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-note/internal/lane"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

func TestExpandEscapeDefaultOrder(t *testing.T) {
	partials, err := Expand(FamilyEscape, "1-2-4", lane.Default())
	require.NoError(t, err)
	require.Len(t, partials, 3)

	// Boat 1 escaped from lane 1 with boat 2 behind it.
	assert.Equal(t, taxonomy.MoveEscape, partials[1].Move)
	require.NotNil(t, partials[1].SecondPlace)
	assert.Equal(t, 2, *partials[1].SecondPlace)
	assert.Equal(t, models.RankUnset, partials[1].Rank)

	assert.Equal(t, models.Rank2, partials[2].Rank)
	assert.Equal(t, models.Rank3, partials[4].Rank)
}

func TestExpandEscapeWinnerNotInLaneOne(t *testing.T) {
	// Boat 4 into lane 1, boat 1 shoved out to lane 4. The winning boat 1
	// did not start inside, so no escape move, just the rank.
	asg := lane.Resolve([]int{4, 2, 3, 1, 5, 6})

	partials, err := Expand(FamilyEscape, "1-2-4", asg)
	require.NoError(t, err)

	assert.Equal(t, taxonomy.Move(""), partials[1].Move)
	assert.Equal(t, models.Rank1, partials[1].Rank)
	assert.Nil(t, partials[1].SecondPlace)
	assert.Equal(t, models.Rank2, partials[2].Rank)
	assert.Equal(t, models.Rank3, partials[4].Rank)
}

func TestExpandEscapeReorderedShowBoat(t *testing.T) {
	// Boat 4 starts from lane 3; its show finish still lands on boat 4.
	asg := lane.Resolve([]int{1, 2, 4, 3, 5, 6})

	partials, err := Expand(FamilyEscape, "1-2-4", asg)
	require.NoError(t, err)

	assert.Equal(t, models.Rank3, partials[4].Rank)
	assert.Equal(t, taxonomy.MoveEscape, partials[1].Move)
}

func TestExpandEscapeUnplacedBoatDropsOut(t *testing.T) {
	// Boat 4 is not in the order; its placing silently no-ops.
	asg := lane.Resolve([]int{1, 2, 3, 0, 5, 6})

	partials, err := Expand(FamilyEscape, "1-2-4", asg)
	require.NoError(t, err)

	_, ok := partials[4]
	assert.False(t, ok)
	assert.Equal(t, taxonomy.MoveEscape, partials[1].Move)
	assert.Equal(t, models.Rank2, partials[2].Rank)
}

func TestExpandEscapeBadKeys(t *testing.T) {
	for _, key := range []string{"", "1-2", "1-2-3-4", "1-2-7", "1-1-2", "a-b-c"} {
		_, err := Expand(FamilyEscape, key, lane.Default())
		assert.Error(t, err, "key %q", key)
	}
}

func TestExpandMakuri(t *testing.T) {
	partials, err := Expand(FamilyMakuri, "4-makuri", lane.Default())
	require.NoError(t, err)
	require.Len(t, partials, 2)

	assert.Equal(t, taxonomy.MoveMakuri, partials[4].Move)
	assert.Equal(t, models.Rank1, partials[4].Rank)

	assert.Equal(t, taxonomy.MoveMakurare, partials[1].Move)
	require.NotNil(t, partials[1].LostTo)
	assert.Equal(t, 4, *partials[1].LostTo)
}

func TestExpandMakuriFollowsAssignment(t *testing.T) {
	// Boat 6 runs from lane 2: "2-makuri" lands on boat 6, and the lane-1
	// defeat entry lands on boat 2 now starting inside.
	asg := lane.Resolve([]int{2, 6, 3, 4, 5, 1})

	partials, err := Expand(FamilyMakuri, "2-makuri", asg)
	require.NoError(t, err)

	assert.Equal(t, taxonomy.MoveJikama, partials[6].Move)
	assert.Equal(t, models.Rank1, partials[6].Rank)
	assert.Equal(t, taxonomy.MoveMakurare, partials[2].Move)
	require.NotNil(t, partials[2].LostTo)
	assert.Equal(t, 2, *partials[2].LostTo)
}

func TestExpandMakurizashi(t *testing.T) {
	tests := []struct {
		key        string
		winnerLane int
		winnerMove taxonomy.Move
		loserMove  taxonomy.Move
	}{
		{"2-sashi", 2, taxonomy.MoveSashi, taxonomy.MoveSasare},
		{"3-makurizashi", 3, taxonomy.MoveMakurizashi, taxonomy.MoveMakurizasare},
		{"4-makurizashi", 4, taxonomy.MoveMakurizashi, taxonomy.MoveMakurizasare},
		{"4-sashi", 4, taxonomy.MoveSashi, taxonomy.MoveSasare},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			partials, err := Expand(FamilyMakurizashi, tt.key, lane.Default())
			require.NoError(t, err)

			assert.Equal(t, tt.winnerMove, partials[tt.winnerLane].Move)
			assert.Equal(t, models.Rank1, partials[tt.winnerLane].Rank)
			assert.Equal(t, tt.loserMove, partials[1].Move)
			require.NotNil(t, partials[1].LostTo)
			assert.Equal(t, tt.winnerLane, *partials[1].LostTo)
		})
	}
}

func TestExpandLaneFivePresetLeavesMoveOpen(t *testing.T) {
	partials, err := Expand(FamilyMakurizashi, "5-makurizashi", lane.Default())
	require.NoError(t, err)

	// Lane 5 has two distinct cut-in lines, so only the rank is preset.
	assert.Equal(t, taxonomy.Move(""), partials[5].Move)
	assert.Equal(t, models.Rank1, partials[5].Rank)
	assert.Equal(t, taxonomy.MoveMakurizasare, partials[1].Move)
}

func TestExpandUnknownKey(t *testing.T) {
	_, err := Expand(FamilyMakuri, "7-makuri", lane.Default())
	assert.Error(t, err)

	_, err = Expand(Family("bogus"), "x", lane.Default())
	assert.Error(t, err)
}

func TestFire(t *testing.T) {
	assert.True(t, Fire("", "1-2-3"))
	assert.True(t, Fire("1-2-3", "1-2-4"))
	assert.False(t, Fire("1-2-3", "1-2-3"))
	assert.False(t, Fire("1-2-3", ""))
	assert.False(t, Fire("", ""))
}

func TestExpanderEdgeTriggered(t *testing.T) {
	e := NewExpander()
	asg := lane.Default()

	_, fired, err := e.Apply(FamilyEscape, "1-2-4", asg)
	require.NoError(t, err)
	assert.True(t, fired)

	// Re-selecting the applied key must not re-fire, so later manual edits
	// are not clobbered.
	_, fired, err = e.Apply(FamilyEscape, "1-2-4", asg)
	require.NoError(t, err)
	assert.False(t, fired)

	// A different key fires again.
	_, fired, err = e.Apply(FamilyEscape, "1-2-3", asg)
	require.NoError(t, err)
	assert.True(t, fired)

	// Families are independent.
	_, fired, err = e.Apply(FamilyMakuri, "4-makuri", asg)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestExpanderInvalidKeyDoesNotBurn(t *testing.T) {
	e := NewExpander()

	_, fired, err := e.Apply(FamilyEscape, "nope", lane.Default())
	assert.Error(t, err)
	assert.False(t, fired)

	// The failed key was not recorded; a valid one still fires.
	_, fired, err = e.Apply(FamilyEscape, "1-2-4", lane.Default())
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestExpanderReset(t *testing.T) {
	e := NewExpander()

	_, fired, err := e.Apply(FamilyMakuri, "4-makuri", lane.Default())
	require.NoError(t, err)
	require.True(t, fired)

	e.Reset()

	_, fired, err = e.Apply(FamilyMakuri, "4-makuri", lane.Default())
	require.NoError(t, err)
	assert.True(t, fired)
}
