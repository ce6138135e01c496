package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

func intp(n int) *int { return &n }

func baseInput() Input {
	return Input{
		Date:       time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC),
		VenueName:  "桐生",
		RaceNumber: 7,
		BoatNumber: 1,
		PlayerName: "山田",
		Lane:       1,
		Move:       taxonomy.MoveEscape,
	}
}

func TestBuildEscapeRecord(t *testing.T) {
	in := baseInput()
	in.SecondPlace = intp(3)
	in.Tags = map[taxonomy.Tag]int{taxonomy.TagFlow: 1}

	rec, err := NewBuilder().Build(in)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.CourseIn)
	assert.Equal(t, taxonomy.MoveEscape, rec.Move)
	require.NotNil(t, rec.SecondPlace)
	assert.Equal(t, 3, *rec.SecondPlace)
	assert.Nil(t, rec.LostTo)
	assert.Equal(t, models.RankUnset, rec.Rank)
	assert.Equal(t, 1, rec.Tags.Flow)
	assert.Equal(t, models.STNone, rec.STEval)
	assert.NotEqual(t, "", rec.ID.String())
}

func TestBuildEscapeWithNoneSentinel(t *testing.T) {
	// "no runner-up recorded" is an explicit choice, stored as 0.
	in := baseInput()
	in.SecondPlace = intp(models.SecondPlaceNone)

	rec, err := NewBuilder().Build(in)
	require.NoError(t, err)
	require.NotNil(t, rec.SecondPlace)
	assert.Equal(t, models.SecondPlaceNone, *rec.SecondPlace)
}

func TestBuildEscapeMissingSecondPlace(t *testing.T) {
	_, err := NewBuilder().Build(baseInput())
	require.Error(t, err)

	verr := requireValidation(t, err)
	assert.Equal(t, "missing_second_place", verr.Code)
}

func TestBuildBeatenLaneOneNeedsLostToAndRank(t *testing.T) {
	in := baseInput()
	in.Move = taxonomy.MoveMakurare

	_, err := NewBuilder().Build(in)
	verr := requireValidation(t, err)
	assert.Equal(t, "missing_lost_to", verr.Code)

	in.LostTo = intp(4)
	_, err = NewBuilder().Build(in)
	verr = requireValidation(t, err)
	assert.Equal(t, "missing_rank", verr.Code)

	in.Rank = models.Rank2
	rec, err := NewBuilder().Build(in)
	require.NoError(t, err)
	require.NotNil(t, rec.LostTo)
	assert.Equal(t, 4, *rec.LostTo)
	assert.Equal(t, models.Rank2, rec.Rank)
}

func TestBuildOuterLaneNeedsRank(t *testing.T) {
	in := baseInput()
	in.Lane = 4
	in.Move = taxonomy.MoveMakuri

	_, err := NewBuilder().Build(in)
	verr := requireValidation(t, err)
	assert.Equal(t, "missing_rank", verr.Code)

	in.Rank = models.Rank1
	rec, err := NewBuilder().Build(in)
	require.NoError(t, err)
	assert.Equal(t, models.Rank1, rec.Rank)
	// Rank-lane records never carry lane-1 outcome fields.
	assert.Nil(t, rec.SecondPlace)
	assert.Nil(t, rec.LostTo)
}

func TestBuildInvalidRank(t *testing.T) {
	in := baseInput()
	in.Lane = 2
	in.Move = taxonomy.MoveSashi
	in.Rank = models.Rank("5")

	_, err := NewBuilder().Build(in)
	verr := requireValidation(t, err)
	assert.Equal(t, "invalid_rank", verr.Code)
}

func TestBuildIllegalMove(t *testing.T) {
	in := baseInput()
	in.Lane = 3
	in.Move = taxonomy.MoveEscape
	in.Rank = models.Rank1

	_, err := NewBuilder().Build(in)
	verr := requireValidation(t, err)
	assert.Equal(t, "illegal_move", verr.Code)
}

func TestBuildUnresolvedLane(t *testing.T) {
	in := baseInput()
	in.Lane = 0

	_, err := NewBuilder().Build(in)
	verr := requireValidation(t, err)
	assert.Equal(t, "lane_unresolved", verr.Code)
}

func TestBuildDropsInapplicableTags(t *testing.T) {
	// Stray widget state: lane 6 exposes only attack and pressure.
	in := baseInput()
	in.Lane = 6
	in.Move = taxonomy.MoveSashi
	in.Rank = models.RankOut
	in.Tags = map[taxonomy.Tag]int{
		taxonomy.TagAttack: 1,
		taxonomy.TagFlow:   1,
		taxonomy.TagCabi:   1,
	}

	rec, err := NewBuilder().Build(in)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Tags.Attack)
	assert.Equal(t, 0, rec.Tags.Flow)
	assert.Equal(t, 0, rec.Tags.Cabi)
}

func TestBuildKeepsSTEval(t *testing.T) {
	in := baseInput()
	in.SecondPlace = intp(2)
	in.STEval = models.STLate

	rec, err := NewBuilder().Build(in)
	require.NoError(t, err)
	assert.Equal(t, models.STLate, rec.STEval)
}

func requireValidation(t *testing.T, err error) *models.ValidationError {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*models.ValidationError)
	require.True(t, ok, "expected *models.ValidationError, got %T", err)
	return verr
}
