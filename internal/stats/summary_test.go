package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

func intp(n int) *int { return &n }

func rec(laneNo int, move taxonomy.Move, mut func(*models.Record)) *models.Record {
	r := &models.Record{
		VenueName:  "住之江",
		RaceNumber: 1,
		CourseIn:   laneNo,
		PlayerName: "高橋",
		Move:       move,
		STEval:     models.STNone,
	}
	if mut != nil {
		mut(r)
	}
	return r
}

func TestSummarizeEmptyHistory(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, models.ErrNoData)

	_, err = Summarize([]*models.Record{})
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestSummarizeMoveSharesAndOrder(t *testing.T) {
	history := []*models.Record{
		rec(1, taxonomy.MoveEscape, func(r *models.Record) { r.SecondPlace = intp(2) }),
		rec(1, taxonomy.MoveEscape, func(r *models.Record) { r.SecondPlace = intp(4) }),
		rec(1, taxonomy.MoveMakurare, func(r *models.Record) {
			r.LostTo = intp(4)
			r.Rank = models.Rank3
		}),
	}

	summary, err := Summarize(history)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Lane)
	assert.Equal(t, 3, summary.Total)
	require.Len(t, summary.Moves, 2)

	// Commonest move first.
	assert.Equal(t, taxonomy.MoveEscape, summary.Moves[0].Move)
	assert.Equal(t, "66.7", summary.Moves[0].Share.String())
	assert.Equal(t, taxonomy.MoveMakurare, summary.Moves[1].Move)
	assert.Equal(t, "33.3", summary.Moves[1].Share.String())
}

func TestSummarizeWinRule(t *testing.T) {
	// A lane-1 escape wins without any rank; rank "1" wins anywhere.
	history := []*models.Record{
		rec(1, taxonomy.MoveEscape, func(r *models.Record) { r.SecondPlace = intp(2) }),
		rec(1, taxonomy.MoveMakurare, func(r *models.Record) {
			r.LostTo = intp(2)
			r.Rank = models.Rank2
		}),
	}

	summary, err := Summarize(history)
	require.NoError(t, err)

	for _, g := range summary.Moves {
		switch g.Move {
		case taxonomy.MoveEscape:
			assert.Equal(t, 1, g.Wins)
			assert.Equal(t, 0, g.Seconds)
		case taxonomy.MoveMakurare:
			assert.Equal(t, 0, g.Wins)
			assert.Equal(t, 1, g.Seconds)
		}
	}
}

func TestSummarizeOuterLaneFinishCounts(t *testing.T) {
	history := []*models.Record{
		rec(4, taxonomy.MoveMakuri, func(r *models.Record) { r.Rank = models.Rank1 }),
		rec(4, taxonomy.MoveMakuri, func(r *models.Record) { r.Rank = models.RankOut }),
		rec(4, taxonomy.MoveSashi, func(r *models.Record) { r.Rank = models.Rank3 }),
	}

	summary, err := Summarize(history)
	require.NoError(t, err)

	require.Len(t, summary.Moves, 2)
	makuri := summary.Moves[0]
	assert.Equal(t, taxonomy.MoveMakuri, makuri.Move)
	assert.Equal(t, 1, makuri.Wins)
	assert.Equal(t, 1, makuri.OutOfMoney)
	assert.Equal(t, 0, makuri.Thirds)
}

func TestSummarizeTagRatesWholeHistoryDenominator(t *testing.T) {
	history := []*models.Record{
		rec(2, taxonomy.MoveSashi, func(r *models.Record) {
			r.Rank = models.Rank1
			r.Tags.Flow = 1
		}),
		rec(2, taxonomy.MoveSashi, func(r *models.Record) { r.Rank = models.Rank2 }),
		rec(2, taxonomy.MoveJikama, func(r *models.Record) {
			r.Rank = models.RankOut
			r.Tags.Flow = 1
		}),
		rec(2, taxonomy.MoveJikama, func(r *models.Record) { r.Rank = models.RankOut }),
	}

	summary, err := Summarize(history)
	require.NoError(t, err)

	var flow *TagRate
	for i := range summary.TagRates {
		if summary.TagRates[i].Tag == taxonomy.TagFlow {
			flow = &summary.TagRates[i]
		}
	}
	require.NotNil(t, flow)
	assert.Equal(t, 2, flow.Count)
	assert.Equal(t, "50", flow.Rate.String())
}

func TestSummarizeSTDistribution(t *testing.T) {
	history := []*models.Record{
		rec(3, taxonomy.MoveMakurizashi, func(r *models.Record) {
			r.Rank = models.Rank1
			r.STEval = models.STEarly
		}),
		rec(3, taxonomy.MoveMakurizashi, func(r *models.Record) {
			r.Rank = models.Rank2
			r.STEval = models.STEarly
		}),
		rec(3, taxonomy.MoveSashi, func(r *models.Record) {
			r.Rank = models.RankOut
			r.STEval = ""
		}),
	}

	summary, err := Summarize(history)
	require.NoError(t, err)

	require.Len(t, summary.STEvals, 2)
	// Fixed order: none, early, late.
	assert.Equal(t, "none", summary.STEvals[0].Label)
	assert.Equal(t, 1, summary.STEvals[0].Count)
	assert.Equal(t, "early", summary.STEvals[1].Label)
	assert.Equal(t, 2, summary.STEvals[1].Count)
}

func TestDrillDownEscapeSecondPlace(t *testing.T) {
	history := []*models.Record{
		rec(1, taxonomy.MoveEscape, func(r *models.Record) { r.SecondPlace = intp(2) }),
		rec(1, taxonomy.MoveEscape, func(r *models.Record) { r.SecondPlace = intp(2) }),
		rec(1, taxonomy.MoveEscape, func(r *models.Record) { r.SecondPlace = intp(models.SecondPlaceNone) }),
		rec(1, taxonomy.MoveMakurare, func(r *models.Record) {
			r.LostTo = intp(2)
			r.Rank = models.Rank2
		}),
	}

	detail, err := DrillDown(history, taxonomy.MoveEscape)
	require.NoError(t, err)

	// Per-move denominator: 3 escapes, not 4 records.
	assert.Equal(t, 3, detail.Count)
	require.Len(t, detail.SecondPlace, 2)
	assert.Equal(t, "2", detail.SecondPlace[0].Label)
	assert.Equal(t, "66.7", detail.SecondPlace[0].Share.String())
	assert.Equal(t, "none", detail.SecondPlace[1].Label)
	assert.Empty(t, detail.Ranks)
	assert.Empty(t, detail.LostTo)
}

func TestDrillDownBeatenLaneOne(t *testing.T) {
	history := []*models.Record{
		rec(1, taxonomy.MoveMakurare, func(r *models.Record) {
			r.LostTo = intp(4)
			r.Rank = models.Rank2
		}),
		rec(1, taxonomy.MoveMakurare, func(r *models.Record) {
			r.LostTo = intp(models.LostToMultiple)
			r.Rank = models.RankOut
		}),
	}

	detail, err := DrillDown(history, taxonomy.MoveMakurare)
	require.NoError(t, err)

	require.Len(t, detail.LostTo, 2)
	labels := []string{detail.LostTo[0].Label, detail.LostTo[1].Label}
	assert.Contains(t, labels, "4")
	assert.Contains(t, labels, "multiple")
	require.Len(t, detail.Ranks, 2)
	assert.Equal(t, "2", detail.Ranks[0].Label)
	assert.Equal(t, "out", detail.Ranks[1].Label)
}

func TestDrillDownOuterLane(t *testing.T) {
	history := []*models.Record{
		rec(5, taxonomy.MoveMakuri, func(r *models.Record) { r.Rank = models.Rank1 }),
		rec(5, taxonomy.MoveMakuri, func(r *models.Record) { r.Rank = models.RankOut }),
	}

	detail, err := DrillDown(history, taxonomy.MoveMakuri)
	require.NoError(t, err)

	assert.Empty(t, detail.SecondPlace)
	assert.Empty(t, detail.LostTo)
	require.Len(t, detail.Ranks, 2)
	assert.Equal(t, "50", detail.Ranks[0].Share.String())
}

func TestDrillDownUnknownMove(t *testing.T) {
	history := []*models.Record{
		rec(5, taxonomy.MoveMakuri, func(r *models.Record) { r.Rank = models.Rank1 }),
	}

	_, err := DrillDown(history, taxonomy.MoveSashi)
	assert.ErrorIs(t, err, models.ErrNoData)
}
