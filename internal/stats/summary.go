// Package stats reconstructs a racer's tendencies from their stored flat
// records: move-frequency distribution, finish counts per move, secondary
// tag trigger rates and start-timing evaluation spread.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

// MoveGroup is one move's slice of the lane-filtered history.
type MoveGroup struct {
	Move       taxonomy.Move   `json:"move"`
	Count      int             `json:"count"`
	Share      decimal.Decimal `json:"share"` // percent, one decimal place
	Wins       int             `json:"wins"`
	Seconds    int             `json:"seconds"`
	Thirds     int             `json:"thirds"`
	OutOfMoney int             `json:"out_of_money"`
}

// Breakdown is one labelled bucket of a drill-down distribution.
type Breakdown struct {
	Label string          `json:"label"`
	Count int             `json:"count"`
	Share decimal.Decimal `json:"share"`
}

// TagRate is a secondary tag's trigger rate over the whole lane-filtered
// history, independent of move.
type TagRate struct {
	Tag   taxonomy.Tag    `json:"tag"`
	Count int             `json:"count"`
	Rate  decimal.Decimal `json:"rate"`
}

// Summary is a racer's aggregated tendencies for one lane.
type Summary struct {
	Lane     int         `json:"lane"`
	Total    int         `json:"total"`
	Moves    []MoveGroup `json:"moves"`
	TagRates []TagRate   `json:"tag_rates"`
	STEvals  []Breakdown `json:"st_evals"`
}

// MoveDetail is the drill-down for one selected move. Shares use the
// per-move subset as denominator, not the whole history.
type MoveDetail struct {
	Move        taxonomy.Move `json:"move"`
	Count       int           `json:"count"`
	SecondPlace []Breakdown   `json:"second_place,omitempty"` // lane-1 escape only
	LostTo      []Breakdown   `json:"lost_to,omitempty"`      // lane-1 beaten moves only
	Ranks       []Breakdown   `json:"ranks,omitempty"`
}

// Summarize aggregates a racer's lane-filtered history. An empty history is
// reported as models.ErrNoData so callers can tell "nothing recorded" apart
// from all-zero rates.
func Summarize(history []*models.Record) (*Summary, error) {
	if len(history) == 0 {
		return nil, models.ErrNoData
	}

	laneNo := history[0].CourseIn
	total := len(history)

	groups := map[taxonomy.Move]*MoveGroup{}
	for _, rec := range history {
		g, ok := groups[rec.Move]
		if !ok {
			g = &MoveGroup{Move: rec.Move}
			groups[rec.Move] = g
		}
		g.Count++
		switch {
		case rec.IsWin():
			g.Wins++
		case rec.Rank == models.Rank2:
			g.Seconds++
		case rec.Rank == models.Rank3:
			g.Thirds++
		case rec.Rank == models.RankOut:
			g.OutOfMoney++
		}
	}

	moves := make([]MoveGroup, 0, len(groups))
	for _, g := range groups {
		g.Share = percent(g.Count, total)
		moves = append(moves, *g)
	}
	// Display priority: commonest first, label order on ties for a stable
	// deterministic listing.
	sort.Slice(moves, func(i, j int) bool {
		if moves[i].Count != moves[j].Count {
			return moves[i].Count > moves[j].Count
		}
		return moves[i].Move < moves[j].Move
	})

	return &Summary{
		Lane:     laneNo,
		Total:    total,
		Moves:    moves,
		TagRates: tagRates(history, laneNo),
		STEvals:  stDistribution(history),
	}, nil
}

// DrillDown breaks one move's records down. For a lane-1 escape the runner-up
// boats; for beaten lane-1 moves the beating lanes plus the rank spread; for
// lanes 2-6 the rank spread alone.
func DrillDown(history []*models.Record, move taxonomy.Move) (*MoveDetail, error) {
	subset := make([]*models.Record, 0, len(history))
	for _, rec := range history {
		if rec.Move == move {
			subset = append(subset, rec)
		}
	}
	if len(subset) == 0 {
		return nil, models.ErrNoData
	}

	detail := &MoveDetail{Move: move, Count: len(subset)}
	laneNo := subset[0].CourseIn

	if laneNo == 1 && move == taxonomy.MoveEscape {
		detail.SecondPlace = secondPlaceBreakdown(subset)
		return detail, nil
	}
	if laneNo == 1 {
		detail.LostTo = lostToBreakdown(subset)
	}
	detail.Ranks = rankBreakdown(subset)
	return detail, nil
}

func secondPlaceBreakdown(subset []*models.Record) []Breakdown {
	counts := map[string]int{}
	for _, rec := range subset {
		if rec.SecondPlace == nil {
			continue
		}
		counts[secondPlaceLabel(*rec.SecondPlace)]++
	}
	return sortedBreakdown(counts, len(subset))
}

func lostToBreakdown(subset []*models.Record) []Breakdown {
	counts := map[string]int{}
	for _, rec := range subset {
		if rec.LostTo == nil {
			continue
		}
		counts[lostToLabel(*rec.LostTo)]++
	}
	return sortedBreakdown(counts, len(subset))
}

func rankBreakdown(subset []*models.Record) []Breakdown {
	counts := map[models.Rank]int{}
	for _, rec := range subset {
		if rec.Rank != models.RankUnset {
			counts[rec.Rank]++
		}
	}
	out := make([]Breakdown, 0, len(counts))
	for _, rank := range models.Ranks {
		if n := counts[rank]; n > 0 {
			out = append(out, Breakdown{Label: string(rank), Count: n, Share: percent(n, len(subset))})
		}
	}
	return out
}

// tagRates computes each applicable tag's trigger rate with the full
// lane-filtered history as denominator.
func tagRates(history []*models.Record, laneNo int) []TagRate {
	var rates []TagRate
	for _, tag := range taxonomy.SecondaryTags(laneNo, "") {
		sum := 0
		for _, rec := range history {
			sum += rec.Tags.Get(tag)
		}
		rates = append(rates, TagRate{Tag: tag, Count: sum, Rate: percent(sum, len(history))})
	}
	return rates
}

func stDistribution(history []*models.Record) []Breakdown {
	counts := map[models.STEval]int{}
	for _, rec := range history {
		ev := rec.STEval
		if ev == "" {
			ev = models.STNone
		}
		counts[ev]++
	}
	out := make([]Breakdown, 0, 3)
	for _, ev := range []models.STEval{models.STNone, models.STEarly, models.STLate} {
		if n := counts[ev]; n > 0 {
			out = append(out, Breakdown{Label: string(ev), Count: n, Share: percent(n, len(history))})
		}
	}
	return out
}

func sortedBreakdown(counts map[string]int, total int) []Breakdown {
	out := make([]Breakdown, 0, len(counts))
	for label, n := range counts {
		out = append(out, Breakdown{Label: label, Count: n, Share: percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func secondPlaceLabel(boat int) string {
	if boat == models.SecondPlaceNone {
		return "none"
	}
	return string('0' + rune(boat))
}

func lostToLabel(laneNo int) string {
	if laneNo == models.LostToMultiple {
		return "multiple"
	}
	return string('0' + rune(laneNo))
}

// percent is round(n/total*100, 1). Rounding may leave a distribution's sum
// a tenth off 100; that drift is accepted, not corrected.
func percent(n, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(n)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}
