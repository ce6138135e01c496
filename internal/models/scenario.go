package models

// ScenarioCategory is one of the 11 fixed race-development categories the
// pattern dictionary is organized under.
type ScenarioCategory string

// The fixed scenario categories, innermost attack first.
const (
	ScenarioInNige           ScenarioCategory = "in-nige"
	ScenarioTwoMakuri        ScenarioCategory = "2-makuri"
	ScenarioTwoSashi         ScenarioCategory = "2-sashi"
	ScenarioThreeMakuri      ScenarioCategory = "3-makuri"
	ScenarioThreeMakurizashi ScenarioCategory = "3-makurizashi"
	ScenarioFourMakuri       ScenarioCategory = "4-makuri"
	ScenarioFourMakurizashi  ScenarioCategory = "4-makurizashi"
	ScenarioFourSashi        ScenarioCategory = "4-sashi"
	ScenarioFiveMakuri       ScenarioCategory = "5-makuri"
	ScenarioFiveMakurizashi  ScenarioCategory = "5-makurizashi"
	ScenarioSixMakuri        ScenarioCategory = "6-makuri"
)

// ScenarioCategories lists all categories in display order.
var ScenarioCategories = []ScenarioCategory{
	ScenarioInNige,
	ScenarioTwoMakuri, ScenarioTwoSashi,
	ScenarioThreeMakuri, ScenarioThreeMakurizashi,
	ScenarioFourMakuri, ScenarioFourMakurizashi, ScenarioFourSashi,
	ScenarioFiveMakuri, ScenarioFiveMakurizashi,
	ScenarioSixMakuri,
}

// IsValidScenarioCategory reports whether c is one of the fixed categories.
func IsValidScenarioCategory(c ScenarioCategory) bool {
	for _, known := range ScenarioCategories {
		if known == c {
			return true
		}
	}
	return false
}

// ScenarioOutcome is one observed finish-order string and how often the
// pattern produced it.
type ScenarioOutcome struct {
	FinishOrder string `json:"finish_order" validate:"required"`
	Count       int    `json:"count" validate:"min=0"`
}

// ScenarioPattern is a free-text pattern registered under a category: a
// label, a causal-factor note, and the finish orders it has produced.
type ScenarioPattern struct {
	Label    string            `json:"label" validate:"required"`
	Factor   string            `json:"factor"`
	Outcomes []ScenarioOutcome `json:"outcomes"`
}

// WatchlistMark grades a watched racer.
type WatchlistMark string

// Watchlist marks.
const (
	MarkGood  WatchlistMark = "good"
	MarkWatch WatchlistMark = "watch"
)

// WatchlistEntry is a manually maintained note about a racer worth following
// when they start from a particular lane.
type WatchlistEntry struct {
	Name string        `json:"name" validate:"required"`
	Lane int           `json:"lane" validate:"required,min=1,max=6"`
	Note string        `json:"note"`
	Mark WatchlistMark `json:"mark" validate:"required,oneof=good watch"`
}
