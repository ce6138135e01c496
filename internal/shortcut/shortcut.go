// Package shortcut expands outcome shortcuts: operator-facing presets that
// fan a single finish-pattern label out into per-lane move, rank and
// lost-to fields for all six boats at once.
//
// Three independent families exist. The escape family is keyed by a finish
// order such as "1-2-4" (boat numbers, win-place-show). The makuri family
// covers outside overtakes ("4-makuri"), the makurizashi family cut-ins and
// inside passes ("3-makurizashi", "2-sashi"). Templates are sparse: lanes a
// shortcut does not name keep whatever the operator already entered.
package shortcut

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/kyotei-note/internal/lane"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

// Family identifies a shortcut family. Each family tracks its own
// last-applied key.
type Family string

// Shortcut families.
const (
	FamilyEscape      Family = "escape"
	FamilyMakuri      Family = "makuri"
	FamilyMakurizashi Family = "makurizashi"
)

// Partial is a sparse overlay applied onto one boat's working record.
// Zero-valued fields leave the existing entry untouched.
type Partial struct {
	Move        taxonomy.Move
	Rank        models.Rank
	LostTo      *int
	SecondPlace *int
}

// IsZero reports whether the partial carries no fields.
func (p Partial) IsZero() bool {
	return p.Move == "" && p.Rank == models.RankUnset && p.LostTo == nil && p.SecondPlace == nil
}

// laneTemplate is a preset's per-lane overlay. Lanes not present are left
// untouched during expansion.
type laneTemplate map[int]Partial

// makuriKeys maps makuri-family keys to presets: the winning lane's
// canonical outside-overtake move plus the defeat entry for lane 1.
var makuriKeys = map[string]laneTemplate{
	"2-makuri": {
		2: {Move: taxonomy.MoveJikama, Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurare, LostTo: intp(2)},
	},
	"3-makuri": {
		3: {Move: taxonomy.MoveShiboriMakuri, Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurare, LostTo: intp(3)},
	},
	"4-makuri": {
		4: {Move: taxonomy.MoveMakuri, Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurare, LostTo: intp(4)},
	},
	"5-makuri": {
		5: {Move: taxonomy.MoveMakuri, Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurare, LostTo: intp(5)},
	},
	"6-makuri": {
		6: {Move: taxonomy.MoveMakuri, Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurare, LostTo: intp(6)},
	},
}

// makurizashiKeys maps makurizashi-family keys to presets. Lane 5 carries
// two distinct cut-in lines in its vocabulary, so its preset sets only the
// rank and leaves the move choice to the operator.
var makurizashiKeys = map[string]laneTemplate{
	"2-sashi": {
		2: {Move: taxonomy.MoveSashi, Rank: models.Rank1},
		1: {Move: taxonomy.MoveSasare, LostTo: intp(2)},
	},
	"3-makurizashi": {
		3: {Move: taxonomy.MoveMakurizashi, Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurizasare, LostTo: intp(3)},
	},
	"4-makurizashi": {
		4: {Move: taxonomy.MoveMakurizashi, Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurizasare, LostTo: intp(4)},
	},
	"4-sashi": {
		4: {Move: taxonomy.MoveSashi, Rank: models.Rank1},
		1: {Move: taxonomy.MoveSasare, LostTo: intp(4)},
	},
	"5-makurizashi": {
		5: {Rank: models.Rank1},
		1: {Move: taxonomy.MoveMakurizasare, LostTo: intp(5)},
	},
}

// Keys returns the selectable keys of a family in stable order. The escape
// family has no fixed key list; its keys are finish-order strings.
func Keys(family Family) []string {
	switch family {
	case FamilyMakuri:
		return []string{"2-makuri", "3-makuri", "4-makuri", "5-makuri", "6-makuri"}
	case FamilyMakurizashi:
		return []string{"2-sashi", "3-makurizashi", "4-makurizashi", "4-sashi", "5-makurizashi"}
	}
	return nil
}

// Expand resolves a shortcut key against the current lane assignment and
// returns the partial overlays keyed by boat number. Lanes with no assigned
// boat silently drop out of the expansion.
func Expand(family Family, key string, asg lane.Assignment) (map[int]Partial, error) {
	switch family {
	case FamilyEscape:
		return expandEscape(key, asg)
	case FamilyMakuri:
		return expandTemplate(makuriKeys, key, asg)
	case FamilyMakurizashi:
		return expandTemplate(makurizashiKeys, key, asg)
	}
	return nil, fmt.Errorf("unknown shortcut family %q", family)
}

// expandEscape parses a win-place-show finish order of boat numbers. The
// winning boat gets the escape move when it started from lane 1 (with the
// runner-up recorded as its second_place), a plain rank otherwise; the
// place and show boats get ranks 2 and 3.
func expandEscape(key string, asg lane.Assignment) (map[int]Partial, error) {
	boats, err := parseFinishOrder(key)
	if err != nil {
		return nil, err
	}

	out := make(map[int]Partial, 3)

	winner := boats[0]
	if asg.LaneOf(winner) != lane.Unassigned {
		if asg.LaneOf(winner) == 1 {
			out[winner] = Partial{Move: taxonomy.MoveEscape, SecondPlace: intp(boats[1])}
		} else {
			out[winner] = Partial{Rank: models.Rank1}
		}
	}
	if asg.LaneOf(boats[1]) != lane.Unassigned {
		out[boats[1]] = Partial{Rank: models.Rank2}
	}
	if asg.LaneOf(boats[2]) != lane.Unassigned {
		out[boats[2]] = Partial{Rank: models.Rank3}
	}

	return out, nil
}

// expandTemplate maps a static lane-keyed preset through the assignment,
// re-keying by boat number.
func expandTemplate(keys map[string]laneTemplate, key string, asg lane.Assignment) (map[int]Partial, error) {
	tmpl, ok := keys[key]
	if !ok {
		return nil, fmt.Errorf("unknown shortcut key %q", key)
	}

	out := make(map[int]Partial, len(tmpl))
	for laneNo, partial := range tmpl {
		boat := asg.BoatAt(laneNo)
		if boat == 0 {
			continue
		}
		out[boat] = partial
	}
	return out, nil
}

// parseFinishOrder parses "a-b-c" into three distinct boat numbers.
func parseFinishOrder(key string) ([3]int, error) {
	var boats [3]int
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return boats, fmt.Errorf("finish order %q must name three boats", key)
	}
	seen := map[int]bool{}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 || n > 6 {
			return boats, fmt.Errorf("finish order %q: %q is not a boat number", key, p)
		}
		if seen[n] {
			return boats, fmt.Errorf("finish order %q names boat %d twice", key, n)
		}
		seen[n] = true
		boats[i] = n
	}
	return boats, nil
}

// Fire reports whether a newly selected key should trigger expansion.
// Re-selecting the key already applied must not re-fire.
func Fire(prev, next string) bool {
	return next != "" && next != prev
}

// Expander tracks the last applied key per family so shortcut selection is
// edge-triggered rather than level-triggered.
type Expander struct {
	last map[Family]string
}

// NewExpander creates an Expander with no applied keys.
func NewExpander() *Expander {
	return &Expander{last: make(map[Family]string)}
}

// Apply expands the key if it differs from the family's last applied key.
// The boolean result reports whether expansion fired.
func (e *Expander) Apply(family Family, key string, asg lane.Assignment) (map[int]Partial, bool, error) {
	if !Fire(e.last[family], key) {
		return nil, false, nil
	}
	partials, err := Expand(family, key, asg)
	if err != nil {
		return nil, false, err
	}
	e.last[family] = key
	return partials, true, nil
}

// Reset clears the applied-key memory, e.g. when the race identity changes.
func (e *Expander) Reset() {
	e.last = make(map[Family]string)
}

func intp(n int) *int { return &n }
