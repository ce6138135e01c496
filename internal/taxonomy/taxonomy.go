// Package taxonomy declares the per-lane move vocabulary for boat racing.
//
// The taxonomy is static data: which maneuver labels are legal from each
// starting lane, which secondary tags can be recorded for a (lane, move)
// pair, and which outcome fields a complete record must carry. Racing
// semantics differ structurally per lane, so the tables are not symmetric:
// lane 1 forks on escape vs. everything else, lanes 2-6 are rank-first
// with lane-specific vocabularies.
package taxonomy

import "fmt"

// Move is a categorical maneuver label describing how a competitor's race
// unfolded from their lane.
type Move string

// Moves referenced by derivation logic elsewhere in the system. The full
// per-lane vocabularies live in the legalMoves table below.
const (
	MoveEscape        Move = "escape"       // lane-1 wire-to-wire lead
	MoveSasare        Move = "sasare"       // lane 1 passed on the inside
	MoveMakurare      Move = "makurare"     // lane 1 overtaken on the outside
	MoveMakurizasare  Move = "makurizasare" // lane 1 beaten by an outside cut-in
	MoveNukare        Move = "nukare"       // lane 1 passed after the first turn
	MoveSashi         Move = "sashi"
	MoveJikama        Move = "jikama"
	MoveTsukemai      Move = "tsukemai"
	MoveShiboriMakuri Move = "shibori-makuri"
	MoveMakuri        Move = "makuri"
	MoveMakurizashi   Move = "makurizashi"
)

// Tag is a lane-and-move-conditional boolean attribute capturing a tactical
// nuance. Tag names match the persisted column names.
type Tag string

// All secondary tags in the record schema.
const (
	TagFlow               Tag = "flow"
	TagCabi               Tag = "cabi"
	TagKawarizensoku      Tag = "kawarizensoku"
	TagAttack             Tag = "attack"
	TagPressure           Tag = "pressure"
	TagBlock              Tag = "block"
	TagThreeHari          Tag = "three_hari"
	TagThreeMakurizashi   Tag = "three_makurizashi"
	TagTwoNokoshi         Tag = "two_nokoshi"
	TagFourTsubushi       Tag = "four_tsubushi"
	TagFourNokoshi        Tag = "four_nokoshi"
	TagTwoShizumase       Tag = "two_shizumase"
	TagFourShizumase      Tag = "four_shizumase"
	TagMakurizashiFlowCabi Tag = "makurizashi_flow_cabi"
)

// AllTags lists every secondary tag in stable column order.
var AllTags = []Tag{
	TagFlow, TagCabi, TagKawarizensoku, TagAttack, TagPressure,
	TagBlock, TagThreeHari, TagThreeMakurizashi, TagTwoNokoshi,
	TagFourTsubushi, TagFourNokoshi, TagTwoShizumase, TagFourShizumase,
	TagMakurizashiFlowCabi,
}

// Field names a conditional outcome field of a record.
type Field string

// Outcome fields collected depending on lane and move.
const (
	FieldSecondPlace Field = "second_place"
	FieldLostTo      Field = "lost_to"
	FieldRank        Field = "rank"
)

// legalMoves maps each lane to its ordered move vocabulary. Order matters:
// it is the display order of the selection widget.
var legalMoves = map[int][]Move{
	1: {MoveEscape, MoveSasare, MoveMakurare, MoveMakurizasare, MoveNukare},
	2: {
		MoveSashi, "sotomai", MoveJikama, MoveTsukemai,
		"3-makurizasare", "makurare-tatakare", "block-make", "3-tsukemai-tenkai",
	},
	3: {
		"sotomai", MoveShiboriMakuri, MoveTsukemai, "hako-makuri",
		MoveMakurizashi, "gote-makurizashi", "2-heko-makurizashi", MoveSashi,
		"2-soto-mite-sashi", "2-makuri-tenkai", "tenkai-sashi-makurizashi",
		"2-soto-kaburi", "makurare-tatakare", "block-make",
	},
	4: {
		MoveSashi, MoveMakurizashi, "sotomai", MoveMakuri,
		"tataite-makurizashi", "tataite-sotomai", "2-makuri-tenkai",
		"3-makuri-tenkai", "3-shibori-tenkai", "3-tsukemai-tenkai",
		"tenkai-makurizashi-sotomai", "3-sashi-kaburi", "5-makurizasare",
		"makurare-tatakare", "block-make", "gote",
	},
	5: {
		"1-2-makurizashi", "2-4-makurizashi", "sotomai", MoveSashi,
		"4-soto-mite-sashi", MoveMakuri, "tataite-makurizashi",
		"tataite-sotomai", "tatei-makuri-tenkai", "4-makuri-tenkai",
		"4-shibori-tenkai", "3-tsukemai-tenkai",
		"tenkai-sashi-makurizashi-sotomai", "4-soto-kaburi",
		"makurare-tatakare", "block-make", "gote",
	},
	6: {
		MoveSashi, "makurizashi-sotomai", MoveMakuri, "tataite-makurizashi",
		"tataite-sotomai", "tatei-makuri-tenkai", "4-makuri-tenkai",
		"5-makuri-tenkai", "5-shibori-tenkai",
		"tenkai-sashi-makurizashi-sotomai", "5-sashi-kaburi", "block-make",
		"gote",
	},
}

// laneTags maps each lane to the secondary tags its form exposes. Tags are
// move-independent within a lane in the current vocabulary; the (lane, move)
// signature of SecondaryTags is kept because the vocabulary is still being
// finalized with the domain expert and some tags may become move-scoped.
var laneTags = map[int][]Tag{
	1: {TagFlow, TagKawarizensoku, TagBlock, TagThreeHari},
	2: {TagFlow, TagCabi, TagKawarizensoku, TagAttack, TagPressure, TagThreeMakurizashi},
	3: {
		TagFlow, TagCabi, TagKawarizensoku, TagAttack, TagPressure,
		TagTwoNokoshi, TagFourTsubushi, TagTwoShizumase, TagMakurizashiFlowCabi,
	},
	4: {TagFlow, TagCabi, TagKawarizensoku, TagAttack, TagPressure},
	5: {
		TagFlow, TagCabi, TagKawarizensoku, TagAttack, TagPressure,
		TagFourNokoshi, TagFourShizumase,
	},
	6: {TagAttack, TagPressure},
}

// mustLane panics when lane is outside 1..6. An out-of-range lane is a
// programming error, not an input error: every caller goes through the
// lane resolver first.
func mustLane(lane int) {
	if lane < 1 || lane > 6 {
		panic(fmt.Sprintf("taxonomy: lane %d out of range 1..6", lane))
	}
}

// LegalMoves returns the ordered move vocabulary for a lane.
func LegalMoves(lane int) []Move {
	mustLane(lane)
	moves := legalMoves[lane]
	out := make([]Move, len(moves))
	copy(out, moves)
	return out
}

// IsLegalMove reports whether move is in the lane's vocabulary.
func IsLegalMove(lane int, move Move) bool {
	mustLane(lane)
	for _, m := range legalMoves[lane] {
		if m == move {
			return true
		}
	}
	return false
}

// SecondaryTags returns the secondary tags collected for a lane and move.
func SecondaryTags(lane int, move Move) []Tag {
	mustLane(lane)
	tags := laneTags[lane]
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

// HasTag reports whether tag applies to the lane and move.
func HasTag(lane int, move Move, tag Tag) bool {
	for _, t := range SecondaryTags(lane, move) {
		if t == tag {
			return true
		}
	}
	return false
}

// RequiredOutcomeFields returns the outcome fields a complete record for the
// lane and move must carry. Lane 1 forks on escape: an escaping boat records
// who finished second, a beaten one records who it lost to and its own rank.
// Lanes 2-6 always record rank.
func RequiredOutcomeFields(lane int, move Move) []Field {
	mustLane(lane)
	if lane == 1 {
		if move == MoveEscape {
			return []Field{FieldSecondPlace}
		}
		return []Field{FieldLostTo, FieldRank}
	}
	return []Field{FieldRank}
}
