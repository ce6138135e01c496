package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

// Rank is the recorded finishing position bucket.
type Rank string

// Rank values. Everything below third place collapses into RankOut.
const (
	RankUnset Rank = ""
	Rank1     Rank = "1"
	Rank2     Rank = "2"
	Rank3     Rank = "3"
	RankOut   Rank = "out"
)

// Ranks lists the recordable rank values in display order.
var Ranks = []Rank{Rank1, Rank2, Rank3, RankOut}

// STEval is the 3-way start-timing judgment relative to the field.
type STEval string

// Start-time evaluations.
const (
	STNone  STEval = "none"
	STEarly STEval = "early" // pulled clear of the inside boats
	STLate  STEval = "late"  // released behind the outside boats
)

// Sentinel values for the conditional outcome fields. SecondPlace and LostTo
// are pointers: nil means the field does not apply to the lane/move at all.
const (
	// SecondPlaceNone records an escape where the runner-up was not noted.
	SecondPlaceNone = 0
	// LostToMultiple records a lane-1 defeat with no single beating lane.
	LostToMultiple = 0
)

// Record is the unit of persistence: one classified race for one competitor.
// At most one record may exist per (player, race number, venue, date).
type Record struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	Date       time.Time     `db:"date" json:"date" validate:"required"`
	VenueName  string        `db:"venue_name" json:"venue_name" validate:"required"`
	RaceNumber int           `db:"race_number" json:"race_number" validate:"required,min=1,max=12"`
	CourseIn   int           `db:"course_in" json:"course_in" validate:"required,min=1,max=6"`
	PlayerName string        `db:"player_name" json:"player_name" validate:"required"`
	Move       taxonomy.Move `db:"move" json:"move" validate:"required"`

	// Conditional outcome fields; nil when not applicable to the lane/move.
	SecondPlace *int `db:"second_place" json:"second_place,omitempty"`
	LostTo      *int `db:"lost_to" json:"lost_to,omitempty"`
	Rank        Rank `db:"rank" json:"rank,omitempty"`

	Tags TagSet `json:"tags"`

	STEval    STEval    `db:"st_eval" json:"st_eval"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TagSet holds the secondary tag columns as 0/1 integers. Tags whose widget
// was not shown for the record's lane are stored as 0.
type TagSet struct {
	Flow                int `db:"flow" json:"flow"`
	Cabi                int `db:"cabi" json:"cabi"`
	Kawarizensoku       int `db:"kawarizensoku" json:"kawarizensoku"`
	Attack              int `db:"attack" json:"attack"`
	Pressure            int `db:"pressure" json:"pressure"`
	Block               int `db:"block" json:"block"`
	ThreeHari           int `db:"three_hari" json:"three_hari"`
	ThreeMakurizashi    int `db:"three_makurizashi" json:"three_makurizashi"`
	TwoNokoshi          int `db:"two_nokoshi" json:"two_nokoshi"`
	FourTsubushi        int `db:"four_tsubushi" json:"four_tsubushi"`
	FourNokoshi         int `db:"four_nokoshi" json:"four_nokoshi"`
	TwoShizumase        int `db:"two_shizumase" json:"two_shizumase"`
	FourShizumase       int `db:"four_shizumase" json:"four_shizumase"`
	MakurizashiFlowCabi int `db:"makurizashi_flow_cabi" json:"makurizashi_flow_cabi"`
}

// Get returns the 0/1 value for a tag.
func (t *TagSet) Get(tag taxonomy.Tag) int {
	switch tag {
	case taxonomy.TagFlow:
		return t.Flow
	case taxonomy.TagCabi:
		return t.Cabi
	case taxonomy.TagKawarizensoku:
		return t.Kawarizensoku
	case taxonomy.TagAttack:
		return t.Attack
	case taxonomy.TagPressure:
		return t.Pressure
	case taxonomy.TagBlock:
		return t.Block
	case taxonomy.TagThreeHari:
		return t.ThreeHari
	case taxonomy.TagThreeMakurizashi:
		return t.ThreeMakurizashi
	case taxonomy.TagTwoNokoshi:
		return t.TwoNokoshi
	case taxonomy.TagFourTsubushi:
		return t.FourTsubushi
	case taxonomy.TagFourNokoshi:
		return t.FourNokoshi
	case taxonomy.TagTwoShizumase:
		return t.TwoShizumase
	case taxonomy.TagFourShizumase:
		return t.FourShizumase
	case taxonomy.TagMakurizashiFlowCabi:
		return t.MakurizashiFlowCabi
	}
	return 0
}

// Set assigns the 0/1 value for a tag. Unknown tags are ignored.
func (t *TagSet) Set(tag taxonomy.Tag, v int) {
	if v != 0 {
		v = 1
	}
	switch tag {
	case taxonomy.TagFlow:
		t.Flow = v
	case taxonomy.TagCabi:
		t.Cabi = v
	case taxonomy.TagKawarizensoku:
		t.Kawarizensoku = v
	case taxonomy.TagAttack:
		t.Attack = v
	case taxonomy.TagPressure:
		t.Pressure = v
	case taxonomy.TagBlock:
		t.Block = v
	case taxonomy.TagThreeHari:
		t.ThreeHari = v
	case taxonomy.TagThreeMakurizashi:
		t.ThreeMakurizashi = v
	case taxonomy.TagTwoNokoshi:
		t.TwoNokoshi = v
	case taxonomy.TagFourTsubushi:
		t.FourTsubushi = v
	case taxonomy.TagFourNokoshi:
		t.FourNokoshi = v
	case taxonomy.TagTwoShizumase:
		t.TwoShizumase = v
	case taxonomy.TagFourShizumase:
		t.FourShizumase = v
	case taxonomy.TagMakurizashiFlowCabi:
		t.MakurizashiFlowCabi = v
	}
}

// IsWin reports whether the record counts as a win. Rank "1" always wins;
// a lane-1 escape also counts even though escapes carry no rank field.
func (r *Record) IsWin() bool {
	if r.Rank == Rank1 {
		return true
	}
	return r.CourseIn == 1 && r.Move == taxonomy.MoveEscape
}
