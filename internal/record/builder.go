// Package record assembles normalized race records from operator input.
package record

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

// Input is the raw operator input for one competitor: identity, resolved
// lane, chosen move, outcome fields and whatever tag widgets were touched.
// Tag entries not applicable to the lane/move are tolerated and zeroed.
type Input struct {
	Date        time.Time
	VenueName   string
	RaceNumber  int
	BoatNumber  int
	PlayerName  string
	Lane        int
	Move        taxonomy.Move
	SecondPlace *int
	LostTo      *int
	Rank        models.Rank
	Tags        map[taxonomy.Tag]int
	STEval      models.STEval
}

// Builder validates inputs against the move taxonomy and produces complete
// records. Building is pure; persistence is a separate, explicit step.
type Builder struct {
	validate *validator.Validate
}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{validate: validator.New()}
}

// Build constructs one Record or returns a *models.ValidationError scoped to
// this competitor. Rules: the move must be legal for the lane, every outcome
// field the taxonomy requires for (lane, move) must be present, and tags
// outside the lane's applicable set are forced to 0.
func (b *Builder) Build(in Input) (*models.Record, error) {
	if in.Lane < 1 || in.Lane > 6 {
		return nil, models.NewValidationError("lane_unresolved",
			fmt.Sprintf("%s: lane is not determined", in.PlayerName))
	}
	if !taxonomy.IsLegalMove(in.Lane, in.Move) {
		return nil, models.NewValidationError("illegal_move",
			fmt.Sprintf("%s: move %q is not recordable from lane %d", in.PlayerName, in.Move, in.Lane))
	}

	rec := &models.Record{
		ID:         uuid.New(),
		Date:       in.Date,
		VenueName:  in.VenueName,
		RaceNumber: in.RaceNumber,
		CourseIn:   in.Lane,
		PlayerName: in.PlayerName,
		Move:       in.Move,
		STEval:     in.STEval,
		CreatedAt:  time.Now(),
	}
	if rec.STEval == "" {
		rec.STEval = models.STNone
	}

	if err := b.applyOutcome(rec, in); err != nil {
		return nil, err
	}
	b.applyTags(rec, in)

	if err := b.validate.Struct(rec); err != nil {
		return nil, models.NewValidationError("invalid_record", err.Error())
	}

	return rec, nil
}

// applyOutcome copies exactly the outcome fields the taxonomy requires,
// rejecting missing ones and dropping fields that do not apply.
func (b *Builder) applyOutcome(rec *models.Record, in Input) error {
	for _, field := range taxonomy.RequiredOutcomeFields(in.Lane, in.Move) {
		switch field {
		case taxonomy.FieldSecondPlace:
			if in.SecondPlace == nil {
				return models.NewValidationError("missing_second_place",
					fmt.Sprintf("%s: escape needs the runner-up boat (or none recorded)", in.PlayerName))
			}
			v := *in.SecondPlace
			rec.SecondPlace = &v
		case taxonomy.FieldLostTo:
			if in.LostTo == nil {
				return models.NewValidationError("missing_lost_to",
					fmt.Sprintf("%s: beaten lane-1 record needs the lane it lost to", in.PlayerName))
			}
			v := *in.LostTo
			rec.LostTo = &v
		case taxonomy.FieldRank:
			if in.Rank == models.RankUnset {
				return models.NewValidationError("missing_rank",
					fmt.Sprintf("%s: rank is required for lane %d", in.PlayerName, in.Lane))
			}
			if !validRank(in.Rank) {
				return models.NewValidationError("invalid_rank",
					fmt.Sprintf("%s: rank %q is not one of 1/2/3/out", in.PlayerName, in.Rank))
			}
			rec.Rank = in.Rank
		}
	}
	return nil
}

// applyTags keeps only the tags applicable to the lane/move; everything
// else stays at its zero default regardless of stray input.
func (b *Builder) applyTags(rec *models.Record, in Input) {
	for _, tag := range taxonomy.AllTags {
		if !taxonomy.HasTag(in.Lane, in.Move, tag) {
			continue
		}
		if v, ok := in.Tags[tag]; ok {
			rec.Tags.Set(tag, v)
		}
	}
}

func validRank(r models.Rank) bool {
	for _, known := range models.Ranks {
		if known == r {
			return true
		}
	}
	return false
}
