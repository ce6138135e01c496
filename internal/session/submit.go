package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/kyotei-note/internal/lane"
	"github.com/yourusername/kyotei-note/internal/logger"
	"github.com/yourusername/kyotei-note/internal/metrics"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/record"
	"github.com/yourusername/kyotei-note/internal/repository"
)

// BoatResult is the submission outcome for one boat
type BoatResult struct {
	Boat       int
	PlayerName string
	Status     SubmitStatus
	Err        error
}

// SubmitStatus classifies one boat's submission outcome
type SubmitStatus string

// Submission outcomes.
const (
	StatusSaved     SubmitStatus = "saved"
	StatusDuplicate SubmitStatus = "duplicate"
	StatusRejected  SubmitStatus = "rejected"
	StatusFailed    SubmitStatus = "failed"
	StatusEmpty     SubmitStatus = "empty"
)

// SubmitResult aggregates the per-boat outcomes of one submission
type SubmitResult struct {
	Boats []BoatResult
}

// Saved counts boats whose record was persisted
func (r SubmitResult) Saved() int { return r.count(StatusSaved) }

// Skipped counts boats skipped as duplicates
func (r SubmitResult) Skipped() int { return r.count(StatusDuplicate) }

// Rejected counts boats the builder refused
func (r SubmitResult) Rejected() int { return r.count(StatusRejected) }

func (r SubmitResult) count(status SubmitStatus) int {
	n := 0
	for _, b := range r.Boats {
		if b.Status == status {
			n++
		}
	}
	return n
}

// Submitter persists a session's six working entries as records
type Submitter struct {
	builder *record.Builder
	repo    repository.RecordRepository
	audit   *logger.SessionLogger
}

// NewSubmitter creates a Submitter
func NewSubmitter(repo repository.RecordRepository, audit *logger.SessionLogger) *Submitter {
	return &Submitter{
		builder: record.NewBuilder(),
		repo:    repo,
		audit:   audit,
	}
}

// Submit walks boats 1..6 in order: build, duplicate-check, insert. One
// boat's failure never blocks the rest. A boat with no move entered is
// reported as empty and skipped. Duplicates are detected by a pre-insert
// existence check on (player, race, venue, date) and skipped with a warning.
func (sub *Submitter) Submit(ctx context.Context, s *Session) (SubmitResult, error) {
	if !s.started {
		return SubmitResult{}, fmt.Errorf("no race selected")
	}

	start := time.Now()
	defer func() {
		metrics.RecordSubmitDuration(time.Since(start).Seconds())
	}()

	race := s.race
	dateStr := race.Date.Format("2006-01-02")

	var result SubmitResult
	for boat := 1; boat <= 6; boat++ {
		e := s.entry(boat)
		br := BoatResult{Boat: boat, PlayerName: e.PlayerName}

		if e.Move == "" {
			br.Status = StatusEmpty
			result.Boats = append(result.Boats, br)
			continue
		}

		rec, err := sub.buildOne(s, boat, e)
		if err != nil {
			br.Status = StatusRejected
			br.Err = err
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				sub.audit.LogValidationFailure(e.PlayerName, verr.Code, verr.Message)
			} else {
				sub.audit.LogValidationFailure(e.PlayerName, "invalid", err.Error())
			}
			metrics.RecordValidationFailure()
			result.Boats = append(result.Boats, br)
			continue
		}

		exists, err := sub.repo.Exists(ctx, rec.PlayerName, rec.RaceNumber, rec.VenueName, rec.Date)
		if err != nil {
			br.Status = StatusFailed
			br.Err = fmt.Errorf("duplicate check failed: %w", err)
			result.Boats = append(result.Boats, br)
			continue
		}
		if exists {
			br.Status = StatusDuplicate
			br.Err = models.ErrDuplicateRecord
			sub.audit.LogDuplicateSkip(dateStr, race.VenueName, race.RaceNumber, rec.PlayerName)
			metrics.RecordDuplicateSkip()
			result.Boats = append(result.Boats, br)
			continue
		}

		if err := sub.repo.Insert(ctx, rec); err != nil {
			br.Status = StatusFailed
			br.Err = err
			result.Boats = append(result.Boats, br)
			continue
		}

		br.Status = StatusSaved
		sub.audit.LogRecordSaved(dateStr, race.VenueName, race.RaceNumber,
			rec.PlayerName, rec.CourseIn, string(rec.Move))
		metrics.RecordSaved()
		result.Boats = append(result.Boats, br)
	}

	return result, nil
}

func (sub *Submitter) buildOne(s *Session, boat int, e *Entry) (*models.Record, error) {
	laneNo := s.asg.LaneOf(boat)
	if laneNo == lane.Unassigned {
		return nil, models.NewValidationError("lane_unresolved",
			fmt.Sprintf("boat %d has no lane in the current order", boat))
	}
	if e.PlayerName == "" {
		return nil, models.NewValidationError("missing_name",
			fmt.Sprintf("boat %d has no racer name", boat))
	}

	return sub.builder.Build(record.Input{
		Date:        s.race.Date,
		VenueName:   s.race.VenueName,
		RaceNumber:  s.race.RaceNumber,
		BoatNumber:  boat,
		PlayerName:  e.PlayerName,
		Lane:        laneNo,
		Move:        e.Move,
		SecondPlace: e.SecondPlace,
		LostTo:      e.LostTo,
		Rank:        e.Rank,
		Tags:        e.Tags,
		STEval:      e.STEval,
	})
}
