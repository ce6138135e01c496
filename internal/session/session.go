// Package session holds the working state of one annotation sitting.
//
// State is keyed structurally by (race identity, boat number, field) instead
// of free-form widget keys. Changing the race identity clears everything;
// reordering lanes within the same race keeps every boat's entry because
// entries are keyed by boat, not by lane.
package session

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-note/internal/lane"
	"github.com/yourusername/kyotei-note/internal/metrics"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/shortcut"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

// RaceIdentity names the race being annotated
type RaceIdentity struct {
	Date       time.Time
	VenueName  string
	RaceNumber int
}

func (r RaceIdentity) equal(o RaceIdentity) bool {
	return r.Date.Equal(o.Date) && r.VenueName == o.VenueName && r.RaceNumber == o.RaceNumber
}

// Entry is one boat's working partial record. Fields stay nil/unset until
// the operator or a shortcut fills them.
type Entry struct {
	PlayerName  string
	Move        taxonomy.Move
	SecondPlace *int
	LostTo      *int
	Rank        models.Rank
	Tags        map[taxonomy.Tag]int
	STEval      models.STEval
}

func newEntry() *Entry {
	return &Entry{Tags: make(map[taxonomy.Tag]int)}
}

// Session is the mutable state of one annotation sitting: the race being
// worked on, the lane assignment, a working entry per boat, and the
// shortcut expander's edge-trigger memory.
type Session struct {
	race     RaceIdentity
	started  bool
	asg      lane.Assignment
	entries  map[int]*Entry
	expander *shortcut.Expander
	logger   logrus.FieldLogger
}

// New creates an empty session
func New(logger logrus.FieldLogger) *Session {
	return &Session{
		asg:      lane.Default(),
		entries:  make(map[int]*Entry),
		expander: shortcut.NewExpander(),
		logger:   logger.WithField("component", "session"),
	}
}

// SetRace switches the session to a race. A change of identity wipes all
// working entries and the shortcut memory; re-selecting the current race is
// a no-op.
func (s *Session) SetRace(race RaceIdentity) {
	if s.started && s.race.equal(race) {
		return
	}
	if s.started {
		s.logger.WithFields(logrus.Fields{
			"venue":       race.VenueName,
			"race_number": race.RaceNumber,
		}).Debug("Race changed, session state cleared")
	}
	s.race = race
	s.started = true
	s.asg = lane.Default()
	s.entries = make(map[int]*Entry)
	s.expander.Reset()
}

// Race returns the current race identity
func (s *Session) Race() RaceIdentity {
	return s.race
}

// LoadCard seeds the boats' player names from a fetched race card. Entries
// already holding operator input keep it.
func (s *Session) LoadCard(rows []models.CompetitorEntry) {
	for _, row := range rows {
		if row.BoatNumber < 1 || row.BoatNumber > 6 {
			continue
		}
		e := s.entry(row.BoatNumber)
		if e.PlayerName == "" {
			e.PlayerName = row.Name
		}
	}
}

// SetOrder re-resolves the lane assignment from a boat order. Entries are
// keyed by boat number, so a reorder moves no data.
func (s *Session) SetOrder(order []int) {
	s.asg = lane.Resolve(order)
	log := s.logger.WithField("order", s.asg.Order())
	if !s.asg.Complete() {
		log.Warn("entry order leaves boats unplaced; their records will be rejected")
		return
	}
	log.Debug("entry order applied")
}

// Assignment returns the current lane assignment
func (s *Session) Assignment() lane.Assignment {
	return s.asg
}

// Entry returns boat's working entry, creating it on first access. Boats
// outside 1..6 panic, matching the taxonomy's lane contract.
func (s *Session) Entry(boat int) *Entry {
	return s.entry(boat)
}

func (s *Session) entry(boat int) *Entry {
	if boat < 1 || boat > 6 {
		panic("session: boat number out of range")
	}
	e, ok := s.entries[boat]
	if !ok {
		e = newEntry()
		s.entries[boat] = e
	}
	return e
}

// SetPlayerName sets a boat's racer name, overriding the card
func (s *Session) SetPlayerName(boat int, name string) {
	s.entry(boat).PlayerName = name
}

// SetMove sets a boat's move
func (s *Session) SetMove(boat int, move taxonomy.Move) {
	s.entry(boat).Move = move
}

// SetRank sets a boat's finishing rank
func (s *Session) SetRank(boat int, rank models.Rank) {
	s.entry(boat).Rank = rank
}

// SetSecondPlace sets the runner-up boat on a lane-1 escape entry
func (s *Session) SetSecondPlace(boat int, second int) {
	e := s.entry(boat)
	e.SecondPlace = &second
}

// SetLostTo sets the beating lane on a defeated lane-1 entry
func (s *Session) SetLostTo(boat int, lostTo int) {
	e := s.entry(boat)
	e.LostTo = &lostTo
}

// SetTag sets one secondary tag value
func (s *Session) SetTag(boat int, tag taxonomy.Tag, value int) {
	s.entry(boat).Tags[tag] = value
}

// SetSTEval sets a boat's start-timing evaluation
func (s *Session) SetSTEval(boat int, st models.STEval) {
	s.entry(boat).STEval = st
}

// ApplyShortcut runs an outcome shortcut against the current assignment.
// Expansion is edge-triggered; re-selecting the already applied key does
// nothing. Fired partials overlay the boats they name and leave every other
// field alone.
func (s *Session) ApplyShortcut(family shortcut.Family, key string) (bool, error) {
	partials, fired, err := s.expander.Apply(family, key, s.asg)
	if err != nil {
		return false, err
	}
	if !fired {
		return false, nil
	}

	for boat, p := range partials {
		e := s.entry(boat)
		if p.Move != "" {
			e.Move = p.Move
		}
		if p.Rank != models.RankUnset {
			e.Rank = p.Rank
		}
		if p.LostTo != nil {
			v := *p.LostTo
			e.LostTo = &v
		}
		if p.SecondPlace != nil {
			v := *p.SecondPlace
			e.SecondPlace = &v
		}
	}

	metrics.RecordShortcutExpansion(string(family))
	s.logger.WithFields(logrus.Fields{
		"family": family,
		"key":    key,
		"boats":  len(partials),
	}).Debug("Shortcut expanded")
	return true, nil
}
