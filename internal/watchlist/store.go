// Package watchlist manages the target racer list.
//
// Entries mark racers worth following from a given lane, with a free-form
// note and a good/watch mark. The list lives in one JSON file and the day
// view cross-references it against saved racecard snapshots.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-note/internal/datasource"
	"github.com/yourusername/kyotei-note/internal/models"
)

// Store manages the watchlist file
type Store struct {
	path   string
	logger logrus.FieldLogger
	mu     sync.Mutex
}

// NewStore creates a watchlist store backed by the given file path
func NewStore(path string, logger logrus.FieldLogger) *Store {
	return &Store{
		path:   path,
		logger: logger.WithField("component", "watchlist_store"),
	}
}

// Load reads all entries. A missing file yields an empty list.
func (s *Store) Load() ([]models.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]models.WatchlistEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	var entries []models.WatchlistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist: %w", err)
	}
	return entries, nil
}

func (s *Store) save(entries []models.WatchlistEntry) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create watchlist directory: %w", err)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Lane < entries[j].Lane
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write watchlist: %w", err)
	}
	return nil
}

// Search returns entries whose name contains the query. An empty query
// returns everything.
func (s *Store) Search(query string) ([]models.WatchlistEntry, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return entries, nil
	}

	var matched []models.WatchlistEntry
	for _, e := range entries {
		if strings.Contains(e.Name, query) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Add appends an entry. The same racer may appear once per lane.
func (s *Store) Add(entry models.WatchlistEntry) error {
	if entry.Name == "" {
		return models.NewValidationError("missing_name", "watchlist entry needs a racer name")
	}
	if entry.Lane < 1 || entry.Lane > 6 {
		return models.NewValidationError("invalid_lane", fmt.Sprintf("lane %d out of range", entry.Lane))
	}
	if entry.Mark != models.MarkGood && entry.Mark != models.MarkWatch {
		return models.NewValidationError("invalid_mark", fmt.Sprintf("unknown mark %q", entry.Mark))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.Name == entry.Name && e.Lane == entry.Lane {
			return models.NewValidationError("duplicate_entry",
				fmt.Sprintf("%s already listed for lane %d", entry.Name, entry.Lane))
		}
	}

	entries = append(entries, entry)
	if err := s.save(entries); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"player_name": entry.Name,
		"lane":        entry.Lane,
		"mark":        entry.Mark,
	}).Info("Watchlist entry added")
	return nil
}

// Edit replaces the entry identified by name and lane
func (s *Store) Edit(name string, lane int, updated models.WatchlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	for i, e := range entries {
		if e.Name == name && e.Lane == lane {
			if updated.Name == "" {
				updated.Name = name
			}
			if updated.Lane == 0 {
				updated.Lane = lane
			}
			entries[i] = updated
			return s.save(entries)
		}
	}
	return fmt.Errorf("watchlist entry %s lane %d: %w", name, lane, models.ErrNotFound)
}

// Delete removes the entry identified by name and lane
func (s *Store) Delete(name string, lane int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	for i, e := range entries {
		if e.Name == name && e.Lane == lane {
			entries = append(entries[:i], entries[i+1:]...)
			return s.save(entries)
		}
	}
	return fmt.Errorf("watchlist entry %s lane %d: %w", name, lane, models.ErrNotFound)
}

// DayHit is one watchlist racer found on a day's racecards
type DayHit struct {
	Entry      models.WatchlistEntry `json:"entry"`
	VenueName  string                `json:"venue_name"`
	RaceNumber int                   `json:"race_number"`
	DrawnLane  int                   `json:"drawn_lane"`
}

// DayView scans snapshot cards for the given date and venues and reports
// every listed racer appearing that day. A hit fires on name alone; the
// drawn lane is reported so a lane mismatch against the listed lane is
// visible at a glance. Unpublished races are skipped, hard source errors
// abort the scan.
func (s *Store) DayView(ctx context.Context, source datasource.CardSource, date string, venues []string) ([]DayHit, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	byName := make(map[string][]models.WatchlistEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = append(byName[e.Name], e)
	}

	var hits []DayHit
	for _, venue := range venues {
		for raceNo := 1; raceNo <= 12; raceNo++ {
			key := datasource.RaceKey{Date: date, VenueName: venue, RaceNumber: raceNo}
			rows, err := source.FetchCard(ctx, key)
			if err != nil {
				if errors.Is(err, datasource.ErrCardNotPublished) {
					continue
				}
				return nil, fmt.Errorf("failed to scan %s: %w", key.String(), err)
			}
			for _, row := range rows {
				for _, e := range byName[row.Name] {
					hits = append(hits, DayHit{
						Entry:      e,
						VenueName:  venue,
						RaceNumber: raceNo,
						DrawnLane:  row.BoatNumber,
					})
				}
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].VenueName != hits[j].VenueName {
			return hits[i].VenueName < hits[j].VenueName
		}
		if hits[i].RaceNumber != hits[j].RaceNumber {
			return hits[i].RaceNumber < hits[j].RaceNumber
		}
		return hits[i].DrawnLane < hits[j].DrawnLane
	})
	return hits, nil
}
