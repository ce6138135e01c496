// Package scenario persists the race-development scenario dictionary.
//
// The dictionary is a single JSON document mapping each scenario category
// (in-nige, 2-makuri, ...) to its observed patterns. Every mutation is a
// read-modify-write of the whole file, which is fine at this scale and
// keeps the file hand-editable.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-note/internal/models"
)

// Store manages the scenario dictionary file
type Store struct {
	path   string
	logger logrus.FieldLogger
	mu     sync.Mutex
}

// NewStore creates a scenario store backed by the given file path
func NewStore(path string, logger logrus.FieldLogger) *Store {
	return &Store{
		path:   path,
		logger: logger.WithField("component", "scenario_store"),
	}
}

// Dictionary is the on-disk shape: category name to its patterns.
type Dictionary map[string][]models.ScenarioPattern

// Load reads the full dictionary. A missing file yields an empty
// dictionary rather than an error so a fresh install starts clean.
func (s *Store) Load() (Dictionary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Dictionary, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dictionary{}, nil
		}
		return nil, fmt.Errorf("failed to read scenario dictionary: %w", err)
	}

	var dict Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse scenario dictionary: %w", err)
	}
	return dict, nil
}

func (s *Store) save(dict Dictionary) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create scenario dictionary directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(dict, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scenario dictionary: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario dictionary: %w", err)
	}
	return nil
}

// Patterns returns the patterns of one category, sorted by label
func (s *Store) Patterns(category models.ScenarioCategory) ([]models.ScenarioPattern, error) {
	if !models.IsValidScenarioCategory(category) {
		return nil, models.NewValidationError("invalid_category", fmt.Sprintf("unknown scenario category %q", category))
	}

	dict, err := s.Load()
	if err != nil {
		return nil, err
	}

	patterns := dict[string(category)]
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Label < patterns[j].Label })
	return patterns, nil
}

// Add appends a new pattern under a category. Duplicate labels within a
// category are rejected so IncrementOutcome stays unambiguous.
func (s *Store) Add(category models.ScenarioCategory, pattern models.ScenarioPattern) error {
	if !models.IsValidScenarioCategory(category) {
		return models.NewValidationError("invalid_category", fmt.Sprintf("unknown scenario category %q", category))
	}
	if pattern.Label == "" {
		return models.NewValidationError("missing_label", "scenario pattern needs a label")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dict, err := s.load()
	if err != nil {
		return err
	}

	for _, p := range dict[string(category)] {
		if p.Label == pattern.Label {
			return models.NewValidationError("duplicate_label",
				fmt.Sprintf("pattern %q already exists in category %q", pattern.Label, category))
		}
	}

	dict[string(category)] = append(dict[string(category)], pattern)
	if err := s.save(dict); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"category": category,
		"label":    pattern.Label,
	}).Info("Scenario pattern added")
	return nil
}

// Edit replaces the pattern with the given label
func (s *Store) Edit(category models.ScenarioCategory, label string, updated models.ScenarioPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dict, err := s.load()
	if err != nil {
		return err
	}

	patterns := dict[string(category)]
	for i, p := range patterns {
		if p.Label == label {
			if updated.Label == "" {
				updated.Label = label
			}
			patterns[i] = updated
			dict[string(category)] = patterns
			return s.save(dict)
		}
	}
	return fmt.Errorf("pattern %q in category %q: %w", label, category, models.ErrNotFound)
}

// Delete removes the pattern with the given label
func (s *Store) Delete(category models.ScenarioCategory, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dict, err := s.load()
	if err != nil {
		return err
	}

	patterns := dict[string(category)]
	for i, p := range patterns {
		if p.Label == label {
			dict[string(category)] = append(patterns[:i], patterns[i+1:]...)
			return s.save(dict)
		}
	}
	return fmt.Errorf("pattern %q in category %q: %w", label, category, models.ErrNotFound)
}

// IncrementOutcome bumps the count of one finish order under a pattern,
// creating the outcome row on first sight.
func (s *Store) IncrementOutcome(category models.ScenarioCategory, label, finishOrder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dict, err := s.load()
	if err != nil {
		return err
	}

	patterns := dict[string(category)]
	for i, p := range patterns {
		if p.Label != label {
			continue
		}
		found := false
		for j, o := range p.Outcomes {
			if o.FinishOrder == finishOrder {
				p.Outcomes[j].Count++
				found = true
				break
			}
		}
		if !found {
			p.Outcomes = append(p.Outcomes, models.ScenarioOutcome{FinishOrder: finishOrder, Count: 1})
		}
		patterns[i] = p
		dict[string(category)] = patterns
		if err := s.save(dict); err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"category":     category,
			"label":        label,
			"finish_order": finishOrder,
		}).Debug("Scenario outcome incremented")
		return nil
	}
	return fmt.Errorf("pattern %q in category %q: %w", label, category, models.ErrNotFound)
}
