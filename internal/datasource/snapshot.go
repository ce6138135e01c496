package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/kyotei-note/internal/models"
)

// SnapshotStore reads and writes pre-fetched race cards as per-race JSON
// files named <date>_<venue>_<NN>.json. A present snapshot is authoritative:
// the network source is not consulted for that race.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates a store rooted at dir, creating it if needed.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &SnapshotStore{dir: dir}, nil
}

// FetchCard loads a snapshot. A missing file is ErrCardNotPublished so a
// tiered source can fall through to the network.
func (s *SnapshotStore) FetchCard(ctx context.Context, key RaceKey) ([]models.CompetitorEntry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(s.Name(), ErrCodeNotPublished, "no local snapshot", ErrCardNotPublished)
		}
		return nil, NewSourceError(s.Name(), ErrCodeServerError, "failed to read snapshot", err)
	}

	var rows []models.CompetitorEntry
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNotPublished, "malformed snapshot file", err)
	}
	return rows, nil
}

// Save writes a race card snapshot.
func (s *SnapshotStore) Save(key RaceKey, rows []models.CompetitorEntry) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Name returns the data source name.
func (s *SnapshotStore) Name() string {
	return "local_snapshot"
}

func (s *SnapshotStore) path(key RaceKey) string {
	return filepath.Join(s.dir, key.String()+".json")
}

// TieredSource checks the local snapshot first and only consults the
// network source when no snapshot exists.
type TieredSource struct {
	local   *SnapshotStore
	network CardSource
}

// NewTieredSource composes the local-override and network sources.
func NewTieredSource(local *SnapshotStore, network CardSource) *TieredSource {
	return &TieredSource{local: local, network: network}
}

// FetchCard implements CardSource.
func (t *TieredSource) FetchCard(ctx context.Context, key RaceKey) ([]models.CompetitorEntry, error) {
	if t.local != nil {
		rows, err := t.local.FetchCard(ctx, key)
		if err == nil {
			return rows, nil
		}
	}
	if t.network == nil {
		return nil, NewSourceError(t.Name(), ErrCodeNotPublished, "no snapshot and no network source", ErrCardNotPublished)
	}
	return t.network.FetchCard(ctx, key)
}

// Name returns the data source name.
func (t *TieredSource) Name() string {
	return "tiered"
}
