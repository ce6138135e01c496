package repository

import (
	"context"
	"time"

	"github.com/yourusername/kyotei-note/internal/models"
)

// RecordRepository defines persistence operations for move records. The
// duplicate policy lives above this interface: callers check Exists before
// Insert and treat a positive result as skip-with-warning, never an error.
type RecordRepository interface {
	// Exists reports whether a record is already stored for the identity
	// tuple (player, race number, venue, date).
	Exists(ctx context.Context, playerName string, raceNumber int, venueName string, date time.Time) (bool, error)

	// Insert stores one record.
	Insert(ctx context.Context, rec *models.Record) error

	// HistoryByRacerAndLane returns a racer's full history from one lane,
	// oldest first.
	HistoryByRacerAndLane(ctx context.Context, playerName string, laneNo int) ([]*models.Record, error)

	// All returns every stored record in stable column order for export.
	All(ctx context.Context) ([]*models.Record, error)
}
