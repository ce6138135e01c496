package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/kyotei-note/internal/models"
)

// RaceKey identifies one race card: date, venue and race number.
type RaceKey struct {
	Date       string // YYYYMMDD
	VenueName  string
	RaceNumber int // 1..12
}

// String returns the canonical key form used for cache keys and snapshot
// file names.
func (k RaceKey) String() string {
	return fmt.Sprintf("%s_%s_%02d", k.Date, k.VenueName, k.RaceNumber)
}

// CardSource fetches the ordered competitor list for a race. An empty list
// with a nil error means the card genuinely has no entries; failures return
// a coded error that callers degrade to an empty list with a warning.
type CardSource interface {
	// FetchCard retrieves up to 6 competitor names in boat-number order.
	FetchCard(ctx context.Context, key RaceKey) ([]models.CompetitorEntry, error)

	// Name returns the data source name.
	Name() string
}

// Source failure conditions. Both degrade to an empty competitor list at the
// caller; they are distinguished because a structure change means the site
// layout moved, not that the network is down.
var (
	// ErrSourceUnreachable covers network failures and timeouts.
	ErrSourceUnreachable = errors.New("card source unreachable")
	// ErrCardNotPublished covers a reachable page without the expected lane
	// table, either not yet published or a changed page structure.
	ErrCardNotPublished = errors.New("race card not published")
)

// SourceError wraps a source failure with the source name and a code.
type SourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e *SourceError) Unwrap() error { return e.Err }

// Error codes.
const (
	ErrCodeNetworkError = "network_error"
	ErrCodeNotPublished = "not_published"
	ErrCodeServerError  = "server_error"
)

// NewSourceError creates a coded source error.
func NewSourceError(source, code, message string, err error) *SourceError {
	return &SourceError{Source: source, Code: code, Message: message, Err: err}
}
