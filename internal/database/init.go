package database

import (
	"context"
	"fmt"

	"github.com/yourusername/kyotei-note/internal/config"
)

// Initialize creates a database connection pool and checks that the record
// schema is present. Failure here is fatal to the session: without a record
// store there is nothing to annotate into.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = db.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'race_data')",
	).Scan(&exists)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check record schema: %w", err)
	}
	if !exists {
		db.Close()
		return nil, fmt.Errorf("race_data table not found; run the migrate command first")
	}

	return db, nil
}
