package repository

import (
	"fmt"

	"github.com/yourusername/kyotei-note/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Record RecordRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Record: NewPostgresRecordRepository(db),
	}, nil
}
