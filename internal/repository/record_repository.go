package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/kyotei-note/internal/database"
	"github.com/yourusername/kyotei-note/internal/models"
)

const errScanRecord = "failed to scan record: %w"

// recordColumns is the stable column order shared by selects and the CSV
// export header.
const recordColumns = `
	id, date, venue_name, race_number, course_in, player_name, move,
	second_place, lost_to, rank,
	flow, cabi, kawarizensoku, attack, pressure, block, three_hari,
	three_makurizashi, two_nokoshi, four_tsubushi, four_nokoshi,
	two_shizumase, four_shizumase, makurizashi_flow_cabi,
	st_eval, created_at`

// PostgresRecordRepository implements RecordRepository for PostgreSQL
type PostgresRecordRepository struct {
	db *database.DB
}

// NewPostgresRecordRepository creates a new record repository
func NewPostgresRecordRepository(db *database.DB) RecordRepository {
	return &PostgresRecordRepository{db: db}
}

// Exists checks for a stored record with the same identity tuple. This is
// the at-most-once guard: the table deliberately carries no uniqueness
// constraint, matching the original store's behavior.
func (r *PostgresRecordRepository) Exists(ctx context.Context, playerName string, raceNumber int, venueName string, date time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM race_data
		WHERE player_name = $1 AND race_number = $2 AND venue_name = $3 AND date = $4
	`

	var count int
	err := r.db.GetPool().QueryRow(ctx, query, playerName, raceNumber, venueName, date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	return count > 0, nil
}

// Insert stores one record
func (r *PostgresRecordRepository) Insert(ctx context.Context, rec *models.Record) error {
	query := `
		INSERT INTO race_data (
			id, date, venue_name, race_number, course_in, player_name, move,
			second_place, lost_to, rank,
			flow, cabi, kawarizensoku, attack, pressure, block, three_hari,
			three_makurizashi, two_nokoshi, four_tsubushi, four_nokoshi,
			two_shizumase, four_shizumase, makurizashi_flow_cabi,
			st_eval, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26
		)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		rec.ID, rec.Date, rec.VenueName, rec.RaceNumber, rec.CourseIn,
		rec.PlayerName, rec.Move,
		rec.SecondPlace, rec.LostTo, nullableRank(rec.Rank),
		rec.Tags.Flow, rec.Tags.Cabi, rec.Tags.Kawarizensoku, rec.Tags.Attack,
		rec.Tags.Pressure, rec.Tags.Block, rec.Tags.ThreeHari,
		rec.Tags.ThreeMakurizashi, rec.Tags.TwoNokoshi, rec.Tags.FourTsubushi,
		rec.Tags.FourNokoshi, rec.Tags.TwoShizumase, rec.Tags.FourShizumase,
		rec.Tags.MakurizashiFlowCabi,
		rec.STEval, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// HistoryByRacerAndLane returns a racer's full history from one lane
func (r *PostgresRecordRepository) HistoryByRacerAndLane(ctx context.Context, playerName string, laneNo int) ([]*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM race_data
		WHERE player_name = $1 AND course_in = $2
		ORDER BY date ASC, race_number ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, playerName, laneNo)
	if err != nil {
		return nil, fmt.Errorf("failed to query racer history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// All returns every stored record, oldest first
func (r *PostgresRecordRepository) All(ctx context.Context) ([]*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM race_data
		ORDER BY date ASC, venue_name ASC, race_number ASC, course_in ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]*models.Record, error) {
	var records []*models.Record
	for rows.Next() {
		rec := &models.Record{}
		var rank *string
		err := rows.Scan(
			&rec.ID, &rec.Date, &rec.VenueName, &rec.RaceNumber, &rec.CourseIn,
			&rec.PlayerName, &rec.Move,
			&rec.SecondPlace, &rec.LostTo, &rank,
			&rec.Tags.Flow, &rec.Tags.Cabi, &rec.Tags.Kawarizensoku,
			&rec.Tags.Attack, &rec.Tags.Pressure, &rec.Tags.Block,
			&rec.Tags.ThreeHari, &rec.Tags.ThreeMakurizashi,
			&rec.Tags.TwoNokoshi, &rec.Tags.FourTsubushi,
			&rec.Tags.FourNokoshi, &rec.Tags.TwoShizumase,
			&rec.Tags.FourShizumase, &rec.Tags.MakurizashiFlowCabi,
			&rec.STEval, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanRecord, err)
		}
		if rank != nil {
			rec.Rank = models.Rank(*rank)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableRank(r models.Rank) *string {
	if r == models.RankUnset {
		return nil
	}
	s := string(r)
	return &s
}
