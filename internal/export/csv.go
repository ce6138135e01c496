// Package export dumps the full record table to CSV for offline backup.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-note/internal/metrics"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/repository"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

// header is the stable CSV column order. It mirrors the race_data table.
var header = []string{
	"id", "date", "venue_name", "race_number", "course_in", "player_name", "move",
	"second_place", "lost_to", "rank",
	"flow", "cabi", "kawarizensoku", "attack", "pressure", "block", "three_hari",
	"three_makurizashi", "two_nokoshi", "four_tsubushi", "four_nokoshi",
	"two_shizumase", "four_shizumase", "makurizashi_flow_cabi",
	"st_eval", "created_at",
}

// Exporter writes record dumps
type Exporter struct {
	repo   repository.RecordRepository
	logger logrus.FieldLogger
}

// NewExporter creates an Exporter
func NewExporter(repo repository.RecordRepository, logger logrus.FieldLogger) *Exporter {
	return &Exporter{
		repo:   repo,
		logger: logger.WithField("component", "export"),
	}
}

// Write streams every stored record to w as CSV with a header row
func (e *Exporter) Write(ctx context.Context, w io.Writer) (int, error) {
	records, err := e.repo.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load records for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(records), nil
}

// WriteFile exports to an explicit path, creating parent directories
func (e *Exporter) WriteFile(ctx context.Context, path string) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	rows, err := e.Write(ctx, f)
	if err != nil {
		return 0, err
	}

	metrics.RecordExport(rows)
	e.logger.WithFields(logrus.Fields{
		"path": path,
		"rows": rows,
	}).Info("Export written")
	return rows, nil
}

// Backup writes a date-stamped dump into dir, e.g. race_data_20260830.csv
func (e *Exporter) Backup(ctx context.Context, dir string) (string, int, error) {
	path := filepath.Join(dir, BackupFilename(time.Now()))
	rows, err := e.WriteFile(ctx, path)
	return path, rows, err
}

// BackupFilename returns the dated backup name for a given day
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("race_data_%s.csv", t.Format("20060102"))
}

func row(rec *models.Record) []string {
	fields := make([]string, 0, len(header))
	fields = append(fields,
		rec.ID.String(),
		rec.Date.Format("2006-01-02"),
		rec.VenueName,
		strconv.Itoa(rec.RaceNumber),
		strconv.Itoa(rec.CourseIn),
		rec.PlayerName,
		string(rec.Move),
		intOrEmpty(rec.SecondPlace),
		intOrEmpty(rec.LostTo),
		string(rec.Rank),
	)
	// taxonomy.AllTags is in the tag-column order of the header.
	for _, tag := range taxonomy.AllTags {
		fields = append(fields, strconv.Itoa(rec.Tags.Get(tag)))
	}
	fields = append(fields,
		string(rec.STEval),
		rec.CreatedAt.Format(time.RFC3339),
	)
	return fields
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
