package helpers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-note/internal/config"
	"github.com/yourusername/kyotei-note/internal/database"
)

// TestDatabaseConfig builds the connection settings for the test database.
// Each field can be overridden through TEST_DB_* environment variables.
func TestDatabaseConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()

	port := 5432
	if v := os.Getenv("TEST_DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		require.NoError(t, err, "invalid TEST_DB_PORT")
		port = p
	}

	return &config.DatabaseConfig{
		Host:           envOr("TEST_DB_HOST", "localhost"),
		Port:           port,
		Name:           envOr("TEST_DB_NAME", "kyotei_note_test"),
		User:           envOr("TEST_DB_USER", "test"),
		Password:       envOr("TEST_DB_PASSWORD", "test"),
		SSLMode:        "disable",
		MaxConnections: 5,
	}
}

// SetupTestDB connects to the test database and applies migrations.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := TestDatabaseConfig(t)
	runMigrations(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := database.NewDB(ctx, cfg)
	require.NoError(t, err, "failed to connect to test database")

	return db
}

// TeardownTestDB wipes the record table and closes the connection pool.
func TeardownTestDB(t *testing.T, db *database.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.GetPool().Exec(ctx, "TRUNCATE TABLE race_data"); err != nil {
		t.Logf("Warning: failed to truncate race_data: %v", err)
	}

	db.Close()
}

// runMigrations applies the migrations directory to the test database.
func runMigrations(t *testing.T, cfg *config.DatabaseConfig) {
	t.Helper()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)

	m, err := migrate.New("file://"+migrationsDir(t), dsn)
	require.NoError(t, err, "failed to open migrations")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migrations: %v", err)
	}

	srcErr, dbErr := m.Close()
	require.NoError(t, srcErr)
	require.NoError(t, dbErr)
}

func migrationsDir(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "failed to locate helpers source file")
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}

// MockRaceCardServer serves race-card pages keyed by "rno|jcd|hd" query
// values. Missing keys answer a placeholder page without the lane table,
// which is how the real site looks before a card is published.
func MockRaceCardServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		key := q.Get("rno") + "|" + q.Get("jcd") + "|" + q.Get("hd")
		page, ok := pages[key]
		if !ok {
			page = "<html><body><p>開催前</p></body></html>"
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, page)
	})

	return httptest.NewServer(handler)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
