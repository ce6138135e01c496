package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

type fakeScheduler struct {
	running bool
	next    time.Time
}

func (f *fakeScheduler) IsRunning() bool       { return f.running }
func (f *fakeScheduler) GetNextRun() time.Time { return f.next }

func TestHandleHealth(t *testing.T) {
	s := NewServer(Config{ServiceName: "kyotei-note-export", Version: "1.2.3"})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "kyotei-note-export", resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHandleReady(t *testing.T) {
	next := time.Date(2026, 4, 13, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		ready      bool
		pingErr    error
		running    bool
		wantStatus int
		wantCheck  map[string]string
	}{
		{
			name:       "all healthy",
			ready:      true,
			running:    true,
			wantStatus: http.StatusOK,
			wantCheck:  map[string]string{"service": "ok", "database": "ok", "scheduler": "ok"},
		},
		{
			name:       "not marked ready",
			ready:      false,
			running:    true,
			wantStatus: http.StatusServiceUnavailable,
			wantCheck:  map[string]string{"service": "not_ready", "database": "ok", "scheduler": "ok"},
		},
		{
			name:       "database down",
			ready:      true,
			pingErr:    errors.New("connection refused"),
			running:    true,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "scheduler stopped",
			ready:      true,
			running:    false,
			wantStatus: http.StatusServiceUnavailable,
			wantCheck:  map[string]string{"service": "ok", "database": "ok", "scheduler": "stopped"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{
				ServiceName: "kyotei-note-export",
				DB:          &fakePinger{err: tt.pingErr},
				Scheduler:   &fakeScheduler{running: tt.running, next: next},
			})
			s.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			var resp ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ok", resp.Status)
			} else {
				assert.Equal(t, "not_ready", resp.Status)
			}
			for k, v := range tt.wantCheck {
				assert.Equal(t, v, resp.Checks[k])
			}
			if tt.running {
				assert.Equal(t, "2026-04-13T03:00:00Z", resp.NextBackup)
			}
		})
	}
}

func TestSetReady(t *testing.T) {
	s := NewServer(Config{ServiceName: "kyotei-note-export"})
	assert.False(t, s.IsReady())
	s.SetReady(true)
	assert.True(t, s.IsReady())
	s.SetReady(false)
	assert.False(t, s.IsReady())
}
