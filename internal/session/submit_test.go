package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-note/internal/logger"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/shortcut"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

// mockRecordRepository mocks repository.RecordRepository.
type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) Exists(ctx context.Context, playerName string, raceNumber int, venueName string, date time.Time) (bool, error) {
	args := m.Called(ctx, playerName, raceNumber, venueName, date)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordRepository) Insert(ctx context.Context, rec *models.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRecordRepository) HistoryByRacerAndLane(ctx context.Context, playerName string, laneNo int) ([]*models.Record, error) {
	args := m.Called(ctx, playerName, laneNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Record), args.Error(1)
}

func (m *mockRecordRepository) All(ctx context.Context) ([]*models.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Record), args.Error(1)
}

func fullSession(t *testing.T) *Session {
	t.Helper()
	s := New(testLogger())
	s.SetRace(sampleRace())
	for boat := 1; boat <= 6; boat++ {
		s.SetPlayerName(boat, "racer"+string(rune('0'+boat)))
	}
	_, err := s.ApplyShortcut(shortcut.FamilyEscape, "1-2-3")
	require.NoError(t, err)
	s.SetRank(4, models.RankOut)
	s.SetMove(4, taxonomy.MoveMakuri)
	s.SetMove(5, taxonomy.MoveMakuri)
	s.SetRank(5, models.RankOut)
	s.SetMove(6, taxonomy.MoveSashi)
	s.SetRank(6, models.RankOut)
	s.SetMove(2, taxonomy.MoveSashi)
	s.SetMove(3, taxonomy.MoveMakurizashi)
	return s
}

func newTestSubmitter(repo *mockRecordRepository) *Submitter {
	return NewSubmitter(repo, logger.NewSessionLogger(testLogger()))
}

func TestSubmitSavesAllBoats(t *testing.T) {
	s := fullSession(t)
	repo := &mockRecordRepository{}
	repo.On("Exists", mock.Anything, mock.Anything, 7, "桐生", mock.Anything).Return(false, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := newTestSubmitter(repo).Submit(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Saved())
	assert.Equal(t, 0, result.Skipped())
	assert.Equal(t, 0, result.Rejected())
	repo.AssertNumberOfCalls(t, "Insert", 6)
}

func TestSubmitSkipsDuplicatesAndContinues(t *testing.T) {
	s := fullSession(t)
	repo := &mockRecordRepository{}
	// Boat 2's record is already stored; the rest are new.
	repo.On("Exists", mock.Anything, "racer2", 7, "桐生", mock.Anything).Return(true, nil)
	repo.On("Exists", mock.Anything, mock.Anything, 7, "桐生", mock.Anything).Return(false, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := newTestSubmitter(repo).Submit(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Saved())
	assert.Equal(t, 1, result.Skipped())
	assert.Equal(t, StatusDuplicate, result.Boats[1].Status)
	assert.ErrorIs(t, result.Boats[1].Err, models.ErrDuplicateRecord)
	repo.AssertNumberOfCalls(t, "Insert", 5)
}

func TestSubmitValidationFailureBlocksOnlyThatBoat(t *testing.T) {
	s := fullSession(t)
	// Break boat 3: rank cleared, required field missing.
	s.SetRank(3, models.RankUnset)

	repo := &mockRecordRepository{}
	repo.On("Exists", mock.Anything, mock.Anything, 7, "桐生", mock.Anything).Return(false, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := newTestSubmitter(repo).Submit(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Saved())
	assert.Equal(t, 1, result.Rejected())
	assert.Equal(t, StatusRejected, result.Boats[2].Status)
	var verr *models.ValidationError
	assert.True(t, errors.As(result.Boats[2].Err, &verr))
}

func TestSubmitInsertFailureContinues(t *testing.T) {
	s := fullSession(t)
	repo := &mockRecordRepository{}
	repo.On("Exists", mock.Anything, mock.Anything, 7, "桐生", mock.Anything).Return(false, nil)
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(rec *models.Record) bool {
		return rec.PlayerName == "racer1"
	})).Return(errors.New("connection reset"))
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := newTestSubmitter(repo).Submit(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Saved())
	assert.Equal(t, StatusFailed, result.Boats[0].Status)
	assert.Error(t, result.Boats[0].Err)
}

func TestSubmitEmptyBoatsSkipped(t *testing.T) {
	s := New(testLogger())
	s.SetRace(sampleRace())
	s.SetPlayerName(1, "山田")
	s.SetMove(1, taxonomy.MoveEscape)
	s.SetSecondPlace(1, 2)

	repo := &mockRecordRepository{}
	repo.On("Exists", mock.Anything, "山田", 7, "桐生", mock.Anything).Return(false, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	result, err := newTestSubmitter(repo).Submit(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Saved())
	for _, b := range result.Boats[1:] {
		assert.Equal(t, StatusEmpty, b.Status)
	}
	repo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestSubmitWithoutRace(t *testing.T) {
	s := New(testLogger())
	repo := &mockRecordRepository{}

	_, err := newTestSubmitter(repo).Submit(context.Background(), s)
	assert.Error(t, err)
}

func TestSubmitBuildsCompleteRecords(t *testing.T) {
	s := fullSession(t)
	repo := &mockRecordRepository{}
	repo.On("Exists", mock.Anything, mock.Anything, 7, "桐生", mock.Anything).Return(false, nil)

	var inserted []*models.Record
	repo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = append(inserted, args.Get(1).(*models.Record))
	}).Return(nil)

	_, err := newTestSubmitter(repo).Submit(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, inserted, 6)

	first := inserted[0]
	assert.Equal(t, taxonomy.MoveEscape, first.Move)
	assert.Equal(t, 1, first.CourseIn)
	require.NotNil(t, first.SecondPlace)
	assert.Equal(t, 2, *first.SecondPlace)
	assert.Equal(t, "桐生", first.VenueName)
	assert.False(t, first.CreatedAt.IsZero())
}
