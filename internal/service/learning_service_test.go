package service

import (
	"errors"
	"testing"
	"time"

	"aicu_backend/internal/model"
	"aicu_backend/internal/repository"
	"aicu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(now time.Time) (*LearningService, *repository.MemoryDocumentStore, *util.ManualClock) {
	clock := util.NewManualClock(now)
	store := repository.NewMemoryDocumentStore(clock)
	learning := NewLearningService(store, NewStatisticsService(), NewSessionService(clock), clock)
	return learning, store, clock
}

type capturingBroadcaster struct {
	events []model.SyncEvent
}

func (b *capturingBroadcaster) Publish(eventType string, payload interface{}, source string) {
	b.events = append(b.events, model.SyncEvent{Type: eventType, Payload: payload, SourcePage: source})
}

// failingSaveStore rejects the combined save, simulating a storage outage.
type failingSaveStore struct {
	*repository.MemoryDocumentStore
}

func (s *failingSaveStore) SaveAll(*model.CategoryStatistics, *model.RealTimeData, *model.QuizResults) error {
	return errors.New("save failed")
}

func TestRecordQuizEventAggregates(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 30, 0, time.UTC)
	learning, _, _ := newTestEngine(now)

	_, err := learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q1", Category: "재산보험", IsCorrect: true})
	require.NoError(t, err)
	_, err = learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q2", Category: "재산보험", IsCorrect: false})
	require.NoError(t, err)

	stats := learning.CategoryStatistics()
	stat := stats.Categories[model.CategoryProperty]
	require.NotNil(t, stat)
	assert.Equal(t, 2, stat.Solved)
	assert.Equal(t, 1, stat.Correct)
	assert.Equal(t, float64(50), stat.Accuracy)
	require.Contains(t, stat.DailyProgress, "2026-08-31")
	assert.Equal(t, 2, stat.DailyProgress["2026-08-31"].Attempts)

	rt := learning.RealTimeData()
	assert.Equal(t, 2, rt.TotalAttempts)
	assert.Equal(t, 1, rt.TotalCorrect)
	assert.Equal(t, float64(50), rt.OverallAccuracy)
	assert.Equal(t, 2, rt.TodayAttempts)
	assert.Equal(t, 1, rt.TodayCorrect)

	summary := rt.Categories[model.CategoryProperty]
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Correct)
	assert.Equal(t, 1, summary.Incorrect)

	session := rt.Session("2026-08-31", "09:05")
	require.NotNil(t, session)
	assert.Equal(t, 2, session.TotalAttempts)
	bucket := session.Categories[model.CategoryProperty]
	require.NotNil(t, bucket)
	assert.Equal(t, 2, bucket.Attempts)
	assert.Equal(t, 1, bucket.Correct)

	results := learning.QuizResults(0)
	require.Len(t, results.Results, 2)
	assert.Equal(t, "2026-08-31_09:05", results.Results[0].SessionID)
}

func TestRecordUnknownCategoryRoutesBasicLearning(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)
	learning, _, _ := newTestEngine(now)

	outcome, err := learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q1", Category: "zzz", IsCorrect: true})
	require.NoError(t, err)
	assert.True(t, outcome.RoutedBasic)
	assert.Equal(t, -1, outcome.QuestionIndex)

	// The event still counts in the global aggregates under an ad-hoc bucket.
	stats := learning.CategoryStatistics()
	require.Contains(t, stats.Categories, model.CategoryKey("zzz"))
	assert.Equal(t, 1, stats.Categories[model.CategoryKey("zzz")].Solved)

	rt := learning.RealTimeData()
	assert.Equal(t, 1, rt.TotalAttempts)
	session := rt.Session("2026-08-31", "09:05")
	require.NotNil(t, session)
	assert.Equal(t, 1, session.BasicLearning.Attempts)
	assert.Empty(t, session.Categories)
}

func TestTodayCountersRollOver(t *testing.T) {
	day1 := time.Date(2026, 8, 30, 23, 50, 0, 0, time.UTC)
	learning, _, clock := newTestEngine(day1)

	_, err := learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q1", Category: "재산보험", IsCorrect: true})
	require.NoError(t, err)

	rt := learning.RealTimeData()
	assert.Equal(t, 1, rt.TodayAttempts)

	clock.Advance(20 * time.Minute) // crosses midnight

	_, err = learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q2", Category: "재산보험", IsCorrect: false})
	require.NoError(t, err)

	rt = learning.RealTimeData()
	assert.Equal(t, 2, rt.TotalAttempts)
	assert.Equal(t, 1, rt.TodayAttempts)
	assert.Equal(t, 0, rt.TodayCorrect)
	assert.Contains(t, rt.SessionStart, "2026-08-31")
}

func TestRecordBroadcastsAfterWrite(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)
	learning, _, _ := newTestEngine(now)
	broadcaster := &capturingBroadcaster{}
	learning.SetBroadcaster(broadcaster)

	_, err := learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q1", Category: "재산보험", IsCorrect: true})
	require.NoError(t, err)

	require.Len(t, broadcaster.events, 2)
	assert.Equal(t, model.EventDataUpdated, broadcaster.events[0].Type)
	assert.Equal(t, model.EventStatisticsUpdated, broadcaster.events[1].Type)

	payload, ok := broadcaster.events[1].Payload.(model.StatisticsUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, 1, payload.Stats.TotalAttempts)

	broadcaster.events = nil
	_, err = learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q2", Category: "zzz", IsCorrect: false})
	require.NoError(t, err)

	require.Len(t, broadcaster.events, 3)
	assert.Equal(t, model.EventBasicLearningState, broadcaster.events[2].Type)
}

func TestQuietRecordSkipsBroadcast(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)
	learning, _, _ := newTestEngine(now)
	broadcaster := &capturingBroadcaster{}
	learning.SetBroadcaster(broadcaster)

	_, err := learning.RecordQuizEventQuiet(model.QuizEvent{QuestionID: "q1", Category: "재산보험", IsCorrect: true})
	require.NoError(t, err)
	assert.Empty(t, broadcaster.events)

	assert.Equal(t, 1, learning.RealTimeData().TotalAttempts)
}

func TestQuizResultsLimit(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)
	learning, _, _ := newTestEngine(now)

	ids := []string{"q1", "q2", "q3", "q4", "q5"}
	for _, id := range ids {
		_, err := learning.RecordQuizEvent(model.QuizEvent{QuestionID: id, Category: "재산보험", IsCorrect: true})
		require.NoError(t, err)
	}

	trimmed := learning.QuizResults(2)
	require.Len(t, trimmed.Results, 2)
	assert.Equal(t, "q4", trimmed.Results[0].QuestionID)
	assert.Equal(t, "q5", trimmed.Results[1].QuestionID)
	assert.Equal(t, 5, trimmed.TotalCount)

	full := learning.QuizResults(0)
	require.Len(t, full.Results, 5)
}

func TestStartSessionValidation(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)
	learning, _, _ := newTestEngine(now)

	_, err := learning.StartSession("2026-8-31", "09:05")
	assert.ErrorIs(t, err, util.ErrInvalidDate)

	_, err = learning.StartSession("2026-08-31", "9:05")
	assert.ErrorIs(t, err, util.ErrInvalidTimeSlot)

	session, err := learning.StartSession("2026-08-31", "09:05")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31_09:05", session.SessionID)
	assert.Zero(t, session.TotalAttempts)
}

func TestFailedSaveLeavesNoPartialState(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)
	clock := util.NewManualClock(now)
	store := &failingSaveStore{MemoryDocumentStore: repository.NewMemoryDocumentStore(clock)}
	learning := NewLearningService(store, NewStatisticsService(), NewSessionService(clock), clock)
	broadcaster := &capturingBroadcaster{}
	learning.SetBroadcaster(broadcaster)

	_, err := learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q1", Category: "재산보험", IsCorrect: true})
	require.Error(t, err)

	// No broadcast goes out for a write that never became durable.
	assert.Empty(t, broadcaster.events)

	// The durable documents still reconcile: global counters match the
	// per-category sums because neither was written.
	rt := learning.RealTimeData()
	assert.Zero(t, rt.TotalAttempts)
	stats := learning.CategoryStatistics()
	solved := 0
	for _, stat := range stats.Categories {
		solved += stat.Solved
	}
	assert.Equal(t, rt.TotalAttempts, solved)
	assert.Empty(t, learning.QuizResults(0).Results)
}

func TestContentHashTracksWrites(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC)
	learning, _, _ := newTestEngine(now)

	before := learning.ContentHash()
	assert.Equal(t, before, learning.ContentHash())

	_, err := learning.RecordQuizEvent(model.QuizEvent{QuestionID: "q1", Category: "재산보험", IsCorrect: true})
	require.NoError(t, err)

	after := learning.ContentHash()
	assert.NotEqual(t, before, after)
	assert.Equal(t, after, learning.ContentHash())
}
