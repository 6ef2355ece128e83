package repository

import (
	"testing"
	"time"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *MemoryDocumentStore {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))
	return NewMemoryDocumentStore(clock)
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	store := newStore()

	stats := store.LoadCategoryStatistics()
	require.Len(t, stats.Categories, len(model.AllCategories))

	rt := store.LoadRealTimeData()
	assert.Equal(t, "2026-08-31T09:00:00Z", rt.SessionStart)
	assert.Zero(t, rt.TotalAttempts)

	results := store.LoadQuizResults()
	assert.Empty(t, results.Results)
	assert.Zero(t, results.TotalCount)
}

func TestCorruptDocumentFallsBackToDefault(t *testing.T) {
	store := newStore()
	store.SeedRaw(model.DocCategoryStatistics, "{not json")
	store.SeedRaw(model.DocRealTimeData, "[]")
	store.SeedRaw(model.DocQuizResults, "null{")

	stats := store.LoadCategoryStatistics()
	require.Len(t, stats.Categories, len(model.AllCategories))
	assert.Zero(t, stats.Categories[model.CategoryProperty].Solved)

	rt := store.LoadRealTimeData()
	assert.Equal(t, "2026-08-31T09:00:00Z", rt.SessionStart)

	results := store.LoadQuizResults()
	assert.Empty(t, results.Results)
}

func TestSaveAllPersistsEveryDocument(t *testing.T) {
	store := newStore()

	stats := store.LoadCategoryStatistics()
	stats.Stat(model.CategoryProperty).Record("2026-08-31", true)
	rt := store.LoadRealTimeData()
	rt.TotalAttempts = 1
	results := store.LoadQuizResults()
	results.Append(model.QuizResultRecord{QuestionID: "q1", Category: "재산보험", IsCorrect: true, Timestamp: "2026-08-31T09:05:00Z"})

	require.NoError(t, store.SaveAll(stats, rt, results))

	assert.Equal(t, 1, store.LoadCategoryStatistics().Categories[model.CategoryProperty].Solved)
	assert.Equal(t, 1, store.LoadRealTimeData().TotalAttempts)
	assert.Equal(t, 1, store.LoadQuizResults().TotalCount)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore()

	stats := store.LoadCategoryStatistics()
	stats.Stat(model.CategoryMarine).Record("2026-08-31", true)
	require.NoError(t, store.SaveCategoryStatistics(stats))

	reloaded := store.LoadCategoryStatistics()
	marine := reloaded.Categories[model.CategoryMarine]
	require.NotNil(t, marine)
	assert.Equal(t, 1, marine.Solved)
	assert.Equal(t, 1, marine.Correct)
	assert.Equal(t, 201, marine.TotalQuestions)

	rt := store.LoadRealTimeData()
	rt.EnsureSession("2026-08-31", "09:05").RecordTotal(true)
	require.NoError(t, store.SaveRealTimeData(rt))

	session := store.LoadRealTimeData().Session("2026-08-31", "09:05")
	require.NotNil(t, session)
	assert.Equal(t, 1, session.TotalAttempts)

	results := store.LoadQuizResults()
	results.Append(model.QuizResultRecord{QuestionID: "q1", Category: "재산보험", IsCorrect: true, Timestamp: "2026-08-31T09:05:00Z"})
	require.NoError(t, store.SaveQuizResults(results))

	archive := store.LoadQuizResults()
	require.Len(t, archive.Results, 1)
	assert.Equal(t, 1, archive.TotalCount)
	assert.Equal(t, "2026-08-31T09:05:00Z", archive.LastUpdated)
}
