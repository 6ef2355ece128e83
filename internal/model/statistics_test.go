package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryStatRecordInvariants(t *testing.T) {
	stat := &CategoryStat{TotalQuestions: 169}

	stat.Record("2026-08-30", true)
	stat.Record("2026-08-30", false)
	stat.Record("2026-08-31", true)

	assert.Equal(t, 3, stat.Solved)
	assert.Equal(t, 2, stat.Correct)
	assert.InDelta(t, 66.666, stat.Accuracy, 0.01)

	// Solved must equal the sum of the daily attempts.
	sum := 0
	for _, day := range stat.DailyProgress {
		sum += day.Attempts
		assert.LessOrEqual(t, day.Correct, day.Attempts)
	}
	assert.Equal(t, stat.Solved, sum)

	require.Contains(t, stat.DailyProgress, "2026-08-30")
	assert.Equal(t, 2, stat.DailyProgress["2026-08-30"].Attempts)
	assert.Equal(t, 1, stat.DailyProgress["2026-08-30"].Correct)
	assert.Equal(t, 1, stat.DailyProgress["2026-08-31"].Attempts)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, float64(0), Percentage(0, 0))
	assert.Equal(t, float64(50), Percentage(1, 2))
	assert.Equal(t, float64(100), Percentage(3, 3))
}

func TestDefaultCategoryStatistics(t *testing.T) {
	doc := DefaultCategoryStatistics()
	require.Len(t, doc.Categories, len(AllCategories))
	for _, key := range AllCategories {
		stat := doc.Categories[key]
		require.NotNil(t, stat)
		assert.Equal(t, CategoryTotals[key], stat.TotalQuestions)
		assert.Zero(t, stat.Solved)
		assert.Zero(t, stat.Correct)
		assert.Zero(t, stat.Accuracy)
	}
}

func TestStatCreatesAdHocBucket(t *testing.T) {
	doc := DefaultCategoryStatistics()
	stat := doc.Stat(CategoryKey("기타과목"))
	require.NotNil(t, stat)
	assert.Zero(t, stat.TotalQuestions)

	stat.Record("2026-08-31", true)
	assert.Equal(t, 1, doc.Categories[CategoryKey("기타과목")].Solved)
}
