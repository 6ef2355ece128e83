package service

import (
	"time"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"
)

// StatisticsService holds the read-modify-write aggregation rules for the
// categoryStatistics and realTimeData documents. It never touches the store
// itself: LearningService loads the documents, applies these rules inside the
// engine critical section, and persists the result.
type StatisticsService struct{}

func NewStatisticsService() *StatisticsService {
	return &StatisticsService{}
}

// ApplyCategoryResult folds one answered question into the per-category
// aggregates: solved/correct/accuracy plus the calendar-day bucket.
func (s *StatisticsService) ApplyCategoryResult(doc *model.CategoryStatistics, key model.CategoryKey, isCorrect bool, ts time.Time) {
	doc.Stat(key).Record(util.FormatDate(ts), isCorrect)
	doc.LastUpdated = util.FormatTimestamp(ts)
}

// ApplyGlobalResult folds the same answer into the global counters. The
// today-counters reset to this single event when the event's calendar date
// differs from session_start, otherwise they increment in place.
func (s *StatisticsService) ApplyGlobalResult(rt *model.RealTimeData, key model.CategoryKey, isCorrect bool, ts time.Time) {
	eventDate := util.FormatDate(ts)
	if sessionDate(rt.SessionStart) != eventDate {
		rt.TodayAttempts = 1
		rt.TodayCorrect = 0
		if isCorrect {
			rt.TodayCorrect = 1
		}
		rt.SessionStart = util.FormatTimestamp(ts)
	} else {
		rt.TodayAttempts++
		if isCorrect {
			rt.TodayCorrect++
		}
	}
	rt.TodayAccuracy = model.Percentage(rt.TodayCorrect, rt.TodayAttempts)

	rt.TotalAttempts++
	if isCorrect {
		rt.TotalCorrect++
	}
	rt.OverallAccuracy = model.Percentage(rt.TotalCorrect, rt.TotalAttempts)

	summary := rt.Summary(key)
	summary.Total++
	if isCorrect {
		summary.Correct++
	} else {
		summary.Incorrect++
	}
	summary.Accuracy = model.Percentage(summary.Correct, summary.Total)
}

// GlobalStats snapshots the flat counters for the statisticsUpdated event.
func (s *StatisticsService) GlobalStats(rt *model.RealTimeData) model.GlobalStats {
	return model.GlobalStats{
		TotalAttempts:   rt.TotalAttempts,
		TotalCorrect:    rt.TotalCorrect,
		OverallAccuracy: rt.OverallAccuracy,
		TodayAttempts:   rt.TodayAttempts,
		TodayCorrect:    rt.TodayCorrect,
		TodayAccuracy:   rt.TodayAccuracy,
	}
}

// sessionDate extracts the calendar date of a stored session_start timestamp.
// An unparsable value never matches, which forces a fresh today-window.
func sessionDate(sessionStart string) string {
	t, err := time.Parse(util.TimestampLayout, sessionStart)
	if err != nil {
		return ""
	}
	return util.FormatDate(t)
}
