package repository

import (
	"encoding/json"

	"aicu_backend/internal/model"
	"aicu_backend/pkg/logger"
	"aicu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// DocumentStore is the persistence surface of the statistics engine. Loads
// never fail: a missing or corrupt document is replaced by a freshly
// constructed default and logged. Saves are write-through and their errors
// propagate, since silently losing an aggregate update would break the counters.
type DocumentStore interface {
	LoadCategoryStatistics() *model.CategoryStatistics
	SaveCategoryStatistics(doc *model.CategoryStatistics) error
	LoadRealTimeData() *model.RealTimeData
	SaveRealTimeData(doc *model.RealTimeData) error
	LoadQuizResults() *model.QuizResults
	SaveQuizResults(doc *model.QuizResults) error

	// SaveAll persists the three documents as one atomic unit. The quiz
	// pipeline touches all three per event; a partial write would desync
	// the global counters from the per-category sums.
	SaveAll(stats *model.CategoryStatistics, rt *model.RealTimeData, results *model.QuizResults) error
}

// decodeDocument unmarshals payload into out. A decode failure counts as a
// recovery: the caller falls back to its default document.
func decodeDocument(key, payload string, out interface{}) bool {
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		logger.Log.Warn("corrupt document, substituting default",
			zap.String("doc", key), zap.Error(err))
		monitoring.StoreReadRecoveries.WithLabelValues(key).Inc()
		return false
	}
	return true
}
