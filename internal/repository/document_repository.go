package repository

import (
	"encoding/json"
	"errors"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"
	"aicu_backend/pkg/logger"
	"aicu_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentRepository persists the three engine documents as JSON rows in the
// stats_documents table.
type DocumentRepository struct {
	DB    *gorm.DB
	Clock util.Clock
}

func NewDocumentRepository(db *gorm.DB, clock util.Clock) *DocumentRepository {
	return &DocumentRepository{DB: db, Clock: clock}
}

func (r *DocumentRepository) loadPayload(key string) (string, bool) {
	var row model.StatsDocument
	err := r.DB.First(&row, "doc_key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Warn("document read failed, substituting default",
				zap.String("doc", key), zap.Error(err))
			monitoring.StoreReadRecoveries.WithLabelValues(key).Inc()
		}
		return "", false
	}
	return row.Payload, true
}

func (r *DocumentRepository) savePayload(db *gorm.DB, key string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	row := model.StatsDocument{
		DocKey:        key,
		Payload:       string(data),
		SchemaVersion: model.DocumentSchemaVersion,
		UpdatedAt:     r.Clock.Now(),
	}
	return db.Save(&row).Error
}

// SaveAll writes the three documents inside one database transaction, so a
// failed write rolls back the documents already written.
func (r *DocumentRepository) SaveAll(stats *model.CategoryStatistics, rt *model.RealTimeData, results *model.QuizResults) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := r.savePayload(tx, model.DocCategoryStatistics, stats); err != nil {
			return err
		}
		if err := r.savePayload(tx, model.DocRealTimeData, rt); err != nil {
			return err
		}
		return r.savePayload(tx, model.DocQuizResults, results)
	})
}

func (r *DocumentRepository) LoadCategoryStatistics() *model.CategoryStatistics {
	payload, ok := r.loadPayload(model.DocCategoryStatistics)
	if !ok {
		return model.DefaultCategoryStatistics()
	}
	var doc model.CategoryStatistics
	if !decodeDocument(model.DocCategoryStatistics, payload, &doc) {
		return model.DefaultCategoryStatistics()
	}
	if doc.Categories == nil {
		doc.Categories = model.DefaultCategoryStatistics().Categories
	}
	return &doc
}

func (r *DocumentRepository) SaveCategoryStatistics(doc *model.CategoryStatistics) error {
	return r.savePayload(r.DB, model.DocCategoryStatistics, doc)
}

func (r *DocumentRepository) LoadRealTimeData() *model.RealTimeData {
	payload, ok := r.loadPayload(model.DocRealTimeData)
	if !ok {
		return model.DefaultRealTimeData(util.FormatTimestamp(r.Clock.Now()))
	}
	var doc model.RealTimeData
	if !decodeDocument(model.DocRealTimeData, payload, &doc) {
		return model.DefaultRealTimeData(util.FormatTimestamp(r.Clock.Now()))
	}
	return &doc
}

func (r *DocumentRepository) SaveRealTimeData(doc *model.RealTimeData) error {
	return r.savePayload(r.DB, model.DocRealTimeData, doc)
}

func (r *DocumentRepository) LoadQuizResults() *model.QuizResults {
	payload, ok := r.loadPayload(model.DocQuizResults)
	if !ok {
		return model.DefaultQuizResults()
	}
	var doc model.QuizResults
	if !decodeDocument(model.DocQuizResults, payload, &doc) {
		return model.DefaultQuizResults()
	}
	return &doc
}

func (r *DocumentRepository) SaveQuizResults(doc *model.QuizResults) error {
	return r.savePayload(r.DB, model.DocQuizResults, doc)
}
