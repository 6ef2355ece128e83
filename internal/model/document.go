package model

import "time"

// Document schema version persisted with every row. Bump on any change to the
// JSON layout of the three documents.
const DocumentSchemaVersion = 1

// Keys of the persisted documents.
const (
	DocCategoryStatistics = "categoryStatistics"
	DocRealTimeData       = "realTimeData"
	DocQuizResults        = "quizResults"
)

// StatsDocument is one persisted JSON document row.
type StatsDocument struct {
	DocKey        string    `gorm:"primaryKey;column:doc_key;type:varchar(64)" json:"docKey"`
	Payload       string    `gorm:"type:longtext" json:"payload"`
	SchemaVersion int       `gorm:"not null;default:1" json:"schemaVersion"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (StatsDocument) TableName() string {
	return "stats_documents"
}
