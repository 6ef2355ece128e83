package model

// Outbound event types delivered to subscribed pages. These names are the
// contract surface toward the quiz UI and must not change.
const (
	EventDataUpdated        = "dataUpdated"
	EventStatisticsUpdated  = "statisticsUpdated"
	EventBasicLearningState = "basicLearningStateUpdated"
)

// SyncEvent is one change notification. Events are delivered once and then
// retained only in the broadcaster's audit ring buffer.
type SyncEvent struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  string      `json:"timestamp"`
	SourcePage string      `json:"sourcePage"`
}

// DataUpdatedPayload announces that the aggregate documents changed.
type DataUpdatedPayload struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// StatisticsUpdatedPayload carries a snapshot of the global counters.
type StatisticsUpdatedPayload struct {
	Stats     GlobalStats `json:"stats"`
	Timestamp string      `json:"timestamp"`
}

// GlobalStats is the flat global-counter view pushed to subscribers.
type GlobalStats struct {
	TotalAttempts   int     `json:"total_attempts"`
	TotalCorrect    int     `json:"total_correct"`
	OverallAccuracy float64 `json:"overall_accuracy"`
	TodayAttempts   int     `json:"today_attempts"`
	TodayCorrect    int     `json:"today_correct"`
	TodayAccuracy   float64 `json:"today_accuracy"`
}

// BasicLearningStatePayload announces a basic-learning answer so open pages
// can advance their question cursor.
type BasicLearningStatePayload struct {
	Category      string `json:"category"`
	QuestionIndex int    `json:"questionIndex"`
	IsCorrect     bool   `json:"isCorrect"`
}
