package model

import "time"

// QuizEvent is the inbound quizCompleted payload from a quiz page.
// Category carries the display alias as the page knows it; normalization
// happens inside the engine. QuestionIndex is optional: when absent the
// session's continue-learning index advances by one instead.
type QuizEvent struct {
	QuestionID    string     `json:"questionId" binding:"required"`
	Category      string     `json:"category" binding:"required"`
	IsCorrect     bool       `json:"isCorrect"`
	UserAnswer    string     `json:"userAnswer"`
	CorrectAnswer string     `json:"correctAnswer"`
	Timestamp     *time.Time `json:"timestamp"`
	QuestionIndex *int       `json:"questionIndex"`
}

// QuizResultRecord is one archived answer inside the quizResults document.
type QuizResultRecord struct {
	QuestionID    string `json:"questionId"`
	Category      string `json:"category"`
	IsCorrect     bool   `json:"isCorrect"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Timestamp     string `json:"timestamp"`
	SessionID     string `json:"sessionId"`
}

// QuizResults is the persisted quizResults document.
type QuizResults struct {
	Results     []QuizResultRecord `json:"results"`
	TotalCount  int                `json:"total_count"`
	LastUpdated string             `json:"last_updated"`
}

// Append archives one record and keeps the running count in step.
func (d *QuizResults) Append(record QuizResultRecord) {
	d.Results = append(d.Results, record)
	d.TotalCount = len(d.Results)
	d.LastUpdated = record.Timestamp
}

// DefaultQuizResults returns an empty archive.
func DefaultQuizResults() *QuizResults {
	return &QuizResults{Results: []QuizResultRecord{}}
}
