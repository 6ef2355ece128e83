package model

// SessionBucket is the attempts/correct/accuracy triple shared by the
// basic-learning route and the session aggregate totals.
type SessionBucket struct {
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Record applies one answer and recomputes the bucket accuracy.
func (b *SessionBucket) Record(isCorrect bool) {
	b.Attempts++
	if isCorrect {
		b.Correct++
	}
	b.Accuracy = Percentage(b.Correct, b.Attempts)
}

// SessionCategory is a per-subject bucket inside a time-slotted session.
// LastQuestionIndex is monotonically non-decreasing within one session.
type SessionCategory struct {
	Attempts          int     `json:"attempts"`
	Correct           int     `json:"correct"`
	Accuracy          float64 `json:"accuracy"`
	LastQuestionIndex int     `json:"last_question_index"`
}

// Session is one (date, time-slot) activity bucket.
type Session struct {
	SessionID     string                           `json:"session_id"`
	Date          string                           `json:"date"`
	TimeSlot      string                           `json:"time_slot"`
	Categories    map[CategoryKey]*SessionCategory `json:"categories"`
	BasicLearning *SessionBucket                   `json:"basic_learning"`
	TotalAttempts int                              `json:"total_attempts"`
	TotalCorrect  int                              `json:"total_correct"`
	TotalAccuracy float64                          `json:"total_accuracy"`
}

// Category returns the session bucket for key, creating it when absent.
func (s *Session) Category(key CategoryKey) *SessionCategory {
	if s.Categories == nil {
		s.Categories = make(map[CategoryKey]*SessionCategory)
	}
	bucket, ok := s.Categories[key]
	if !ok {
		bucket = &SessionCategory{}
		s.Categories[key] = bucket
	}
	return bucket
}

// RecordTotal bumps the session-wide counters for one answer.
func (s *Session) RecordTotal(isCorrect bool) {
	s.TotalAttempts++
	if isCorrect {
		s.TotalCorrect++
	}
	s.TotalAccuracy = Percentage(s.TotalCorrect, s.TotalAttempts)
}

// SessionPointer locates the session currently receiving live traffic.
type SessionPointer struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	SessionID string `json:"session_id"`
}

// CategorySummary is the flat per-subject rollup kept alongside the global
// counters for dashboard reads.
type CategorySummary struct {
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

// RealTimeData is the persisted realTimeData document: global counters, the
// current-session pointer, every time-slotted session, and the per-category
// continue-learning index map.
type RealTimeData struct {
	TotalAttempts   int     `json:"total_attempts"`
	TotalCorrect    int     `json:"total_correct"`
	OverallAccuracy float64 `json:"overall_accuracy"`
	TodayAttempts   int     `json:"today_attempts"`
	TodayCorrect    int     `json:"today_correct"`
	TodayAccuracy   float64 `json:"today_accuracy"`
	SessionStart    string  `json:"session_start"`

	Categories             map[CategoryKey]*CategorySummary       `json:"categories"`
	CurrentSession         *SessionPointer                        `json:"current_session"`
	TimeBasedSessions      map[string]map[string]*Session         `json:"time_based_sessions"`
	LastQuestionPerSession map[CategoryKey]map[string]int         `json:"last_question_per_session"`
}

// Summary returns the flat rollup for key, creating it when absent.
func (d *RealTimeData) Summary(key CategoryKey) *CategorySummary {
	if d.Categories == nil {
		d.Categories = make(map[CategoryKey]*CategorySummary)
	}
	summary, ok := d.Categories[key]
	if !ok {
		summary = &CategorySummary{}
		d.Categories[key] = summary
	}
	return summary
}

// Session returns the (date, timeSlot) bucket, or nil when it was never created.
func (d *RealTimeData) Session(date, timeSlot string) *Session {
	if d.TimeBasedSessions == nil {
		return nil
	}
	byTime, ok := d.TimeBasedSessions[date]
	if !ok {
		return nil
	}
	return byTime[timeSlot]
}

// EnsureSession idempotently creates the (date, timeSlot) bucket with zeroed
// counters; an existing bucket is returned unchanged.
func (d *RealTimeData) EnsureSession(date, timeSlot string) *Session {
	if d.TimeBasedSessions == nil {
		d.TimeBasedSessions = make(map[string]map[string]*Session)
	}
	byTime, ok := d.TimeBasedSessions[date]
	if !ok {
		byTime = make(map[string]*Session)
		d.TimeBasedSessions[date] = byTime
	}
	session, ok := byTime[timeSlot]
	if !ok {
		session = &Session{
			SessionID:     SessionID(date, timeSlot),
			Date:          date,
			TimeSlot:      timeSlot,
			Categories:    make(map[CategoryKey]*SessionCategory),
			BasicLearning: &SessionBucket{},
		}
		byTime[timeSlot] = session
	}
	return session
}

// SessionID builds the canonical "<date>_<time>" bucket identifier. Both parts
// are zero-padded so identifiers sort lexicographically by recency.
func SessionID(date, timeSlot string) string {
	return date + "_" + timeSlot
}

// DefaultRealTimeData seeds zeroed global counters, one flat rollup per
// registry subject, and empty session maps. sessionStart anchors the
// today-counter rollover.
func DefaultRealTimeData(sessionStart string) *RealTimeData {
	doc := &RealTimeData{
		SessionStart:           sessionStart,
		Categories:             make(map[CategoryKey]*CategorySummary),
		TimeBasedSessions:      make(map[string]map[string]*Session),
		LastQuestionPerSession: make(map[CategoryKey]map[string]int),
	}
	for _, key := range AllCategories {
		doc.Categories[key] = &CategorySummary{}
	}
	return doc
}
