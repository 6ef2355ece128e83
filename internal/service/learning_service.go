package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"sync"

	"aicu_backend/internal/model"
	"aicu_backend/internal/repository"
	"aicu_backend/internal/util"
	"aicu_backend/pkg/logger"
	"aicu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// Broadcaster is the outward edge of a successful write. SyncService
// implements it; LearningService stays ignorant of delivery details.
type Broadcaster interface {
	Publish(eventType string, payload interface{}, source string)
}

// RecordOutcome describes what one recorded quiz event did to the documents.
type RecordOutcome struct {
	SessionID     string            `json:"sessionId"`
	Category      model.CategoryKey `json:"category"`
	RoutedBasic   bool              `json:"routedBasic"`
	QuestionIndex int               `json:"questionIndex"`
	IsCorrect     bool              `json:"isCorrect"`
	Timestamp     string            `json:"timestamp"`
	Global        model.GlobalStats `json:"global"`
}

// LearningService is the single writer of the statistics engine. Every
// aggregate mutation runs inside its mutex so no reader ever observes a
// half-applied quiz event, and every document save completes before the
// change notification goes out.
type LearningService struct {
	mu       sync.Mutex
	Store    repository.DocumentStore
	Stats    *StatisticsService
	Sessions *SessionService
	Clock    util.Clock

	broadcaster Broadcaster
}

func NewLearningService(store repository.DocumentStore, stats *StatisticsService, sessions *SessionService, clock util.Clock) *LearningService {
	return &LearningService{
		Store:    store,
		Stats:    stats,
		Sessions: sessions,
		Clock:    clock,
	}
}

// SetBroadcaster wires the sync layer in after construction; the two services
// reference each other (broadcast after write, content hash for ticks).
func (s *LearningService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// RecordQuizEvent runs the full pipeline for one answered question and then
// dispatches the immediate change notifications.
func (s *LearningService) RecordQuizEvent(event model.QuizEvent) (*RecordOutcome, error) {
	outcome, err := s.record(event)
	if err != nil {
		return nil, err
	}
	s.announce(outcome)
	return outcome, nil
}

// RecordQuizEventQuiet records without broadcasting. The simulation harness
// uses it to apply a batch and then trigger a single explicit broadcast.
func (s *LearningService) RecordQuizEventQuiet(event model.QuizEvent) (*RecordOutcome, error) {
	return s.record(event)
}

func (s *LearningService) record(event model.QuizEvent) (*RecordOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.Clock.Now()
	if event.Timestamp != nil {
		ts = *event.Timestamp
	}

	key := model.NormalizeCategory(event.Category)
	if !model.IsKnownCategory(key) {
		logger.Log.Warn("unknown category alias, tracking ad-hoc bucket",
			zap.String("alias", event.Category))
	}

	stats := s.Store.LoadCategoryStatistics()
	rt := s.Store.LoadRealTimeData()
	results := s.Store.LoadQuizResults()

	s.Stats.ApplyCategoryResult(stats, key, event.IsCorrect, ts)
	s.Stats.ApplyGlobalResult(rt, key, event.IsCorrect, ts)

	pointer := s.Sessions.CurrentPointer(ts)
	routedBasic, index := s.Sessions.RecordIntoSession(rt, pointer, key, event.IsCorrect, event.QuestionIndex)

	results.Append(model.QuizResultRecord{
		QuestionID:    event.QuestionID,
		Category:      event.Category,
		IsCorrect:     event.IsCorrect,
		UserAnswer:    event.UserAnswer,
		CorrectAnswer: event.CorrectAnswer,
		Timestamp:     util.FormatTimestamp(ts),
		SessionID:     pointer.SessionID,
	})

	if err := s.Store.SaveAll(stats, rt, results); err != nil {
		return nil, err
	}

	monitoring.QuizEventsTotal.WithLabelValues(string(key), strconv.FormatBool(event.IsCorrect)).Inc()

	return &RecordOutcome{
		SessionID:     pointer.SessionID,
		Category:      key,
		RoutedBasic:   routedBasic,
		QuestionIndex: index,
		IsCorrect:     event.IsCorrect,
		Timestamp:     util.FormatTimestamp(ts),
		Global:        s.Stats.GlobalStats(rt),
	}, nil
}

func (s *LearningService) announce(outcome *RecordOutcome) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(model.EventDataUpdated, model.DataUpdatedPayload{
		Timestamp: outcome.Timestamp,
		Source:    "quiz",
	}, "quiz")
	s.broadcaster.Publish(model.EventStatisticsUpdated, model.StatisticsUpdatedPayload{
		Stats:     outcome.Global,
		Timestamp: outcome.Timestamp,
	}, "quiz")
	if outcome.RoutedBasic {
		s.broadcaster.Publish(model.EventBasicLearningState, model.BasicLearningStatePayload{
			Category:      string(outcome.Category),
			QuestionIndex: outcome.QuestionIndex,
			IsCorrect:     outcome.IsCorrect,
		}, "quiz")
	}
}

// StartSession idempotently creates a session bucket and persists it.
func (s *LearningService) StartSession(date, timeSlot string) (*model.Session, error) {
	if !util.ValidDate(date) {
		return nil, util.ErrInvalidDate
	}
	if !util.ValidSlot(timeSlot) {
		return nil, util.ErrInvalidTimeSlot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rt := s.Store.LoadRealTimeData()
	session := s.Sessions.StartSession(rt, date, timeSlot)
	if err := s.Store.SaveRealTimeData(rt); err != nil {
		return nil, err
	}
	return session, nil
}

// RedirectSession pins the current-session pointer to (date, timeSlot),
// creating the bucket when needed. Used by the simulation harness.
func (s *LearningService) RedirectSession(date, timeSlot string) (*model.Session, error) {
	if !util.ValidDate(date) {
		return nil, util.ErrInvalidDate
	}
	if !util.ValidSlot(timeSlot) {
		return nil, util.ErrInvalidTimeSlot
	}

	s.Sessions.SetOverride(date, timeSlot)

	s.mu.Lock()
	defer s.mu.Unlock()

	rt := s.Store.LoadRealTimeData()
	session := s.Sessions.StartSession(rt, date, timeSlot)
	pointer := model.SessionPointer{
		Date:      date,
		Time:      timeSlot,
		SessionID: model.SessionID(date, timeSlot),
	}
	rt.CurrentSession = &pointer
	if err := s.Store.SaveRealTimeData(rt); err != nil {
		return nil, err
	}
	return session, nil
}

// CategoryStatistics returns a consistent snapshot of the category document.
func (s *LearningService) CategoryStatistics() *model.CategoryStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Store.LoadCategoryStatistics()
}

// RealTimeData returns a consistent snapshot of the realtime document.
func (s *LearningService) RealTimeData() *model.RealTimeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Store.LoadRealTimeData()
}

// QuizResults returns the archive, trimmed to the most recent limit entries
// when limit is positive.
func (s *LearningService) QuizResults(limit int) *model.QuizResults {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.Store.LoadQuizResults()
	if limit > 0 && len(doc.Results) > limit {
		trimmed := *doc
		trimmed.Results = doc.Results[len(doc.Results)-limit:]
		return &trimmed
	}
	return doc
}

// ContinueIndex resolves the continue-learning question index.
func (s *LearningService) ContinueIndex(category, date, timeSlot string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.Store.LoadRealTimeData()
	return s.Sessions.LastQuestionIndex(rt, category, date, timeSlot)
}

// ContentHash digests the two aggregate documents. The periodic sync tick
// compares consecutive hashes to debounce no-op broadcasts.
func (s *LearningService) ContentHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := json.Marshal(s.Store.LoadCategoryStatistics())
	if err != nil {
		stats = nil
	}
	rt, err := json.Marshal(s.Store.LoadRealTimeData())
	if err != nil {
		rt = nil
	}

	digest := sha256.New()
	digest.Write(stats)
	digest.Write(rt)
	return hex.EncodeToString(digest.Sum(nil))
}
