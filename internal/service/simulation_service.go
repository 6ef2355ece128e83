package service

import (
	"fmt"
	"sort"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"
	"aicu_backend/pkg/logger"
	"aicu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// SimulationService drives the live recording pipeline at an arbitrary
// (date, time) without touching the wall clock, and validates the resulting
// session aggregates. It is the regression oracle for the aggregator, the
// session manager and the continue-learning resolver.
type SimulationService struct {
	Learning *LearningService
	Sessions *SessionService
	Sync     *SyncService
}

func NewSimulationService(learning *LearningService, sessions *SessionService, sync *SyncService) *SimulationService {
	return &SimulationService{
		Learning: learning,
		Sessions: sessions,
		Sync:     sync,
	}
}

// SetSimulationTime redirects the current-session pointer to (date, timeSlot),
// creating the bucket when needed. Idempotent like StartSession.
func (s *SimulationService) SetSimulationTime(date, timeSlot string) error {
	_, err := s.Learning.RedirectSession(date, timeSlot)
	return err
}

// ClearSimulationTime returns the pointer to wall-clock derivation.
func (s *SimulationService) ClearSimulationTime() {
	s.Sessions.ClearOverride()
}

// SimulateBatchQuizResults pins the session once, applies every result
// through the same pipeline as live traffic in the given order, and then
// triggers exactly one explicit broadcast. Event timestamps derive from the
// simulated slot so identical batches replay identically.
func (s *SimulationService) SimulateBatchQuizResults(date, timeSlot string, results []model.SimulatedResult) (int, error) {
	if len(results) == 0 {
		return 0, util.ErrEmptyBatch
	}
	if err := s.SetSimulationTime(date, timeSlot); err != nil {
		return 0, err
	}

	ts, err := util.SlotTime(date, timeSlot)
	if err != nil {
		return 0, err
	}

	for i, result := range results {
		event := model.QuizEvent{
			QuestionID:    result.QuestionID,
			Category:      result.Category,
			IsCorrect:     result.IsCorrect,
			UserAnswer:    result.UserAnswer,
			CorrectAnswer: result.CorrectAnswer,
			Timestamp:     &ts,
			QuestionIndex: result.QuestionIndex,
		}
		if _, err := s.Learning.RecordQuizEventQuiet(event); err != nil {
			return i, err
		}
	}

	logger.Log.Info("simulation batch applied",
		zap.String("session", model.SessionID(date, timeSlot)),
		zap.Int("results", len(results)))
	monitoring.SimulationBatches.Inc()

	if s.Sync != nil {
		s.Sync.Publish(model.EventDataUpdated, model.DataUpdatedPayload{
			Timestamp: util.FormatTimestamp(ts),
			Source:    "simulation",
		}, "simulation")
	}
	return len(results), nil
}

// ValidateSimulationResults compares the recorded sessions against expected
// attempts/correct pairs. Accuracy is never compared, keeping floating point
// out of the oracle. Mismatches are reported, not raised.
func (s *SimulationService) ValidateSimulationResults(expected map[string]map[string]model.ExpectedSession) *model.ValidationReport {
	rt := s.Learning.RealTimeData()
	report := &model.ValidationReport{Success: true}

	for _, date := range sortedKeys(expected) {
		byTime := expected[date]
		for _, slot := range sortedKeys(byTime) {
			expectation := byTime[slot]
			session := rt.Session(date, slot)
			if session == nil {
				report.Add(model.ValidationEntry{
					Date:   date,
					Time:   slot,
					Status: model.ValidationFail,
					Reason: "session not found",
				})
				continue
			}
			s.validateSession(report, date, slot, session, expectation)
		}
	}
	return report
}

func (s *SimulationService) validateSession(report *model.ValidationReport, date, slot string, session *model.Session, expectation model.ExpectedSession) {
	if expected := expectation.BasicLearning; expected != nil {
		entry := model.ValidationEntry{Date: date, Time: slot, Status: model.ValidationPass}
		actual := session.BasicLearning
		if actual == nil {
			actual = &model.SessionBucket{}
		}
		if actual.Attempts != expected.Attempts || actual.Correct != expected.Correct {
			entry.Status = model.ValidationFail
			entry.Reason = fmt.Sprintf("basic learning: expected %d/%d attempts/correct, got %d/%d",
				expected.Attempts, expected.Correct, actual.Attempts, actual.Correct)
		}
		report.Add(entry)
	}

	for _, category := range sortedKeys(expectation.Categories) {
		expected := expectation.Categories[category]
		entry := model.ValidationEntry{Date: date, Time: slot, Category: category, Status: model.ValidationPass}

		var attempts, correct int
		if bucket, ok := session.Categories[model.CategoryKey(category)]; ok {
			attempts, correct = bucket.Attempts, bucket.Correct
		}
		if attempts != expected.Attempts || correct != expected.Correct {
			entry.Status = model.ValidationFail
			entry.Reason = fmt.Sprintf("expected %d/%d attempts/correct, got %d/%d",
				expected.Attempts, expected.Correct, attempts, correct)
		}
		report.Add(entry)
	}
}

// sortedKeys keeps report ordering stable across runs.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
