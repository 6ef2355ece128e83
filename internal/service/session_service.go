package service

import (
	"sync"
	"time"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"
)

// SessionService buckets activity into (date, time-slot) sessions and answers
// continue-learning lookups. The simulation harness can pin the current
// session pointer to an arbitrary slot; live traffic otherwise derives it
// from the injected clock, truncated to minutes.
type SessionService struct {
	Clock util.Clock

	mu       sync.Mutex
	override *model.SessionPointer
}

func NewSessionService(clock util.Clock) *SessionService {
	return &SessionService{Clock: clock}
}

// SetOverride pins the current-session pointer to (date, timeSlot).
func (s *SessionService) SetOverride(date, timeSlot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = &model.SessionPointer{
		Date:      date,
		Time:      timeSlot,
		SessionID: model.SessionID(date, timeSlot),
	}
}

// ClearOverride returns the pointer to wall-clock derivation.
func (s *SessionService) ClearOverride() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = nil
}

// Override returns a copy of the pinned pointer, or nil when live.
func (s *SessionService) Override() *model.SessionPointer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.override == nil {
		return nil
	}
	pointer := *s.override
	return &pointer
}

// CurrentPointer resolves the session receiving traffic at ts.
func (s *SessionService) CurrentPointer(ts time.Time) model.SessionPointer {
	if pointer := s.Override(); pointer != nil {
		return *pointer
	}
	date := util.FormatDate(ts)
	slot := util.FormatSlot(ts)
	return model.SessionPointer{
		Date:      date,
		Time:      slot,
		SessionID: model.SessionID(date, slot),
	}
}

// StartSession idempotently creates the (date, timeSlot) bucket.
func (s *SessionService) StartSession(rt *model.RealTimeData, date, timeSlot string) *model.Session {
	return rt.EnsureSession(date, timeSlot)
}

// RecordIntoSession routes one answer into the pointed session: known
// categories into their per-subject bucket, everything else into basic
// learning. Returns whether the basic route was taken and the resulting
// continue-learning index (-1 for the basic route).
func (s *SessionService) RecordIntoSession(rt *model.RealTimeData, pointer model.SessionPointer, key model.CategoryKey, isCorrect bool, questionIndex *int) (bool, int) {
	session := rt.EnsureSession(pointer.Date, pointer.Time)
	rt.CurrentSession = &pointer

	routedBasic := !model.IsKnownCategory(key)
	index := -1
	if routedBasic {
		session.BasicLearning.Record(isCorrect)
	} else {
		bucket := session.Category(key)
		bucket.Attempts++
		if isCorrect {
			bucket.Correct++
		}
		bucket.Accuracy = model.Percentage(bucket.Correct, bucket.Attempts)

		if questionIndex != nil && *questionIndex > bucket.LastQuestionIndex {
			bucket.LastQuestionIndex = *questionIndex
		} else if questionIndex == nil {
			bucket.LastQuestionIndex++
		}
		index = bucket.LastQuestionIndex

		if rt.LastQuestionPerSession == nil {
			rt.LastQuestionPerSession = make(map[model.CategoryKey]map[string]int)
		}
		indices, ok := rt.LastQuestionPerSession[key]
		if !ok {
			indices = make(map[string]int)
			rt.LastQuestionPerSession[key] = indices
		}
		indices[pointer.SessionID] = index
	}

	session.RecordTotal(isCorrect)
	return routedBasic, index
}

// LastQuestionIndex resolves where the learner left off in a category. With
// an explicit (date, timeSlot) it reads exactly that session; otherwise it
// picks the lexicographically greatest session key, which is the most recent
// one because keys are zero-padded "YYYY-MM-DD_HH:MM".
func (s *SessionService) LastQuestionIndex(rt *model.RealTimeData, category string, date, timeSlot string) int {
	key := model.NormalizeCategory(category)

	if date != "" && timeSlot != "" {
		session := rt.Session(date, timeSlot)
		if session == nil {
			return 0
		}
		bucket, ok := session.Categories[key]
		if !ok {
			return 0
		}
		return bucket.LastQuestionIndex
	}

	indices, ok := rt.LastQuestionPerSession[key]
	if !ok || len(indices) == 0 {
		return 0
	}
	latest := ""
	for sessionID := range indices {
		if sessionID > latest {
			latest = sessionID
		}
	}
	return indices[latest]
}
