package service

import (
	"testing"
	"time"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentPointerFromClock(t *testing.T) {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 5, 42, 0, time.UTC))
	sessions := NewSessionService(clock)

	pointer := sessions.CurrentPointer(clock.Now())
	assert.Equal(t, "2026-08-31", pointer.Date)
	assert.Equal(t, "09:05", pointer.Time)
	assert.Equal(t, "2026-08-31_09:05", pointer.SessionID)
}

func TestOverridePinsPointer(t *testing.T) {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC))
	sessions := NewSessionService(clock)

	sessions.SetOverride("2026-01-15", "14:30")
	pointer := sessions.CurrentPointer(clock.Now())
	assert.Equal(t, "2026-01-15_14:30", pointer.SessionID)

	sessions.ClearOverride()
	pointer = sessions.CurrentPointer(clock.Now())
	assert.Equal(t, "2026-08-31_09:05", pointer.SessionID)
}

func TestExplicitQuestionIndexMonotonic(t *testing.T) {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC))
	sessions := NewSessionService(clock)
	rt := model.DefaultRealTimeData("2026-08-31T09:00:00Z")
	pointer := sessions.CurrentPointer(clock.Now())

	five, nine, three := 5, 9, 3

	_, index := sessions.RecordIntoSession(rt, pointer, model.CategoryProperty, true, &five)
	assert.Equal(t, 5, index)

	_, index = sessions.RecordIntoSession(rt, pointer, model.CategoryProperty, true, &nine)
	assert.Equal(t, 9, index)

	// A stale lower index never winds the cursor back.
	_, index = sessions.RecordIntoSession(rt, pointer, model.CategoryProperty, false, &three)
	assert.Equal(t, 9, index)

	// Without an explicit index the cursor advances by one.
	_, index = sessions.RecordIntoSession(rt, pointer, model.CategoryProperty, true, nil)
	assert.Equal(t, 10, index)
}

func TestRecordIntoSessionRoutes(t *testing.T) {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC))
	sessions := NewSessionService(clock)
	rt := model.DefaultRealTimeData("2026-08-31T09:00:00Z")
	pointer := sessions.CurrentPointer(clock.Now())

	routedBasic, index := sessions.RecordIntoSession(rt, pointer, model.CategoryKey("unknown"), true, nil)
	assert.True(t, routedBasic)
	assert.Equal(t, -1, index)

	routedBasic, index = sessions.RecordIntoSession(rt, pointer, model.CategoryMarine, true, nil)
	assert.False(t, routedBasic)
	assert.Equal(t, 1, index)

	session := rt.Session("2026-08-31", "09:05")
	require.NotNil(t, session)
	assert.Equal(t, 1, session.BasicLearning.Attempts)
	assert.Equal(t, 1, session.Categories[model.CategoryMarine].Attempts)
	assert.Equal(t, 2, session.TotalAttempts)
	require.NotNil(t, rt.CurrentSession)
	assert.Equal(t, pointer.SessionID, rt.CurrentSession.SessionID)
}

func TestLastQuestionIndexExplicitSession(t *testing.T) {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC))
	sessions := NewSessionService(clock)
	rt := model.DefaultRealTimeData("2026-08-31T09:00:00Z")
	pointer := sessions.CurrentPointer(clock.Now())

	seven := 7
	sessions.RecordIntoSession(rt, pointer, model.CategoryProperty, true, &seven)

	assert.Equal(t, 7, sessions.LastQuestionIndex(rt, "재산보험", "2026-08-31", "09:05"))
	assert.Equal(t, 0, sessions.LastQuestionIndex(rt, "재산보험", "2026-08-31", "10:00"))
	assert.Equal(t, 0, sessions.LastQuestionIndex(rt, "해상보험", "2026-08-31", "09:05"))
}

func TestLastQuestionIndexPicksMostRecentSession(t *testing.T) {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC))
	sessions := NewSessionService(clock)
	rt := model.DefaultRealTimeData("2026-08-31T09:00:00Z")

	twelve, thirty := 12, 30

	morning := model.SessionPointer{Date: "2026-08-31", Time: "09:05", SessionID: model.SessionID("2026-08-31", "09:05")}
	sessions.RecordIntoSession(rt, morning, model.CategoryProperty, true, &thirty)

	evening := model.SessionPointer{Date: "2026-08-31", Time: "21:00", SessionID: model.SessionID("2026-08-31", "21:00")}
	sessions.RecordIntoSession(rt, evening, model.CategoryProperty, true, &twelve)

	// The evening session is lexicographically greatest, so its index wins
	// even though the morning one is larger.
	assert.Equal(t, 12, sessions.LastQuestionIndex(rt, "재산보험", "", ""))
}

func TestStartSessionIdempotent(t *testing.T) {
	clock := util.NewManualClock(time.Date(2026, 8, 31, 9, 5, 0, 0, time.UTC))
	sessions := NewSessionService(clock)
	rt := model.DefaultRealTimeData("2026-08-31T09:00:00Z")

	first := sessions.StartSession(rt, "2026-08-31", "09:05")
	first.RecordTotal(true)

	second := sessions.StartSession(rt, "2026-08-31", "09:05")
	require.Same(t, first, second)
	assert.Equal(t, 1, second.TotalAttempts)
}
