package repository

import (
	"encoding/json"
	"sync"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"
)

// MemoryDocumentStore keeps the documents as marshaled JSON in memory. It
// backs the test suite and deterministic simulation runs; round-tripping
// through JSON keeps its behavior aligned with the database repository.
type MemoryDocumentStore struct {
	mu       sync.Mutex
	payloads map[string]string
	Clock    util.Clock
}

func NewMemoryDocumentStore(clock util.Clock) *MemoryDocumentStore {
	return &MemoryDocumentStore{
		payloads: make(map[string]string),
		Clock:    clock,
	}
}

// SeedRaw installs a raw payload, valid or not. Tests use it to exercise the
// corrupt-document recovery path.
func (s *MemoryDocumentStore) SeedRaw(key, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[key] = payload
}

// RawPayload returns the stored payload for byte-level comparisons.
func (s *MemoryDocumentStore) RawPayload(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.payloads[key]
	return payload, ok
}

func (s *MemoryDocumentStore) load(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.payloads[key]
	return payload, ok
}

func (s *MemoryDocumentStore) save(key string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[key] = string(data)
	return nil
}

// SaveAll marshals the three documents first and swaps them in under one
// lock, so a marshal failure leaves the store untouched.
func (s *MemoryDocumentStore) SaveAll(stats *model.CategoryStatistics, rt *model.RealTimeData, results *model.QuizResults) error {
	statsData, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	rtData, err := json.Marshal(rt)
	if err != nil {
		return err
	}
	resultsData, err := json.Marshal(results)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[model.DocCategoryStatistics] = string(statsData)
	s.payloads[model.DocRealTimeData] = string(rtData)
	s.payloads[model.DocQuizResults] = string(resultsData)
	return nil
}

func (s *MemoryDocumentStore) LoadCategoryStatistics() *model.CategoryStatistics {
	payload, ok := s.load(model.DocCategoryStatistics)
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

func (s *MemoryDocumentStore) SaveCategoryStatistics(doc *model.CategoryStatistics) error {
	return s.save(model.DocCategoryStatistics, doc)
}

func (s *MemoryDocumentStore) LoadRealTimeData() *model.RealTimeData {
	payload, ok := s.load(model.DocRealTimeData)
	if !ok {
		return model.DefaultRealTimeData(util.FormatTimestamp(s.Clock.Now()))
	}
	var doc model.RealTimeData
	if !decodeDocument(model.DocRealTimeData, payload, &doc) {
		return model.DefaultRealTimeData(util.FormatTimestamp(s.Clock.Now()))
	}
	return &doc
}

func (s *MemoryDocumentStore) SaveRealTimeData(doc *model.RealTimeData) error {
	return s.save(model.DocRealTimeData, doc)
}

func (s *MemoryDocumentStore) LoadQuizResults() *model.QuizResults {
	payload, ok := s.load(model.DocQuizResults)
	if !ok {
		return model.DefaultQuizResults()
	}
	var doc model.QuizResults
	if !decodeDocument(model.DocQuizResults, payload, &doc) {
		return model.DefaultQuizResults()
	}
	return &doc
}

func (s *MemoryDocumentStore) SaveQuizResults(doc *model.QuizResults) error {
	return s.save(model.DocQuizResults, doc)
}
