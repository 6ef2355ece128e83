package model

// DailyProgress is one calendar-day bucket inside a category's history.
type DailyProgress struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// CategoryStat accumulates every answered question for one subject.
// Invariants: Solved equals the sum of DailyProgress attempts, Correct never
// exceeds Solved, Accuracy is Correct/Solved*100 (0 while Solved is 0).
type CategoryStat struct {
	TotalQuestions int                       `json:"total_questions"`
	Solved         int                       `json:"solved"`
	Correct        int                       `json:"correct"`
	Accuracy       float64                   `json:"accuracy"`
	DailyProgress  map[string]*DailyProgress `json:"daily_progress"`
}

// Record applies one answered question dated by the given ISO date.
func (s *CategoryStat) Record(date string, isCorrect bool) {
	s.Solved++
	if isCorrect {
		s.Correct++
	}
	s.Accuracy = Percentage(s.Correct, s.Solved)

	if s.DailyProgress == nil {
		s.DailyProgress = make(map[string]*DailyProgress)
	}
	day, ok := s.DailyProgress[date]
	if !ok {
		day = &DailyProgress{}
		s.DailyProgress[date] = day
	}
	day.Attempts++
	if isCorrect {
		day.Correct++
	}
}

// CategoryStatistics is the persisted categoryStatistics document.
type CategoryStatistics struct {
	Categories  map[CategoryKey]*CategoryStat `json:"categories"`
	LastUpdated string                        `json:"last_updated"`
}

// Stat returns the bucket for key, creating an ad-hoc zeroed one for
// categories outside the registry.
func (d *CategoryStatistics) Stat(key CategoryKey) *CategoryStat {
	if d.Categories == nil {
		d.Categories = make(map[CategoryKey]*CategoryStat)
	}
	stat, ok := d.Categories[key]
	if !ok {
		stat = &CategoryStat{
			TotalQuestions: CategoryTotals[key],
			DailyProgress:  make(map[string]*DailyProgress),
		}
		d.Categories[key] = stat
	}
	return stat
}

// DefaultCategoryStatistics seeds one zeroed bucket per registry subject.
func DefaultCategoryStatistics() *CategoryStatistics {
	doc := &CategoryStatistics{Categories: make(map[CategoryKey]*CategoryStat)}
	for _, key := range AllCategories {
		doc.Categories[key] = &CategoryStat{
			TotalQuestions: CategoryTotals[key],
			DailyProgress:  make(map[string]*DailyProgress),
		}
	}
	return doc
}

// Percentage is the shared accuracy formula: correct/total*100, 0 for an
// empty denominator.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
