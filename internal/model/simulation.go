package model

// SimulatedResult is one quiz answer applied by the simulation harness. It is
// a QuizEvent without a timestamp: the harness derives timestamps from the
// simulated (date, time) so replays are deterministic.
type SimulatedResult struct {
	QuestionID    string `json:"questionId"`
	Category      string `json:"category"`
	IsCorrect     bool   `json:"isCorrect"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	QuestionIndex *int   `json:"questionIndex"`
}

// ExpectedBucket is the attempts/correct pair the validator compares against.
// Accuracy is deliberately excluded to keep floating point out of the oracle.
type ExpectedBucket struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// ExpectedSession describes what one (date, timeSlot) session should contain.
type ExpectedSession struct {
	BasicLearning *ExpectedBucket           `json:"basicLearning,omitempty"`
	Categories    map[string]ExpectedBucket `json:"categories,omitempty"`
}

// Validation entry statuses.
const (
	ValidationPass = "PASS"
	ValidationFail = "FAIL"
)

// ValidationEntry is one comparison outcome.
type ValidationEntry struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// ValidationReport is the harness verdict: a mismatch is reported here, never
// raised as an error.
type ValidationReport struct {
	Success bool              `json:"success"`
	Entries []ValidationEntry `json:"entries"`
}

// Add appends one entry and folds its status into the overall flag.
func (r *ValidationReport) Add(entry ValidationEntry) {
	r.Entries = append(r.Entries, entry)
	if entry.Status == ValidationFail {
		r.Success = false
	}
}
