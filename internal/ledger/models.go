package ledger

import "time"

// CompletionFact records that a student satisfied a lesson's completion
// trigger. One row per (student, lesson); writes are upserts and a fact
// is never unset.
type CompletionFact struct {
	StudentID   string    `json:"student_id"`
	LessonID    string    `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// QuizAttempt is one graded submission. Rows accumulate across retakes;
// ID doubles as the idempotency key so a retried submit converges on a
// single row instead of double-recording.
type QuizAttempt struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	LessonID    string    `json:"lesson_id"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"total_points"` // snapshotted at submission time
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Percent is the attempt's score as a 0..100 percentage.
func (a QuizAttempt) Percent() float64 {
	if a.TotalPoints <= 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalPoints) * 100
}

// CapstoneSubmission has a two-party write lifecycle: the student owns
// the content fields (links, submitted_at), the teacher owns Grade and
// Feedback. Both write the same row, keyed on (project, student).
type CapstoneSubmission struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	StudentID    string    `json:"student_id"`
	ProjectLinks []string  `json:"project_links"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Grade        *float64  `json:"grade,omitempty"`
	Feedback     string    `json:"feedback,omitempty"`
}
