package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrSubmissionNotFound = errors.New("ledger: capstone submission not found")

type AttemptFilter struct {
	StudentID string
	LessonID  string   // single-lesson filter
	LessonIDs []string // course-scope filter (all quiz lessons of a course)
	Limit     int
	Offset    int
}

// Store is the engine's write side plus the reads the calculators need.
type Store interface {
	// UpsertCompletion sets is_completed for (student, lesson). Calling
	// it again with the same key leaves exactly one fact.
	UpsertCompletion(ctx context.Context, studentID, lessonID string, at time.Time) error
	// CompletionFacts reports which of lessonIDs the student completed.
	CompletionFacts(ctx context.Context, studentID string, lessonIDs []string) (map[string]bool, error)

	// AppendAttempt inserts a new attempt row. A duplicate attempt ID
	// is a no-op (retry of the same submit), not an error.
	AppendAttempt(ctx context.Context, a QuizAttempt) error
	Attempts(ctx context.Context, f AttemptFilter) ([]QuizAttempt, error)

	// UpsertSubmission writes the student-owned fields of a capstone
	// submission; an existing Grade/Feedback is preserved.
	UpsertSubmission(ctx context.Context, sub CapstoneSubmission) (CapstoneSubmission, error)
	GetSubmission(ctx context.Context, projectID, studentID string) (CapstoneSubmission, error)
	// SetGrade writes the teacher-owned fields on an existing row.
	SetGrade(ctx context.Context, submissionID string, grade float64, feedback string) error
}

type memKey struct{ student, lesson string }

type memoryStore struct {
	mu          sync.RWMutex
	completions map[memKey]time.Time
	attempts    []QuizAttempt
	attemptIDs  map[string]bool
	submissions map[memKey]CapstoneSubmission // (project, student)
}

func NewInMemoryStore() Store {
	return &memoryStore{
		completions: map[memKey]time.Time{},
		attemptIDs:  map[string]bool{},
		submissions: map[memKey]CapstoneSubmission{},
	}
}

func (m *memoryStore) UpsertCompletion(_ context.Context, studentID, lessonID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions[memKey{studentID, lessonID}] = at
	return nil
}

func (m *memoryStore) CompletionFacts(_ context.Context, studentID string, lessonIDs []string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]bool{}
	for _, lid := range lessonIDs {
		if _, ok := m.completions[memKey{studentID, lid}]; ok {
			out[lid] = true
		}
	}
	return out, nil
}

func (m *memoryStore) AppendAttempt(_ context.Context, a QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attemptIDs[a.ID] {
		return nil
	}
	m.attemptIDs[a.ID] = true
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memoryStore) Attempts(_ context.Context, f AttemptFilter) ([]QuizAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inScope := map[string]bool{}
	for _, lid := range f.LessonIDs {
		inScope[lid] = true
	}
	out := []QuizAttempt{}
	for _, a := range m.attempts {
		if f.StudentID != "" && a.StudentID != f.StudentID {
			continue
		}
		if f.LessonID != "" && a.LessonID != f.LessonID {
			continue
		}
		if len(f.LessonIDs) > 0 && !inScope[a.LessonID] {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (m *memoryStore) UpsertSubmission(_ context.Context, sub CapstoneSubmission) (CapstoneSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{sub.ProjectID, sub.StudentID}
	if prev, ok := m.submissions[k]; ok {
		sub.ID = prev.ID
		sub.Grade = prev.Grade
		sub.Feedback = prev.Feedback
	}
	m.submissions[k] = sub
	return sub, nil
}

func (m *memoryStore) GetSubmission(_ context.Context, projectID, studentID string) (CapstoneSubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.submissions[memKey{projectID, studentID}]
	if !ok {
		return CapstoneSubmission{}, ErrSubmissionNotFound
	}
	return sub, nil
}

func (m *memoryStore) SetGrade(_ context.Context, submissionID string, grade float64, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, sub := range m.submissions {
		if sub.ID == submissionID {
			sub.Grade = &grade
			sub.Feedback = feedback
			m.submissions[k] = sub
			return nil
		}
	}
	return ErrSubmissionNotFound
}
