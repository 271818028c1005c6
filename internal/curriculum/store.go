package curriculum

import (
	"context"
	"errors"
	"sync"
)

var ErrCourseNotFound = errors.New("curriculum: course not found")
var ErrCapstoneNotFound = errors.New("curriculum: capstone project not found")

// Store is the engine's read side plus the authoring save. Saves are
// whole-course: the curriculum tree is rebuilt from the submitted
// snapshot rather than patched in place.
type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context, limit, offset int) ([]Course, error)

	// SaveCurriculum replaces the course's chapters and lessons with
	// the given (normalized) snapshot in a single transaction.
	SaveCurriculum(ctx context.Context, c Course) error

	// GetQuizQuestions returns a quiz lesson's questions in order.
	// When studentSafe is true the correct answer and explanation are
	// stripped, mirroring how exam stores hide answer keys.
	GetQuizQuestions(ctx context.Context, lessonID string, studentSafe bool) ([]QuizQuestion, error)
	SaveQuizQuestions(ctx context.Context, lessonID string, qs []QuizQuestion) error

	GetCapstone(ctx context.Context, courseID string) (CapstoneProject, error)
	SaveCapstone(ctx context.Context, p CapstoneProject) error
	DeleteCapstone(ctx context.Context, courseID string) error
}

type memoryStore struct {
	mu        sync.RWMutex
	courses   map[string]Course
	questions map[string][]QuizQuestion // lessonID -> questions
	capstones map[string]CapstoneProject
	order     []string
}

// NewInMemoryStore is used by tests and the offline smoke path.
func NewInMemoryStore() Store {
	return &memoryStore{
		courses:   map[string]Course{},
		questions: map[string][]QuizQuestion{},
		capstones: map[string]CapstoneProject{},
	}
}

func (m *memoryStore) PutCourse(_ context.Context, c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[c.ID]; !ok {
		m.order = append(m.order, c.ID)
	}
	m.courses[c.ID] = Normalize(c)
	return nil
}

func (m *memoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return clone(c), nil
}

func (m *memoryStore) ListCourses(_ context.Context, limit, offset int) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Course{}
	for i := offset; i < len(m.order); i++ {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, clone(m.courses[m.order[i]]))
	}
	return out, nil
}

func (m *memoryStore) SaveCurriculum(_ context.Context, c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.courses[c.ID]
	if !ok {
		return ErrCourseNotFound
	}
	// Rebuild: quiz questions of dropped lessons go with them.
	kept := map[string]bool{}
	for _, l := range c.Lessons() {
		kept[l.ID] = true
	}
	for _, l := range prev.Lessons() {
		if !kept[l.ID] {
			delete(m.questions, l.ID)
		}
	}
	m.courses[c.ID] = Normalize(c)
	return nil
}

func (m *memoryStore) GetQuizQuestions(_ context.Context, lessonID string, studentSafe bool) ([]QuizQuestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qs := make([]QuizQuestion, len(m.questions[lessonID]))
	copy(qs, m.questions[lessonID])
	if studentSafe {
		for i := range qs {
			qs[i].CorrectAnswer = ""
			qs[i].Explanation = ""
		}
	}
	return qs, nil
}

func (m *memoryStore) SaveQuizQuestions(_ context.Context, lessonID string, qs []QuizQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]QuizQuestion, len(qs))
	copy(cp, qs)
	for i := range cp {
		cp[i].LessonID = lessonID
		cp[i].OrderIndex = i
	}
	m.questions[lessonID] = cp
	return nil
}

func (m *memoryStore) GetCapstone(_ context.Context, courseID string) (CapstoneProject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.capstones[courseID]
	if !ok {
		return CapstoneProject{}, ErrCapstoneNotFound
	}
	return p, nil
}

func (m *memoryStore) SaveCapstone(_ context.Context, p CapstoneProject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capstones[p.CourseID] = p
	return nil
}

func (m *memoryStore) DeleteCapstone(_ context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.capstones, courseID)
	return nil
}
