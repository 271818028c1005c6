package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/ledger"
)

// Service runs the submit flow for one quiz lesson: validate, score,
// record the attempt, then apply the completion gate. There is no
// persisted in-progress state; every submit is a fresh attempt.
type Service struct {
	curr      curriculum.Store
	ledger    ledger.Store
	threshold float64
	now       func() time.Time
}

func NewService(curr curriculum.Store, led ledger.Store, threshold float64) *Service {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultPassThreshold
	}
	return &Service{curr: curr, ledger: led, threshold: threshold, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Threshold() float64 { return s.threshold }

// Submit grades one attempt. attemptID is the caller's idempotency key;
// when empty a fresh one is generated (no retry protection in that
// case).
//
// Gating: a mandatory quiz records a completion fact only on a passing
// attempt. A non-mandatory quiz completes on any submission — the fact
// means "completed", not "mastered".
func (s *Service) Submit(ctx context.Context, studentID string, lesson curriculum.Lesson, answers Answers, attemptID string) (ledger.QuizAttempt, error) {
	if lesson.ContentType != curriculum.ContentQuiz {
		return ledger.QuizAttempt{}, fmt.Errorf("%w: lesson %q is not a quiz", ErrValidation, lesson.ID)
	}
	questions, err := s.curr.GetQuizQuestions(ctx, lesson.ID, false)
	if err != nil {
		return ledger.QuizAttempt{}, err
	}
	if err := Validate(questions, answers); err != nil {
		return ledger.QuizAttempt{}, err
	}

	score, total := Score(questions, answers)
	if attemptID == "" {
		attemptID = uuid.NewString()
	}
	a := ledger.QuizAttempt{
		ID:          attemptID,
		StudentID:   studentID,
		LessonID:    lesson.ID,
		Score:       score,
		TotalPoints: total,
		Passed:      Passed(score, total, s.threshold),
		SubmittedAt: s.now().UTC(),
	}
	if err := s.ledger.AppendAttempt(ctx, a); err != nil {
		return ledger.QuizAttempt{}, err
	}

	completes := a.Passed || !lesson.IsMandatory
	if completes {
		if err := s.ledger.UpsertCompletion(ctx, studentID, lesson.ID, a.SubmittedAt); err != nil {
			return a, err
		}
	}
	return a, nil
}
