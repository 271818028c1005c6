package quiz

import (
	"errors"
	"fmt"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
)

// DefaultPassThreshold is the score ratio a quiz attempt needs to pass.
// Overridable via config (QUIZ_PASS_THRESHOLD); never hard-code 0.6 at
// call sites.
const DefaultPassThreshold = 0.6

// ErrValidation marks a malformed submission; nothing is written when
// it fires.
var ErrValidation = errors.New("quiz: invalid submission")

// Answers maps question ID to the selected option key.
type Answers map[string]string

// Validate rejects answers that reference unknown questions or options.
func Validate(questions []curriculum.QuizQuestion, answers Answers) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", ErrValidation)
	}
	byID := make(map[string]curriculum.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for qid, sel := range answers {
		q, ok := byID[qid]
		if !ok {
			return fmt.Errorf("%w: unknown question %q", ErrValidation, qid)
		}
		if !q.HasOption(sel) {
			return fmt.Errorf("%w: option %q is not valid for question %q", ErrValidation, sel, qid)
		}
	}
	return nil
}

// Score sums the points of correctly answered questions. totalPoints is
// the sum over every question in the quiz, snapshotted into the attempt
// so later quiz edits don't change past denominators.
func Score(questions []curriculum.QuizQuestion, answers Answers) (score, totalPoints int) {
	for _, q := range questions {
		totalPoints += q.Points
		if answers[q.ID] == q.CorrectAnswer {
			score += q.Points
		}
	}
	return score, totalPoints
}

// Passed applies the threshold to a score ratio. A zero-point quiz
// never passes.
func Passed(score, totalPoints int, threshold float64) bool {
	if totalPoints <= 0 {
		return false
	}
	return float64(score)/float64(totalPoints) >= threshold
}
