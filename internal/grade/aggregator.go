// Package grade blends quiz performance and the capstone grade into the
// course-level overall grade. All inputs may be absent; absence flows
// through as nil and renders as "N/A", never as a failing grade.
package grade

import (
	"math"

	"github.com/coursekit/coursekit-lms/internal/ledger"
)

// Default blend: quiz average and capstone grade count equally. These
// are policy constants, not derived from question or requirement
// counts; config may override them.
const (
	DefaultQuizWeight     = 0.5
	DefaultCapstoneWeight = 0.5
)

// AttemptPolicy selects the authoritative attempt per quiz lesson.
type AttemptPolicy string

const (
	// PolicyLatest uses the most recent submission. This is the
	// default and is applied uniformly here and in completion gating.
	PolicyLatest AttemptPolicy = "latest"
	// PolicyBest uses the highest-percentage submission.
	PolicyBest AttemptPolicy = "best"
)

func (p AttemptPolicy) Valid() bool { return p == PolicyLatest || p == PolicyBest }

type Weights struct {
	Quiz     float64
	Capstone float64
}

func DefaultWeights() Weights {
	return Weights{Quiz: DefaultQuizWeight, Capstone: DefaultCapstoneWeight}
}

// Authoritative reduces a student's attempts to one per quiz lesson
// according to the policy. Attempts are expected in submission order
// (the ledger returns them that way).
func Authoritative(attempts []ledger.QuizAttempt, policy AttemptPolicy) map[string]ledger.QuizAttempt {
	out := map[string]ledger.QuizAttempt{}
	for _, a := range attempts {
		cur, seen := out[a.LessonID]
		switch {
		case !seen:
			out[a.LessonID] = a
		case policy == PolicyBest && a.Percent() > cur.Percent():
			out[a.LessonID] = a
		case policy != PolicyBest && !a.SubmittedAt.Before(cur.SubmittedAt):
			out[a.LessonID] = a
		}
	}
	return out
}

// QuizAverage is the arithmetic mean of the authoritative attempts'
// percentages, or nil when the student has no attempts at all.
func QuizAverage(attempts []ledger.QuizAttempt, policy AttemptPolicy) *float64 {
	auth := Authoritative(attempts, policy)
	if len(auth) == 0 {
		return nil
	}
	sum := 0.0
	for _, a := range auth {
		sum += a.Percent()
	}
	avg := round2(sum / float64(len(auth)))
	return &avg
}

// Overall blends the two component grades. A single present component
// passes through at full weight; both absent yields nil ("N/A").
func Overall(quizAvg, capstoneGrade *float64, w Weights) *float64 {
	switch {
	case quizAvg != nil && capstoneGrade != nil:
		v := round2(w.Quiz**quizAvg + w.Capstone**capstoneGrade)
		return &v
	case quizAvg != nil:
		v := *quizAvg
		return &v
	case capstoneGrade != nil:
		v := *capstoneGrade
		return &v
	default:
		return nil
	}
}

// Letter maps a numeric grade onto the fixed reporting scale. nil is
// "N/A" — an ungraded student is not an F.
func Letter(grade *float64) string {
	if grade == nil {
		return "N/A"
	}
	switch g := *grade; {
	case g >= 90:
		return "A"
	case g >= 80:
		return "B"
	case g >= 70:
		return "C"
	case g >= 60:
		return "D"
	default:
		return "F"
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
