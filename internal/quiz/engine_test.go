package quiz

import (
	"errors"
	"testing"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
)

func fourOptions() []curriculum.Option {
	return []curriculum.Option{
		{Key: "a", Text: "first"},
		{Key: "b", Text: "second"},
		{Key: "c", Text: "third"},
		{Key: "d", Text: "fourth"},
	}
}

func question(id, correct string, points int) curriculum.QuizQuestion {
	return curriculum.QuizQuestion{
		ID:            id,
		Prompt:        "prompt " + id,
		Options:       fourOptions(),
		CorrectAnswer: correct,
		Points:        points,
	}
}

func TestScore(t *testing.T) {
	qs := []curriculum.QuizQuestion{
		question("q1", "a", 1),
		question("q2", "b", 2),
		question("q3", "c", 3),
	}
	tests := []struct {
		name      string
		answers   Answers
		wantScore int
	}{
		{"all correct", Answers{"q1": "a", "q2": "b", "q3": "c"}, 6},
		{"all wrong", Answers{"q1": "b", "q2": "a", "q3": "d"}, 0},
		{"partial", Answers{"q1": "a", "q3": "c"}, 4},
		{"unanswered questions earn nothing", Answers{"q2": "b"}, 2},
		{"empty", Answers{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, total := Score(qs, tt.answers)
			if total != 6 {
				t.Fatalf("total = %d, want 6", total)
			}
			if score != tt.wantScore {
				t.Fatalf("score = %d, want %d", score, tt.wantScore)
			}
			if score < 0 || score > total {
				t.Fatalf("score %d out of bounds [0,%d]", score, total)
			}
		})
	}
}

func TestPassed(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		total     int
		threshold float64
		want      bool
	}{
		{"exactly at threshold passes", 3, 5, 0.6, true},
		{"just under fails", 1, 2, 0.6, false},
		{"full marks", 2, 2, 0.6, true},
		{"zero total never passes", 0, 0, 0.6, false},
		{"custom threshold", 7, 10, 0.7, true},
		{"custom threshold under", 6, 10, 0.7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Passed(tt.score, tt.total, tt.threshold); got != tt.want {
				t.Fatalf("Passed(%d,%d,%v) = %v, want %v", tt.score, tt.total, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	qs := []curriculum.QuizQuestion{question("q1", "a", 1)}

	if err := Validate(qs, Answers{"q1": "b"}); err != nil {
		t.Fatalf("valid answer rejected: %v", err)
	}
	if err := Validate(qs, Answers{"q1": "e"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown option, got %v", err)
	}
	if err := Validate(qs, Answers{"nope": "a"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown question, got %v", err)
	}
	if err := Validate(nil, Answers{"q1": "a"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty quiz, got %v", err)
	}
}
