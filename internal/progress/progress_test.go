package progress

import (
	"testing"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
)

func lessons(n int) []curriculum.Lesson {
	out := make([]curriculum.Lesson, n)
	for i := range out {
		out[i] = curriculum.Lesson{ID: string(rune('a' + i)), ContentType: curriculum.ContentVideo}
	}
	return out
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name      string
		lessons   []curriculum.Lesson
		completed map[string]bool
		want      float64
	}{
		{"no lessons", nil, nil, 0},
		{"no lessons, stray completion", nil, map[string]bool{"x": true}, 0},
		{"none complete", lessons(4), map[string]bool{}, 0},
		{"half complete", lessons(4), map[string]bool{"a": true, "b": true}, 50},
		{"three quarters", lessons(4), map[string]bool{"a": true, "b": true, "c": true}, 75},
		{"all complete", lessons(3), map[string]bool{"a": true, "b": true, "c": true}, 100},
		{"one third is the exact ratio", lessons(3), map[string]bool{"a": true}, 100.0 / 3},
		{"completion for unknown lesson ignored", lessons(2), map[string]bool{"z": true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.lessons, tt.completed); got != tt.want {
				t.Fatalf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarizeExcludesWelcomeVideo(t *testing.T) {
	course := curriculum.Course{
		ID:              "c1",
		WelcomeVideoURL: "https://cdn.example.com/welcome.mp4",
		Chapters: []curriculum.Chapter{
			{ID: "ch1", Lessons: []curriculum.Lesson{
				{ID: "l1", Title: "Intro", ContentType: curriculum.ContentVideo},
				{ID: "l2", Title: "Reading", ContentType: curriculum.ContentPDF},
			}},
		},
	}
	s := Summarize("s1", course, map[string]bool{"l1": true})
	if s.TotalLessons != 2 {
		t.Fatalf("welcome video must not count as a lesson; total = %d", s.TotalLessons)
	}
	if s.CompletedCount != 1 || s.PercentComplete != 50 {
		t.Fatalf("got completed=%d percent=%v, want 1 and 50", s.CompletedCount, s.PercentComplete)
	}
	if !s.Lessons[0].Completed || s.Lessons[1].Completed {
		t.Fatalf("per-lesson flags wrong: %+v", s.Lessons)
	}
}

func TestSummarizeRoundsForDisplay(t *testing.T) {
	course := curriculum.Course{ID: "c1", Chapters: []curriculum.Chapter{
		{ID: "ch1", Lessons: lessons(3)},
	}}
	s := Summarize("s1", course, map[string]bool{"a": true})
	if s.PercentComplete != 33.33 {
		t.Fatalf("view percent = %v, want 33.33", s.PercentComplete)
	}
}

func TestSummarizeEmptyCourse(t *testing.T) {
	s := Summarize("s1", curriculum.Course{ID: "c1"}, nil)
	if s.PercentComplete != 0 || s.TotalLessons != 0 {
		t.Fatalf("empty course must report 0%%, got %+v", s)
	}
}
