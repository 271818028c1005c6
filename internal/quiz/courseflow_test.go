package quiz_test

import (
	"context"
	"testing"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/dispatch"
	"github.com/coursekit/coursekit-lms/internal/grade"
	"github.com/coursekit/coursekit-lms/internal/ledger"
	"github.com/coursekit/coursekit-lms/internal/progress"
	"github.com/coursekit/coursekit-lms/internal/quiz"
)

// End-to-end walk of a four-lesson course: a video, a link-out url, a
// mandatory two-question quiz and an untouched assignment.
func TestCourseFlow(t *testing.T) {
	ctx := context.Background()
	curr := curriculum.NewInMemoryStore()
	led := ledger.NewInMemoryStore()
	quizSvc := quiz.NewService(curr, led, 0.6)
	dispSvc := dispatch.NewService(led, nil)

	video := curriculum.Lesson{ID: "video", ContentType: curriculum.ContentVideo, FileURL: "/v.mp4"}
	link := curriculum.Lesson{ID: "link", ContentType: curriculum.ContentURL, ContentURL: "https://example.com/read"}
	mandQuiz := curriculum.Lesson{ID: "quiz", ContentType: curriculum.ContentQuiz, IsMandatory: true}
	assignment := curriculum.Lesson{ID: "hw", ContentType: curriculum.ContentAssignment}

	course := curriculum.Course{ID: "c1", Chapters: []curriculum.Chapter{
		{ID: "ch1", Lessons: []curriculum.Lesson{video, link, mandQuiz, assignment}},
	}}
	if err := curr.PutCourse(ctx, course); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	qs := []curriculum.QuizQuestion{
		{ID: "q1", Prompt: "one", Options: opts(), CorrectAnswer: "a", Points: 1},
		{ID: "q2", Prompt: "two", Options: opts(), CorrectAnswer: "b", Points: 1},
	}
	if err := curr.SaveQuizQuestions(ctx, mandQuiz.ID, qs); err != nil {
		t.Fatalf("seed questions: %v", err)
	}

	// Open the url lesson: auto-completes. Mark the video complete.
	if res := dispSvc.Open(ctx, "s1", link); !res.Completed {
		t.Fatalf("link-out open should complete: %+v", res)
	}
	if err := dispSvc.MarkComplete(ctx, "s1", video); err != nil {
		t.Fatalf("mark video: %v", err)
	}

	// Fail the mandatory quiz 1/2: no completion for it.
	a1, err := quizSvc.Submit(ctx, "s1", mandQuiz, quiz.Answers{"q1": "a", "q2": "d"}, "k1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a1.Passed || a1.Score != 1 || a1.TotalPoints != 2 {
		t.Fatalf("want failed 1/2, got %+v", a1)
	}

	check := func(wantPct float64) {
		t.Helper()
		c, _ := curr.GetCourse(ctx, "c1")
		ids := []string{}
		for _, l := range c.Lessons() {
			ids = append(ids, l.ID)
		}
		facts, err := led.CompletionFacts(ctx, "s1", ids)
		if err != nil {
			t.Fatalf("facts: %v", err)
		}
		if got := progress.Percent(c.Lessons(), facts); got != wantPct {
			t.Fatalf("percent = %v, want %v", got, wantPct)
		}
	}
	check(50) // video + url of 4 lessons

	attempts, _ := led.Attempts(ctx, ledger.AttemptFilter{StudentID: "s1", LessonIDs: []string{mandQuiz.ID}})
	avg := grade.QuizAverage(attempts, grade.PolicyLatest)
	if avg == nil || *avg != 50 {
		t.Fatalf("quiz average = %v, want 50", avg)
	}
	overall := grade.Overall(avg, nil, grade.DefaultWeights())
	if overall == nil || *overall != 50 {
		t.Fatalf("overall = %v, want 50 (no capstone)", overall)
	}

	// Retake and pass 2/2: the quiz lesson now counts.
	a2, err := quizSvc.Submit(ctx, "s1", mandQuiz, quiz.Answers{"q1": "a", "q2": "b"}, "k2")
	if err != nil {
		t.Fatalf("retake: %v", err)
	}
	if !a2.Passed {
		t.Fatalf("2/2 must pass, got %+v", a2)
	}
	check(75)

	attempts, _ = led.Attempts(ctx, ledger.AttemptFilter{StudentID: "s1", LessonIDs: []string{mandQuiz.ID}})
	avg = grade.QuizAverage(attempts, grade.PolicyLatest)
	if avg == nil || *avg != 100 {
		t.Fatalf("latest-attempt average = %v, want 100", avg)
	}
}

func opts() []curriculum.Option {
	return []curriculum.Option{
		{Key: "a", Text: "a"}, {Key: "b", Text: "b"},
		{Key: "c", Text: "c"}, {Key: "d", Text: "d"},
	}
}
