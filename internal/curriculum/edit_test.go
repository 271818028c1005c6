package curriculum

import (
	"context"
	"testing"
)

func TestEditsAreImmutable(t *testing.T) {
	base := Course{ID: "c1", Title: "Go 101"}

	withCh, ch := AddChapter(base, "Basics")
	if len(base.Chapters) != 0 {
		t.Fatalf("AddChapter mutated its input")
	}
	if len(withCh.Chapters) != 1 || withCh.Chapters[0].Title != "Basics" {
		t.Fatalf("chapter not added: %+v", withCh)
	}

	withLesson, err := AddLesson(withCh, ch.ID, Lesson{Title: "Intro", ContentType: ContentVideo})
	if err != nil {
		t.Fatalf("AddLesson: %v", err)
	}
	if len(withCh.Chapters[0].Lessons) != 0 {
		t.Fatalf("AddLesson mutated its input")
	}
	if got := withLesson.Chapters[0].Lessons[0]; got.ChapterID != ch.ID || got.OrderIndex != 0 {
		t.Fatalf("lesson wiring wrong: %+v", got)
	}
}

func TestAddLessonValidation(t *testing.T) {
	c, ch := AddChapter(Course{ID: "c1"}, "Basics")
	if _, err := AddLesson(c, ch.ID, Lesson{ContentType: "podcast"}); err == nil {
		t.Fatalf("unknown content type must be rejected")
	}
	if _, err := AddLesson(c, "missing", Lesson{ContentType: ContentVideo}); err != ErrChapterNotFound {
		t.Fatalf("want ErrChapterNotFound, got %v", err)
	}
}

func TestMoveLessonReindexes(t *testing.T) {
	c, ch := AddChapter(Course{ID: "c1"}, "Basics")
	for _, title := range []string{"one", "two", "three"} {
		var err error
		c, err = AddLesson(c, ch.ID, Lesson{Title: title, ContentType: ContentVideo})
		if err != nil {
			t.Fatalf("AddLesson: %v", err)
		}
	}
	first := c.Chapters[0].Lessons[0]

	moved, err := MoveLesson(c, first.ID, 2)
	if err != nil {
		t.Fatalf("MoveLesson: %v", err)
	}
	ls := moved.Chapters[0].Lessons
	if ls[2].ID != first.ID {
		t.Fatalf("lesson not moved to tail: %+v", ls)
	}
	for i, l := range ls {
		if l.OrderIndex != i {
			t.Fatalf("order index not dense at %d: %+v", i, ls)
		}
	}
}

func TestRemoveLessonClosesGap(t *testing.T) {
	c, ch := AddChapter(Course{ID: "c1"}, "Basics")
	for _, title := range []string{"one", "two", "three"} {
		c, _ = AddLesson(c, ch.ID, Lesson{Title: title, ContentType: ContentPDF})
	}
	mid := c.Chapters[0].Lessons[1]

	out, err := RemoveLesson(c, mid.ID)
	if err != nil {
		t.Fatalf("RemoveLesson: %v", err)
	}
	ls := out.Chapters[0].Lessons
	if len(ls) != 2 || ls[0].OrderIndex != 0 || ls[1].OrderIndex != 1 {
		t.Fatalf("gap not closed: %+v", ls)
	}
}

func TestNormalizeOrdersAndTieBreaks(t *testing.T) {
	c := Course{ID: "c1", Chapters: []Chapter{
		{ID: "b", Title: "B", OrderIndex: 1},
		{ID: "a", Title: "A", OrderIndex: 0},
		{ID: "tie", Title: "Tie", OrderIndex: 1}, // same index as B, later in slice
	}}
	out := Normalize(c)
	if out.Chapters[0].ID != "a" || out.Chapters[1].ID != "b" || out.Chapters[2].ID != "tie" {
		t.Fatalf("tie must break by position: %+v", out.Chapters)
	}
	for i, ch := range out.Chapters {
		if ch.OrderIndex != i {
			t.Fatalf("indexes not dense: %+v", out.Chapters)
		}
	}
}

func TestValidateQuestion(t *testing.T) {
	good := QuizQuestion{
		Prompt:        "2+2?",
		Options:       []Option{{Key: "a", Text: "3"}, {Key: "b", Text: "4"}, {Key: "c", Text: "5"}, {Key: "d", Text: "6"}},
		CorrectAnswer: "b",
		Points:        1,
	}
	if err := ValidateQuestion(good); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}

	bad := good
	bad.CorrectAnswer = "e"
	if err := ValidateQuestion(bad); err == nil {
		t.Fatalf("correct answer outside options must be rejected")
	}

	bad = good
	bad.Points = 0
	if err := ValidateQuestion(bad); err == nil {
		t.Fatalf("non-positive points must be rejected")
	}

	bad = good
	bad.Options = bad.Options[:3]
	if err := ValidateQuestion(bad); err == nil {
		t.Fatalf("question with 3 options must be rejected")
	}
}

func TestSaveCurriculumDropsOrphanQuestions(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	c, ch := AddChapter(Course{ID: "c1", Title: "Go"}, "Basics")
	c.ID = "c1"
	c, _ = AddLesson(c, ch.ID, Lesson{Title: "Quiz", ContentType: ContentQuiz})
	if err := s.PutCourse(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}
	quizLesson := c.Chapters[0].Lessons[0]
	if err := s.SaveQuizQuestions(ctx, quizLesson.ID, []QuizQuestion{{ID: "q1", Prompt: "p", Points: 1}}); err != nil {
		t.Fatalf("save questions: %v", err)
	}

	trimmed, err := RemoveLesson(c, quizLesson.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.SaveCurriculum(ctx, trimmed); err != nil {
		t.Fatalf("save curriculum: %v", err)
	}
	qs, err := s.GetQuizQuestions(ctx, quizLesson.ID, false)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("questions of a removed lesson must be dropped, got %d", len(qs))
	}
}

func TestSaveCurriculumAssignsIDsToNewContent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	if err := s.PutCourse(ctx, Course{ID: "c1", Title: "Go"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A freshly authored snapshot: chapter and lessons with no IDs yet,
	// exactly what a client that expects server-assigned IDs submits.
	draft := Course{ID: "c1", Chapters: []Chapter{
		{Title: "Basics", Lessons: []Lesson{
			{Title: "Intro", ContentType: ContentVideo},
			{Title: "Reading", ContentType: ContentPDF},
		}},
	}}
	if err := s.SaveCurriculum(ctx, draft); err != nil {
		t.Fatalf("save of new (id-less) content: %v", err)
	}

	saved, err := s.GetCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(saved.Chapters) != 1 || saved.Chapters[0].ID == "" {
		t.Fatalf("chapter must get an ID: %+v", saved.Chapters)
	}
	seen := map[string]bool{}
	for _, l := range saved.Lessons() {
		if l.ID == "" {
			t.Fatalf("lesson %q saved without an ID", l.Title)
		}
		if seen[l.ID] {
			t.Fatalf("duplicate lesson ID %q", l.ID)
		}
		seen[l.ID] = true
		if l.ChapterID != saved.Chapters[0].ID {
			t.Fatalf("lesson %q not linked to its chapter: %+v", l.Title, l)
		}
	}
	if len(seen) != 2 {
		t.Fatalf("want 2 lessons, got %d", len(seen))
	}
}

func TestGetQuizQuestionsStudentSafe(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	q := QuizQuestion{
		ID: "q1", Prompt: "p",
		Options:       []Option{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}},
		CorrectAnswer: "a", Explanation: "because", Points: 1,
	}
	if err := s.SaveQuizQuestions(ctx, "l1", []QuizQuestion{q}); err != nil {
		t.Fatalf("save: %v", err)
	}
	safe, _ := s.GetQuizQuestions(ctx, "l1", true)
	if safe[0].CorrectAnswer != "" || safe[0].Explanation != "" {
		t.Fatalf("student view must strip answers: %+v", safe[0])
	}
	full, _ := s.GetQuizQuestions(ctx, "l1", false)
	if full[0].CorrectAnswer != "a" {
		t.Fatalf("grading view must keep answers: %+v", full[0])
	}
}
