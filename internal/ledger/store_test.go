package ledger

import (
	"context"
	"testing"
	"time"
)

func TestUpsertCompletionIdempotent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := s.UpsertCompletion(ctx, "s1", "l1", t0); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpsertCompletion(ctx, "s1", "l1", t0.Add(time.Hour)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	facts, err := s.CompletionFacts(ctx, "s1", []string{"l1", "l2"})
	if err != nil {
		t.Fatalf("facts: %v", err)
	}
	if !facts["l1"] || facts["l2"] {
		t.Fatalf("want exactly l1 completed, got %v", facts)
	}
}

func TestAppendAttemptDedupesByID(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	a := QuizAttempt{ID: "k1", StudentID: "s1", LessonID: "l1", Score: 1, TotalPoints: 2, SubmittedAt: time.Now()}

	if err := s.AppendAttempt(ctx, a); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendAttempt(ctx, a); err != nil {
		t.Fatalf("retry append: %v", err)
	}
	b := a
	b.ID = "k2"
	if err := s.AppendAttempt(ctx, b); err != nil {
		t.Fatalf("fresh attempt: %v", err)
	}

	got, err := s.Attempts(ctx, AttemptFilter{StudentID: "s1", LessonID: "l1"})
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 attempts (retry deduped, retake kept), got %d", len(got))
	}
}

func TestAttemptsCourseScopeFilter(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()
	for i, lid := range []string{"l1", "l2", "other"} {
		a := QuizAttempt{ID: string(rune('a' + i)), StudentID: "s1", LessonID: lid, TotalPoints: 1, SubmittedAt: now}
		if err := s.AppendAttempt(ctx, a); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := s.Attempts(ctx, AttemptFilter{StudentID: "s1", LessonIDs: []string{"l1", "l2"}})
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 in-scope attempts, got %d", len(got))
	}
}

func TestCapstoneTwoPartyWrites(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	sub, err := s.UpsertSubmission(ctx, CapstoneSubmission{
		ID: "sub-1", ProjectID: "p1", StudentID: "s1",
		ProjectLinks: []string{"https://github.com/s1/proj"},
		SubmittedAt:  t0,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Grade != nil {
		t.Fatalf("fresh submission must be ungraded")
	}

	if err := s.SetGrade(ctx, sub.ID, 92, "solid work"); err != nil {
		t.Fatalf("grade: %v", err)
	}

	// Student resubmits: links overwrite, teacher's grade survives.
	sub2, err := s.UpsertSubmission(ctx, CapstoneSubmission{
		ProjectID: "p1", StudentID: "s1",
		ProjectLinks: []string{"https://github.com/s1/proj-v2"},
		SubmittedAt:  t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if sub2.ID != sub.ID {
		t.Fatalf("resubmission must reuse the row, got new id %q", sub2.ID)
	}
	if sub2.Grade == nil || *sub2.Grade != 92 || sub2.Feedback != "solid work" {
		t.Fatalf("teacher fields lost on resubmit: %+v", sub2)
	}
	if sub2.ProjectLinks[0] != "https://github.com/s1/proj-v2" {
		t.Fatalf("student fields not overwritten: %+v", sub2)
	}

	if err := s.SetGrade(ctx, "missing", 50, ""); err == nil {
		t.Fatalf("grading a missing submission must fail")
	}
}

func TestAttemptPercent(t *testing.T) {
	if got := (QuizAttempt{Score: 1, TotalPoints: 2}).Percent(); got != 50 {
		t.Fatalf("Percent = %v, want 50", got)
	}
	if got := (QuizAttempt{Score: 3, TotalPoints: 0}).Percent(); got != 0 {
		t.Fatalf("zero denominator must yield 0, got %v", got)
	}
}
