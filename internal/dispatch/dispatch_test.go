package dispatch

import (
	"context"
	"testing"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/ledger"
)

func TestTrigger(t *testing.T) {
	tests := []struct {
		name   string
		lesson curriculum.Lesson
		want   CompletionTrigger
	}{
		{"video", curriculum.Lesson{ContentType: curriculum.ContentVideo}, TriggerExplicit},
		{"url link-out", curriculum.Lesson{ContentType: curriculum.ContentURL, ContentURL: "https://x"}, TriggerOnOpen},
		{"quiz", curriculum.Lesson{ContentType: curriculum.ContentQuiz}, TriggerQuiz},
		{"pdf uploaded", curriculum.Lesson{ContentType: curriculum.ContentPDF, FileURL: "/f.pdf"}, TriggerExplicit},
		{"pdf link-out", curriculum.Lesson{ContentType: curriculum.ContentPDF, ContentURL: "https://x"}, TriggerOnOpen},
		{"pdf both urls prefers file", curriculum.Lesson{ContentType: curriculum.ContentPDF, ContentURL: "https://x", FileURL: "/f.pdf"}, TriggerExplicit},
		{"document inline", curriculum.Lesson{ContentType: curriculum.ContentDocument}, TriggerExplicit},
		{"document link-out", curriculum.Lesson{ContentType: curriculum.ContentDocument, ContentURL: "https://x"}, TriggerOnOpen},
		{"assignment inline", curriculum.Lesson{ContentType: curriculum.ContentAssignment}, TriggerExplicit},
		{"assignment link-out", curriculum.Lesson{ContentType: curriculum.ContentAssignment, ContentURL: "https://x"}, TriggerOnOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trigger(tt.lesson); got != tt.want {
				t.Fatalf("Trigger(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestOpenAutoCompletesLinkOut(t *testing.T) {
	led := ledger.NewInMemoryStore()
	svc := NewService(led, nil)
	ctx := context.Background()

	lesson := curriculum.Lesson{ID: "l1", ContentType: curriculum.ContentURL, ContentURL: "https://x"}
	res := svc.Open(ctx, "s1", lesson)
	if res.Trigger != TriggerOnOpen || !res.Completed {
		t.Fatalf("link-out open must complete, got %+v", res)
	}
	facts, _ := led.CompletionFacts(ctx, "s1", []string{"l1"})
	if !facts["l1"] {
		t.Fatalf("completion fact missing after open")
	}
}

func TestOpenDoesNotCompleteVideoOrQuiz(t *testing.T) {
	led := ledger.NewInMemoryStore()
	svc := NewService(led, nil)
	ctx := context.Background()

	for _, l := range []curriculum.Lesson{
		{ID: "v1", ContentType: curriculum.ContentVideo},
		{ID: "q1", ContentType: curriculum.ContentQuiz},
	} {
		res := svc.Open(ctx, "s1", l)
		if res.Completed {
			t.Fatalf("opening %s must not complete it", l.ContentType)
		}
	}
	facts, _ := led.CompletionFacts(ctx, "s1", []string{"v1", "q1"})
	if len(facts) != 0 {
		t.Fatalf("no facts expected, got %v", facts)
	}
}

func TestMarkCompleteRejectsQuiz(t *testing.T) {
	svc := NewService(ledger.NewInMemoryStore(), nil)
	err := svc.MarkComplete(context.Background(), "s1", curriculum.Lesson{ID: "q1", ContentType: curriculum.ContentQuiz})
	if err == nil {
		t.Fatalf("marking a quiz complete must be rejected")
	}
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	led := ledger.NewInMemoryStore()
	svc := NewService(led, nil)
	ctx := context.Background()
	lesson := curriculum.Lesson{ID: "v1", ContentType: curriculum.ContentVideo}

	if err := svc.MarkComplete(ctx, "s1", lesson); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := svc.MarkComplete(ctx, "s1", lesson); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	facts, _ := led.CompletionFacts(ctx, "s1", []string{"v1"})
	if !facts["v1"] {
		t.Fatalf("fact missing after repeated marks")
	}
}
