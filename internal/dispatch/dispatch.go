// Package dispatch decides, per lesson content type, how completion is
// triggered, and performs the resulting ledger writes.
package dispatch

import "github.com/coursekit/coursekit-lms/internal/curriculum"

// CompletionTrigger is the rule governing when a lesson's completion
// fact gets written.
type CompletionTrigger string

const (
	// TriggerOnOpen: opening the lesson completes it in the same
	// action. Used for link-out content that can't be observed for
	// actual consumption — "opened" stands in for "completed".
	TriggerOnOpen CompletionTrigger = "on_open"
	// TriggerExplicit: the content player must send an explicit
	// mark-complete signal; opening the lesson is not enough.
	TriggerExplicit CompletionTrigger = "explicit"
	// TriggerQuiz: only the quiz engine completes this lesson, and only
	// per its gating rules.
	TriggerQuiz CompletionTrigger = "quiz"
)

// Trigger classifies a lesson. The switch is exhaustive over the closed
// ContentType set; an unknown type falls back to an explicit signal,
// which is the conservative choice (never auto-complete by accident).
func Trigger(l curriculum.Lesson) CompletionTrigger {
	switch l.ContentType {
	case curriculum.ContentVideo:
		return TriggerExplicit
	case curriculum.ContentURL:
		return TriggerOnOpen
	case curriculum.ContentQuiz:
		return TriggerQuiz
	case curriculum.ContentPDF, curriculum.ContentDocument, curriculum.ContentAssignment:
		// Link-out variant completes on open; uploaded or inline
		// content needs the explicit signal.
		if l.ContentURL != "" && l.FileURL == "" {
			return TriggerOnOpen
		}
		return TriggerExplicit
	default:
		return TriggerExplicit
	}
}
