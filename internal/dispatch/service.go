package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/ledger"
	syncx "github.com/coursekit/coursekit-lms/internal/sync"
)

// EventSink receives audit events for completion writes; nil disables
// auditing.
type EventSink interface {
	Append(ctx context.Context, typ, key string, data any) error
}

// OpenResult tells the caller what opening the lesson did.
type OpenResult struct {
	Trigger   CompletionTrigger `json:"trigger"`
	Completed bool              `json:"completed"`
	// WriteErr carries a failed auto-complete write. For link-out
	// content the navigation already happened, so the open itself is
	// never rolled back; the UI surfaces the error as a warning.
	WriteErr string `json:"write_error,omitempty"`
}

type Service struct {
	ledger ledger.Store
	events EventSink
	now    func() time.Time
}

func NewService(led ledger.Store, events EventSink) *Service {
	return &Service{ledger: led, events: events, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Open records the lesson open. For on-open content the completion fact
// is written in the same action; any failure is reported in the result
// rather than as an error, since the open is not abortable.
func (s *Service) Open(ctx context.Context, studentID string, lesson curriculum.Lesson) OpenResult {
	res := OpenResult{Trigger: Trigger(lesson)}
	if res.Trigger != TriggerOnOpen {
		return res
	}
	if err := s.complete(ctx, studentID, lesson.ID); err != nil {
		res.WriteErr = err.Error()
		return res
	}
	res.Completed = true
	return res
}

// MarkComplete handles the explicit in-player signal. Quiz lessons are
// rejected: their completion belongs to the quiz engine alone.
func (s *Service) MarkComplete(ctx context.Context, studentID string, lesson curriculum.Lesson) error {
	if Trigger(lesson) == TriggerQuiz {
		return fmt.Errorf("dispatch: quiz lesson %s completes only through submission", lesson.ID)
	}
	return s.complete(ctx, studentID, lesson.ID)
}

func (s *Service) complete(ctx context.Context, studentID, lessonID string) error {
	at := s.now().UTC()
	if err := s.ledger.UpsertCompletion(ctx, studentID, lessonID, at); err != nil {
		return err
	}
	if s.events != nil {
		_ = s.events.Append(ctx, syncx.EventCompletionRecorded, lessonID, map[string]any{
			"student_id":   studentID,
			"lesson_id":    lessonID,
			"completed_at": at.Unix(),
		})
	}
	return nil
}
