// Package progress computes course completion from first principles on
// every call: the full lesson list against the full completion set.
// Nothing is cached or incrementally patched, so a missed or duplicated
// completion write self-heals on the next read.
package progress

import (
	"math"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
)

type LessonStatus struct {
	LessonID    string                 `json:"lesson_id"`
	Title       string                 `json:"title"`
	ContentType curriculum.ContentType `json:"content_type"`
	Completed   bool                   `json:"completed"`
}

type Summary struct {
	CourseID        string         `json:"course_id"`
	StudentID       string         `json:"student_id"`
	TotalLessons    int            `json:"total_lessons"`
	CompletedCount  int            `json:"completed_count"`
	PercentComplete float64        `json:"percent_complete"`
	Lessons         []LessonStatus `json:"lessons"`
}

// Percent is the core rule: exactly 100 * completed / total over the
// course's lesson list. A course with no lessons is 0, never NaN.
// Rounding is a presentation concern and happens in Summarize.
func Percent(lessons []curriculum.Lesson, completed map[string]bool) float64 {
	if len(lessons) == 0 {
		return 0
	}
	n := 0
	for _, l := range lessons {
		if completed[l.ID] {
			n++
		}
	}
	return 100 * float64(n) / float64(len(lessons))
}

// Summarize builds the per-lesson view the course-detail page renders.
func Summarize(studentID string, course curriculum.Course, completed map[string]bool) Summary {
	lessons := course.Lessons()
	s := Summary{
		CourseID:     course.ID,
		StudentID:    studentID,
		TotalLessons: len(lessons),
		Lessons:      make([]LessonStatus, 0, len(lessons)),
	}
	for _, l := range lessons {
		done := completed[l.ID]
		if done {
			s.CompletedCount++
		}
		s.Lessons = append(s.Lessons, LessonStatus{
			LessonID:    l.ID,
			Title:       l.Title,
			ContentType: l.ContentType,
			Completed:   done,
		})
	}
	s.PercentComplete = math.Round(Percent(lessons, completed)*100) / 100
	return s
}
