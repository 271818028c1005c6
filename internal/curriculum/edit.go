package curriculum

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Authoring works on an immutable snapshot: every edit returns a new
// Course, and nothing is persisted until an explicit Save. Partial edits
// therefore never leak into the store.

var ErrChapterNotFound = errors.New("curriculum: chapter not found")
var ErrLessonNotFound = errors.New("curriculum: lesson not found")

// Normalize sorts chapters and lessons by order index (stable, so
// insertion order breaks ties) and reassigns dense indexes. Newly
// authored content arrives without IDs; those get server-assigned
// UUIDs here, so a saved snapshot never carries an empty primary key.
func Normalize(c Course) Course {
	out := clone(c)
	sort.SliceStable(out.Chapters, func(i, j int) bool {
		return out.Chapters[i].OrderIndex < out.Chapters[j].OrderIndex
	})
	for i := range out.Chapters {
		if out.Chapters[i].ID == "" {
			out.Chapters[i].ID = uuid.NewString()
		}
		out.Chapters[i].OrderIndex = i
		sort.SliceStable(out.Chapters[i].Lessons, func(a, b int) bool {
			return out.Chapters[i].Lessons[a].OrderIndex < out.Chapters[i].Lessons[b].OrderIndex
		})
		for j := range out.Chapters[i].Lessons {
			if out.Chapters[i].Lessons[j].ID == "" {
				out.Chapters[i].Lessons[j].ID = uuid.NewString()
			}
			out.Chapters[i].Lessons[j].OrderIndex = j
			out.Chapters[i].Lessons[j].ChapterID = out.Chapters[i].ID
		}
	}
	return out
}

// AddChapter appends a chapter at the end of the course.
func AddChapter(c Course, title string) (Course, Chapter) {
	out := clone(c)
	ch := Chapter{
		ID:         uuid.NewString(),
		CourseID:   c.ID,
		Title:      title,
		OrderIndex: len(out.Chapters),
	}
	out.Chapters = append(out.Chapters, ch)
	return out, ch
}

// AddLesson appends a lesson at the end of the given chapter.
func AddLesson(c Course, chapterID string, l Lesson) (Course, error) {
	if !l.ContentType.Valid() {
		return Course{}, fmt.Errorf("curriculum: unknown content type %q", l.ContentType)
	}
	out := clone(c)
	for i := range out.Chapters {
		if out.Chapters[i].ID != chapterID {
			continue
		}
		l.ID = uuid.NewString()
		l.ChapterID = chapterID
		l.OrderIndex = len(out.Chapters[i].Lessons)
		out.Chapters[i].Lessons = append(out.Chapters[i].Lessons, l)
		return out, nil
	}
	return Course{}, ErrChapterNotFound
}

// UpdateLesson replaces the fields of an existing lesson, keeping its
// identity and position. Lessons never move between chapters.
func UpdateLesson(c Course, l Lesson) (Course, error) {
	if !l.ContentType.Valid() {
		return Course{}, fmt.Errorf("curriculum: unknown content type %q", l.ContentType)
	}
	out := clone(c)
	for i := range out.Chapters {
		for j := range out.Chapters[i].Lessons {
			cur := out.Chapters[i].Lessons[j]
			if cur.ID != l.ID {
				continue
			}
			l.ChapterID = cur.ChapterID
			l.OrderIndex = cur.OrderIndex
			out.Chapters[i].Lessons[j] = l
			return out, nil
		}
	}
	return Course{}, ErrLessonNotFound
}

// MoveLesson moves a lesson to a new position within its own chapter.
func MoveLesson(c Course, lessonID string, to int) (Course, error) {
	out := clone(c)
	for i := range out.Chapters {
		ls := out.Chapters[i].Lessons
		for j := range ls {
			if ls[j].ID != lessonID {
				continue
			}
			if to < 0 {
				to = 0
			}
			if to >= len(ls) {
				to = len(ls) - 1
			}
			moved := ls[j]
			ls = append(ls[:j], ls[j+1:]...)
			ls = append(ls[:to], append([]Lesson{moved}, ls[to:]...)...)
			for k := range ls {
				ls[k].OrderIndex = k
			}
			out.Chapters[i].Lessons = ls
			return out, nil
		}
	}
	return Course{}, ErrLessonNotFound
}

// RemoveLesson drops a lesson and closes the order gap.
func RemoveLesson(c Course, lessonID string) (Course, error) {
	out := clone(c)
	for i := range out.Chapters {
		ls := out.Chapters[i].Lessons
		for j := range ls {
			if ls[j].ID != lessonID {
				continue
			}
			ls = append(ls[:j], ls[j+1:]...)
			for k := range ls {
				ls[k].OrderIndex = k
			}
			out.Chapters[i].Lessons = ls
			return out, nil
		}
	}
	return Course{}, ErrLessonNotFound
}

// RemoveChapter drops a chapter with all its lessons.
func RemoveChapter(c Course, chapterID string) (Course, error) {
	out := clone(c)
	for i := range out.Chapters {
		if out.Chapters[i].ID != chapterID {
			continue
		}
		out.Chapters = append(out.Chapters[:i], out.Chapters[i+1:]...)
		for k := range out.Chapters {
			out.Chapters[k].OrderIndex = k
		}
		return out, nil
	}
	return Course{}, ErrChapterNotFound
}

// ValidateQuestion rejects malformed authoring input before it reaches
// the store.
func ValidateQuestion(q QuizQuestion) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return errors.New("curriculum: question prompt required")
	}
	if len(q.Options) != len(OptionKeys) {
		return fmt.Errorf("curriculum: question needs %d options, got %d", len(OptionKeys), len(q.Options))
	}
	for i, o := range q.Options {
		if o.Key != OptionKeys[i] {
			return fmt.Errorf("curriculum: option %d must use key %q", i, OptionKeys[i])
		}
	}
	if !q.HasOption(q.CorrectAnswer) {
		return fmt.Errorf("curriculum: correct answer %q is not an option", q.CorrectAnswer)
	}
	if q.Points <= 0 {
		return errors.New("curriculum: question points must be positive")
	}
	return nil
}

func clone(c Course) Course {
	out := c
	out.Chapters = make([]Chapter, len(c.Chapters))
	copy(out.Chapters, c.Chapters)
	for i := range out.Chapters {
		ls := make([]Lesson, len(out.Chapters[i].Lessons))
		copy(ls, out.Chapters[i].Lessons)
		out.Chapters[i].Lessons = ls
	}
	return out
}
