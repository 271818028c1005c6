package curriculum

import "time"

// ContentType is the closed set of lesson kinds. The Lesson Dispatcher
// switches exhaustively over these values; adding a case here requires
// a matching completion-trigger rule.
type ContentType string

const (
	ContentVideo      ContentType = "video"
	ContentPDF        ContentType = "pdf"
	ContentDocument   ContentType = "document"
	ContentURL        ContentType = "url"
	ContentQuiz       ContentType = "quiz"
	ContentAssignment ContentType = "assignment"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentPDF, ContentDocument, ContentURL, ContentQuiz, ContentAssignment:
		return true
	}
	return false
}

type Lesson struct {
	ID          string      `json:"id"`
	ChapterID   string      `json:"chapter_id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	OrderIndex  int         `json:"order_index"`

	// DurationMin is meaningful for video lessons only.
	DurationMin int `json:"duration_min,omitempty"`
	// IsMandatory is meaningful for quiz lessons only: a mandatory quiz
	// completes on a passing attempt, not on mere submission.
	IsMandatory bool `json:"is_mandatory,omitempty"`

	// Exactly one of these is normally set. A ContentURL with no FileURL
	// marks link-out content (completes on open).
	ContentURL string `json:"content_url,omitempty"`
	FileURL    string `json:"file_url,omitempty"`
}

type Chapter struct {
	ID         string   `json:"id"`
	CourseID   string   `json:"course_id"`
	Title      string   `json:"title"`
	OrderIndex int      `json:"order_index"`
	Lessons    []Lesson `json:"lessons"`
}

type Course struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`

	// WelcomeVideoURL is course front matter, not a Lesson; it never
	// counts toward progress.
	WelcomeVideoURL string `json:"welcome_video_url,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Lessons flattens the curriculum tree in chapter order, then lesson
// order within each chapter.
func (c Course) Lessons() []Lesson {
	var out []Lesson
	for _, ch := range c.Chapters {
		out = append(out, ch.Lessons...)
	}
	return out
}

// Lesson finds a lesson anywhere in the tree.
func (c Course) Lesson(lessonID string) (Lesson, bool) {
	for _, ch := range c.Chapters {
		for _, l := range ch.Lessons {
			if l.ID == lessonID {
				return l, true
			}
		}
	}
	return Lesson{}, false
}

// QuizLessons returns the quiz-type lessons of the course in order.
func (c Course) QuizLessons() []Lesson {
	var out []Lesson
	for _, l := range c.Lessons() {
		if l.ContentType == ContentQuiz {
			out = append(out, l)
		}
	}
	return out
}

type Option struct {
	Key  string `json:"key"` // "a".."d"
	Text string `json:"text"`
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	LessonID      string   `json:"lesson_id"`
	Prompt        string   `json:"prompt"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"` // option key; stripped for students
	Points        int      `json:"points"`
	Explanation   string   `json:"explanation,omitempty"` // stripped for students
	OrderIndex    int      `json:"order_index"`
}

// OptionKeys for a four-option question, in display order.
var OptionKeys = []string{"a", "b", "c", "d"}

// HasOption reports whether key is one of the question's option keys.
func (q QuizQuestion) HasOption(key string) bool {
	for _, o := range q.Options {
		if o.Key == key {
			return true
		}
	}
	return false
}

type CapstoneProject struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"course_id"`
	Title        string     `json:"title"`
	Requirements []string   `json:"requirements"`
	DueAt        *time.Time `json:"due_at,omitempty"`
}
