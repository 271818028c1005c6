package http

import (
	"database/sql"
	"strings"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/grade"
	"github.com/coursekit/coursekit-lms/internal/ledger"
	"github.com/coursekit/coursekit-lms/internal/progress"
)

// studentScope resolves whose data the request is about: students are
// pinned to themselves, teachers/admins may pass ?student_id=.
func studentScope(r *nethttp.Request) string {
	sub, role := subjectAndRole(r)
	if role == "teacher" || role == "admin" {
		if v := strings.TrimSpace(r.URL.Query().Get("student_id")); v != "" {
			return v
		}
	}
	return sub
}

// GET /courses/{courseID}/progress[?student_id=]
// Always recomputed from the curriculum and the full completion set.
func GetProgressHandler(curr curriculum.Store, led ledger.Store, dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := subjectAndRole(r)
		if !canViewCourse(dbh, sub, role, courseID) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		studentID := studentScope(r)

		c, err := curr.GetCourse(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		lessons := c.Lessons()
		ids := make([]string, len(lessons))
		for i, l := range lessons {
			ids[i] = l.ID
		}
		facts, err := led.CompletionFacts(r.Context(), studentID, ids)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, progress.Summarize(studentID, c, facts))
	}
}

// GradeSummary is the scores-view payload. Absent components are null
// and render as "N/A"; they are never folded into an F.
type GradeSummary struct {
	CourseID      string   `json:"course_id"`
	StudentID     string   `json:"student_id"`
	QuizAverage   *float64 `json:"quiz_average"`
	CapstoneGrade *float64 `json:"capstone_grade"`
	OverallGrade  *float64 `json:"overall_grade"`
	LetterGrade   string   `json:"letter_grade"`
}

// GET /courses/{courseID}/grade[?student_id=]
func GetGradeHandler(curr curriculum.Store, led ledger.Store, dbh *sql.DB, policy grade.AttemptPolicy, weights grade.Weights) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := subjectAndRole(r)
		if !canViewCourse(dbh, sub, role, courseID) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		studentID := studentScope(r)

		c, err := curr.GetCourse(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		quizLessons := c.QuizLessons()
		ids := make([]string, len(quizLessons))
		for i, l := range quizLessons {
			ids[i] = l.ID
		}
		var attempts []ledger.QuizAttempt
		if len(ids) > 0 {
			attempts, err = led.Attempts(r.Context(), ledger.AttemptFilter{StudentID: studentID, LessonIDs: ids})
			if err != nil {
				writeErr(w, err)
				return
			}
		}

		var capGrade *float64
		if p, err := curr.GetCapstone(r.Context(), courseID); err == nil {
			if s, err := led.GetSubmission(r.Context(), p.ID, studentID); err == nil {
				capGrade = s.Grade
			}
		}

		quizAvg := grade.QuizAverage(attempts, policy)
		overall := grade.Overall(quizAvg, capGrade, weights)
		writeJSON(w, GradeSummary{
			CourseID:      courseID,
			StudentID:     studentID,
			QuizAverage:   quizAvg,
			CapstoneGrade: capGrade,
			OverallGrade:  overall,
			LetterGrade:   grade.Letter(overall),
		})
	}
}
