package http

import (
	"encoding/json"
	"strconv"
	"strings"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/ledger"
	"github.com/coursekit/coursekit-lms/internal/quiz"
	syncx "github.com/coursekit/coursekit-lms/internal/sync"
)

// GET /lessons/{lessonID}/quiz
// Students get questions with the correct answer and explanation
// stripped; teachers and admins get the full rows.
func GetQuizHandler(curr curriculum.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		lessonID := chi.URLParam(r, "lessonID")
		_, role := subjectAndRole(r)
		studentSafe := role != "teacher" && role != "admin"
		qs, err := curr.GetQuizQuestions(r.Context(), lessonID, studentSafe)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, qs)
	}
}

// PUT /lessons/{lessonID}/quiz — authoring: replaces the question set.
func SaveQuizHandler(curr curriculum.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		lessonID := chi.URLParam(r, "lessonID")
		var qs []curriculum.QuizQuestion
		if err := json.NewDecoder(r.Body).Decode(&qs); err != nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		for i := range qs {
			if qs[i].ID == "" {
				qs[i].ID = uuid.NewString()
			}
			if qs[i].Points == 0 {
				qs[i].Points = 1
			}
			if err := curriculum.ValidateQuestion(qs[i]); err != nil {
				nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
				return
			}
		}
		if err := curr.SaveQuizQuestions(r.Context(), lessonID, qs); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

// POST /courses/{courseID}/lessons/{lessonID}/quiz/submit
// Body: { "answers": {"q1":"a", ...}, "attempt_id": "..." }
// attempt_id is the client's idempotency key; a retried request with
// the same key records one attempt, not two.
func SubmitQuizHandler(curr curriculum.Store, svc *quiz.Service, events *syncx.EventRepo) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		lessonID := chi.URLParam(r, "lessonID")
		sub, _ := subjectAndRole(r)

		var req struct {
			Answers   quiz.Answers `json:"answers"`
			AttemptID string       `json:"attempt_id,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Answers) == 0 {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}

		c, err := curr.GetCourse(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		lesson, ok := c.Lesson(lessonID)
		if !ok {
			writeErr(w, curriculum.ErrLessonNotFound)
			return
		}
		a, err := svc.Submit(r.Context(), sub, lesson, req.Answers, strings.TrimSpace(req.AttemptID))
		if err != nil {
			writeErr(w, err)
			return
		}
		if events != nil {
			_ = events.Append(r.Context(), syncx.EventQuizSubmitted, a.ID, a)
		}
		writeJSON(w, a)
	}
}

// GET /attempts?student_id=&lesson_id=&limit=&offset=
// Students see their own attempts; teacher dashboards can filter by any
// student.
func ListAttemptsHandler(led ledger.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, role := subjectAndRole(r)
		f := ledger.AttemptFilter{
			StudentID: strings.TrimSpace(r.URL.Query().Get("student_id")),
			LessonID:  strings.TrimSpace(r.URL.Query().Get("lesson_id")),
			Limit:     50,
		}
		if role == "student" {
			f.StudentID = sub
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
			f.Limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			f.Offset = v
		}
		out, err := led.Attempts(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, out)
	}
}
