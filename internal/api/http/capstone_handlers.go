package http

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/ledger"
	syncx "github.com/coursekit/coursekit-lms/internal/sync"
)

// GET /courses/{courseID}/capstone
func GetCapstoneHandler(curr curriculum.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		p, err := curr.GetCapstone(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, p)
	}
}

// PUT /courses/{courseID}/capstone — authoring. A course has at most
// one capstone; saving replaces it.
func SaveCapstoneHandler(curr curriculum.Store, dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := subjectAndRole(r)
		if role != "admin" && !isCourseTeacher(dbh, sub, courseID) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		var req struct {
			Title        string     `json:"title"`
			Requirements []string   `json:"requirements"`
			DueAt        *time.Time `json:"due_at,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		p := curriculum.CapstoneProject{
			CourseID:     courseID,
			Title:        req.Title,
			Requirements: req.Requirements,
			DueAt:        req.DueAt,
		}
		if prev, err := curr.GetCapstone(r.Context(), courseID); err == nil {
			p.ID = prev.ID
		} else {
			p.ID = uuid.NewString()
		}
		if err := curr.SaveCapstone(r.Context(), p); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, p)
	}
}

// DELETE /courses/{courseID}/capstone
func DeleteCapstoneHandler(curr curriculum.Store, dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := subjectAndRole(r)
		if role != "admin" && !isCourseTeacher(dbh, sub, courseID) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		if err := curr.DeleteCapstone(r.Context(), courseID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

// POST /courses/{courseID}/capstone/submission
// Body: { "project_links": [...] }. Upsert on (project, student): a
// resubmission overwrites the links, the teacher's grade stays put.
func SubmitCapstoneHandler(curr curriculum.Store, led ledger.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, _ := subjectAndRole(r)
		var req struct {
			ProjectLinks []string `json:"project_links"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ProjectLinks) == 0 {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		for _, l := range req.ProjectLinks {
			if strings.TrimSpace(l) == "" {
				nethttp.Error(w, "empty project link", nethttp.StatusBadRequest)
				return
			}
		}
		p, err := curr.GetCapstone(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		out, err := led.UpsertSubmission(r.Context(), ledger.CapstoneSubmission{
			ProjectID:    p.ID,
			StudentID:    sub,
			ProjectLinks: req.ProjectLinks,
			SubmittedAt:  time.Now().UTC(),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, out)
	}
}

// GET /courses/{courseID}/capstone/submission[?student_id=]
func GetCapstoneSubmissionHandler(curr curriculum.Store, led ledger.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		studentID := studentScope(r)
		p, err := curr.GetCapstone(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		s, err := led.GetSubmission(r.Context(), p.ID, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, s)
	}
}

// POST /capstone/submissions/{submissionID}/grade
// Body: { "grade": 85, "feedback": "..." }. Teacher-only caller; writes
// the grade fields of the student's row.
func GradeCapstoneHandler(led ledger.Store, events *syncx.EventRepo) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		submissionID := chi.URLParam(r, "submissionID")
		var req struct {
			Grade    *float64 `json:"grade"`
			Feedback string   `json:"feedback,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Grade == nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		if *req.Grade < 0 || *req.Grade > 100 {
			nethttp.Error(w, "grade must be between 0 and 100", nethttp.StatusBadRequest)
			return
		}
		if err := led.SetGrade(r.Context(), submissionID, *req.Grade, req.Feedback); err != nil {
			writeErr(w, err)
			return
		}
		if events != nil {
			_ = events.Append(r.Context(), syncx.EventCapstoneGraded, submissionID, map[string]any{
				"submission_id": submissionID,
				"grade":         *req.Grade,
			})
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
