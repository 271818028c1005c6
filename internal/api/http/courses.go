package http

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
)

// POST /courses  { "title": "...", "welcome_video_url": "..." }
func CreateCourseHandler(store curriculum.Store, dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := subjectAndRole(r)
		var req struct {
			Title           string `json:"title"`
			WelcomeVideoURL string `json:"welcome_video_url,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		c := curriculum.Course{
			ID:              uuid.NewString(),
			Title:           req.Title,
			WelcomeVideoURL: req.WelcomeVideoURL,
			CreatedAt:       time.Now().Unix(),
		}
		if err := store.PutCourse(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		// creator becomes owner teacher
		_, _ = dbh.Exec(`INSERT INTO course_teachers (course_id, teacher_id, role) VALUES ($1, $2, 'owner') ON CONFLICT DO NOTHING`, c.ID, sub)
		writeJSON(w, c)
	}
}

// GET /courses?limit=&offset=
func ListCoursesHandler(store curriculum.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		limit, offset := 50, 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			if v > 200 {
				v = 200
			}
			limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			offset = v
		}
		out, err := store.ListCourses(r.Context(), limit, offset)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, out)
	}
}

// GET /courses/{courseID}/curriculum
func GetCurriculumHandler(store curriculum.Store, dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := subjectAndRole(r)
		if !canViewCourse(dbh, sub, role, courseID) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		c, err := store.GetCourse(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, c)
	}
}

// PUT /courses/{courseID}/curriculum — authoring save. The submitted
// snapshot replaces the stored tree wholesale; nothing persists until
// this explicit save.
func SaveCurriculumHandler(store curriculum.Store, dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := subjectAndRole(r)
		if role != "admin" && !isCourseTeacher(dbh, sub, courseID) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		var c curriculum.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		c.ID = courseID
		for _, ch := range c.Chapters {
			for _, l := range ch.Lessons {
				if !l.ContentType.Valid() {
					nethttp.Error(w, "unknown content type: "+string(l.ContentType), nethttp.StatusBadRequest)
					return
				}
			}
		}
		if err := store.SaveCurriculum(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		saved, err := store.GetCourse(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, saved)
	}
}

// POST /courses/{courseID}/students  { "user_ids": [...], "status": "active" }
func EnrollStudentsHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := subjectAndRole(r)
		if role != "admin" && !isCourseTeacher(dbh, sub, courseID) {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		var req struct {
			UserIDs []string `json:"user_ids"`
			Status  string   `json:"status"` // default active
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		status := "active"
		if s := strings.ToLower(strings.TrimSpace(req.Status)); s == "invited" || s == "dropped" {
			status = s
		}
		for _, uid := range req.UserIDs {
			uid = strings.TrimSpace(uid)
			if uid == "" {
				continue
			}
			_, _ = dbh.Exec(`INSERT INTO course_students (course_id, student_id, status) VALUES ($1, $2, $3)
                   ON CONFLICT (course_id, student_id) DO UPDATE SET status=EXCLUDED.status`, courseID, uid, status)
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
