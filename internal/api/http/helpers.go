package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	nethttp "net/http"

	authmw "github.com/coursekit/coursekit-lms/internal/auth/middleware"
	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/ledger"
	"github.com/coursekit/coursekit-lms/internal/quiz"
	"github.com/coursekit/coursekit-lms/internal/rbac"
)

// Handlers only — routes remain in main.go

func subjectAndRole(r *nethttp.Request) (sub, role string) {
	return authmw.SubjectFromContext(r.Context()), rbac.RoleFromContext(r.Context())
}

func writeJSON(w nethttp.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps store/engine errors onto the HTTP taxonomy: validation
// rejects before any write (400), missing records surface as "failed to
// load" (404), everything else is a 500.
func writeErr(w nethttp.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrValidation):
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
	case errors.Is(err, curriculum.ErrCourseNotFound),
		errors.Is(err, curriculum.ErrCapstoneNotFound),
		errors.Is(err, curriculum.ErrChapterNotFound),
		errors.Is(err, curriculum.ErrLessonNotFound),
		errors.Is(err, ledger.ErrSubmissionNotFound):
		nethttp.Error(w, err.Error(), nethttp.StatusNotFound)
	default:
		nethttp.Error(w, err.Error(), nethttp.StatusInternalServerError)
	}
}

func isCourseTeacher(db *sql.DB, userID, courseID string) bool {
	var ok bool
	_ = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM course_teachers WHERE course_id=$1 AND teacher_id=$2)`, courseID, userID).Scan(&ok)
	return ok
}

func isCourseStudent(db *sql.DB, userID, courseID string) bool {
	var ok bool
	_ = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM course_students WHERE course_id=$1 AND student_id=$2 AND status='active')`, courseID, userID).Scan(&ok)
	return ok
}

// canViewCourse gates student access to per-course views: teachers and
// admins pass, students must be actively enrolled.
func canViewCourse(db *sql.DB, sub, role, courseID string) bool {
	switch role {
	case "admin":
		return true
	case "teacher":
		return isCourseTeacher(db, sub, courseID)
	default:
		return isCourseStudent(db, sub, courseID)
	}
}
