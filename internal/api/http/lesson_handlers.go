package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursekit/coursekit-lms/internal/curriculum"
	"github.com/coursekit/coursekit-lms/internal/dispatch"
)

// POST /courses/{courseID}/lessons/{lessonID}/open
// Link-out lessons auto-complete in this same action; the response says
// whether that happened. A failed write is reported in the payload, not
// as an HTTP error — the tab is already open.
func OpenLessonHandler(curr curriculum.Store, svc *dispatch.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		lessonID := chi.URLParam(r, "lessonID")
		sub, _ := subjectAndRole(r)

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
		writeJSON(w, svc.Open(r.Context(), sub, lesson))
	}
}

// POST /courses/{courseID}/lessons/{lessonID}/complete
// The explicit mark-complete signal from the content player.
func MarkLessonCompleteHandler(curr curriculum.Store, svc *dispatch.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		lessonID := chi.URLParam(r, "lessonID")
		sub, _ := subjectAndRole(r)

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
		if err := svc.MarkComplete(r.Context(), sub, lesson); err != nil {
			nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
