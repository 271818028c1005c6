package http

import (
	"context"
	"strconv"

	nethttp "net/http"

	syncx "github.com/coursekit/coursekit-lms/internal/sync"
)

type eventLister interface {
	ListSince(ctx context.Context, afterSeq int64, limit int) ([]syncx.Event, error)
}

// GET /events?after=&limit= — the audit/sync feed, oldest first.
// Consumers page forward by passing the last seq they processed.
func ListEventsHandler(events eventLister) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var after int64
		if v, err := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64); err == nil && v > 0 {
			after = v
		}
		limit := 100
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
			limit = v
		}
		out, err := events.ListSince(r.Context(), after, limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, out)
	}
}
