// internal/app/features/notifications/inbox.go
package notifications

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// List handles GET /notifications, newest first. ?unread_only=true narrows
// to unread rows.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	q := r.URL.Query()
	unreadOnly := q.Get("unread_only") == "true"

	rows, page, err := h.Notifications.ListByRecipient(r.Context(), uid, unreadOnly, q.Get("before"), q.Get("after"))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	resp := map[string]any{
		"items":    rows,
		"has_prev": page.HasPrev,
		"has_next": page.HasNext,
	}
	if len(rows) > 0 {
		if page.HasPrev {
			resp["prev_cursor"] = paging.EncodeCursor(rows[0].CreatedAt, rows[0].ID)
		}
		if page.HasNext {
			last := rows[len(rows)-1]
			resp["next_cursor"] = paging.EncodeCursor(last.CreatedAt, last.ID)
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}

// MarkRead handles POST /notifications/{notificationID}/read. Marking an
// already-read notification succeeds without change.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		respond.Err(w, h.Log, apperr.Validation("invalid notification id"))
		return
	}

	err = h.Notifications.MarkRead(r.Context(), id, uid)
	if err == mongo.ErrNoDocuments {
		respond.Err(w, h.Log, apperr.NotFound("notification not found"))
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	n, err := h.Notifications.MarkAllRead(r.Context(), uid)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"marked": n})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	n, err := h.Notifications.UnreadCount(r.Context(), uid)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"unread": n})
}
