// internal/app/features/feedback/lifecycle.go
package feedback

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/app/system/paging"
)

type transitionRequest struct {
	Status string `json:"status"`
}

// Transition handles POST /feedback/{feedbackID}/transition.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	fid, err := urlID(r, "feedbackID", "feedback")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var req transitionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Engine.TransitionStatus(r.Context(), fid, uid, req.Status); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type voteRequest struct {
	Value string `json:"value"` // up | down
}

// Vote handles POST /feedback/{feedbackID}/vote.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	fid, err := urlID(r, "feedbackID", "feedback")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var req voteRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Engine.Vote(r.Context(), fid, uid, req.Value); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

type commentRequest struct {
	Content string `json:"content"`
}

// Comment handles POST /feedback/{feedbackID}/comments.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	fid, err := urlID(r, "feedbackID", "feedback")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var req commentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	c, err := h.Engine.Comment(r.Context(), fid, uid, req.Content)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}

// ListComments handles GET /feedback/{feedbackID}/comments, oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	fid, err := urlID(r, "feedbackID", "feedback")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	q := r.URL.Query()
	rows, page, err := h.Engine.ListComments(r.Context(), fid, uid, q.Get("before"), q.Get("after"))
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

// Reconcile handles POST /feedback/{feedbackID}/reconcile: recompute the
// denormalized counters from vote and comment rows. Owner/admin only; the
// permission check rides on TransitionStatus's manager rule, so the engine
// exposes it separately here.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	fid, err := urlID(r, "feedbackID", "feedback")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Engine.RequireManager(r.Context(), fid, uid); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	counters, err := h.Engine.ReconcileCounters(r.Context(), fid)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, counters)
}
