// internal/app/features/feedback/submit.go
package feedback

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/app/system/paging"
	feedbackflow "github.com/betalift/betalift/internal/app/workflow/feedback"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func urlID(r *http.Request, param, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid %s id", what)
	}
	return id, nil
}

type submitRequest struct {
	Type        string             `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    string             `json:"priority"`
	DeviceInfo  *models.DeviceInfo `json:"device_info"`
}

// Submit handles POST /projects/{projectID}/feedback.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	pid, err := urlID(r, "projectID", "project")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var req submitRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	fb, err := h.Engine.Submit(r.Context(), pid, uid, feedbackflow.SubmitInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DeviceInfo:  req.DeviceInfo,
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, fb)
}

// List handles GET /projects/{projectID}/feedback with optional status and
// type filters, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	pid, err := urlID(r, "projectID", "project")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	q := r.URL.Query()
	rows, page, err := h.Engine.List(r.Context(), pid, uid,
		q.Get("status"), q.Get("type"), q.Get("before"), q.Get("after"))
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

// Get handles GET /feedback/{feedbackID}: the item plus the viewer's own
// vote.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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

	fb, viewerVote, err := h.Engine.Get(r.Context(), fid, uid)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"feedback":  fb,
		"your_vote": viewerVote,
	})
}
