// internal/app/features/members/joinrequests.go
package members

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/app/workflow/membership"
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

type joinRequestBody struct {
	Message string `json:"message"`
}

// RequestToJoin handles POST /projects/{projectID}/join-requests.
func (h *Handler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
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

	var body joinRequestBody
	if r.ContentLength > 0 {
		if err := respond.Decode(r, &body); err != nil {
			respond.Err(w, h.Log, err)
			return
		}
	}

	req, err := h.Engine.RequestToJoin(r.Context(), pid, uid, body.Message)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, req)
}

type reviewBody struct {
	Decision string `json:"decision"` // approve | reject
	Reason   string `json:"reason"`
}

// Review handles POST /join-requests/{requestID}/review.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	reqID, err := urlID(r, "requestID", "join request")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var body reviewBody
	if err := respond.Decode(r, &body); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Engine.ReviewJoinRequest(r.Context(), reqID, uid, body.Decision, body.Reason); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	status := models.RequestApproved
	if body.Decision == membership.DecisionReject {
		status = models.RequestRejected
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": status})
}

// ListJoinRequests handles GET /projects/{projectID}/join-requests.
func (h *Handler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
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
	rows, page, err := h.Engine.ListJoinRequests(r.Context(), pid, uid,
		q.Get("status"), q.Get("before"), q.Get("after"))
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
