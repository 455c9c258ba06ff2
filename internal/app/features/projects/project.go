// internal/app/features/projects/project.go
package projects

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	"github.com/betalift/betalift/internal/app/policy/projectpolicy"
	projectstore "github.com/betalift/betalift/internal/app/store/projects"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// projectID pulls and parses the {projectID} URL parameter.
func projectID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid project id")
	}
	return id, nil
}

// Get handles GET /projects/{projectID}. Private projects are visible only
// to the owner and approved members.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	project, err := h.Projects.GetByID(r.Context(), id)
	if err == mongo.ErrNoDocuments {
		respond.Err(w, h.Log, apperr.NotFound("project not found"))
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	visible, err := projectpolicy.CanViewProject(r.Context(), h.DB, r, project)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if !visible {
		// Same response as a missing project so private projects stay
		// unenumerable.
		respond.Err(w, h.Log, apperr.NotFound("project not found"))
		return
	}

	respond.JSON(w, http.StatusOK, project)
}

type updateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Visibility  string `json:"visibility"`
}

// Update handles PUT /projects/{projectID}. Owner or admin only.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	project, err := h.Projects.GetByID(r.Context(), id)
	if err == mongo.ErrNoDocuments {
		respond.Err(w, h.Log, apperr.NotFound("project not found"))
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	allowed, err := projectpolicy.CanManageProject(r.Context(), h.DB, r, project)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if !allowed {
		respond.Err(w, h.Log, apperr.Forbidden("only the project owner or an admin can edit the project"))
		return
	}

	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if req.Status == "" {
		req.Status = project.Status
	}
	if req.Visibility == "" {
		req.Visibility = project.Visibility
	}

	err = h.Projects.ApplyUpdate(r.Context(), id, projectstore.Update{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Visibility:  req.Visibility,
	})
	if err != nil && err != mongo.ErrNoDocuments {
		respond.Err(w, h.Log, apperr.Wrap(apperr.KindValidation, err.Error(), err))
		return
	}
	if err == mongo.ErrNoDocuments {
		respond.Err(w, h.Log, apperr.NotFound("project not found"))
		return
	}

	updated, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// listResponse wraps a page of rows with keyset cursors.
type listResponse struct {
	Items      any    `json:"items"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ListPublic handles GET /projects: public projects, newest first.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	before := r.URL.Query().Get("before")
	after := r.URL.Query().Get("after")

	rows, page, err := h.Projects.ListPublic(r.Context(), before, after)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	resp := listResponse{Items: rows, HasPrev: page.HasPrev, HasNext: page.HasNext}
	if len(rows) > 0 {
		if page.HasPrev {
			resp.PrevCursor = paging.EncodeCursor(rows[0].CreatedAt, rows[0].ID)
		}
		if page.HasNext {
			last := rows[len(rows)-1]
			resp.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}

// ListMine handles GET /projects/mine: projects the current user owns.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	rows, err := h.Projects.ListByOwner(r.Context(), uid)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if rows == nil {
		rows = []models.Project{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"items": rows})
}
