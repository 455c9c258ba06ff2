// internal/app/features/projects/create.go
package projects

import (
	"context"
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	projectstore "github.com/betalift/betalift/internal/app/store/projects"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/app/system/txn"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
)

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// Create handles POST /projects. The project and the owner's implicit admin
// membership are written in one transaction, so ownership is always
// represented as a membership and never as a join request.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	if !authz.IsCreator(r) {
		respond.Err(w, h.Log, apperr.Forbidden("only creators can publish projects"))
		return
	}

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPublic
	}

	project, err := projectstore.NewProject(req.Name, req.Description, uid, req.Visibility)
	if err != nil {
		respond.Err(w, h.Log, apperr.Wrap(apperr.KindValidation, err.Error(), err))
		return
	}

	err = txn.Run(r.Context(), h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Projects.Collection().InsertOne(ctx, project); err != nil {
			return err
		}
		return h.Memberships.Insert(ctx, project.ID, uid, models.MemberAdmin)
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, project)
}
