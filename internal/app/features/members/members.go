// internal/app/features/members/members.go
package members

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/app/system/paging"
)

// List handles GET /projects/{projectID}/members, ordered by joined_at
// descending. An optional status query narrows to one membership status.
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
	rows, page, err := h.Engine.ListMembers(r.Context(), pid, uid,
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
			resp["prev_cursor"] = paging.EncodeCursor(rows[0].JoinedAt, rows[0].ID)
		}
		if page.HasNext {
			last := rows[len(rows)-1]
			resp["next_cursor"] = paging.EncodeCursor(last.JoinedAt, last.ID)
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}

// Remove handles DELETE /projects/{projectID}/members/{userID}: removal by
// an owner/admin, or self-leave.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
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
	target, err := urlID(r, "userID", "user")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Engine.RemoveMember(r.Context(), pid, uid, target); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type roleBody struct {
	Role string `json:"role"` // admin | tester
}

// SetRole handles PUT /projects/{projectID}/members/{userID}/role.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
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
	target, err := urlID(r, "userID", "user")
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	var body roleBody
	if err := respond.Decode(r, &body); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Engine.SetMemberRole(r.Context(), pid, uid, target, body.Role); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
