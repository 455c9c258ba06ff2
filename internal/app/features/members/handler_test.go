package members_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/betalift/betalift/internal/app/features/members"
	notificationstore "github.com/betalift/betalift/internal/app/store/notifications"
	"github.com/betalift/betalift/internal/app/system/auth"
	"github.com/betalift/betalift/internal/app/system/indexes"
	"github.com/betalift/betalift/internal/app/workflow/membership"
	"github.com/betalift/betalift/internal/app/workflow/notify"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/betalift/betalift/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, db *mongo.Database) http.Handler {
	t.Helper()
	dispatcher := notify.New(notificationstore.New(db), nil, zap.NewNop())
	engine := membership.New(db, dispatcher, zap.NewNop())
	h := members.NewHandler(db, engine, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Mount("/join-requests", members.JoinRequestRoutes(h))
		r.Mount("/members", members.MemberRoutes(h))
	})
	r.Mount("/join-requests", members.ReviewRoutes(h))
	return r
}

func asUser(req *http.Request, u models.User) *http.Request {
	return auth.WithUser(req, &auth.SessionUser{ID: u.ID.Hex(), Name: u.DisplayName, Role: u.Role})
}

func do(t *testing.T, router http.Handler, method, path, body string, u models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req = asUser(req, u)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJoinRequestFlow_ApproveAddsMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if err := indexes.EnsureAll(context.Background(), db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	owner := fx.CreateCreator(ctx, "Ada", "ada@example.com")
	tester := fx.CreateTester(ctx, "Tess", "tess@example.com")
	project := fx.CreateProject(ctx, "Orbit", owner.ID)

	router := newRouter(t, db)

	rec := do(t, router, "POST", "/projects/"+project.ID.Hex()+"/join-requests",
		`{"message":"long-time user"}`, tester)
	if rec.Code != http.StatusCreated {
		t.Fatalf("request to join: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.JoinRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode join request: %v", err)
	}

	rec = do(t, router, "POST", "/join-requests/"+created.ID.Hex()+"/review",
		`{"decision":"approve"}`, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	n, err := db.Collection("project_memberships").CountDocuments(ctx, bson.M{
		"project_id": project.ID,
		"user_id":    tester.ID,
		"status":     models.MembershipApproved,
	})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 approved membership, got %d", n)
	}

	rec = do(t, router, "GET", "/projects/"+project.ID.Hex()+"/members?status=approved", "", owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("list members: expected 200, got %d", rec.Code)
	}
	var list struct {
		Items []models.ProjectMembership `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode member list: %v", err)
	}
	// Owner's admin membership plus the approved tester.
	if len(list.Items) != 2 {
		t.Errorf("expected 2 members, got %d", len(list.Items))
	}
}

func TestReview_StrangerForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	owner := fx.CreateCreator(ctx, "Ada", "ada@example.com")
	tester := fx.CreateTester(ctx, "Tess", "tess@example.com")
	stranger := fx.CreateTester(ctx, "Sam", "sam@example.com")
	project := fx.CreateProject(ctx, "Orbit", owner.ID)
	req := fx.CreatePendingRequest(ctx, project.ID, tester.ID, "please")

	router := newRouter(t, db)

	rec := do(t, router, "POST", "/join-requests/"+req.ID.Hex()+"/review",
		`{"decision":"reject","reason":"no"}`, stranger)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRemoveMember_SelfLeave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	owner := fx.CreateCreator(ctx, "Ada", "ada@example.com")
	tester := fx.CreateTester(ctx, "Tess", "tess@example.com")
	project := fx.CreateProject(ctx, "Orbit", owner.ID)
	fx.CreateMembership(ctx, project.ID, tester.ID)

	router := newRouter(t, db)

	rec := do(t, router, "DELETE",
		"/projects/"+project.ID.Hex()+"/members/"+tester.ID.Hex(), "", tester)
	if rec.Code != http.StatusOK {
		t.Fatalf("self leave: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	n, err := db.Collection("project_memberships").CountDocuments(ctx, bson.M{
		"project_id": project.ID,
		"user_id":    tester.ID,
	})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if n != 0 {
		t.Errorf("expected membership removed, found %d", n)
	}
}

func TestRemoveMember_OwnerRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	owner := fx.CreateCreator(ctx, "Ada", "ada@example.com")
	project := fx.CreateProject(ctx, "Orbit", owner.ID)

	router := newRouter(t, db)

	rec := do(t, router, "DELETE",
		"/projects/"+project.ID.Hex()+"/members/"+owner.ID.Hex(), "", owner)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestSetRole_OwnerPromotesTester(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	owner := fx.CreateCreator(ctx, "Ada", "ada@example.com")
	tester := fx.CreateTester(ctx, "Tess", "tess@example.com")
	project := fx.CreateProject(ctx, "Orbit", owner.ID)
	fx.CreateMembership(ctx, project.ID, tester.ID)

	router := newRouter(t, db)

	rec := do(t, router, "PUT",
		"/projects/"+project.ID.Hex()+"/members/"+tester.ID.Hex()+"/role",
		`{"role":"admin"}`, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("set role: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var m models.ProjectMembership
	err := db.Collection("project_memberships").FindOne(ctx, bson.M{
		"project_id": project.ID,
		"user_id":    tester.ID,
	}).Decode(&m)
	if err != nil {
		t.Fatalf("find membership: %v", err)
	}
	if m.Role != models.MemberAdmin {
		t.Errorf("expected admin role, got %q", m.Role)
	}
}

func TestListMembers_PrivateProjectHiddenFromStrangers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	owner := fx.CreateCreator(ctx, "Ada", "ada@example.com")
	stranger := fx.CreateTester(ctx, "Sam", "sam@example.com")
	project := fx.CreateProjectWithStatus(ctx, "Skunkworks", owner.ID, models.ProjectActive, models.VisibilityPrivate)

	router := newRouter(t, db)

	rec := do(t, router, "GET", "/projects/"+project.ID.Hex()+"/members", "", stranger)
	if rec.Code != http.StatusNotFound {
		t.Errorf("stranger list: expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, "GET", "/projects/"+project.ID.Hex()+"/members", "", owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner list: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
