package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/betalift/betalift/internal/app/features/notifications"
	notificationstore "github.com/betalift/betalift/internal/app/store/notifications"
	"github.com/betalift/betalift/internal/app/system/auth"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/betalift/betalift/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, db *mongo.Database) (http.Handler, *notificationstore.Store) {
	t.Helper()
	h := notifications.NewHandler(db, zap.NewNop())
	return notifications.Routes(h), h.Notifications
}

func get(t *testing.T, router http.Handler, path string, u models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req = auth.WithUser(req, &auth.SessionUser{ID: u.ID.Hex(), Name: u.DisplayName, Role: u.Role})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, router http.Handler, path string, u models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, nil)
	req = auth.WithUser(req, &auth.SessionUser{ID: u.ID.Hex(), Name: u.DisplayName, Role: u.Role})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestInbox_ListAndMarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	user := fx.CreateTester(ctx, "Tess", "tess@example.com")
	other := fx.CreateTester(ctx, "Sam", "sam@example.com")

	router, store := newRouter(t, db)

	first := notificationstore.NewNotification(user.ID, models.NotifyProjectJoined, "Joined", "You are in")
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("insert notification: %v", err)
	}
	if err := store.Insert(ctx, notificationstore.NewNotification(user.ID, models.NotifyFeedbackComment, "Comment", "New reply")); err != nil {
		t.Fatalf("insert notification: %v", err)
	}
	if err := store.Insert(ctx, notificationstore.NewNotification(other.ID, models.NotifyProjectJoined, "Joined", "Not yours")); err != nil {
		t.Fatalf("insert notification: %v", err)
	}

	rec := get(t, router, "/", user)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list struct {
		Items []models.Notification `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list.Items))
	}

	rec = get(t, router, "/unread-count", user)
	var count map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count["unread"] != 2 {
		t.Errorf("expected 2 unread, got %d", count["unread"])
	}

	if rec := post(t, router, "/"+first.ID.Hex()+"/read", user); rec.Code != http.StatusOK {
		t.Fatalf("mark read: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = get(t, router, "/?unread_only=true", user)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode unread list: %v", err)
	}
	if len(list.Items) != 1 {
		t.Errorf("expected 1 unread after marking, got %d", len(list.Items))
	}
}

func TestInbox_MarkForeignNotificationFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	user := fx.CreateTester(ctx, "Tess", "tess@example.com")
	other := fx.CreateTester(ctx, "Sam", "sam@example.com")

	router, store := newRouter(t, db)

	n := notificationstore.NewNotification(other.ID, models.NotifyProjectJoined, "Joined", "Not yours")
	if err := store.Insert(ctx, n); err != nil {
		t.Fatalf("insert notification: %v", err)
	}

	if rec := post(t, router, "/"+n.ID.Hex()+"/read", user); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestInbox_MarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()
	user := fx.CreateTester(ctx, "Tess", "tess@example.com")

	router, store := newRouter(t, db)

	for i := 0; i < 3; i++ {
		if err := store.Insert(ctx, notificationstore.NewNotification(user.ID, models.NotifyProjectJoined, "Joined", "hello")); err != nil {
			t.Fatalf("insert notification: %v", err)
		}
	}

	rec := post(t, router, "/read-all", user)
	if rec.Code != http.StatusOK {
		t.Fatalf("read-all: expected 200, got %d", rec.Code)
	}
	var marked map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &marked); err != nil {
		t.Fatalf("decode marked: %v", err)
	}
	if marked["marked"] != 3 {
		t.Errorf("expected 3 marked, got %d", marked["marked"])
	}

	rec = get(t, router, "/unread-count", user)
	var count map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count["unread"] != 0 {
		t.Errorf("expected 0 unread, got %d", count["unread"])
	}
}
