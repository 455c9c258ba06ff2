package feedback_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	notificationstore "github.com/betalift/betalift/internal/app/store/notifications"
	"github.com/betalift/betalift/internal/app/system/indexes"
	"github.com/betalift/betalift/internal/app/workflow/feedback"
	"github.com/betalift/betalift/internal/app/workflow/notify"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/betalift/betalift/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newEngine(t *testing.T, db *mongo.Database) *feedback.Engine {
	t.Helper()
	log := zap.NewNop()
	dispatcher := notify.New(notificationstore.New(db), nil, log)
	return feedback.New(db, dispatcher, log)
}

func TestEngine_Submit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)

	fb, err := engine.Submit(ctx, project.ID, tester.ID, feedback.SubmitInput{
		Type:        models.FeedbackBug,
		Title:       "Crash on login",
		Description: "App crashes when tapping login twice",
		Priority:    "high",
		DeviceInfo:  &models.DeviceInfo{Platform: "ios", AppVersion: "1.2.0"},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if fb.Status != models.FeedbackPending {
		t.Errorf("Status: got %q, want %q", fb.Status, models.FeedbackPending)
	}
	if fb.Upvotes != 0 || fb.Downvotes != 0 || fb.CommentCount != 0 {
		t.Error("expected zeroed counters")
	}
}

func TestEngine_Submit_DescriptionTooLong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)

	_, err := engine.Submit(ctx, project.ID, owner.ID, feedback.SubmitInput{
		Type:        models.FeedbackBug,
		Title:       "Too much detail",
		Description: strings.Repeat("a", 5001),
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected Validation for 5001-char description, got %v", err)
	}
}

func TestEngine_Submit_NonMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	stranger := fixtures.CreateTester(ctx, "Stranger", "stranger@example.com")

	_, err := engine.Submit(ctx, project.ID, stranger.ID, feedback.SubmitInput{
		Type:        models.FeedbackBug,
		Title:       "Not a member",
		Description: "should be refused",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected Validation for missing membership, got %v", err)
	}
}

func TestEngine_Submit_SanitizesMarkup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)

	fb, err := engine.Submit(ctx, project.ID, owner.ID, feedback.SubmitInput{
		Type:        models.FeedbackBug,
		Title:       "Login <script>alert(1)</script> broken",
		Description: "Steps: <img src=x onerror=alert(1)> open the app",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if strings.Contains(fb.Title, "<script>") {
		t.Errorf("title not sanitized: %q", fb.Title)
	}
	if strings.Contains(fb.Description, "<img") {
		t.Errorf("description not sanitized: %q", fb.Description)
	}
}

func TestEngine_TransitionStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	if err := engine.TransitionStatus(ctx, fb.ID, owner.ID, models.FeedbackOpen); err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}

	// The author is notified of the change.
	n, _ := db.Collection("notifications").CountDocuments(ctx, bson.M{
		"recipient_id": tester.ID,
		"type":         models.NotifyFeedbackStatusChanged,
	})
	if n != 1 {
		t.Errorf("expected 1 status notification, got %d", n)
	}
}

func TestEngine_TransitionStatus_Illegal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	fb := fixtures.CreateFeedbackWithStatus(ctx, project.ID, owner.ID, "Closed bug", models.FeedbackClosed)

	err := engine.TransitionStatus(ctx, fb.ID, owner.ID, models.FeedbackOpen)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("expected Conflict for closed→open, got %v", err)
	}
}

func TestEngine_TransitionStatus_Forbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	err := engine.TransitionStatus(ctx, fb.ID, tester.ID, models.FeedbackOpen)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected Forbidden for non-admin actor, got %v", err)
	}
}

func TestEngine_Vote_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	for i := 0; i < 3; i++ {
		if err := engine.Vote(ctx, fb.ID, tester.ID, models.VoteUp); err != nil {
			t.Fatalf("Vote failed: %v", err)
		}
	}

	var got models.Feedback
	if err := db.Collection("feedback").FindOne(ctx, bson.M{"_id": fb.ID}).Decode(&got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.Upvotes != 1 {
		t.Errorf("Upvotes after repeated up-votes: got %d, want 1", got.Upvotes)
	}
	if got.Downvotes != 0 {
		t.Errorf("Downvotes: got %d, want 0", got.Downvotes)
	}
}

func TestEngine_Vote_Flip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	if err := engine.Vote(ctx, fb.ID, tester.ID, models.VoteUp); err != nil {
		t.Fatalf("Vote up failed: %v", err)
	}
	if err := engine.Vote(ctx, fb.ID, tester.ID, models.VoteDown); err != nil {
		t.Fatalf("Vote down failed: %v", err)
	}

	var got models.Feedback
	if err := db.Collection("feedback").FindOne(ctx, bson.M{"_id": fb.ID}).Decode(&got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.Upvotes != 0 || got.Downvotes != 1 {
		t.Errorf("counters after flip: got %d up / %d down, want 0/1", got.Upvotes, got.Downvotes)
	}

	// Still exactly one vote row.
	count, _ := db.Collection("feedback_votes").CountDocuments(ctx, bson.M{
		"feedback_id": fb.ID,
		"user_id":     tester.ID,
	})
	if count != 1 {
		t.Errorf("expected 1 vote row, got %d", count)
	}
}

func TestEngine_Comment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	for i := 0; i < 3; i++ {
		if _, err := engine.Comment(ctx, fb.ID, owner.ID, "looking into it"); err != nil {
			t.Fatalf("Comment failed: %v", err)
		}
	}

	var got models.Feedback
	if err := db.Collection("feedback").FindOne(ctx, bson.M{"_id": fb.ID}).Decode(&got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.CommentCount != 3 {
		t.Errorf("CommentCount: got %d, want 3", got.CommentCount)
	}

	// Author is notified once per comment from someone else.
	n, _ := db.Collection("notifications").CountDocuments(ctx, bson.M{
		"recipient_id": tester.ID,
		"type":         models.NotifyFeedbackComment,
	})
	if n != 3 {
		t.Errorf("expected 3 comment notifications, got %d", n)
	}
}

func TestEngine_Comment_SelfNotifySuppressed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	if _, err := engine.Comment(ctx, fb.ID, tester.ID, "adding details"); err != nil {
		t.Fatalf("Comment failed: %v", err)
	}

	n, _ := db.Collection("notifications").CountDocuments(ctx, bson.M{
		"recipient_id": tester.ID,
		"type":         models.NotifyFeedbackComment,
	})
	if n != 0 {
		t.Errorf("expected no self-notification, got %d", n)
	}
}

func TestEngine_Comment_TooLong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, owner.ID, "Bug report")

	_, err := engine.Comment(ctx, fb.ID, owner.ID, strings.Repeat("a", 2001))
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected Validation for 2001-char comment, got %v", err)
	}
}

func TestEngine_ReconcileCounters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	if err := engine.Vote(ctx, fb.ID, tester.ID, models.VoteUp); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if _, err := engine.Comment(ctx, fb.ID, owner.ID, "on it"); err != nil {
		t.Fatalf("Comment failed: %v", err)
	}

	// Simulate drift left by a partial failure.
	_, err := db.Collection("feedback").UpdateOne(ctx,
		bson.M{"_id": fb.ID},
		bson.M{"$set": bson.M{"upvotes": 99, "comment_count": 99}},
	)
	if err != nil {
		t.Fatalf("drift setup failed: %v", err)
	}

	counters, err := engine.ReconcileCounters(ctx, fb.ID)
	if err != nil {
		t.Fatalf("ReconcileCounters failed: %v", err)
	}
	if counters.Upvotes != 1 || counters.Downvotes != 0 || counters.CommentCount != 1 {
		t.Errorf("counters: got %+v, want 1/0/1", counters)
	}

	var got models.Feedback
	if err := db.Collection("feedback").FindOne(ctx, bson.M{"_id": fb.ID}).Decode(&got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.Upvotes != 1 || got.CommentCount != 1 {
		t.Errorf("stored counters: got %d up / %d comments, want 1/1", got.Upvotes, got.CommentCount)
	}
}

func TestEngine_Get_WithViewerVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fixtures.CreateMembership(ctx, project.ID, tester.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	if err := engine.Vote(ctx, fb.ID, tester.ID, models.VoteDown); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}

	_, viewerVote, err := engine.Get(ctx, fb.ID, tester.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if viewerVote != models.VoteDown {
		t.Errorf("viewer vote: got %q, want %q", viewerVote, models.VoteDown)
	}

	_, ownerVote, err := engine.Get(ctx, fb.ID, owner.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ownerVote != "" {
		t.Errorf("owner vote: got %q, want empty", ownerVote)
	}
}

func TestEngine_PrivateProjectReads_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProjectWithStatus(ctx, "Secret", owner.ID, models.ProjectActive, models.VisibilityPrivate)
	fb := fixtures.CreateFeedback(ctx, project.ID, owner.ID, "Internal bug")
	stranger := fixtures.CreateTester(ctx, "Stranger", "stranger@example.com")

	_, _, err := engine.List(ctx, project.ID, stranger.ID, "", "", "", "")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("List: expected NotFound for a stranger, got %v", err)
	}

	_, _, err = engine.Get(ctx, fb.ID, stranger.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("Get: expected NotFound for a stranger, got %v", err)
	}

	_, _, err = engine.ListComments(ctx, fb.ID, stranger.ID, "", "")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("ListComments: expected NotFound for a stranger, got %v", err)
	}

	member := fixtures.CreateTester(ctx, "Member", "member@example.com")
	fixtures.CreateMembership(ctx, project.ID, member.ID)
	rows, _, err := engine.List(ctx, project.ID, member.ID, "", "", "", "")
	if err != nil {
		t.Fatalf("List as member failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 feedback item for a member, got %d", len(rows))
	}
	if _, _, err := engine.Get(ctx, fb.ID, member.ID); err != nil {
		t.Errorf("Get as member failed: %v", err)
	}
}

func TestEngine_List_MissingProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	_, _, err := engine.List(ctx, primitive.NewObjectID(), viewer.ID, "", "", "", "")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound for a missing project, got %v", err)
	}
}

func TestEngine_Submit_MultibyteDescription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)

	// 5000 runes but 10000 bytes; limits count characters, not bytes.
	_, err := engine.Submit(ctx, project.ID, owner.ID, feedback.SubmitInput{
		Type:        models.FeedbackBug,
		Title:       strings.Repeat("é", 200),
		Description: strings.Repeat("é", 5000),
	})
	if err != nil {
		t.Fatalf("Submit with multibyte text failed: %v", err)
	}

	_, err = engine.Submit(ctx, project.ID, owner.ID, feedback.SubmitInput{
		Type:        models.FeedbackBug,
		Title:       "Over the limit",
		Description: strings.Repeat("é", 5001),
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected Validation for 5001-rune description, got %v", err)
	}
}

func TestEngine_Comment_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := newEngine(t, db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, owner.ID, "Busy thread")

	const n = 8
	commenters := make([]primitive.ObjectID, n)
	for i := range commenters {
		u := fixtures.CreateTester(ctx, "Tester", fmt.Sprintf("tester%d@example.com", i))
		fixtures.CreateMembership(ctx, project.ID, u.ID)
		commenters[i] = u.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Comment(ctx, fb.ID, commenters[i], "me too")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Comment %d failed: %v", i, err)
		}
	}

	got, _, err := engine.Get(ctx, fb.ID, owner.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CommentCount != n {
		t.Errorf("CommentCount: got %d, want %d", got.CommentCount, n)
	}
	stored, err := db.Collection("feedback_comments").CountDocuments(ctx, bson.M{"feedback_id": fb.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if stored != n {
		t.Errorf("stored comments: got %d, want %d", stored, n)
	}
}
