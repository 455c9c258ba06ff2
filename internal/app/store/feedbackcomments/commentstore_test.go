package feedbackcommentstore_test

import (
	"fmt"
	"testing"

	feedbackcommentstore "github.com/betalift/betalift/internal/app/store/feedbackcomments"
	"github.com/betalift/betalift/internal/testutil"
)

func TestStore_InsertAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := feedbackcommentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	tester := fixtures.CreateTester(ctx, "Tester", "tester@example.com")
	fb := fixtures.CreateFeedback(ctx, project.ID, tester.ID, "Bug report")

	for i := 0; i < 3; i++ {
		c := feedbackcommentstore.NewComment(fb.ID, tester.ID, fmt.Sprintf("comment %d", i))
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	rows, res, err := store.ListByFeedback(ctx, fb.ID, "", "")
	if err != nil {
		t.Fatalf("ListByFeedback failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(rows))
	}
	// Oldest first.
	if rows[0].Content != "comment 0" {
		t.Errorf("first comment: got %q, want %q", rows[0].Content, "comment 0")
	}
	if res.HasNext || res.HasPrev {
		t.Error("expected single page with no prev/next")
	}
}

func TestStore_ListByFeedback_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := feedbackcommentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, owner.ID, "Bug report")

	rows, _, err := store.ListByFeedback(ctx, fb.ID, "", "")
	if err != nil {
		t.Fatalf("ListByFeedback failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no comments, got %d", len(rows))
	}
}

func TestStore_Count(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := feedbackcommentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateCreator(ctx, "Owner", "owner@example.com")
	project := fixtures.CreateProject(ctx, "Test Project", owner.ID)
	fb := fixtures.CreateFeedback(ctx, project.ID, owner.ID, "Bug report")

	for i := 0; i < 2; i++ {
		c := feedbackcommentstore.NewComment(fb.ID, owner.ID, "hello")
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	n, err := store.Count(ctx, fb.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count: got %d, want 2", n)
	}
}
