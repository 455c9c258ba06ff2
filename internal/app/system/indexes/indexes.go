// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent; errors
are aggregated so every problem is visible and startup can fail fast.

The unique indexes are load-bearing, not advisory: the membership workflow
relies on project_memberships (project_id, user_id) and the partial pending
index on join_requests to serialize concurrent joins, and the vote workflow
relies on feedback_votes (feedback_id, user_id) to serialize concurrent
votes.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureProjectMemberships(ctx, db); err != nil {
		problems = append(problems, "project_memberships: "+err.Error())
	}
	if err := ensureJoinRequests(ctx, db); err != nil {
		problems = append(problems, "join_requests: "+err.Error())
	}
	if err := ensureFeedback(ctx, db); err != nil {
		problems = append(problems, "feedback: "+err.Error())
	}
	if err := ensureFeedbackVotes(ctx, db); err != nil {
		problems = append(problems, "feedback_votes: "+err.Error())
	}
	if err := ensureFeedbackComments(ctx, db); err != nil {
		problems = append(problems, "feedback_comments: "+err.Error())
	}
	if err := ensureNotifications(ctx, db); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()), zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range models {
		var desiredUnique *bool
		var desiredName string
		if m.Options != nil {
			desiredUnique = m.Options.Unique
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				continue // reuse
			}
			// Options mismatch (e.g., upgrading to unique). Drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// Same keys under a different name or options → already usable.
			if strings.Contains(err.Error(), "IndexOptionsConflict") {
				zap.L().Warn("index options conflict; keeping existing index",
					zap.String("collection", coll.Name()), zap.String("keys", sig))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): create failed: %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection desired index sets                                          */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "display_name_ci", Value: 1}},
			Options: options.Index().SetName("display_name_ci"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("projects"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
		{
			Keys:    bson.D{{Key: "visibility", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("visibility_status_created"),
		},
	})
}

func ensureProjectMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("project_memberships"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_project_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}, {Key: "joined_at", Value: -1}},
			Options: options.Index().SetName("project_status_joined"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "joined_at", Value: -1}},
			Options: options.Index().SetName("user_joined"),
		},
	})
}

func ensureJoinRequests(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("join_requests"), []mongo.IndexModel{
		{
			// At most one outstanding request per (project, user); resolved
			// requests fall out of the partial index and stay as history.
			Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_pending_project_user").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("project_status_created"),
		},
	})
}

func ensureFeedback(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("feedback"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("project_created"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("project_status_created"),
		},
	})
}

func ensureFeedbackVotes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("feedback_votes"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "feedback_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_feedback_user").SetUnique(true),
		},
	})
}

func ensureFeedbackComments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("feedback_comments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "feedback_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("feedback_created"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("recipient_created"),
		},
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}},
			Options: options.Index().SetName("recipient_read"),
		},
	})
}
