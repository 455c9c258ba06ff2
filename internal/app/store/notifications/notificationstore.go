// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// NewNotification builds an unread notification with a fresh dedupe key.
func NewNotification(recipientID primitive.ObjectID, ntype, title, message string) models.Notification {
	return models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipientID,
		Type:        ntype,
		Title:       title,
		Message:     message,
		DedupeKey:   uuid.NewString(),
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}
}

// Insert appends a notification row.
func (s *Store) Insert(ctx context.Context, n models.Notification) error {
	_, err := s.c.InsertOne(ctx, n)
	return err
}

// ListByRecipient returns a user's notifications, newest first. unreadOnly
// restricts to rows not yet marked read.
func (s *Store) ListByRecipient(ctx context.Context, recipientID primitive.ObjectID, unreadOnly bool, before, after string) ([]models.Notification, paging.Result, error) {
	filter := bson.M{"recipient_id": recipientID}
	if unreadOnly {
		filter["is_read"] = false
	}

	w := paging.Keyset(-1, before, after)
	if cond := w.Filter("created_at"); cond != nil {
		filter = bson.M{"$and": []bson.M{filter, cond}}
	}
	find := options.Find()
	w.ApplyToFind(find, "created_at")

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Notification
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	if w.Reversed {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)
	return rows, res, nil
}

// MarkRead flags one of the recipient's notifications as read. Marking an
// already-read row is a no-op; returns mongo.ErrNoDocuments when the
// notification does not exist or belongs to another user.
func (s *Store) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllRead flags every unread notification for the recipient and reports
// how many were flipped.
func (s *Store) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UnreadCount returns the recipient's unread notification count.
func (s *Store) UnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}
