// internal/app/workflow/notify/notify.go

// Package notify emits notification records in response to workflow
// transitions. Emission never fails the triggering operation: a store error
// is logged and swallowed, and delivery to devices happens fire-and-forget
// through an optional hook.
package notify

import (
	"context"
	"time"

	notificationstore "github.com/betalift/betalift/internal/app/store/notifications"
	"github.com/betalift/betalift/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Delivery pushes a stored notification to the recipient's devices. The
// transport (APNs, FCM, email) lives behind this interface; the dispatcher
// only guarantees the row exists before Deliver runs.
type Delivery interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// Dispatcher appends notification rows and hands them to the delivery hook.
type Dispatcher struct {
	store *notificationstore.Store
	hook  Delivery
	log   *zap.Logger
}

// New builds a dispatcher. hook may be nil when no delivery transport is
// configured; rows are still written for the in-app notification surface.
func New(store *notificationstore.Store, hook Delivery, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: store, hook: hook, log: log}
}

// Emit appends a notification for the recipient. Failures are logged, never
// returned: the triggering workflow mutation has already committed and its
// success does not depend on notification delivery.
func (d *Dispatcher) Emit(ctx context.Context, recipientID primitive.ObjectID, ntype, title, message string) {
	n := notificationstore.NewNotification(recipientID, ntype, title, message)

	if err := d.store.Insert(ctx, n); err != nil {
		d.log.Warn("notification insert failed",
			zap.String("type", ntype),
			zap.String("recipient_id", recipientID.Hex()),
			zap.Error(err))
		return
	}

	if d.hook == nil {
		return
	}
	// Fire-and-forget: delivery runs on its own goroutine with its own
	// deadline so a slow push transport never blocks the request.
	go func() {
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.hook.Deliver(dctx, n); err != nil {
			d.log.Warn("notification delivery failed",
				zap.String("type", ntype),
				zap.String("dedupe_key", n.DedupeKey),
				zap.Error(err))
		}
	}()
}
